package usecase

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
)

const missingBound = "—"

var bengaliDigits = strings.NewReplacer(
	"0", "০", "1", "১", "2", "২", "3", "৩", "4", "৪",
	"5", "৫", "6", "৬", "7", "৭", "8", "৮", "9", "৯",
)

// bnNumber renders a numeric value with Bangla digits. Trailing zeros and
// the decimal point are stripped before transliteration, so 25.50 shows
// as ২৫.৫ and 30.0 as ৩০.
func bnNumber(x float64) string {
	return bengaliDigits.Replace(strconv.FormatFloat(x, 'f', -1, 64))
}

// seasonLabels maps the English season names stored on graph edges to
// their Bangla display labels. Unmapped names pass through unchanged.
var seasonLabels = map[string]string{
	"Kharif 1": "খরিফ-১",
	"Kharif1":  "খরিফ-১",
	"Kharif 2": "খরিফ-২",
	"Kharif2":  "খরিফ-২",
	"Rabi":     "রবি",
	"Aus":      "আউশ",
	"Aman":     "আমন",
	"Boro":     "বোরো",
}

func seasonLabel(name string) string {
	if name == "" {
		return ""
	}
	if label, ok := seasonLabels[name]; ok {
		return label
	}
	return name
}

const shownLocationLimit = 5

// renderFactBullets turns a fact bundle into localized bullet lines.
// Every category is optional; an empty bundle yields an empty slice.
func renderFactBullets(b domain.FactBundle) []string {
	bullets := make([]string, 0, 5)

	if names := seasonNames(b.Seasons); len(names) > 0 {
		bullets = append(bullets, "উপযোগী মৌসুম: "+strings.Join(names, " / "))
	}

	if b.Climate.HasTemperature() {
		bullets = append(bullets, fmt.Sprintf("তাপমাত্রা: %s–%s°C",
			boundOrDash(b.Climate.MinTempC), boundOrDash(b.Climate.MaxTempC)))
	}
	if b.Climate.HasHumidity() {
		bullets = append(bullets, fmt.Sprintf("আপেক্ষিক আর্দ্রতা: %s%%–%s%%",
			boundOrDash(b.Climate.MinRH), boundOrDash(b.Climate.MaxRH)))
	}

	if line := diseaseLine(b.Diseases); line != "" {
		bullets = append(bullets, line)
	}

	if line := locationLine(b.Locations); line != "" {
		bullets = append(bullets, "চাষের জেলা (উদাহরণ): "+line)
	}

	return bullets
}

// renderDiseaseBullets renders the disease-only answer path: the joined
// disease list first, then one line per disease that carries notes.
func renderDiseaseBullets(diseases []domain.DiseaseFact) []string {
	line := diseaseLine(diseases)
	if line == "" {
		return nil
	}
	bullets := []string{line}
	for _, d := range diseases {
		if d.Notes == "" {
			continue
		}
		name := d.DisplayName()
		if name == "" {
			continue
		}
		bullets = append(bullets, name+": "+d.Notes)
	}
	return bullets
}

func seasonNames(seasons []domain.SeasonFact) []string {
	names := make([]string, 0, len(seasons))
	for _, s := range seasons {
		if s.Name == "" {
			continue
		}
		names = append(names, seasonLabel(s.Name))
	}
	return names
}

func boundOrDash(v *float64) string {
	if v == nil {
		return missingBound
	}
	return bnNumber(*v)
}

func diseaseLine(diseases []domain.DiseaseFact) string {
	names := make([]string, 0, len(diseases))
	for _, d := range diseases {
		if name := d.DisplayName(); name != "" {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return "রোগ: " + strings.Join(names, " / ")
}

func locationLine(locations []domain.LocationFact) string {
	parts := make([]string, 0, shownLocationLimit)
	for _, loc := range locations {
		if loc.Name == "" {
			continue
		}
		part := loc.Name
		if label := seasonLabel(loc.Season); label != "" {
			part = fmt.Sprintf("%s (%s)", loc.Name, label)
		}
		parts = append(parts, part)
		if len(parts) == shownLocationLimit {
			break
		}
	}
	return strings.Join(parts, ", ")
}

// joinBullets renders lines with the fixed bullet delimiter of the answer
// contract.
func joinBullets(bullets []string) string {
	kept := make([]string, 0, len(bullets))
	for _, b := range bullets {
		if strings.TrimSpace(b) == "" {
			continue
		}
		kept = append(kept, "• "+b)
	}
	return strings.Join(kept, "\n")
}
