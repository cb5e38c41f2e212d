package domain

// CropRef identifies a crop resolved from free query text.
type CropRef struct {
	ID     string `json:"id"`
	NameBN string `json:"name_bn"`
	NameEN string `json:"name_en"`
	Slug   string `json:"slug,omitempty"`
}

type SeasonFact struct {
	SeasonID string `json:"season_id"`
	Name     string `json:"season_name"`
}

// LocationFact is one CULTIVATED_IN edge flattened with its district node.
type LocationFact struct {
	LocationID  string   `json:"location_id"`
	Name        string   `json:"location_name"`
	Season      string   `json:"season,omitempty"`
	Transplant  string   `json:"transplant,omitempty"`
	Harvest     string   `json:"harvest,omitempty"`
	AvgTempC    *float64 `json:"avg_temp_c,omitempty"`
	AvgHumidity *float64 `json:"avg_humidity,omitempty"`
	Production  *int64   `json:"production,omitempty"`
}

// ClimateEnvelope carries the crop-level tolerance bounds. Any bound may be
// missing; bounds are not guaranteed to satisfy min <= max upstream.
type ClimateEnvelope struct {
	MinTempC *float64 `json:"min_temp_c,omitempty"`
	MaxTempC *float64 `json:"max_temp_c,omitempty"`
	MinRH    *float64 `json:"min_rh,omitempty"`
	MaxRH    *float64 `json:"max_rh,omitempty"`
}

func (c ClimateEnvelope) HasTemperature() bool {
	return c.MinTempC != nil || c.MaxTempC != nil
}

func (c ClimateEnvelope) HasHumidity() bool {
	return c.MinRH != nil || c.MaxRH != nil
}

type DiseaseFact struct {
	DiseaseID string `json:"disease_id"`
	NameBN    string `json:"name_bn,omitempty"`
	NameEN    string `json:"name_en,omitempty"`
	Notes     string `json:"notes,omitempty"`
}

// DisplayName prefers the Bangla name per fact, falling back to English.
func (d DiseaseFact) DisplayName() string {
	if d.NameBN != "" {
		return d.NameBN
	}
	return d.NameEN
}

// FactBundle is everything the graph knows about one crop.
type FactBundle struct {
	Crop      CropRef         `json:"crop"`
	Seasons   []SeasonFact    `json:"seasons"`
	Locations []LocationFact  `json:"locations"`
	Climate   ClimateEnvelope `json:"climate"`
	Diseases  []DiseaseFact   `json:"diseases"`
}

func (b FactBundle) Empty() bool {
	return len(b.Seasons) == 0 &&
		len(b.Locations) == 0 &&
		len(b.Diseases) == 0 &&
		!b.Climate.HasTemperature() &&
		!b.Climate.HasHumidity()
}
