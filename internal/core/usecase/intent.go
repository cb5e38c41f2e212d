package usecase

import (
	"strings"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
)

// intentKeywords is evaluated in order, first match wins. The order is
// part of the routing contract: a question mentioning both a disease and
// a season classifies as disease.
var intentKeywords = []struct {
	intent   domain.Intent
	keywords []string
}{
	{domain.IntentDisease, []string{"রোগ", "পোকা", "কীট", "disease", "pest", "blight", "blast", "bacterial", "fungal"}},
	{domain.IntentClimate, []string{"জলবায়ু", "তাপমাত্রা", "আর্দ্রতা", "climate", "temperature", "humidity"}},
	{domain.IntentSeason, []string{"মৌসুম", "রোপণ", "রোপন", "কাটা", "transplant", "harvest", "season"}},
	{domain.IntentFertilizer, []string{"সার", "fertilizer", "npk", "ডোজ", "মাত্রা"}},
}

// intentAugments appends bilingual retrieval hints to the vector fallback
// query per intent.
var intentAugments = map[domain.Intent]string{
	domain.IntentDisease:    "রোগ পোকা কীট disease pest",
	domain.IntentClimate:    "জলবায়ু তাপমাত্রা আর্দ্রতা climate temperature humidity",
	domain.IntentSeason:     "মৌসুম season transplant harvest কাটা রোপণ",
	domain.IntentFertilizer: "সার fertilizer NPK ডোজ মাত্রা",
}

// ClassifyIntent maps a question to one of the five intents by
// case-insensitive substring containment. Total: unmatched input yields
// IntentNone.
func ClassifyIntent(question string) domain.Intent {
	q := strings.ToLower(question)
	for _, set := range intentKeywords {
		for _, kw := range set.keywords {
			if strings.Contains(q, kw) {
				return set.intent
			}
		}
	}
	return domain.IntentNone
}

func augmentQuery(question string, intent domain.Intent) string {
	aug, ok := intentAugments[intent]
	if !ok {
		return strings.TrimSpace(question)
	}
	return strings.TrimSpace(question + " " + aug)
}
