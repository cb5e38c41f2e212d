package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
)

func factsGraphFake(diseaseErr error) *graphFake {
	return &graphFake{fn: func(query string, params map[string]any) ([]map[string]any, error) {
		switch {
		case strings.Contains(query, "SUITABLE_IN"):
			return []map[string]any{
				{"season_id": "s_kharif1", "season_name": "Kharif 1"},
			}, nil
		case strings.Contains(query, "CULTIVATED_IN"):
			return []map[string]any{
				{
					"location_id":   "loc_dinajpur",
					"location_name": "দিনাজপুর",
					"season":        "Aman",
					"production":    int64(120000),
					"avg_temp_c":    27.5,
				},
				{
					"location_id":   "loc_rangpur",
					"location_name": "রংপুর",
					"season":        "Aman",
					"production":    nil,
				},
			}, nil
		case strings.Contains(query, "min_temp_c"):
			return []map[string]any{
				{"min_temp_c": 20.0, "max_temp_c": int64(35), "min_rh": nil, "max_rh": nil},
			}, nil
		case strings.Contains(query, "SUFFER_FROM"):
			if diseaseErr != nil {
				return nil, diseaseErr
			}
			return []map[string]any{
				{"disease_id": "d_blast", "name_bn": "ব্লাস্ট", "name_en": "Blast", "notes": nil},
			}, nil
		}
		return nil, nil
	}}
}

func TestAggregateMapsAllCategories(t *testing.T) {
	agg := NewFactAggregator(factsGraphFake(nil))
	bundle, err := agg.Aggregate(context.Background(), domain.CropRef{ID: "crop_aman"})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(bundle.Seasons) != 1 || bundle.Seasons[0].Name != "Kharif 1" {
		t.Fatalf("unexpected seasons: %+v", bundle.Seasons)
	}
	if len(bundle.Locations) != 2 {
		t.Fatalf("expected 2 locations, got %d", len(bundle.Locations))
	}
	if bundle.Locations[0].Production == nil || *bundle.Locations[0].Production != 120000 {
		t.Fatalf("expected production coercion from int64, got %+v", bundle.Locations[0].Production)
	}
	if bundle.Locations[1].Production != nil {
		t.Fatalf("expected nil production to stay nil")
	}
	if bundle.Climate.MinTempC == nil || *bundle.Climate.MinTempC != 20 {
		t.Fatalf("unexpected min temp: %+v", bundle.Climate.MinTempC)
	}
	if bundle.Climate.MaxTempC == nil || *bundle.Climate.MaxTempC != 35 {
		t.Fatalf("expected int64 graph value coerced to float bound")
	}
	if bundle.Climate.HasHumidity() {
		t.Fatalf("expected absent humidity bounds")
	}
	if len(bundle.Diseases) != 1 || bundle.Diseases[0].NameBN != "ব্লাস্ট" {
		t.Fatalf("unexpected diseases: %+v", bundle.Diseases)
	}
}

func TestAggregateToleratesDiseaseStoreFailure(t *testing.T) {
	agg := NewFactAggregator(factsGraphFake(errors.New("no disease edges loaded")))
	bundle, err := agg.Aggregate(context.Background(), domain.CropRef{ID: "crop_aman"})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(bundle.Diseases) != 0 {
		t.Fatalf("expected empty diseases on store failure, got %+v", bundle.Diseases)
	}
	if len(bundle.Seasons) != 1 {
		t.Fatalf("expected other categories unaffected")
	}
}

func TestAggregatePropagatesSeasonQueryFailure(t *testing.T) {
	graph := &graphFake{fn: func(query string, _ map[string]any) ([]map[string]any, error) {
		if strings.Contains(query, "SUITABLE_IN") {
			return nil, errors.New("bolt connection refused")
		}
		return nil, nil
	}}
	_, err := NewFactAggregator(graph).Aggregate(context.Background(), domain.CropRef{ID: "crop_aman"})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestAggregateEmptyGraphYieldsEmptyBundle(t *testing.T) {
	agg := NewFactAggregator(&graphFake{})
	bundle, err := agg.Aggregate(context.Background(), domain.CropRef{ID: "crop_unknown"})
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if !bundle.Empty() {
		t.Fatalf("expected empty bundle, got %+v", bundle)
	}
	if len(renderFactBullets(bundle)) != 0 {
		t.Fatalf("expected no bullets for empty bundle")
	}
}
