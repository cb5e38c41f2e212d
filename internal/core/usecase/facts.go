package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
	"github.com/mahfuzr/krishi-assistant/internal/core/ports"
)

// locationFetchLimit caps the CULTIVATED_IN fan-out per crop. Rendering
// later shows at most shownLocationLimit of these.
const locationFetchLimit = 10

// FactAggregator collects season, location, climate and disease facts for
// a resolved crop. It is a pure read: missing categories are absent, not
// errors. Disease edges are optional in the graph; a failure there
// degrades to an empty disease list.
type FactAggregator struct {
	graph ports.GraphQuerier
}

func NewFactAggregator(graph ports.GraphQuerier) *FactAggregator {
	return &FactAggregator{graph: graph}
}

func (a *FactAggregator) Aggregate(ctx context.Context, crop domain.CropRef) (domain.FactBundle, error) {
	bundle := domain.FactBundle{Crop: crop}

	seasons, err := a.seasons(ctx, crop.ID)
	if err != nil {
		return bundle, fmt.Errorf("crop seasons: %w", err)
	}
	bundle.Seasons = seasons

	locations, err := a.locations(ctx, crop.ID, locationFetchLimit)
	if err != nil {
		return bundle, fmt.Errorf("crop locations: %w", err)
	}
	bundle.Locations = locations

	climate, err := a.climate(ctx, crop.ID)
	if err != nil {
		return bundle, fmt.Errorf("crop climate: %w", err)
	}
	bundle.Climate = climate

	bundle.Diseases = a.diseasesOrEmpty(ctx, crop.ID)
	return bundle, nil
}

// DiseaseFacts serves the disease-intent answer path on its own.
func (a *FactAggregator) DiseaseFacts(ctx context.Context, crop domain.CropRef) ([]domain.DiseaseFact, error) {
	const query = `MATCH (c:Crop {id: $id})-[r:SUFFER_FROM]->(d:Disease)
RETURN d.id AS disease_id, d.name_bn AS name_bn, d.name_en AS name_en,
       coalesce(r.notes, d.notes) AS notes
ORDER BY d.name_bn`
	rows, err := a.graph.ReadRecords(ctx, query, map[string]any{"id": crop.ID})
	if err != nil {
		return nil, fmt.Errorf("crop diseases: %w", err)
	}
	out := make([]domain.DiseaseFact, 0, len(rows))
	for _, rec := range rows {
		out = append(out, domain.DiseaseFact{
			DiseaseID: recordString(rec, "disease_id"),
			NameBN:    recordString(rec, "name_bn"),
			NameEN:    recordString(rec, "name_en"),
			Notes:     recordString(rec, "notes"),
		})
	}
	return out, nil
}

func (a *FactAggregator) seasons(ctx context.Context, cropID string) ([]domain.SeasonFact, error) {
	const query = `MATCH (c:Crop {id: $id})-[:SUITABLE_IN]->(s:Season)
RETURN s.id AS season_id, s.name_bn AS season_name
ORDER BY s.name_bn`
	rows, err := a.graph.ReadRecords(ctx, query, map[string]any{"id": cropID})
	if err != nil {
		return nil, err
	}
	out := make([]domain.SeasonFact, 0, len(rows))
	for _, rec := range rows {
		out = append(out, domain.SeasonFact{
			SeasonID: recordString(rec, "season_id"),
			Name:     recordString(rec, "season_name"),
		})
	}
	return out, nil
}

func (a *FactAggregator) locations(ctx context.Context, cropID string, limit int) ([]domain.LocationFact, error) {
	// Null production sorts last via the -1 sentinel.
	const query = `MATCH (c:Crop {id: $id})-[r:CULTIVATED_IN]->(l:Location)
RETURN l.id AS location_id, l.name_bn AS location_name,
       r.season AS season, r.transplant AS transplant, r.harvest AS harvest,
       r.avg_temp_c AS avg_temp_c, r.avg_humidity AS avg_humidity,
       r.production AS production
ORDER BY coalesce(r.production, -1) DESC
LIMIT $limit`
	rows, err := a.graph.ReadRecords(ctx, query, map[string]any{"id": cropID, "limit": limit})
	if err != nil {
		return nil, err
	}
	out := make([]domain.LocationFact, 0, len(rows))
	for _, rec := range rows {
		out = append(out, domain.LocationFact{
			LocationID:  recordString(rec, "location_id"),
			Name:        recordString(rec, "location_name"),
			Season:      recordString(rec, "season"),
			Transplant:  recordString(rec, "transplant"),
			Harvest:     recordString(rec, "harvest"),
			AvgTempC:    recordFloatPtr(rec, "avg_temp_c"),
			AvgHumidity: recordFloatPtr(rec, "avg_humidity"),
			Production:  recordIntPtr(rec, "production"),
		})
	}
	return out, nil
}

func (a *FactAggregator) climate(ctx context.Context, cropID string) (domain.ClimateEnvelope, error) {
	const query = `MATCH (c:Crop {id: $id})
RETURN c.min_temp_c AS min_temp_c, c.max_temp_c AS max_temp_c,
       c.min_rh AS min_rh, c.max_rh AS max_rh`
	rows, err := a.graph.ReadRecords(ctx, query, map[string]any{"id": cropID})
	if err != nil {
		return domain.ClimateEnvelope{}, err
	}
	if len(rows) == 0 {
		return domain.ClimateEnvelope{}, nil
	}
	rec := rows[0]
	return domain.ClimateEnvelope{
		MinTempC: recordFloatPtr(rec, "min_temp_c"),
		MaxTempC: recordFloatPtr(rec, "max_temp_c"),
		MinRH:    recordFloatPtr(rec, "min_rh"),
		MaxRH:    recordFloatPtr(rec, "max_rh"),
	}, nil
}

func (a *FactAggregator) diseasesOrEmpty(ctx context.Context, cropID string) []domain.DiseaseFact {
	diseases, err := a.DiseaseFacts(ctx, domain.CropRef{ID: cropID})
	if err != nil {
		slog.Debug("crop_disease_lookup_failed", "crop_id", cropID, "error", err)
		return nil
	}
	return diseases
}
