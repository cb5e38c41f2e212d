package neo4j

import (
	"context"
	"fmt"
)

// Schema statements mirror what the retrieval queries depend on: id
// uniqueness per label and the cropFulltext index backing tier-3
// resolution.
var schemaStatements = []string{
	`CREATE CONSTRAINT crop_id_unique IF NOT EXISTS FOR (c:Crop) REQUIRE c.id IS UNIQUE`,
	`CREATE CONSTRAINT location_id_unique IF NOT EXISTS FOR (l:Location) REQUIRE l.id IS UNIQUE`,
	`CREATE CONSTRAINT season_id_unique IF NOT EXISTS FOR (s:Season) REQUIRE s.id IS UNIQUE`,
	`CREATE CONSTRAINT disease_id_unique IF NOT EXISTS FOR (d:Disease) REQUIRE d.id IS UNIQUE`,
	`CREATE CONSTRAINT alias_name_unique IF NOT EXISTS FOR (a:Alias) REQUIRE a.name IS UNIQUE`,
	`CREATE FULLTEXT INDEX cropFulltext IF NOT EXISTS FOR (c:Crop) ON EACH [c.name_bn, c.name_en, c.slug]`,
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if err := s.WriteRecords(ctx, stmt, nil); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	return nil
}

// SeedCrop is one row of the crop sheet; zero-valued optional fields are
// written as Cypher nulls through the pointer types.
type SeedCrop struct {
	ID       string
	NameBN   string
	NameEN   string
	Slug     string
	MinTempC *float64
	MaxTempC *float64
	MinRH    *float64
	MaxRH    *float64
}

type SeedLocation struct {
	ID     string
	NameBN string
	Level  string
}

type SeedSeason struct {
	ID     string
	NameBN string
}

type SeedDisease struct {
	ID     string
	NameBN string
	NameEN string
	Notes  string
}

type SeedCropSeason struct {
	CropID     string
	SeasonID   string
	Transplant string
	Harvest    string
}

type SeedCropLocation struct {
	CropID      string
	LocationID  string
	Season      string
	Transplant  string
	Harvest     string
	AvgTempC    *float64
	AvgHumidity *float64
	Production  *int64
}

type SeedCropDisease struct {
	CropID    string
	DiseaseID string
	Notes     string
}

func (s *Store) MergeCrop(ctx context.Context, crop SeedCrop) error {
	return s.WriteRecords(ctx, `
		MERGE (c:Crop {id:$id})
		SET c.name_bn    = $name_bn,
		    c.name_en    = $name_en,
		    c.slug       = $slug,
		    c.min_temp_c = $min_temp_c,
		    c.max_temp_c = $max_temp_c,
		    c.min_rh     = $min_rh,
		    c.max_rh     = $max_rh`,
		map[string]any{
			"id":         crop.ID,
			"name_bn":    emptyToNil(crop.NameBN),
			"name_en":    emptyToNil(crop.NameEN),
			"slug":       emptyToNil(crop.Slug),
			"min_temp_c": floatOrNil(crop.MinTempC),
			"max_temp_c": floatOrNil(crop.MaxTempC),
			"min_rh":     floatOrNil(crop.MinRH),
			"max_rh":     floatOrNil(crop.MaxRH),
		})
}

func (s *Store) MergeLocation(ctx context.Context, loc SeedLocation) error {
	return s.WriteRecords(ctx, `
		MERGE (l:Location {id:$id})
		SET l.name_bn = $name_bn,
		    l.level   = $level`,
		map[string]any{
			"id":      loc.ID,
			"name_bn": emptyToNil(loc.NameBN),
			"level":   emptyToNil(loc.Level),
		})
}

func (s *Store) MergeSeason(ctx context.Context, season SeedSeason) error {
	return s.WriteRecords(ctx, `
		MERGE (s:Season {id:$id})
		SET s.name_bn = $name_bn`,
		map[string]any{
			"id":      season.ID,
			"name_bn": emptyToNil(season.NameBN),
		})
}

func (s *Store) MergeDisease(ctx context.Context, disease SeedDisease) error {
	return s.WriteRecords(ctx, `
		MERGE (d:Disease {id:$id})
		SET d.name_bn = $name_bn,
		    d.name_en = $name_en,
		    d.notes   = $notes`,
		map[string]any{
			"id":      disease.ID,
			"name_bn": emptyToNil(disease.NameBN),
			"name_en": emptyToNil(disease.NameEN),
			"notes":   emptyToNil(disease.Notes),
		})
}

func (s *Store) MergeCropSeason(ctx context.Context, rel SeedCropSeason) error {
	return s.WriteRecords(ctx, `
		MATCH (c:Crop {id:$crop_id}), (s:Season {id:$season_id})
		MERGE (c)-[r:SUITABLE_IN]->(s)
		SET r.transplant = $transplant,
		    r.harvest    = $harvest`,
		map[string]any{
			"crop_id":    rel.CropID,
			"season_id":  rel.SeasonID,
			"transplant": emptyToNil(rel.Transplant),
			"harvest":    emptyToNil(rel.Harvest),
		})
}

func (s *Store) MergeCropLocation(ctx context.Context, rel SeedCropLocation) error {
	return s.WriteRecords(ctx, `
		MATCH (c:Crop {id:$crop_id}), (l:Location {id:$location_id})
		MERGE (c)-[r:CULTIVATED_IN]->(l)
		SET r.season       = $season,
		    r.transplant   = $transplant,
		    r.harvest      = $harvest,
		    r.avg_temp_c   = $avg_temp_c,
		    r.avg_humidity = $avg_humidity,
		    r.production   = $production`,
		map[string]any{
			"crop_id":      rel.CropID,
			"location_id":  rel.LocationID,
			"season":       emptyToNil(rel.Season),
			"transplant":   emptyToNil(rel.Transplant),
			"harvest":      emptyToNil(rel.Harvest),
			"avg_temp_c":   floatOrNil(rel.AvgTempC),
			"avg_humidity": floatOrNil(rel.AvgHumidity),
			"production":   intOrNil(rel.Production),
		})
}

func (s *Store) MergeCropDisease(ctx context.Context, rel SeedCropDisease) error {
	return s.WriteRecords(ctx, `
		MATCH (c:Crop {id:$crop_id})
		MATCH (d:Disease {id:$disease_id})
		MERGE (c)-[r:SUFFER_FROM]->(d)
		SET r.notes = $notes`,
		map[string]any{
			"crop_id":    rel.CropID,
			"disease_id": rel.DiseaseID,
			"notes":      emptyToNil(rel.Notes),
		})
}

// MergeAlias links a colloquial crop alias to its crop for tier-2
// resolution.
func (s *Store) MergeAlias(ctx context.Context, alias, cropID string) error {
	return s.WriteRecords(ctx, `
		MATCH (c:Crop {id:$crop_id})
		MERGE (a:Alias {name:$alias})
		MERGE (a)-[:ALIAS_OF]->(c)`,
		map[string]any{
			"alias":   alias,
			"crop_id": cropID,
		})
}

func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func floatOrNil(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func intOrNil(i *int64) any {
	if i == nil {
		return nil
	}
	return *i
}
