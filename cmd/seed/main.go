package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/mahfuzr/krishi-assistant/internal/config"
	graphstore "github.com/mahfuzr/krishi-assistant/internal/infrastructure/graph/neo4j"
	"github.com/mahfuzr/krishi-assistant/internal/infrastructure/resilience"
	"github.com/mahfuzr/krishi-assistant/internal/observability/logging"
)

// seed loads the crop knowledge graph from a single workbook. Node
// sheets run before relationship sheets so the MATCH clauses find their
// endpoints; Diseases, CropDiseases and Aliases sheets are optional.
func main() {
	file := flag.String("file", "./data/graph_seed.xlsx", "path to the seed workbook")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config_load_failed", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.NewJSONLogger("seed", cfg.LogLevel))

	ctx := context.Background()
	if err := run(ctx, cfg, *file); err != nil {
		slog.Error("seed_failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, path string) error {
	store, err := graphstore.NewStore(graphstore.Config{
		URI:      cfg.Neo4jURI,
		User:     cfg.Neo4jUser,
		Password: cfg.Neo4jPassword,
		Database: cfg.Neo4jDatabase,
	}, resilience.NewExecutor(resilience.DefaultPolicy()))
	if err != nil {
		return fmt.Errorf("open neo4j: %w", err)
	}
	defer store.Close(ctx)

	if err := store.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("ensure graph schema: %w", err)
	}

	workbook, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	loaders := []struct {
		sheet    string
		required bool
		load     func(context.Context, *graphstore.Store, []sheetRow) (int, error)
	}{
		{"Crops", true, loadCrops},
		{"Locations", true, loadLocations},
		{"Seasons", true, loadSeasons},
		{"Diseases", false, loadDiseases},
		{"CropSeasons", true, loadCropSeasons},
		{"CropLocations", true, loadCropLocations},
		{"CropDiseases", false, loadCropDiseases},
		{"Aliases", false, loadAliases},
	}

	for _, loader := range loaders {
		rows, err := readSheet(workbook, loader.sheet)
		if err != nil {
			if loader.required {
				return fmt.Errorf("read sheet %s: %w", loader.sheet, err)
			}
			slog.Warn("sheet_skipped", "sheet", loader.sheet, "error", err)
			continue
		}
		count, err := loader.load(ctx, store, rows)
		if err != nil {
			return fmt.Errorf("load sheet %s: %w", loader.sheet, err)
		}
		slog.Info("sheet_loaded", "sheet", loader.sheet, "rows", count)
	}
	return nil
}

// sheetRow maps lowercased header names to trimmed cell values.
type sheetRow map[string]string

func readSheet(workbook *excelize.File, sheet string) ([]sheetRow, error) {
	raw, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	if len(raw) < 2 {
		return nil, nil
	}

	headers := make([]string, len(raw[0]))
	for i, h := range raw[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	rows := make([]sheetRow, 0, len(raw)-1)
	for _, cells := range raw[1:] {
		row := make(sheetRow, len(headers))
		empty := true
		for i, header := range headers {
			if header == "" || i >= len(cells) {
				continue
			}
			value := strings.TrimSpace(cells[i])
			if value != "" {
				empty = false
			}
			row[header] = value
		}
		if !empty {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func loadCrops(ctx context.Context, store *graphstore.Store, rows []sheetRow) (int, error) {
	for _, row := range rows {
		crop := graphstore.SeedCrop{
			ID:       row["id"],
			NameBN:   row["name_bn"],
			NameEN:   row["name_en"],
			Slug:     row["slug"],
			MinTempC: floatPtr(row["min_temp_c"]),
			MaxTempC: floatPtr(row["max_temp_c"]),
			MinRH:    floatPtr(row["min_rh"]),
			MaxRH:    floatPtr(row["max_rh"]),
		}
		if crop.ID == "" {
			continue
		}
		if crop.Slug == "" {
			crop.Slug = slugify(firstNonEmpty(crop.NameEN, crop.NameBN, crop.ID))
		}
		if err := store.MergeCrop(ctx, crop); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func loadLocations(ctx context.Context, store *graphstore.Store, rows []sheetRow) (int, error) {
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		err := store.MergeLocation(ctx, graphstore.SeedLocation{
			ID:     row["id"],
			NameBN: row["name_bn"],
			Level:  row["level"],
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func loadSeasons(ctx context.Context, store *graphstore.Store, rows []sheetRow) (int, error) {
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		if err := store.MergeSeason(ctx, graphstore.SeedSeason{ID: row["id"], NameBN: row["name_bn"]}); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func loadDiseases(ctx context.Context, store *graphstore.Store, rows []sheetRow) (int, error) {
	for _, row := range rows {
		if row["id"] == "" {
			continue
		}
		err := store.MergeDisease(ctx, graphstore.SeedDisease{
			ID:     row["id"],
			NameBN: row["name_bn"],
			NameEN: row["name_en"],
			Notes:  row["notes"],
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func loadCropSeasons(ctx context.Context, store *graphstore.Store, rows []sheetRow) (int, error) {
	for _, row := range rows {
		if row["crop_id"] == "" || row["season_id"] == "" {
			continue
		}
		err := store.MergeCropSeason(ctx, graphstore.SeedCropSeason{
			CropID:     row["crop_id"],
			SeasonID:   row["season_id"],
			Transplant: row["transplant"],
			Harvest:    row["harvest"],
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func loadCropLocations(ctx context.Context, store *graphstore.Store, rows []sheetRow) (int, error) {
	for _, row := range rows {
		if row["crop_id"] == "" || row["location_id"] == "" {
			continue
		}
		err := store.MergeCropLocation(ctx, graphstore.SeedCropLocation{
			CropID:      row["crop_id"],
			LocationID:  row["location_id"],
			Season:      row["season"],
			Transplant:  row["transplant"],
			Harvest:     row["harvest"],
			AvgTempC:    floatPtr(row["avg_temp_c"]),
			AvgHumidity: floatPtr(row["avg_humidity"]),
			Production:  intPtr(row["production"]),
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func loadCropDiseases(ctx context.Context, store *graphstore.Store, rows []sheetRow) (int, error) {
	for _, row := range rows {
		if row["crop_id"] == "" || row["disease_id"] == "" {
			continue
		}
		err := store.MergeCropDisease(ctx, graphstore.SeedCropDisease{
			CropID:    row["crop_id"],
			DiseaseID: row["disease_id"],
			Notes:     row["notes"],
		})
		if err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func loadAliases(ctx context.Context, store *graphstore.Store, rows []sheetRow) (int, error) {
	for _, row := range rows {
		if row["alias"] == "" || row["crop_id"] == "" {
			continue
		}
		if err := store.MergeAlias(ctx, row["alias"], row["crop_id"]); err != nil {
			return 0, err
		}
	}
	return len(rows), nil
}

func floatPtr(raw string) *float64 {
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &f
}

func intPtr(raw string) *int64 {
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func slugify(raw string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteRune('-')
			lastDash = true
		}
	}
	return strings.Trim(b.String(), "-")
}
