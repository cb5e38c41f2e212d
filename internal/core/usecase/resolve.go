package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
	"github.com/mahfuzr/krishi-assistant/internal/core/ports"
)

// Resolver maps free query text to a single crop through an ordered list
// of matching tiers. Cheaper, more exact tiers run first and the first
// hit wins; there is no score merging across tiers. A store failure
// inside one tier counts as a miss for that tier only.
type Resolver struct {
	graph ports.GraphQuerier
}

func NewResolver(graph ports.GraphQuerier) *Resolver {
	return &Resolver{graph: graph}
}

type resolveTier struct {
	name string
	fn   func(ctx context.Context, q string) (domain.CropRef, bool)
}

// manualAliases maps known Bangla season/variety tokens to the canonical
// English search term used for a last-chance substring retry. Kept as an
// ordered slice so retries are deterministic.
var manualAliases = []struct {
	token  string
	target string
}{
	{"আমন", "Aman"},
	{"আউশ", "Aus Rice"},
	{"বোরো", "Boro"},
}

func (r *Resolver) Resolve(ctx context.Context, queryText string) (domain.CropRef, error) {
	q := normalizeQuery(queryText)
	if q == "" {
		return domain.CropRef{}, domain.ErrCropNotFound
	}

	tiers := []resolveTier{
		{"exact", r.exactMatch},
		{"alias", r.aliasMatch},
		{"fulltext", r.fulltextMatch},
		{"contains", r.containsMatch},
		{"manual_alias", r.manualAliasMatch},
	}
	for _, tier := range tiers {
		if ref, ok := tier.fn(ctx, q); ok {
			slog.Debug("crop_resolved", "tier", tier.name, "crop_id", ref.ID)
			return ref, nil
		}
	}
	return domain.CropRef{}, domain.ErrCropNotFound
}

const cropReturnClause = `RETURN c.id AS id, c.name_bn AS name_bn, c.name_en AS name_en, c.slug AS slug
LIMIT 1`

func (r *Resolver) exactMatch(ctx context.Context, q string) (domain.CropRef, bool) {
	const query = `MATCH (c:Crop)
WHERE toLower(coalesce(c.id, '')) = toLower($q)
   OR toLower(coalesce(c.name_bn, '')) = toLower($q)
   OR toLower(coalesce(c.name_en, '')) = toLower($q)
   OR (c.slug IS NOT NULL AND toLower(c.slug) = toLower($q))
` + cropReturnClause
	return r.firstCrop(ctx, "exact", query, q)
}

func (r *Resolver) aliasMatch(ctx context.Context, q string) (domain.CropRef, bool) {
	const query = `MATCH (a:Alias)-[:ALIAS_OF]->(c:Crop)
WHERE toLower(coalesce(a.name, '')) = toLower($q)
` + cropReturnClause
	return r.firstCrop(ctx, "alias", query, q)
}

func (r *Resolver) fulltextMatch(ctx context.Context, q string) (domain.CropRef, bool) {
	const query = `CALL db.index.fulltext.queryNodes('cropFulltext', $q) YIELD node AS c, score
RETURN c.id AS id, c.name_bn AS name_bn, c.name_en AS name_en, c.slug AS slug
ORDER BY score DESC
LIMIT 1`
	return r.firstCrop(ctx, "fulltext", query, q)
}

func (r *Resolver) containsMatch(ctx context.Context, q string) (domain.CropRef, bool) {
	const query = `MATCH (c:Crop)
WHERE toLower(coalesce(c.name_bn, '')) CONTAINS toLower($q)
   OR toLower(coalesce(c.name_en, '')) CONTAINS toLower($q)
   OR (c.slug IS NOT NULL AND toLower(c.slug) CONTAINS toLower($q))
` + cropReturnClause
	return r.firstCrop(ctx, "contains", query, q)
}

func (r *Resolver) manualAliasMatch(ctx context.Context, q string) (domain.CropRef, bool) {
	for _, alias := range manualAliases {
		if !strings.Contains(q, normalizeQuery(alias.token)) {
			continue
		}
		if ref, ok := r.containsMatch(ctx, alias.target); ok {
			return ref, true
		}
	}
	return domain.CropRef{}, false
}

func (r *Resolver) firstCrop(ctx context.Context, tier, query, q string) (domain.CropRef, bool) {
	rows, err := r.graph.ReadRecords(ctx, query, map[string]any{"q": q})
	if err != nil {
		slog.Warn("crop_resolution_tier_failed", "tier", tier, "error", err)
		return domain.CropRef{}, false
	}
	if len(rows) == 0 {
		return domain.CropRef{}, false
	}
	rec := rows[0]
	ref := domain.CropRef{
		ID:     recordString(rec, "id"),
		NameBN: recordString(rec, "name_bn"),
		NameEN: recordString(rec, "name_en"),
		Slug:   recordString(rec, "slug"),
	}
	if ref.ID == "" {
		return domain.CropRef{}, false
	}
	return ref, true
}
