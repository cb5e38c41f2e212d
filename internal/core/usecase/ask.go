package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
	"github.com/mahfuzr/krishi-assistant/internal/core/ports"
)

// Fixed user-visible strings of the answer contract.
const (
	apologyAnswer               = "মাফ করবেন, আমার কাছে সেই তথ্য নেই।"
	generationUnavailableAnswer = "দুঃখিত, এই মুহূর্তে উত্তরটি তৈরি করা যাচ্ছে না। কিছুক্ষণ পরে আবার চেষ্টা করুন।"
)

var graphAnswerSources = []string{"graph:Crop/Season/Location/Disease"}

// CropResolver resolves free query text to a crop.
type CropResolver interface {
	Resolve(ctx context.Context, queryText string) (domain.CropRef, error)
}

// FactProvider aggregates graph facts for a resolved crop.
type FactProvider interface {
	Aggregate(ctx context.Context, crop domain.CropRef) (domain.FactBundle, error)
	DiseaseFacts(ctx context.Context, crop domain.CropRef) ([]domain.DiseaseFact, error)
}

// PassageSearcher retrieves reranked passages for a query.
type PassageSearcher interface {
	Search(ctx context.Context, query string, k, fetchK int, filter domain.SearchFilter) ([]domain.ScoredChunk, error)
}

// AskUseCase is the routing state machine: graph-first with vector
// fallback. Every collaborator failure is caught at its stage boundary
// and degrades to the next stage; the only terminal "failure" a caller
// sees is the fixed apology when neither graph facts nor passages exist.
type AskUseCase struct {
	resolver  CropResolver
	facts     FactProvider
	searcher  PassageSearcher
	generator ports.AnswerGenerator
	language  string
}

func NewAskUseCase(
	resolver CropResolver,
	facts FactProvider,
	searcher PassageSearcher,
	generator ports.AnswerGenerator,
	language string,
) *AskUseCase {
	if language == "" {
		language = "bn"
	}
	return &AskUseCase{
		resolver:  resolver,
		facts:     facts,
		searcher:  searcher,
		generator: generator,
		language:  language,
	}
}

func (uc *AskUseCase) Answer(ctx context.Context, question string, k int) (domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return domain.Answer{}, domain.WrapError(domain.ErrInvalidInput, "answer question", errors.New("empty question"))
	}
	if k <= 0 {
		k = 5
	}

	intent := ClassifyIntent(question)

	crop, err := uc.resolver.Resolve(ctx, question)
	resolved := err == nil
	if err != nil && !domain.IsKind(err, domain.ErrCropNotFound) {
		slog.Warn("crop_resolution_unavailable", "error", err)
	}

	if resolved {
		if answer, ok := uc.graphAnswer(ctx, crop, intent); ok {
			return answer, nil
		}
	}

	return uc.vectorAnswer(ctx, question, intent, k)
}

func (uc *AskUseCase) graphAnswer(ctx context.Context, crop domain.CropRef, intent domain.Intent) (domain.Answer, bool) {
	if intent == domain.IntentDisease {
		diseases, err := uc.facts.DiseaseFacts(ctx, crop)
		if err != nil {
			slog.Warn("disease_facts_unavailable", "crop_id", crop.ID, "error", err)
		} else if bullets := renderDiseaseBullets(diseases); len(bullets) > 0 {
			return domain.Answer{
				Text:    joinBullets(bullets),
				Mode:    domain.ModeGraph,
				Sources: graphAnswerSources,
			}, true
		}
	}

	bundle, err := uc.facts.Aggregate(ctx, crop)
	if err != nil {
		slog.Warn("fact_aggregation_unavailable", "crop_id", crop.ID, "error", err)
		return domain.Answer{}, false
	}
	bullets := renderFactBullets(bundle)
	if len(bullets) == 0 {
		return domain.Answer{}, false
	}
	return domain.Answer{
		Text:    joinBullets(bullets),
		Mode:    domain.ModeGraph,
		Sources: graphAnswerSources,
	}, true
}

func (uc *AskUseCase) vectorAnswer(ctx context.Context, question string, intent domain.Intent, k int) (domain.Answer, error) {
	augmented := augmentQuery(question, intent)

	passages, err := uc.searcher.Search(ctx, augmented, k, defaultFetchK(k), domain.SearchFilter{Language: uc.language})
	if err != nil {
		slog.Warn("passage_search_unavailable", "error", err)
		passages = nil
	}
	if len(passages) == 0 {
		return domain.Answer{Text: apologyAnswer, Mode: domain.ModeVector}, nil
	}

	text, err := uc.generator.GenerateFromPassages(ctx, question, passages)
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			slog.Warn("answer_generation_unavailable", "error", err)
		}
		text = generationUnavailableAnswer
	}
	return domain.Answer{
		Text:    text,
		Mode:    domain.ModeVector,
		Sources: passageSources(passages),
	}, nil
}

func passageSources(passages []domain.ScoredChunk) []string {
	seen := make(map[string]struct{}, len(passages))
	out := make([]string, 0, len(passages))
	for _, p := range passages {
		if p.Source == "" {
			continue
		}
		if _, ok := seen[p.Source]; ok {
			continue
		}
		seen[p.Source] = struct{}{}
		out = append(out, p.Source)
	}
	return out
}
