package usecase

import (
	"context"
	"fmt"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
	"github.com/mahfuzr/krishi-assistant/internal/core/ports"
)

// SimilaritySearcher embeds a query, over-fetches nearest neighbors from
// the passage store, and reduces them to the top k with diversity-aware
// reranking.
type SimilaritySearcher struct {
	embedder ports.Embedder
	passages ports.PassageStore
	useMMR   bool
	lambda   float64
}

func NewSimilaritySearcher(embedder ports.Embedder, passages ports.PassageStore) *SimilaritySearcher {
	return &SimilaritySearcher{
		embedder: embedder,
		passages: passages,
		useMMR:   true,
		lambda:   defaultMMRLambda,
	}
}

// WithMMR toggles diversity reranking; lambda outside [0,1] keeps the
// current value.
func (s *SimilaritySearcher) WithMMR(enabled bool, lambda float64) *SimilaritySearcher {
	s.useMMR = enabled
	if lambda >= 0 && lambda <= 1 {
		s.lambda = lambda
	}
	return s
}

// defaultFetchK is the over-fetch width feeding the reranker.
func defaultFetchK(k int) int {
	if fetch := 8 * k; fetch > 32 {
		return fetch
	}
	return 32
}

func (s *SimilaritySearcher) Search(ctx context.Context, query string, k, fetchK int, filter domain.SearchFilter) ([]domain.ScoredChunk, error) {
	if k <= 0 {
		k = 5
	}
	if fetchK < k {
		fetchK = defaultFetchK(k)
	}

	queryVector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := s.passages.Search(ctx, queryVector, fetchK, filter)
	if err != nil {
		return nil, fmt.Errorf("passage search: %w", err)
	}

	if !s.useMMR {
		if len(candidates) > k {
			candidates = candidates[:k]
		}
		return candidates, nil
	}
	return mmrRerank(candidates, k, s.lambda), nil
}
