package usecase

import (
	"math"
	"strings"

	"github.com/mahfuzr/krishi-assistant/internal/core/domain"
)

const defaultMMRLambda = 0.7

// mmrRerank selects k candidates by maximal marginal relevance: greedy,
// seeded with the highest-similarity candidate, then repeatedly taking
// the candidate maximizing lambda*relevance - (1-lambda)*redundancy,
// where redundancy is the max token-set Jaccard overlap with anything
// already selected. When the candidate set is no bigger than k the input
// is returned unchanged. Ties go to the earliest candidate, so the
// output is deterministic for a fixed input order.
func mmrRerank(candidates []domain.ScoredChunk, k int, lambda float64) []domain.ScoredChunk {
	if k <= 0 || len(candidates) <= k {
		return candidates
	}

	tokens := make([]map[string]struct{}, len(candidates))
	for i := range candidates {
		tokens[i] = tokenSet(candidates[i].Text)
	}

	seed := 0
	for i := 1; i < len(candidates); i++ {
		if candidates[i].Score > candidates[seed].Score {
			seed = i
		}
	}

	selected := make([]int, 0, k)
	taken := make(map[int]struct{}, k)
	selected = append(selected, seed)
	taken[seed] = struct{}{}

	for len(selected) < k {
		bestIdx := -1
		bestScore := math.Inf(-1)
		for j := range candidates {
			if _, ok := taken[j]; ok {
				continue
			}
			redundancy := 0.0
			for _, si := range selected {
				if jac := jaccard(tokens[j], tokens[si]); jac > redundancy {
					redundancy = jac
				}
			}
			score := lambda*candidates[j].Score - (1-lambda)*redundancy
			if score > bestScore {
				bestScore = score
				bestIdx = j
			}
		}
		if bestIdx < 0 {
			break
		}
		selected = append(selected, bestIdx)
		taken[bestIdx] = struct{}{}
	}

	out := make([]domain.ScoredChunk, 0, len(selected))
	for _, idx := range selected {
		out = append(out, candidates[idx])
	}
	return out
}

// tokenSet splits on whitespace with set semantics; duplicate tokens
// collapse.
func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(s)
	out := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		out[f] = struct{}{}
	}
	return out
}

func jaccard(a, b map[string]struct{}) float64 {
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		union = 1
	}
	return float64(inter) / float64(union)
}
