package orchestrator

import "memnon/internal/domain"

// Dedup keeps, for each candidate id, the highest-scoring copy — this
// corrects memnon.py's query_memory, which keeps the first-seen copy
// regardless of score (DESIGN.md resolution #6). Input order is not
// preserved; callers sort afterward.
func Dedup(candidates []domain.Candidate) []domain.Candidate {
	best := make(map[string]domain.Candidate, len(candidates))
	for _, c := range candidates {
		existing, ok := best[c.ID]
		if !ok || c.Score > existing.Score {
			best[c.ID] = c
		}
	}

	out := make([]domain.Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	return out
}
