package history

import "context"

// Stats summarizes the history list. The list is bounded and small, so
// aggregates are computed on read rather than maintained incrementally.
type Stats struct {
	Total          int
	Completed      int
	CompletionRate float64 // 0.0–1.0
	AverageScore   float64 // over completed records with a score
}

// Stats derives aggregate statistics from the full record list.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	records, err := s.List(ctx)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	stats.Total = len(records)

	scoreSum, scored := 0, 0
	for _, rec := range records {
		if rec.Status != StatusCompleted {
			continue
		}
		stats.Completed++
		if rec.Score != nil {
			scoreSum += *rec.Score
			scored++
		}
	}

	if stats.Total > 0 {
		stats.CompletionRate = float64(stats.Completed) / float64(stats.Total)
	}
	if scored > 0 {
		stats.AverageScore = float64(scoreSum) / float64(scored)
	}
	return stats, nil
}
