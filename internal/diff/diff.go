// Package diff computes the "new jobs" subset of a parsed run against the
// persisted seen set.
package diff

import "jobwatch/internal/domain"

// New returns the records from current whose ID is not in seen, in the
// order the parser produced them. The source page sometimes lists the same
// job twice, so duplicate ids within current collapse to their first
// occurrence. seen is never mutated; the orchestrator performs the union
// after a successful notification.
func New(current []domain.JobRecord, seen domain.SeenSet) []domain.JobRecord {
	out := make([]domain.JobRecord, 0, len(current))
	inRun := make(map[string]bool, len(current))

	for _, rec := range current {
		if rec.ID == "" {
			continue
		}
		if inRun[rec.ID] {
			continue
		}
		inRun[rec.ID] = true

		if seen.Has(rec.ID) {
			continue
		}
		out = append(out, rec)
	}
	return out
}
