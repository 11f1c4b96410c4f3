package filter

import (
	"strings"

	"jobwatch/internal/domain"
)

// ByKeywords keeps records whose title or extra text contains any of the
// keywords, case-insensitive. An empty (or all-blank) keyword list keeps
// everything. Dropped records are not marked seen, so loosening the
// keywords later can still surface them.
func ByKeywords(records []domain.JobRecord, keywords []string) []domain.JobRecord {
	var needles []string
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			needles = append(needles, kw)
		}
	}
	if len(needles) == 0 {
		return records
	}

	out := make([]domain.JobRecord, 0, len(records))
	for _, rec := range records {
		if matchesAny(rec, needles) {
			out = append(out, rec)
		}
	}
	return out
}

func matchesAny(rec domain.JobRecord, needles []string) bool {
	var b strings.Builder
	b.WriteString(rec.Title)
	for _, v := range rec.Extra {
		b.WriteString(" ")
		b.WriteString(v)
	}
	text := strings.ToLower(b.String())

	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}
