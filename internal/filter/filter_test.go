package filter

import (
	"testing"

	"jobwatch/internal/domain"
)

func rec(title string, extra map[string]string) domain.JobRecord {
	return domain.JobRecord{ID: title, Title: title, Extra: extra}
}

func TestByKeywords(t *testing.T) {
	records := []domain.JobRecord{
		rec("Senior Data Engineer", nil),
		rec("Graphic Designer", nil),
		rec("Annotator", map[string]string{"pay": "$40/hr engineering review"}),
	}

	tests := []struct {
		name     string
		keywords []string
		want     int
	}{
		{"empty keywords keep everything", nil, 3},
		{"title match case-insensitive", []string{"ENGINEER"}, 2},
		{"extra text matches too", []string{"engineering"}, 1},
		{"no matches", []string{"rust"}, 0},
		{"blank keywords keep everything", []string{"  ", ""}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ByKeywords(records, tt.keywords)
			if len(got) != tt.want {
				t.Errorf("ByKeywords() kept %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestByKeywordsPreservesOrder(t *testing.T) {
	records := []domain.JobRecord{
		rec("Go Engineer", nil),
		rec("Chef", nil),
		rec("Engineer II", nil),
	}
	got := ByKeywords(records, []string{"engineer"})
	if len(got) != 2 || got[0].Title != "Go Engineer" || got[1].Title != "Engineer II" {
		t.Errorf("ByKeywords() order broken: %v", got)
	}
}
