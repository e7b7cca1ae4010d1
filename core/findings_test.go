package core

import (
	"reflect"
	"testing"

	"github.com/zfrkrc/pentaas-oneclick/models"
)

func TestSummarizeFindings(t *testing.T) {
	tests := []struct {
		name       string
		severities []string
		want       map[string]int
	}{
		{"empty list", nil, map[string]int{}},
		{"one per bucket", []string{"Critical", "High", "Medium", "Low", "Info"},
			map[string]int{"Critical": 1, "High": 1, "Medium": 1, "Low": 1, "Info": 1}},
		{"informational folds into info", []string{"Informational", "Info"},
			map[string]int{"Info": 2}},
		{"unrecognized severities are not counted", []string{"High", "FATAL", "unknown", ""},
			map[string]int{"High": 1}},
		{"repeat severities accumulate", []string{"Low", "Low", "Low"},
			map[string]int{"Low": 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			findings := make([]models.Finding, len(tt.severities))
			for i, sev := range tt.severities {
				findings[i] = models.Finding{ID: string(rune('a' + i)), Severity: sev}
			}
			counts := SummarizeFindings(findings)

			if len(counts) != 5 {
				t.Fatalf("SummarizeFindings() returned %d buckets, want exactly 5", len(counts))
			}
			for i, sc := range counts {
				if sc.Severity != models.SeverityOrder[i] {
					t.Errorf("bucket %d = %q, want %q", i, sc.Severity, models.SeverityOrder[i])
				}
				if sc.Count != tt.want[sc.Severity] {
					t.Errorf("count for %s = %d, want %d", sc.Severity, sc.Count, tt.want[sc.Severity])
				}
			}

			total := 0
			for _, sc := range counts {
				total += sc.Count
			}
			if total > len(findings) {
				t.Errorf("summary total %d exceeds findings count %d", total, len(findings))
			}
		})
	}
}

func TestSummarizeFindingsOrderIndependent(t *testing.T) {
	findings := []models.Finding{
		{ID: "1", Severity: "High"},
		{ID: "2", Severity: "Low"},
		{ID: "3", Severity: "Informational"},
		{ID: "4", Severity: "bogus"},
		{ID: "5", Severity: "Critical"},
	}
	reversed := make([]models.Finding, len(findings))
	for i := range findings {
		reversed[len(findings)-1-i] = findings[i]
	}

	a := SummarizeFindings(findings)
	b := SummarizeFindings(reversed)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("permuted input changed counts: %v vs %v", a, b)
	}

	// Idempotence: summarizing the same list again yields identical counts.
	c := SummarizeFindings(findings)
	if !reflect.DeepEqual(a, c) {
		t.Errorf("re-summarizing changed counts: %v vs %v", a, c)
	}
}
