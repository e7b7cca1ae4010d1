package core

import "github.com/zfrkrc/pentaas-oneclick/models"

// SummarizeFindings counts findings per severity bucket. The returned slice
// always covers exactly Critical, High, Medium, Low and Info, in that order,
// including zero counts. A severity of exactly "Informational" counts as
// Info; any other unrecognized severity is excluded from the counts (the
// finding itself stays in the result's findings list for display). Pure and
// idempotent; input order does not affect the output.
func SummarizeFindings(findings []models.Finding) []models.SeverityCount {
	counts := make(map[string]int, len(models.SeverityOrder))
	for _, f := range findings {
		sev := f.Severity
		if sev == models.SeverityInformational {
			sev = models.SeverityInfo
		}
		if _, known := bucketSet[sev]; known {
			counts[sev]++
		}
	}

	out := make([]models.SeverityCount, 0, len(models.SeverityOrder))
	for _, sev := range models.SeverityOrder {
		out = append(out, models.SeverityCount{Severity: sev, Count: counts[sev]})
	}
	return out
}

var bucketSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(models.SeverityOrder))
	for _, sev := range models.SeverityOrder {
		set[sev] = struct{}{}
	}
	return set
}()
