package core

import (
	"fmt"
	"strings"

	"github.com/zfrkrc/pentaas-oneclick/models"
)

const summaryMaxLen = 200

// RiskSummary builds a one-line digest of a finished scan: notable counts
// plus an overall risk word derived from the worst severity present.
func RiskSummary(result *models.ScanResult) string {
	if result == nil {
		return ""
	}

	var parts []string
	openPorts := 0
	for _, f := range result.Findings {
		if strings.HasPrefix(f.Title, "Open Port") {
			openPorts++
		}
	}
	if openPorts > 0 {
		parts = append(parts, fmt.Sprintf("%d open ports found.", openPorts))
	}

	counts := make(map[string]int, len(result.SeverityCounts))
	for _, sc := range result.SeverityCounts {
		counts[sc.Severity] = sc.Count
	}
	if high := counts[models.SeverityCritical] + counts[models.SeverityHigh]; high > 0 {
		parts = append(parts, fmt.Sprintf("%d high-risk findings reported.", high))
	}

	risk := "LOW"
	switch {
	case counts[models.SeverityCritical] > 0 || counts[models.SeverityHigh] > 0:
		risk = "HIGH"
	case counts[models.SeverityMedium] > 0:
		risk = "MEDIUM"
	}

	line := strings.Join(parts, " ")
	if len(line) > summaryMaxLen {
		line = line[:summaryMaxLen-1] + "…"
	}
	if line != "" {
		line += " "
	}
	return line + "Risk: " + risk
}
