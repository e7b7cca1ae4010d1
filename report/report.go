// Package report turns a completed scan result into a portable CSV-style
// table and writes it under a deterministic file name.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zfrkrc/pentaas-oneclick/models"
)

const titleLine = "PENTAAS ONECLICK - SCAN REPORT"

// Build renders the report table. Sections, in order: title; SCAN INFO;
// SUMMARY (one row per severity in the fixed five-severity order, zeros
// included); DETAILED FINDINGS (header row plus one row per finding).
// Newlines inside descriptions are collapsed to spaces and literal commas
// become semicolons so the comma row delimiter stays unambiguous.
func Build(result *models.ScanResult) string {
	rows := []string{
		titleLine,
		"",
		"SCAN INFO",
		"Target," + sanitizeCell(result.Target),
		"Mode," + string(result.Mode),
		"Time," + result.CompletedAt.Format("2006-01-02 15:04:05"),
		fmt.Sprintf("Total Findings,%d", len(result.Findings)),
		"",
		"SUMMARY",
	}
	for _, sc := range result.SeverityCounts {
		rows = append(rows, fmt.Sprintf("%s,%d", sc.Severity, sc.Count))
	}

	rows = append(rows, "", "DETAILED FINDINGS", "ID,Title,Severity,Description")
	for _, f := range result.Findings {
		rows = append(rows, strings.Join([]string{
			sanitizeCell(f.ID),
			sanitizeCell(f.Title),
			sanitizeCell(f.Severity),
			sanitizeCell(f.Description),
		}, ","))
	}

	return strings.Join(rows, "\n") + "\n"
}

// FileName derives the deterministic report file name from the sanitized
// target and the scan mode.
func FileName(target string, mode models.ScanMode) string {
	return fmt.Sprintf("report_%s_%s.csv", sanitizeTarget(target), mode)
}

// Write renders the report and writes it into dir, creating dir as needed.
// It returns the full path of the written file.
func Write(result *models.ScanResult, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", fmt.Errorf("failed to create report directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, FileName(result.Target, result.Mode))
	if err := os.WriteFile(path, []byte(Build(result)), 0640); err != nil {
		return "", fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return path, nil
}

// sanitizeCell makes a value safe for one table cell.
func sanitizeCell(s string) string {
	s = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
	return strings.ReplaceAll(s, ",", ";")
}

// sanitizeTarget replaces every non-alphanumeric character so the target can
// appear in a file name.
func sanitizeTarget(target string) string {
	var b strings.Builder
	for _, r := range target {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "scan"
	}
	return b.String()
}
