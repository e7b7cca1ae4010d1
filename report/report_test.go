package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zfrkrc/pentaas-oneclick/models"
)

func sampleResult(findings []models.Finding) *models.ScanResult {
	counts := []models.SeverityCount{
		{Severity: "Critical", Count: 0},
		{Severity: "High", Count: 1},
		{Severity: "Medium", Count: 0},
		{Severity: "Low", Count: 2},
		{Severity: "Info", Count: 0},
	}
	return &models.ScanResult{
		Target:         "10.0.0.5",
		Mode:           models.ModeBlack,
		SeverityCounts: counts,
		Findings:       findings,
		CompletedAt:    time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC),
	}
}

func TestBuildSectionShape(t *testing.T) {
	findings := []models.Finding{
		{ID: "f1", Title: "XSS", Severity: "High", Description: "reflected"},
		{ID: "f2", Title: "Open Port: 80 (http)", Severity: "Low", Description: "Port 80 is open."},
		{ID: "f3", Title: "Open Port: 443 (https)", Severity: "Low", Description: "Port 443 is open."},
	}
	table := Build(sampleResult(findings))
	lines := strings.Split(strings.TrimRight(table, "\n"), "\n")

	if lines[0] != "PENTAAS ONECLICK - SCAN REPORT" {
		t.Errorf("title line = %q", lines[0])
	}

	// Section order: title, blank, SCAN INFO, blank, SUMMARY, blank,
	// DETAILED FINDINGS.
	var sections []string
	for _, line := range lines {
		switch line {
		case "SCAN INFO", "SUMMARY", "DETAILED FINDINGS":
			sections = append(sections, line)
		}
	}
	want := []string{"SCAN INFO", "SUMMARY", "DETAILED FINDINGS"}
	if strings.Join(sections, "|") != strings.Join(want, "|") {
		t.Errorf("sections = %v, want %v", sections, want)
	}

	// Exactly 5 summary rows, even when counts are zero.
	summaryStart := indexOf(lines, "SUMMARY")
	summaryRows := 0
	for _, line := range lines[summaryStart+1:] {
		if line == "" {
			break
		}
		summaryRows++
	}
	if summaryRows != 5 {
		t.Errorf("summary rows = %d, want 5", summaryRows)
	}

	// Exactly N finding rows after the header.
	headerIdx := indexOf(lines, "ID,Title,Severity,Description")
	if headerIdx < 0 {
		t.Fatal("detailed findings header row missing")
	}
	if got := len(lines) - headerIdx - 1; got != len(findings) {
		t.Errorf("finding rows = %d, want %d", got, len(findings))
	}

	if !strings.Contains(table, "Total Findings,3") {
		t.Errorf("scan info missing total findings row:\n%s", table)
	}
}

func TestBuildSanitizesCells(t *testing.T) {
	findings := []models.Finding{
		{ID: "f1", Title: "Hidden Parameters", Severity: "Medium",
			Description: "Params: debug, admin\nSource: arjun"},
	}
	table := Build(sampleResult(findings))

	if strings.Contains(table, "debug, admin") {
		t.Error("literal comma survived in a description cell")
	}
	if !strings.Contains(table, "f1,Hidden Parameters,Medium,Params: debug; admin Source: arjun") {
		t.Errorf("sanitized finding row missing:\n%s", table)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		target string
		mode   models.ScanMode
		want   string
	}{
		{"10.0.0.5", models.ModeBlack, "report_10_0_0_5_black.csv"},
		{"example.com", models.ModeWhite, "report_example_com_white.csv"},
		{"https://a.b/c?d=1", models.ModeGray, "report_https___a_b_c_d_1_gray.csv"},
		{"", models.ModeWhite, "report_scan_white.csv"},
	}
	for _, tt := range tests {
		if got := FileName(tt.target, tt.mode); got != tt.want {
			t.Errorf("FileName(%q, %s) = %q, want %q", tt.target, tt.mode, got, tt.want)
		}
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	result := sampleResult([]models.Finding{{ID: "f1", Title: "XSS", Severity: "High"}})

	path, err := Write(result, filepath.Join(dir, "reports"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading written report: %v", err)
	}
	if string(data) != Build(result) {
		t.Error("written report differs from Build output")
	}
	if filepath.Base(path) != "report_10_0_0_5_black.csv" {
		t.Errorf("file name = %s", filepath.Base(path))
	}
}

func indexOf(lines []string, want string) int {
	for i, line := range lines {
		if line == want {
			return i
		}
	}
	return -1
}
