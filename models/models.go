package models

import (
	"fmt"
	"time"
)

// ScanMode selects the backend scan profile for a target.
type ScanMode string

const (
	ModeWhite ScanMode = "white" // passive profile
	ModeGray  ScanMode = "gray"  // active profile
	ModeBlack ScanMode = "black" // exploit profile
)

// ParseScanMode validates a mode string supplied by the user.
func ParseScanMode(s string) (ScanMode, error) {
	switch ScanMode(s) {
	case ModeWhite, ModeGray, ModeBlack:
		return ScanMode(s), nil
	}
	return "", fmt.Errorf("invalid scan mode %q (must be white, gray or black)", s)
}

// Severity labels as reported by the backend tools. Critical > High >
// Medium > Low > Info. The backend occasionally emits "Informational",
// which aggregation folds into Info.
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityMedium   = "Medium"
	SeverityLow      = "Low"
	SeverityInfo     = "Info"

	SeverityInformational = "Informational"
)

// SeverityOrder is the fixed display and summary order for severity buckets.
var SeverityOrder = []string{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

// ScanRequest is one validated submission against the backend.
type ScanRequest struct {
	Target            string   `json:"target"`
	Mode              ScanMode `json:"mode"`
	VerificationToken string   `json:"verificationToken"`
	RequesterID       string   `json:"requesterId"`
}

// NewScanRequest constructs a ScanRequest, enforcing the non-empty target
// and enumerated mode invariants up front.
func NewScanRequest(target, mode, token, requesterID string) (ScanRequest, error) {
	if target == "" {
		return ScanRequest{}, fmt.Errorf("scan target must not be empty")
	}
	m, err := ParseScanMode(mode)
	if err != nil {
		return ScanRequest{}, err
	}
	return ScanRequest{
		Target:            target,
		Mode:              m,
		VerificationToken: token,
		RequesterID:       requesterID,
	}, nil
}

// ToolStatusMap maps a backend tool name to its completed flag for one poll.
// It is derived state: each poll response yields a fresh map and fully
// replaces the previous one.
type ToolStatusMap map[string]bool

// Finding is a single reported issue with a severity classification.
type Finding struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// SeverityCount is one (severity, count) pair of a result summary.
type SeverityCount struct {
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

// ScanResult is the immutable outcome of one completed scan session.
type ScanResult struct {
	Target         string          `json:"target"`
	Mode           ScanMode        `json:"mode"`
	SeverityCounts []SeverityCount `json:"severity_counts"`
	Findings       []Finding       `json:"findings"`
	CompletedAt    time.Time       `json:"completed_at"`
}

// QuotaState tracks the caller's remaining-submissions budget for the
// current quota window. Remaining only shrinks locally; a fresh load from
// the backend is the single way it can grow back (e.g. after a daily reset).
type QuotaState struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// HistoryEntry is one row of the backend's scan history listing.
type HistoryEntry struct {
	ScanID    string `json:"scanId"`
	Target    string `json:"target"`
	ScanType  string `json:"scanType"`
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}
