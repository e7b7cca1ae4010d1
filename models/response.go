package models

// ErrorResponse is the generic error body the backend returns alongside
// non-success status codes.
type ErrorResponse struct {
	Detail string `json:"detail" example:"Scan could not be queued"`
}

// SubmitResponse is the body of a successful POST /scan.
type SubmitResponse struct {
	JobID string `json:"jobId"`
}

// ToolState is the per-tool entry of a status response.
type ToolState struct {
	Completed bool `json:"completed"`
}

// StatusResponse is the body of GET /scan/{jobId}. Services is optional:
// early in a scan the backend may only know the coarse status.
type StatusResponse struct {
	Status   string               `json:"status"`
	Services map[string]ToolState `json:"services,omitempty"`
}

// ResultsProgress is the optional tool partition embedded in a results
// response when the backend tracks it there instead of in the status body.
type ResultsProgress struct {
	Completed []string `json:"completed"`
	Pending   []string `json:"pending"`
}

// ResultsResponse is the body of GET /scan/{jobId}/results. While the job is
// still running the findings list is partial.
type ResultsResponse struct {
	Findings []Finding        `json:"findings"`
	Progress *ResultsProgress `json:"progress,omitempty"`
}

// QuotaResponse is the body of GET /quota.
type QuotaResponse struct {
	Used      int `json:"used"`
	Limit     int `json:"limit"`
	Remaining int `json:"remaining"`
}

// LogsResponse is the body of GET /scan/{jobId}/logs.
type LogsResponse struct {
	ScanID     string   `json:"scan_id"`
	Logs       []string `json:"logs"`
	TotalLines int      `json:"total_lines"`
}

// HistoryResponse is the body of GET /scans.
type HistoryResponse struct {
	Scans []HistoryEntry `json:"scans"`
}
