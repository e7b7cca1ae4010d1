package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/zfrkrc/pentaas-oneclick/logger"
	"github.com/zfrkrc/pentaas-oneclick/models"
)

// Client talks to the remote scan backend. All calls are plain
// request/response round-trips; retry policy belongs to the caller.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Submit starts a scan job and returns the backend's job identifier. Any
// non-success response is fatal for the attempt; if the body carries a JSON
// "detail" message it is surfaced verbatim in the returned ProtocolError.
func (c *Client) Submit(ctx context.Context, scanReq models.ScanRequest) (string, error) {
	payload, err := json.Marshal(scanReq)
	if err != nil {
		return "", fmt.Errorf("failed to encode scan request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/scan", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Op: "submit", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &NetworkError{Op: "submit", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The error body is not guaranteed to be JSON; probe it instead of
		// decoding into a struct.
		detail := gjson.GetBytes(body, "detail").String()
		logger.Error("Submit rejected by backend, status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return "", &ProtocolError{Op: "submit", StatusCode: resp.StatusCode, Detail: detail}
	}

	var submitResp models.SubmitResponse
	if err := json.Unmarshal(body, &submitResp); err != nil {
		return "", &ProtocolError{Op: "submit", StatusCode: resp.StatusCode, Err: err}
	}
	if submitResp.JobID == "" {
		return "", &ProtocolError{Op: "submit", StatusCode: resp.StatusCode, Err: fmt.Errorf("response carried no jobId")}
	}

	logger.Info("Submitted scan for target '%s' (mode %s), job id %s", scanReq.Target, scanReq.Mode, submitResp.JobID)
	return submitResp.JobID, nil
}

// PollStatus fetches the coarse job status plus the per-tool status map when
// the backend has one.
func (c *Client) PollStatus(ctx context.Context, jobID string) (models.StatusResponse, error) {
	var statusResp models.StatusResponse
	err := c.getJSON(ctx, "pollStatus", "/scan/"+url.PathEscape(jobID), &statusResp)
	return statusResp, err
}

// FetchResults fetches the findings known so far. It may be called while the
// job is still running, in which case the list is partial.
func (c *Client) FetchResults(ctx context.Context, jobID string) (models.ResultsResponse, error) {
	var resultsResp models.ResultsResponse
	err := c.getJSON(ctx, "fetchResults", "/scan/"+url.PathEscape(jobID)+"/results", &resultsResp)
	return resultsResp, err
}

// FetchQuota reads the requester's submission budget for the current window.
func (c *Client) FetchQuota(ctx context.Context, requesterID string) (models.QuotaState, error) {
	var quotaResp models.QuotaResponse
	path := "/quota?requesterId=" + url.QueryEscape(requesterID)
	if err := c.getJSON(ctx, "fetchQuota", path, &quotaResp); err != nil {
		return models.QuotaState{}, err
	}
	return models.QuotaState{Used: quotaResp.Used, Limit: quotaResp.Limit, Remaining: quotaResp.Remaining}, nil
}

// ListScans returns the backend's scan history. The history is owned by the
// backend; this client never stores it.
func (c *Client) ListScans(ctx context.Context) ([]models.HistoryEntry, error) {
	var historyResp models.HistoryResponse
	if err := c.getJSON(ctx, "listScans", "/scans", &historyResp); err != nil {
		return nil, err
	}
	return historyResp.Scans, nil
}

// FetchLogs returns the raw progress log lines the backend recorded for a
// scan.
func (c *Client) FetchLogs(ctx context.Context, jobID string) ([]string, error) {
	var logsResp models.LogsResponse
	if err := c.getJSON(ctx, "fetchLogs", "/scan/"+url.PathEscape(jobID)+"/logs", &logsResp); err != nil {
		return nil, err
	}
	return logsResp.Logs, nil
}

func (c *Client) getJSON(ctx context.Context, op, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		detail := gjson.GetBytes(body, "detail").String()
		return &ProtocolError{Op: op, StatusCode: resp.StatusCode, Detail: detail}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &ProtocolError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}
