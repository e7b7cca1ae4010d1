package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zfrkrc/pentaas-oneclick/logger"
	"github.com/zfrkrc/pentaas-oneclick/models"
)

// Phase is the session state machine tag. Completed and Failed are terminal;
// a new scan attempt always starts a fresh session with a new job identifier
// and carries nothing over except quota state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseGatedOut   Phase = "gated-out"
	PhaseSubmitting Phase = "submitting"
	PhasePolling    Phase = "polling"
	PhaseFinalizing Phase = "finalizing"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// Backend job status values.
const (
	statusRunning   = "running"
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// JobClient is the slice of the backend client one session needs.
type JobClient interface {
	Submit(ctx context.Context, req models.ScanRequest) (string, error)
	PollStatus(ctx context.Context, jobID string) (models.StatusResponse, error)
	FetchResults(ctx context.Context, jobID string) (models.ResultsResponse, error)
	FetchQuota(ctx context.Context, requesterID string) (models.QuotaState, error)
}

// Clock abstraction so session timestamps are testable.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

type SessionConfig struct {
	// PollInterval is the fixed cadence of the poll loop.
	PollInterval time.Duration
	// SessionTimeout bounds the whole poll loop; zero means unbounded.
	SessionTimeout time.Duration
	// StepPercent is the coarse progress advance used when the backend
	// reports no per-tool status.
	StepPercent int
}

// Session supervises one end-to-end scan attempt: gate, submit, poll loop,
// finalize. A single goroutine (the Run caller) drives all state changes;
// the mutex exists only so observers can take snapshots while Run is
// blocked inside a network call.
type Session struct {
	id     string
	client JobClient
	sink   Sink
	clock  Clock
	cfg    SessionConfig

	mu       sync.Mutex
	phase    Phase
	reason   string
	jobID    string
	target   string
	mode     models.ScanMode
	progress ProgressSnapshot
	findings []models.Finding
	quota    models.QuotaState
	result   *models.ScanResult
	lastErr  error
}

func NewSession(client JobClient, sink Sink, clock Clock, cfg SessionConfig) *Session {
	if sink == nil {
		sink = NoopSink{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 3 * time.Second
	}
	if cfg.StepPercent <= 0 {
		cfg.StepPercent = 7
	}
	return &Session{
		id:     uuid.New().String(),
		client: client,
		sink:   sink,
		clock:  clock,
		cfg:    cfg,
		phase:  PhaseIdle,
	}
}

// ID is the client-side identifier of this scan attempt. It is distinct from
// the backend job identifier and exists so log lines from superseded
// sessions remain attributable.
func (s *Session) ID() string { return s.id }

// Snapshot is a read-only view of session state for observers.
type Snapshot struct {
	Phase        Phase
	DenyReason   string
	JobID        string
	Progress     ProgressSnapshot
	FindingCount int
	Quota        models.QuotaState
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Phase:        s.phase,
		DenyReason:   s.reason,
		JobID:        s.jobID,
		Progress:     s.progress,
		FindingCount: len(s.findings),
		Quota:        s.quota,
	}
}

// Quota returns the session's view of the requester's budget, including the
// local reservation made after a successful submission.
func (s *Session) Quota() models.QuotaState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quota
}

// Run drives one scan attempt to a terminal state and blocks until then. It
// may be called once per session; cancelling ctx fails the session. On
// success the returned ScanResult is final and immutable.
func (s *Session) Run(ctx context.Context, target, mode, verificationToken, requesterID string) (*models.ScanResult, error) {
	s.mu.Lock()
	if s.phase != PhaseIdle {
		s.mu.Unlock()
		return nil, fmt.Errorf("session %s already ran (phase %s); start a new session", s.id, s.phase)
	}
	s.mu.Unlock()

	// Quota is fetched only once the cheap local checks could pass, so an
	// empty target costs no network round-trip and quota never leaks to
	// unauthenticated callers.
	var quota models.QuotaState
	if target != "" && requesterID != "" {
		q, err := s.client.FetchQuota(ctx, requesterID)
		if err != nil {
			err = fmt.Errorf("failed to load quota for requester: %w", err)
			s.fail(err)
			return nil, err
		}
		quota = q
	}
	s.mu.Lock()
	s.quota = quota
	s.mu.Unlock()

	decision := EvaluatePreconditions(target, requesterID, quota, verificationToken)
	if !decision.Allowed {
		s.mu.Lock()
		s.phase = PhaseGatedOut
		s.reason = decision.Reason
		s.mu.Unlock()
		s.emit(Event{Type: EventGateDenied, Reason: decision.Reason})
		logger.Info("Session %s gated out: %s", s.id, decision.Reason)
		return nil, &GateDeniedError{Reason: decision.Reason}
	}

	scanReq, err := models.NewScanRequest(target, mode, verificationToken, requesterID)
	if err != nil {
		s.fail(err)
		return nil, err
	}

	s.mu.Lock()
	s.phase = PhaseSubmitting
	s.target = scanReq.Target
	s.mode = scanReq.Mode
	s.mu.Unlock()

	jobID, err := s.client.Submit(ctx, scanReq)
	if err != nil {
		subErr := &SubmissionError{Err: err}
		s.fail(subErr)
		return nil, subErr
	}

	s.mu.Lock()
	s.jobID = jobID
	// Reserve only after the submission succeeded; a failed submission must
	// not consume quota locally.
	s.quota = ReserveQuota(s.quota)
	s.phase = PhasePolling
	s.mu.Unlock()
	s.emit(Event{Type: EventSubmitted, JobID: jobID})
	logger.Info("Session %s polling job %s every %s", s.id, jobID, s.cfg.PollInterval)

	pollCtx := ctx
	if s.cfg.SessionTimeout > 0 {
		var cancel context.CancelFunc
		pollCtx, cancel = context.WithTimeout(ctx, s.cfg.SessionTimeout)
		defer cancel()
	}

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()

	// The first poll fires immediately; subsequent ticks keep the fixed
	// cadence. A tick that fires while a round-trip is still in flight is
	// dropped by the ticker, never queued, so round-trips cannot overlap and
	// aggregator updates stay in tick order.
	for {
		done, err := s.tick(pollCtx, jobID)
		if err != nil {
			s.fail(err)
			return nil, err
		}
		if done {
			s.mu.Lock()
			result := s.result
			s.mu.Unlock()
			return result, nil
		}

		select {
		case <-pollCtx.Done():
			err := fmt.Errorf("scan session cancelled: %w", pollCtx.Err())
			s.fail(err)
			return nil, err
		case <-ticker.C:
		}
	}
}

// tick performs one poll round. A transient failure returns (false, nil):
// polling itself is the retry mechanism for read failures.
func (s *Session) tick(ctx context.Context, jobID string) (bool, error) {
	statusResp, err := s.client.PollStatus(ctx, jobID)
	if err != nil {
		logger.Warn("Session %s: transient poll failure for job %s: %v", s.id, jobID, err)
		return false, nil
	}

	switch statusResp.Status {
	case statusCompleted:
		s.mu.Lock()
		s.phase = PhaseFinalizing
		s.mu.Unlock()
		s.emit(Event{Type: EventFinalizing, JobID: jobID})

		// The one results fetch that must succeed.
		resultsResp, err := s.client.FetchResults(ctx, jobID)
		if err != nil {
			return false, &FinalFetchError{Err: err}
		}
		s.finalize(resultsResp)
		return true, nil

	case statusFailed:
		return false, fmt.Errorf("backend reported scan job %s as failed", jobID)

	default:
		// "running", and anything unrecognized is treated as still running.
		s.observeRunning(ctx, jobID, statusResp)
		return false, nil
	}
}

// observeRunning applies one non-terminal poll: a speculative results fetch
// for partial findings, then a progress update. Tool status from the status
// response wins; the results response partition is the fallback; with
// neither, progress advances by the coarse step.
func (s *Session) observeRunning(ctx context.Context, jobID string, statusResp models.StatusResponse) {
	var results *models.ResultsResponse
	if resultsResp, err := s.client.FetchResults(ctx, jobID); err != nil {
		logger.Debug("Session %s: speculative results fetch failed for job %s: %v", s.id, jobID, err)
	} else {
		results = &resultsResp
	}

	s.mu.Lock()
	if s.jobID != jobID || s.phase != PhasePolling {
		// Superseded or already finalizing; discard rather than apply.
		s.mu.Unlock()
		return
	}

	switch {
	case len(statusResp.Services) > 0:
		tools := make(models.ToolStatusMap, len(statusResp.Services))
		for name, state := range statusResp.Services {
			tools[name] = state.Completed
		}
		s.progress = ApplyToolStatus(s.progress, tools)
	case results != nil && results.Progress != nil:
		tools := make(models.ToolStatusMap, len(results.Progress.Completed)+len(results.Progress.Pending))
		for _, name := range results.Progress.Completed {
			tools[name] = true
		}
		for _, name := range results.Progress.Pending {
			if _, seen := tools[name]; !seen {
				tools[name] = false
			}
		}
		s.progress = ApplyToolStatus(s.progress, tools)
	default:
		s.progress = ApplyCoarseTick(s.progress, s.cfg.StepPercent)
	}

	if results != nil {
		s.findings = results.Findings
	}
	snap := s.progress
	count := len(s.findings)
	s.mu.Unlock()

	s.emit(Event{
		Type:           EventProgress,
		JobID:          jobID,
		Percent:        snap.Percent,
		CompletedTools: snap.CompletedTools,
		PendingTools:   snap.PendingTools,
		FindingCount:   count,
	})
}

func (s *Session) finalize(resultsResp models.ResultsResponse) {
	s.mu.Lock()
	s.findings = resultsResp.Findings
	s.progress = FinalizeProgress(s.progress)
	s.result = &models.ScanResult{
		Target:         s.target,
		Mode:           s.mode,
		SeverityCounts: SummarizeFindings(s.findings),
		Findings:       s.findings,
		CompletedAt:    s.clock.Now(),
	}
	s.phase = PhaseCompleted
	jobID := s.jobID
	count := len(s.findings)
	s.mu.Unlock()

	s.emit(Event{Type: EventCompleted, JobID: jobID, Percent: 100, FindingCount: count})
	logger.Info("Session %s completed: job %s, %d findings", s.id, jobID, count)
}

func (s *Session) fail(err error) {
	s.mu.Lock()
	s.phase = PhaseFailed
	s.lastErr = err
	jobID := s.jobID
	s.mu.Unlock()

	s.emit(Event{Type: EventFailed, JobID: jobID, Message: err.Error()})
	logger.Error("Session %s failed: %v", s.id, err)
}

func (s *Session) emit(e Event) {
	if e.At.IsZero() {
		e.At = s.clock.Now()
	}
	s.sink.Emit(e)
}
