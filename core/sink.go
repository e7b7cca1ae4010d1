package core

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// EventType tags one session lifecycle event.
type EventType string

const (
	EventGateDenied EventType = "gate_denied"
	EventSubmitted  EventType = "submitted"
	EventProgress   EventType = "progress"
	EventFinalizing EventType = "finalizing"
	EventCompleted  EventType = "completed"
	EventFailed     EventType = "failed"
)

// Event is a read-only snapshot of session state, published so a caller can
// observe a scan without ever touching the controller's internals.
type Event struct {
	Type           EventType `json:"type"`
	At             time.Time `json:"at"`
	JobID          string    `json:"job_id,omitempty"`
	Reason         string    `json:"reason,omitempty"`
	Message        string    `json:"message,omitempty"`
	Percent        int       `json:"percent,omitempty"`
	CompletedTools []string  `json:"completed_tools,omitempty"`
	PendingTools   []string  `json:"pending_tools,omitempty"`
	FindingCount   int       `json:"finding_count,omitempty"`
}

// Sink consumes session events.
type Sink interface {
	Emit(Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) {
	f(e)
}

type NoopSink struct{}

func (NoopSink) Emit(Event) {}

// PlainSink writes one human-readable line per event.
type PlainSink struct {
	w  io.Writer
	mu sync.Mutex
}

func NewPlainSink(w io.Writer) *PlainSink {
	return &PlainSink{w: w}
}

func (s *PlainSink) Emit(e Event) {
	if s == nil || s.w == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}

	line := formatPlain(e)
	if line == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.w, line)
}

func formatPlain(e Event) string {
	ts := e.At.Format("15:04:05")
	switch e.Type {
	case EventGateDenied:
		return fmt.Sprintf("[%s] scan blocked: %s", ts, e.Reason)
	case EventSubmitted:
		return fmt.Sprintf("[%s] scan submitted, job %s", ts, e.JobID)
	case EventProgress:
		line := fmt.Sprintf("[%s] %3d%%", ts, e.Percent)
		if len(e.CompletedTools) > 0 || len(e.PendingTools) > 0 {
			line += fmt.Sprintf("  done: [%s]  pending: [%s]",
				strings.Join(e.CompletedTools, " "), strings.Join(e.PendingTools, " "))
		}
		if e.FindingCount > 0 {
			line += fmt.Sprintf("  findings so far: %d", e.FindingCount)
		}
		return line
	case EventFinalizing:
		return fmt.Sprintf("[%s] backend reports completion, fetching final results", ts)
	case EventCompleted:
		return fmt.Sprintf("[%s] scan completed with %d findings", ts, e.FindingCount)
	case EventFailed:
		return fmt.Sprintf("[%s] scan failed: %s", ts, e.Message)
	}
	return ""
}
