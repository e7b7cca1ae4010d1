package core

import (
	"errors"
	"fmt"

	"github.com/zfrkrc/pentaas-oneclick/backend"
)

// GateDeniedError reports a submission that never left the client. It is
// user-correctable, not fatal.
type GateDeniedError struct {
	Reason string
}

func (e *GateDeniedError) Error() string {
	return "scan not submitted: " + e.Reason
}

// SubmissionError is fatal for the attempt: the backend rejected or never
// received the submission.
type SubmissionError struct {
	Err error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("scan submission failed: %v", e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// FinalFetchError is the one results fetch that must succeed: the fetch
// following a "completed" status. Its failure fails the whole session.
type FinalFetchError struct {
	Err error
}

func (e *FinalFetchError) Error() string {
	return fmt.Sprintf("failed to fetch final results: %v", e.Err)
}

func (e *FinalFetchError) Unwrap() error { return e.Err }

// UserMessage builds the message shown to the user for a session error. The
// backend's detail text is surfaced verbatim when present; otherwise a
// generic fallback per error class.
func UserMessage(err error) string {
	var gateErr *GateDeniedError
	if errors.As(err, &gateErr) {
		switch gateErr.Reason {
		case DenyMissingTarget:
			return "Please provide a target to scan."
		case DenyUnauthenticated:
			return "Please sign in before starting a scan."
		case DenyQuotaExhausted:
			return "Your daily scan quota is exhausted. Try again after the quota resets."
		case DenyUnverified:
			return "Please complete the verification challenge first."
		}
		return "Scan was not submitted: " + gateErr.Reason
	}

	var protoErr *backend.ProtocolError
	if errors.As(err, &protoErr) && protoErr.Detail != "" {
		return protoErr.Detail
	}

	var finalErr *FinalFetchError
	if errors.As(err, &finalErr) {
		return "The scan finished but its results could not be retrieved. Please retry."
	}

	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		return "The scan could not be started. Please try again later."
	}

	return "The scan failed. Please try again later."
}
