package core

import "github.com/zfrkrc/pentaas-oneclick/models"

// Deny reasons, in the order the gate checks them. Authentication is checked
// before quota so quota state never leaks to unauthenticated callers, and
// quota before verification so an over-budget caller is not sent to solve a
// challenge for nothing.
const (
	DenyMissingTarget   = "missing-target"
	DenyUnauthenticated = "unauthenticated"
	DenyQuotaExhausted  = "quota-exhausted"
	DenyUnverified      = "unverified"
)

// Decision is the outcome of a precondition evaluation. Reason is set only
// when Allowed is false, and always to exactly one deny reason.
type Decision struct {
	Allowed bool
	Reason  string
}

// EvaluatePreconditions decides whether a submission may proceed. Checks
// short-circuit: only the first failing one is reported. The function is
// pure and has no side effects.
func EvaluatePreconditions(target, requesterID string, quota models.QuotaState, verificationToken string) Decision {
	if target == "" {
		return Decision{Reason: DenyMissingTarget}
	}
	if requesterID == "" {
		return Decision{Reason: DenyUnauthenticated}
	}
	if quota.Remaining <= 0 {
		return Decision{Reason: DenyQuotaExhausted}
	}
	if verificationToken == "" {
		return Decision{Reason: DenyUnverified}
	}
	return Decision{Allowed: true}
}
