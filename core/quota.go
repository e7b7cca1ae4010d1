package core

import "github.com/zfrkrc/pentaas-oneclick/models"

// ReserveQuota consumes one submission from the caller's budget. It is
// applied only after a successful submission; a failed submission must not
// consume quota locally. Remaining never goes negative, and no local
// operation ever gives quota back: only a fresh fetch from the backend can
// restore it (e.g. after a daily reset).
func ReserveQuota(q models.QuotaState) models.QuotaState {
	q.Used++
	q.Remaining = q.Limit - q.Used
	if q.Remaining < 0 {
		q.Remaining = 0
	}
	return q
}
