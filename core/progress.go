package core

import (
	"sort"

	"github.com/zfrkrc/pentaas-oneclick/models"
)

// ProgressSnapshot is the derived completion view of one scan session at a
// point in time. Tool lists are sorted so consecutive snapshots compare
// stably.
type ProgressSnapshot struct {
	CompletedTools []string
	PendingTools   []string
	Percent        int
}

// maxPollingPercent caps progress while the backend has not confirmed
// completion; only FinalizeProgress may report 100.
const maxPollingPercent = 99

// ApplyToolStatus folds a freshly polled tool status map into the snapshot.
// The latest poll is authoritative: it fully replaces the previous tool
// partition rather than merging with it, which tolerates a backend that
// legitimately re-queues a tool. The percentage derives from the ratio of
// completed to known tools and never decreases within a session, even if
// the partition shrinks.
func ApplyToolStatus(prev ProgressSnapshot, tools models.ToolStatusMap) ProgressSnapshot {
	next := ProgressSnapshot{Percent: prev.Percent}
	for name, completed := range tools {
		if completed {
			next.CompletedTools = append(next.CompletedTools, name)
		} else {
			next.PendingTools = append(next.PendingTools, name)
		}
	}
	sort.Strings(next.CompletedTools)
	sort.Strings(next.PendingTools)

	total := len(next.CompletedTools) + len(next.PendingTools)
	if total > 0 {
		percent := 100 * len(next.CompletedTools) / total
		if percent > maxPollingPercent {
			percent = maxPollingPercent
		}
		if percent > next.Percent {
			next.Percent = percent
		}
	}
	return next
}

// ApplyCoarseTick advances progress by a fixed step for polls where the
// backend reported only a coarse running signal and no per-tool status.
func ApplyCoarseTick(prev ProgressSnapshot, step int) ProgressSnapshot {
	next := prev
	if step <= 0 {
		step = 1
	}
	next.Percent += step
	if next.Percent > maxPollingPercent {
		next.Percent = maxPollingPercent
	}
	return next
}

// FinalizeProgress forces the snapshot to the terminal 100% state once the
// backend has confirmed completion. Any tools still listed pending are
// considered finished.
func FinalizeProgress(prev ProgressSnapshot) ProgressSnapshot {
	next := ProgressSnapshot{Percent: 100}
	next.CompletedTools = append(next.CompletedTools, prev.CompletedTools...)
	next.CompletedTools = append(next.CompletedTools, prev.PendingTools...)
	sort.Strings(next.CompletedTools)
	return next
}
