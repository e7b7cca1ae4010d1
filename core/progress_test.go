package core

import (
	"reflect"
	"testing"

	"github.com/zfrkrc/pentaas-oneclick/models"
)

func TestApplyToolStatus(t *testing.T) {
	tests := []struct {
		name          string
		prev          ProgressSnapshot
		tools         models.ToolStatusMap
		wantCompleted []string
		wantPending   []string
		wantPercent   int
	}{
		{
			name:          "half done",
			tools:         models.ToolStatusMap{"Nmap": true, "TestSSL": false},
			wantCompleted: []string{"Nmap"},
			wantPending:   []string{"TestSSL"},
			wantPercent:   50,
		},
		{
			name:          "all done is capped below 100 until finalization",
			prev:          ProgressSnapshot{Percent: 50},
			tools:         models.ToolStatusMap{"Nmap": true, "TestSSL": true},
			wantCompleted: []string{"Nmap", "TestSSL"},
			wantPercent:   99,
		},
		{
			name: "latest poll replaces the partition, not merges",
			prev: ProgressSnapshot{
				CompletedTools: []string{"Nmap", "Nuclei"},
				PendingTools:   []string{"TestSSL"},
				Percent:        66,
			},
			// Nuclei was re-queued by the backend.
			tools:         models.ToolStatusMap{"Nmap": true, "Nuclei": false, "TestSSL": false},
			wantCompleted: []string{"Nmap"},
			wantPending:   []string{"Nuclei", "TestSSL"},
			wantPercent:   66, // ratio fell to 33 but the percent stays monotonic
		},
		{
			name:        "empty map keeps prior percent",
			prev:        ProgressSnapshot{Percent: 40},
			tools:       models.ToolStatusMap{},
			wantPercent: 40,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyToolStatus(tt.prev, tt.tools)
			if !reflect.DeepEqual(got.CompletedTools, tt.wantCompleted) {
				t.Errorf("CompletedTools = %v, want %v", got.CompletedTools, tt.wantCompleted)
			}
			if !reflect.DeepEqual(got.PendingTools, tt.wantPending) {
				t.Errorf("PendingTools = %v, want %v", got.PendingTools, tt.wantPending)
			}
			if got.Percent != tt.wantPercent {
				t.Errorf("Percent = %d, want %d", got.Percent, tt.wantPercent)
			}
		})
	}
}

func TestApplyCoarseTick(t *testing.T) {
	snap := ProgressSnapshot{}
	last := 0
	for i := 0; i < 30; i++ {
		snap = ApplyCoarseTick(snap, 7)
		if snap.Percent < last {
			t.Fatalf("percent decreased: %d -> %d", last, snap.Percent)
		}
		if snap.Percent >= 100 {
			t.Fatalf("coarse ticks reached %d%%; 100 is reserved for finalization", snap.Percent)
		}
		last = snap.Percent
	}
	if snap.Percent != 99 {
		t.Errorf("coarse progress should saturate at 99, got %d", snap.Percent)
	}
}

func TestFinalizeProgress(t *testing.T) {
	snap := ProgressSnapshot{
		CompletedTools: []string{"Nmap"},
		PendingTools:   []string{"TestSSL", "Nuclei"},
		Percent:        33,
	}
	final := FinalizeProgress(snap)
	if final.Percent != 100 {
		t.Errorf("Percent = %d, want 100", final.Percent)
	}
	if len(final.PendingTools) != 0 {
		t.Errorf("PendingTools = %v, want empty", final.PendingTools)
	}
	want := []string{"Nmap", "Nuclei", "TestSSL"}
	if !reflect.DeepEqual(final.CompletedTools, want) {
		t.Errorf("CompletedTools = %v, want %v", final.CompletedTools, want)
	}
}
