package encoder

import (
	"testing"

	"tubeshift/internal/model"
)

func TestProgressState_UpdateFromLine(t *testing.T) {
	tests := []struct {
		name        string
		lines       []string // Multiple lines to process in sequence
		jobID       string
		durationSec float64
		wantOk      bool
		wantPercent float64
	}{
		{
			name: "video progress sequence",
			lines: []string{
				"out_time_ms=30000000", // 30 seconds
				"speed=1.5x",
				"total_size=10485760",
				"progress=continue",
			},
			jobID:       "job1",
			durationSec: 60.0,
			wantOk:      true,
			wantPercent: 50.0,
		},
		{
			name: "unknown duration",
			lines: []string{
				"speed=2.0x",
				"total_size=5242880",
				"progress=continue",
			},
			jobID:       "job2",
			durationSec: 0,
			wantOk:      true,
			wantPercent: -1.0,
		},
		{
			name: "completion progress",
			lines: []string{
				"out_time_ms=59000000",
				"progress=end",
			},
			jobID:       "job3",
			durationSec: 60.0,
			wantOk:      true,
			wantPercent: 100.0,
		},
		{
			name: "overshoot is capped",
			lines: []string{
				"out_time_us=90000000",
				"progress=continue",
			},
			jobID:       "job4",
			durationSec: 60.0,
			wantOk:      true,
			wantPercent: 100.0,
		},
		{
			name:        "non-progress line",
			lines:       []string{"frame=100"},
			jobID:       "job5",
			durationSec: 60.0,
			wantOk:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ps := &ProgressState{}
			var ok bool
			for _, line := range tt.lines {
				got, gotOk := ps.UpdateFromLine(line, tt.jobID, tt.durationSec, model.StatusTranscoding)
				ok = gotOk
				if !gotOk {
					continue
				}
				if got.JobID != tt.jobID {
					t.Errorf("JobID = %v, want %v", got.JobID, tt.jobID)
				}
				if got.Stage != model.StatusTranscoding {
					t.Errorf("Stage = %v, want transcoding", got.Stage)
				}
				if got.Percent != tt.wantPercent {
					t.Errorf("Percent = %v, want %v", got.Percent, tt.wantPercent)
				}
			}
			if ok != tt.wantOk {
				t.Errorf("UpdateFromLine() ok = %v, want %v", ok, tt.wantOk)
			}
		})
	}
}

func TestProgressState_StateTracking(t *testing.T) {
	ps := &ProgressState{}

	ps.UpdateFromLine("out_time_ms=15000000", "job1", 60.0, model.StatusTranscoding)
	if ps.OutTimeUs != 15000000 {
		t.Errorf("OutTimeUs = %v, want 15000000", ps.OutTimeUs)
	}

	ps.UpdateFromLine("speed=1.2x", "job1", 60.0, model.StatusTranscoding)
	ps.UpdateFromLine("speed=N/A", "job1", 60.0, model.StatusTranscoding)
	if ps.SpeedStr != "1.2x" {
		t.Errorf("SpeedStr = %v, want '1.2x'", ps.SpeedStr)
	}

	ps.UpdateFromLine("total_size=1048576", "job1", 60.0, model.StatusTranscoding)
	if ps.TotalSize != 1048576 {
		t.Errorf("TotalSize = %v, want 1048576", ps.TotalSize)
	}
}

func TestProgressState_Label(t *testing.T) {
	ps := &ProgressState{Label: "Remuxing"}
	u, ok := ps.UpdateFromLine("progress=continue", "j", 0, model.StatusTranscoding)
	if !ok || u.Message != "Remuxing" {
		t.Errorf("message = %q", u.Message)
	}
}
