package encoder

import (
	"strconv"
	"strings"

	"tubeshift/internal/model"
	"tubeshift/internal/progress"
)

// ProgressState accumulates ffmpeg -progress key/value lines between
// "progress=" markers.
type ProgressState struct {
	OutTimeUs int64 // ffmpeg reports out_time_ms in microseconds
	SpeedStr  string
	TotalSize int64
	Label     string // update message; "Transcoding" when empty
}

// UpdateFromLine folds one line into the state and returns an update each
// time a "progress=" marker closes a block.
func (ps *ProgressState) UpdateFromLine(line, jobID string, durationSec float64, stage model.Status) (u progress.Update, ok bool) {
	key, val, found := strings.Cut(line, "=")
	if !found {
		return progress.Update{}, false
	}
	key = strings.TrimSpace(key)
	val = strings.TrimSpace(val)

	switch key {
	case "out_time_ms", "out_time_us":
		if v, err := strconv.ParseInt(val, 10, 64); err == nil && v >= 0 {
			ps.OutTimeUs = v
		}
	case "speed":
		if val != "N/A" {
			ps.SpeedStr = val
		}
	case "total_size":
		if v, err := strconv.ParseInt(val, 10, 64); err == nil {
			ps.TotalSize = v
		}
	case "progress":
		percent := -1.0
		if durationSec > 0 {
			percent = float64(ps.OutTimeUs) / (durationSec * 1_000_000) * 100.0
			if percent > 100 {
				percent = 100
			}
		}
		if val == "end" {
			percent = 100
		}

		var speedPtr *string
		if ps.SpeedStr != "" {
			s := ps.SpeedStr
			speedPtr = &s
		}
		var bytesPtr *int64
		if ps.TotalSize > 0 {
			b := ps.TotalSize
			bytesPtr = &b
		}

		msg := ps.Label
		if msg == "" {
			msg = "Transcoding"
		}
		return progress.Update{
			JobID:   jobID,
			Stage:   stage,
			Percent: percent,
			Speed:   speedPtr,
			Bytes:   bytesPtr,
			Message: msg,
		}, true
	}
	return progress.Update{}, false
}
