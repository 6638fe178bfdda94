package downloader

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"tubeshift/internal/model"
	"tubeshift/internal/progress"
)

// ParseProgress parses yt-dlp "[download]" lines such as
//
//	[download]  45.2% of 10.00MiB at  1.50MiB/s ETA 00:04
//
// into a progress update. Lines without a percentage report -1.
func ParseProgress(line, jobID string) (u progress.Update, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "[download]") {
		return progress.Update{}, false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(line, "[download]"))

	percent := -1.0
	if idx := strings.Index(rest, "%"); idx != -1 {
		if p, err := strconv.ParseFloat(strings.TrimSpace(rest[:idx]), 64); err == nil {
			percent = p
		}
	}

	var speed *string
	if idx := strings.Index(rest, " at "); idx != -1 {
		fields := strings.Fields(rest[idx+4:])
		if len(fields) > 0 && fields[0] != "Unknown" {
			s := fields[0]
			speed = &s
		}
	}

	var eta *time.Duration
	if idx := strings.Index(rest, "ETA "); idx != -1 {
		fields := strings.Fields(rest[idx+4:])
		if len(fields) > 0 {
			if d, err := parseETA(fields[0]); err == nil {
				eta = &d
			}
		}
	}

	msg := "Downloading"
	if percent < 0 {
		msg = rest
	}
	return progress.Update{
		JobID:   jobID,
		Stage:   model.StatusDownloading,
		Percent: percent,
		Speed:   speed,
		ETA:     eta,
		Message: msg,
	}, true
}

var errBadETA = errors.New("invalid ETA")

// parseETA parses duration strings like "00:04", "01:23:45" or "45".
func parseETA(s string) (time.Duration, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 3 {
		return 0, errBadETA
	}
	var total time.Duration
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, errBadETA
		}
		total = total*60 + time.Duration(n)*time.Second
	}
	return total, nil
}
