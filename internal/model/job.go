package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Clip restricts a job to a segment of the source, in seconds.
// A nil Start means the beginning; a nil End means the end of the media.
type Clip struct {
	Start *float64
	End   *float64
}

// Requested reports whether the clip narrows the source at all.
func (c Clip) Requested() bool {
	return (c.Start != nil && *c.Start > 0) || c.End != nil
}

// StartSec returns the clip start, or 0 when unset.
func (c Clip) StartSec() float64 {
	if c.Start == nil || *c.Start < 0 {
		return 0
	}
	return *c.Start
}

// Validate rejects negative starts and ends that do not follow the start.
func (c Clip) Validate() error {
	if c.Start != nil && *c.Start < 0 {
		return errors.New("clip start must not be negative")
	}
	if c.End != nil && *c.End <= c.StartSec() {
		return errors.New("clip end must be after clip start")
	}
	return nil
}

// Job is one end-to-end download-and-transcode task for a single URL.
type Job struct {
	ID        string
	URL       string
	Title     string // Optional; known when a preview was fetched first.
	Clip      Clip
	CreatedAt time.Time
}

// NewJob creates a job with a fresh ID.
func NewJob(url string) Job {
	return Job{
		ID:        uuid.NewString(),
		URL:       url,
		CreatedAt: time.Now(),
	}
}

// ShortID returns a compact form of the ID for directory names and display.
func (j Job) ShortID() string {
	if u, err := uuid.Parse(j.ID); err == nil {
		s := u.String()
		return s[:8]
	}
	if len(j.ID) > 8 {
		return j.ID[:8]
	}
	return j.ID
}

// DisplayName is the title when known, else the URL.
func (j Job) DisplayName() string {
	if j.Title != "" {
		return j.Title
	}
	return j.URL
}

// ProbeResult holds what the prober learned about a downloaded source.
type ProbeResult struct {
	VideoCodec  string
	AudioCodec  string
	DurationSec float64 // 0 when not probed
	SizeBytes   int64
}

// DecisionMode says how the final file is produced from the source.
type DecisionMode string

const (
	ModePassthrough DecisionMode = "passthrough" // rename, no transcoder run
	ModeRemux       DecisionMode = "remux"       // stream copy, used for clipped compatible sources
	ModeComputed    DecisionMode = "computed"    // re-encode at an estimated bitrate
	ModeFixed       DecisionMode = "fixed"       // re-encode at the configured bitrate
)

// BitrateDecision is the derived encode plan for one job.
type BitrateDecision struct {
	Mode       DecisionMode
	TargetMbit int // 0 unless Mode is computed or fixed
}

// Reencode reports whether the decision runs the encoder.
func (d BitrateDecision) Reencode() bool {
	return d.Mode == ModeComputed || d.Mode == ModeFixed
}

// Preview is the metadata-only view of a URL shown before queuing.
type Preview struct {
	ID             string
	Title          string
	Uploader       string
	Thumbnail      string
	DurationSec    float64 // 0 if unknown
	DurationString string
	WebpageURL     string
}
