package ui

import (
	"fmt"
	"path/filepath"
	"time"

	"tubeshift/internal/model"
	"tubeshift/internal/progress"
	"tubeshift/internal/util/format"
	"tubeshift/internal/util/media"
)

type jobState struct {
	id    string
	url   string
	title string

	status  model.Status
	message string
	percent float64 // -1 means unknown
	speed   string
	eta     *time.Duration

	outputPath string
	bytes      int64
	err        error
	restored   bool // loaded from history, not run in this session
}

func newJobState(id, url, title string) *jobState {
	return &jobState{
		id:      id,
		url:     url,
		title:   title,
		status:  model.StatusQueued,
		message: "Queued",
		percent: -1,
	}
}

// name is the title once known, else the URL.
func (js *jobState) name() string {
	return media.DisplayTitle(js.title, js.url, js.id)
}

// apply folds an update in. Stage changes that would move the job backwards
// are ignored, as are ticks for a stage the job already left.
func (js *jobState) apply(u progress.Update) {
	if u.Title != "" {
		js.title = u.Title
	}
	if u.URL != "" && js.url == "" {
		js.url = u.URL
	}
	if u.Stage != js.status {
		if !model.CanAdvance(js.status, u.Stage) {
			return
		}
		js.status = u.Stage
		js.speed = ""
		js.eta = nil
	}
	js.percent = u.Percent
	if u.Message != "" {
		js.message = u.Message
	}
	if u.Speed != nil {
		js.speed = *u.Speed
	}
	if u.ETA != nil {
		js.eta = u.ETA
	}
}

func (js *jobState) finish(r progress.Result) {
	if r.Title != "" {
		js.title = r.Title
	}
	js.status = r.Status
	js.err = r.Err
	js.outputPath = r.OutputPath
	js.bytes = r.Bytes
	js.speed = ""
	js.eta = nil
	switch r.Status {
	case model.StatusDone:
		js.percent = 100
		js.message = fmt.Sprintf("Saved: %s (%s)", filepath.Base(r.OutputPath), format.HumanizeBytes(r.Bytes))
	case model.StatusCancelled:
		js.percent = -1
		js.message = "Cancelled"
	default:
		js.percent = -1
		if r.Err != nil {
			js.message = r.Err.Error()
		} else {
			js.message = "Failed"
		}
	}
}

// statusLabel is the short human form of a status.
func statusLabel(st model.Status) string {
	switch st {
	case model.StatusQueued:
		return "Queued"
	case model.StatusDownloading:
		return "Downloading"
	case model.StatusProbing:
		return "Probing"
	case model.StatusSkippingTranscode:
		return "Skipping transcode"
	case model.StatusTranscoding:
		return "Transcoding"
	case model.StatusCleaningUp:
		return "Cleaning up"
	case model.StatusDone:
		return "Done"
	case model.StatusFailed:
		return "Failed"
	case model.StatusCancelled:
		return "Cancelled"
	default:
		return string(st)
	}
}
