// Package progress carries job status events from workers to the single
// consumer that owns display state.
package progress

import (
	"sync"
	"time"

	"tubeshift/internal/model"
)

// LogStream indicates which stream produced a log line.
type LogStream int

const (
	StreamStdout LogStream = iota
	StreamStderr
	StreamApp // lines written by tubeshift itself
)

// Update conveys progress or status changes for a job.
// Percent is 0..100 when known; a negative value means unknown.
type Update struct {
	JobID   string
	Stage   model.Status
	Percent float64

	ETA     *time.Duration // optional
	Bytes   *int64         // optional cumulative bytes
	Speed   *string        // optional, e.g. "2.5MiB/s" or "1.2x"
	Message string         // short human-friendly status line
	Title   string         // set once the title is known
	URL     string
}

// Log is a log line associated with a job.
type Log struct {
	JobID  string
	Stream LogStream
	Line   string
}

// Result is emitted once per job when it reaches a terminal status.
type Result struct {
	JobID      string
	URL        string
	Title      string
	Status     model.Status // done, failed or cancelled
	OutputPath string
	Bytes      int64
	Decision   model.BitrateDecision
	Err        error // nil on success
}

// Reporter is implemented by UI or any observer interested in progress events.
type Reporter interface {
	Update(u Update)
	Log(l Log)
	Result(r Result)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Update(Update) {}
func (Nop) Log(Log)       {}
func (Nop) Result(Result) {}

// Fanout forwards every event to each non-nil reporter in order.
type Fanout []Reporter

// Multi builds a Fanout, skipping nil reporters.
func Multi(rs ...Reporter) Reporter {
	out := make(Fanout, 0, len(rs))
	for _, r := range rs {
		if r != nil {
			out = append(out, r)
		}
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

func (f Fanout) Update(u Update) {
	for _, r := range f {
		r.Update(u)
	}
}

func (f Fanout) Log(l Log) {
	for _, r := range f {
		r.Log(l)
	}
}

func (f Fanout) Result(res Result) {
	for _, r := range f {
		r.Result(res)
	}
}

// Event is one reporter call in transit. Exactly one field is set.
type Event struct {
	Update *Update
	Log    *Log
	Result *Result
}

// ChanReporter sends events over a channel. Results and status changes
// always block until delivered; percent ticks and log lines are dropped
// when the consumer falls behind.
type ChanReporter struct {
	ch   chan<- Event
	last map[string]model.Status
	mu   sync.Mutex
}

// NewChanReporter returns a reporter feeding ch.
func NewChanReporter(ch chan<- Event) *ChanReporter {
	return &ChanReporter{ch: ch, last: make(map[string]model.Status)}
}

func (r *ChanReporter) Update(u Update) {
	ev := Event{Update: &u}
	if r.stageChanged(u) {
		r.ch <- ev
		return
	}
	select {
	case r.ch <- ev:
	default:
	}
}

func (r *ChanReporter) Log(l Log) {
	select {
	case r.ch <- Event{Log: &l}:
	default:
	}
}

func (r *ChanReporter) Result(res Result) {
	r.mu.Lock()
	delete(r.last, res.JobID)
	r.mu.Unlock()
	r.ch <- Event{Result: &res}
}

func (r *ChanReporter) stageChanged(u Update) bool {
	if u.Title != "" {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.last[u.JobID] == u.Stage {
		return false
	}
	r.last[u.JobID] = u.Stage
	return true
}

// Dispatch delivers ev to rep. Consumers draining a ChanReporter use it to
// replay events onto a concrete reporter.
func Dispatch(ev Event, rep Reporter) {
	switch {
	case ev.Update != nil:
		rep.Update(*ev.Update)
	case ev.Log != nil:
		rep.Log(*ev.Log)
	case ev.Result != nil:
		rep.Result(*ev.Result)
	}
}
