package cmd

import (
	"fmt"
	"io"

	"tubeshift/internal/model"
	"tubeshift/internal/progress"
	"tubeshift/internal/util/format"
)

// printer is the plain-text display. It is only ever driven by the single
// goroutine draining the session's event channel.
type printer struct {
	out     io.Writer
	verbose bool

	names   map[string]string
	stages  map[string]model.Status
	results map[string]progress.Result
}

func newPrinter(out io.Writer, verbose bool) *printer {
	return &printer{
		out:     out,
		verbose: verbose,
		names:   make(map[string]string),
		stages:  make(map[string]model.Status),
		results: make(map[string]progress.Result),
	}
}

func (p *printer) name(id string) string {
	if n := p.names[id]; n != "" {
		return n
	}
	return shortID(id)
}

func (p *printer) Update(u progress.Update) {
	if u.Title != "" {
		p.names[u.JobID] = u.Title
	} else if u.URL != "" && p.names[u.JobID] == "" {
		p.names[u.JobID] = u.URL
	}
	if p.stages[u.JobID] == u.Stage || u.Stage.Terminal() {
		return
	}
	p.stages[u.JobID] = u.Stage
	msg := u.Message
	if msg == "" {
		msg = string(u.Stage)
	}
	fmt.Fprintf(p.out, "[%s] %s\n", p.name(u.JobID), msg)
}

func (p *printer) Log(l progress.Log) {
	if !p.verbose {
		return
	}
	fmt.Fprintf(p.out, "[%s] %s\n", p.name(l.JobID), l.Line)
}

func (p *printer) Result(r progress.Result) {
	if r.Title != "" {
		p.names[r.JobID] = r.Title
	}
	p.results[r.JobID] = r
	delete(p.stages, r.JobID)
	switch r.Status {
	case model.StatusDone:
		fmt.Fprintf(p.out, "Saved: %s (%s, %s)\n", r.OutputPath, format.HumanizeBytes(r.Bytes), describeDecision(r.Decision))
	case model.StatusCancelled:
		fmt.Fprintf(p.out, "Cancelled: %s\n", p.name(r.JobID))
	default:
		fmt.Fprintf(p.out, "Failed: %s: %v\n", p.name(r.JobID), r.Err)
	}
}

func describeDecision(d model.BitrateDecision) string {
	switch d.Mode {
	case model.ModePassthrough:
		return "no transcode"
	case model.ModeRemux:
		return "remuxed"
	case model.ModeComputed, model.ModeFixed:
		return fmt.Sprintf("re-encoded at %dM", d.TargetMbit)
	default:
		return string(d.Mode)
	}
}
