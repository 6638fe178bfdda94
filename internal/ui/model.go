package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"tubeshift/internal/history"
	"tubeshift/internal/model"
	"tubeshift/internal/preview"
	"tubeshift/internal/progress"
)

const maxLogLines = 500

// Queue is the worker pool the UI submits to.
type Queue interface {
	Submit(job model.Job) error
	Cancel(id string) bool
	CancelAll()
	Pending() int
	Running() int
}

// Previewer looks up metadata for the URL being typed.
type Previewer interface {
	Next(ctx context.Context) (uint64, context.Context)
	FetchToken(ctx context.Context, token uint64, url string) preview.Result
}

// HistoryStore is the part of the job history the UI shows and edits.
type HistoryStore interface {
	Items() []history.Record
	Remove(id string) (bool, error)
}

// Options wires the UI to the rest of the program.
type Options struct {
	Queue     Queue
	Events    <-chan progress.Event
	Previewer Previewer    // optional
	History   HistoryStore // optional
	Settings  model.Settings
	Initial   []model.Job // submitted when the UI starts
	Logger    *log.Logger
}

type focus int

const (
	focusInput focus = iota
	focusList
)

type previewState struct {
	token   uint64
	url     string
	loading bool
	data    *model.Preview
	err     error
}

type Model struct {
	ctx  context.Context
	opts Options

	jobs     map[string]*jobState
	order    []string
	selected int

	focus     focus
	input     textinput.Model
	lastInput string
	notice    string
	noticeBad bool

	pv       previewState
	previews map[string]model.Preview // by URL, fills in titles on submit

	logs     viewport.Model
	logLines []string

	spinner spinner.Model
	bar     bubblesprogress.Model

	width, height int
	styles        Styles
	quitting      bool
}

func NewModel(ctx context.Context, opts Options) Model {
	sty := defaultStyles()

	in := textinput.New()
	in.Placeholder = "https://www.youtube.com/watch?v=…  [start [end]]"
	in.Prompt = "URL › "
	in.CharLimit = 2048
	in.Width = 60
	in.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = sty.Spinner

	m := Model{
		ctx:      ctx,
		opts:     opts,
		jobs:     make(map[string]*jobState),
		input:    in,
		previews: make(map[string]model.Preview),
		logs:     viewport.New(80, 8),
		spinner:  sp,
		bar: bubblesprogress.New(
			bubblesprogress.WithDefaultGradient(),
			bubblesprogress.WithWidth(30),
		),
		styles: sty,
	}

	if opts.History != nil {
		for _, rec := range opts.History.Items() {
			if !rec.Status.Terminal() {
				continue
			}
			js := newJobState(rec.TaskID, rec.URL, rec.Title)
			js.status = rec.Status
			js.outputPath = rec.Path
			js.restored = true
			js.message = statusLabel(rec.Status)
			if rec.Path != "" {
				js.message = rec.Path
			}
			if rec.Error != "" {
				js.err = errors.New(rec.Error)
				js.message = rec.Error
			}
			m.addJob(js)
		}
	}
	for _, j := range opts.Initial {
		m.addJob(newJobState(j.ID, j.URL, j.Title))
	}
	return m
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick, m.waitForEvent()}
	if len(m.opts.Initial) > 0 {
		cmds = append(cmds, m.submitCmd(m.opts.Initial))
	}
	return tea.Batch(cmds...)
}

// submittedMsg reports jobs the queue refused. Submission runs as a command
// because the queue reports through the channel this model drains.
type submittedMsg struct {
	failed map[string]error
}

func (m Model) submitCmd(jobs []model.Job) tea.Cmd {
	q := m.opts.Queue
	return func() tea.Msg {
		failed := map[string]error{}
		for _, j := range jobs {
			if err := q.Submit(j); err != nil {
				failed[j.ID] = err
			}
		}
		return submittedMsg{failed: failed}
	}
}

func (m Model) waitForEvent() tea.Cmd {
	ch := m.opts.Events
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg{ev: ev}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case eventMsg:
		m.handleEvent(msg.ev)
		return m, m.waitForEvent()

	case eventsClosedMsg:
		if m.quitting {
			return m, tea.Quit
		}
		return m, nil

	case submittedMsg:
		for id, err := range msg.failed {
			if js, ok := m.jobs[id]; ok {
				js.status = model.StatusFailed
				js.err = err
				js.message = err.Error()
			}
		}
		return m, nil

	case previewMsg:
		m.handlePreview(msg.res)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch k.String() {
	case "ctrl+c":
		return m.quit()
	case "tab", "shift+tab":
		if m.focus == focusInput {
			m.focus = focusList
			m.input.Blur()
			return m, nil
		}
		m.focus = focusInput
		return m, m.input.Focus()
	case "up":
		m.moveSelection(-1)
		return m, nil
	case "down":
		m.moveSelection(1)
		return m, nil
	case "pgup":
		m.logs.LineUp(m.logs.Height / 2)
		return m, nil
	case "pgdown":
		m.logs.LineDown(m.logs.Height / 2)
		return m, nil
	}

	if m.focus == focusList {
		switch k.String() {
		case "q":
			return m.quit()
		case "x":
			return m, m.cancelSelected()
		case "d":
			m.removeSelected()
		case "k":
			m.moveSelection(-1)
		case "j":
			m.moveSelection(1)
		}
		return m, nil
	}

	switch k.String() {
	case "enter":
		return m.submitInput()
	case "esc":
		m.input.SetValue("")
		m.lastInput = ""
		m.pv = previewState{}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(k)
	fetch := m.maybePreview()
	return m, tea.Batch(cmd, fetch)
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if m.opts.Queue != nil {
		m.opts.Queue.CancelAll()
	}
	return m, tea.Quit
}

func (m Model) submitInput() (tea.Model, tea.Cmd) {
	url, clip, err := parseInput(m.input.Value())
	if err != nil {
		m.setNotice(err.Error(), true)
		return m, nil
	}
	job := model.NewJob(url)
	job.Clip = clip
	if p, ok := m.previews[url]; ok {
		job.Title = p.Title
	}
	m.addJob(newJobState(job.ID, job.URL, job.Title))
	m.selected = len(m.order) - 1
	m.setNotice("Queued "+job.DisplayName(), false)
	m.input.SetValue("")
	m.lastInput = ""
	m.pv = previewState{}
	return m, m.submitCmd([]model.Job{job})
}

// maybePreview starts a lookup when the input changed into something that
// looks like a video URL.
func (m *Model) maybePreview() tea.Cmd {
	text := m.input.Value()
	if text == m.lastInput {
		return nil
	}
	m.lastInput = text
	url, ok := previewable(text)
	if !ok {
		m.pv = previewState{}
		return nil
	}
	if url == m.pv.url {
		return nil
	}
	if p, ok := m.previews[url]; ok {
		m.pv = previewState{url: url, data: &p}
		return nil
	}
	if m.opts.Previewer == nil {
		return nil
	}
	pr := m.opts.Previewer
	token, ctx := pr.Next(m.ctx)
	m.pv = previewState{token: token, url: url, loading: true}
	return func() tea.Msg {
		return previewMsg{res: pr.FetchToken(ctx, token, url)}
	}
}

func (m *Model) handlePreview(res preview.Result) {
	if res.Token != m.pv.token {
		return
	}
	if errors.Is(res.Err, context.Canceled) {
		return
	}
	m.pv.loading = false
	if res.Err != nil {
		m.pv.err = res.Err
		return
	}
	p := res.Preview
	m.pv.data = &p
	m.previews[m.pv.url] = p
	if res.URL != m.pv.url {
		m.previews[res.URL] = p
	}
}

func (m *Model) handleEvent(ev progress.Event) {
	switch {
	case ev.Update != nil:
		u := *ev.Update
		js, ok := m.jobs[u.JobID]
		if !ok {
			js = newJobState(u.JobID, u.URL, u.Title)
			m.addJob(js)
		}
		prev := js.status
		prevTitle := js.title
		js.apply(u)
		if js.status != prev && u.Message != "" {
			m.appendLog(fmt.Sprintf("[%s] %s", js.name(), u.Message))
		} else if js.title != prevTitle {
			m.appendLog(fmt.Sprintf("[%s] title resolved", js.name()))
		}
	case ev.Log != nil:
		l := *ev.Log
		name := l.JobID
		if js, ok := m.jobs[l.JobID]; ok {
			name = js.name()
		}
		m.appendLog(fmt.Sprintf("[%s] %s", name, strings.TrimRight(l.Line, "\r\n")))
	case ev.Result != nil:
		r := *ev.Result
		js, ok := m.jobs[r.JobID]
		if !ok {
			js = newJobState(r.JobID, r.URL, r.Title)
			m.addJob(js)
		}
		js.finish(r)
		m.appendLog(fmt.Sprintf("[%s] %s", js.name(), js.message))
	}
}

func (m *Model) addJob(js *jobState) {
	if _, ok := m.jobs[js.id]; ok {
		return
	}
	m.jobs[js.id] = js
	m.order = append(m.order, js.id)
}

func (m *Model) selectedJob() *jobState {
	if m.selected < 0 || m.selected >= len(m.order) {
		return nil
	}
	return m.jobs[m.order[m.selected]]
}

func (m *Model) moveSelection(delta int) {
	if len(m.order) == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.order)-1)
}

// cancelSelected asks the queue to stop the selected job. The queue reports
// through the event channel, so the call runs outside the update loop.
func (m *Model) cancelSelected() tea.Cmd {
	js := m.selectedJob()
	if js == nil || js.status.Terminal() {
		return nil
	}
	m.setNotice("Cancelling "+js.name(), false)
	q, id := m.opts.Queue, js.id
	return func() tea.Msg {
		q.Cancel(id)
		return nil
	}
}

// removeSelected drops a finished job from the list and the history.
func (m *Model) removeSelected() {
	js := m.selectedJob()
	if js == nil || !js.status.Terminal() {
		return
	}
	if m.opts.History != nil {
		if _, err := m.opts.History.Remove(js.id); err != nil {
			m.setNotice(fmt.Sprintf("history: %v", err), true)
			return
		}
	}
	delete(m.jobs, js.id)
	m.order = append(m.order[:m.selected], m.order[m.selected+1:]...)
	if m.selected >= len(m.order) {
		m.selected = max(len(m.order)-1, 0)
	}
}

func (m *Model) appendLog(line string) {
	m.logLines = append(m.logLines, line)
	if len(m.logLines) > maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-maxLogLines:]
	}
	m.logs.SetContent(strings.Join(m.logLines, "\n"))
	m.logs.GotoBottom()
	if m.opts.Logger != nil {
		m.opts.Logger.Debug(line)
	}
}

func (m *Model) setNotice(s string, bad bool) {
	m.notice = s
	m.noticeBad = bad
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.input.Width = max(w-12, 20)
	m.logs.Width = max(w-4, 20)
	m.logs.Height = max(h/4, 4)
	m.bar.Width = max(min(w/4, 40), 10)
}

// Failed lists jobs of this session that did not finish successfully.
func (m Model) Failed() []string {
	var out []string
	for _, id := range m.order {
		js := m.jobs[id]
		if js.restored || js.status != model.StatusFailed {
			continue
		}
		msg := "failed"
		if js.err != nil {
			msg = js.err.Error()
		}
		out = append(out, fmt.Sprintf("- %s: %s", js.name(), msg))
	}
	return out
}
