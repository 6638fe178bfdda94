package ui

import (
	"fmt"
	"strings"

	"tubeshift/internal/model"
	"tubeshift/internal/util/format"
	"tubeshift/internal/util/timefmt"
)

func (m Model) View() string {
	if m.quitting {
		return m.styles.Faint.Render("Cancelling jobs…") + "\n"
	}
	sections := []string{
		m.viewHeader(),
		m.viewInput(),
	}
	if p := m.viewPreview(); p != "" {
		sections = append(sections, p)
	}
	sections = append(sections,
		m.viewJobs(),
		m.styles.Panel.Render(m.logs.View()),
		m.viewHelp(),
	)
	return strings.Join(sections, "\n")
}

func (m Model) viewHeader() string {
	var queued, running, done, failed int
	for _, id := range m.order {
		switch st := m.jobs[id].status; {
		case st == model.StatusQueued:
			queued++
		case st.Active():
			running++
		case st == model.StatusDone:
			done++
		case st == model.StatusFailed:
			failed++
		}
	}
	title := m.styles.Title.Render("tubeshift")
	sub := fmt.Sprintf("%d queued • %d running • %d done • %d failed", queued, running, done, failed)
	if s := m.opts.Settings; s.OutDir != "" {
		sub += " • " + s.OutDir
		if s.BitrateMode == model.BitrateFixed {
			sub += fmt.Sprintf(" • fixed %dM", s.FixedBitrateMbit)
		}
	}
	return title + "  " + m.styles.Subtitle.Render(sub)
}

func (m Model) viewInput() string {
	line := m.input.View()
	if m.notice != "" {
		style := m.styles.Faint
		if m.noticeBad {
			style = m.styles.Error
		}
		line += "\n" + style.Render(m.notice)
	}
	return line
}

func (m Model) viewPreview() string {
	switch {
	case m.pv.loading:
		return m.styles.Spinner.Render(m.spinner.View()) + " " + m.styles.Faint.Render("Fetching preview…")
	case m.pv.err != nil:
		return m.styles.Warning.Render("Preview unavailable: " + m.pv.err.Error())
	case m.pv.data == nil:
		return ""
	}
	p := m.pv.data
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(truncate(p.Title, 70)))
	var meta []string
	if d := previewDuration(*p); d != "" {
		meta = append(meta, d)
	}
	if p.Uploader != "" {
		meta = append(meta, p.Uploader)
	}
	if len(meta) > 0 {
		b.WriteString("\n" + m.styles.JobInfo.Render(strings.Join(meta, " • ")))
	}
	if p.Thumbnail != "" {
		b.WriteString("\n" + m.styles.Faint.Render("thumbnail: "+truncate(p.Thumbnail, 80)))
	}
	return m.styles.Panel.Render(b.String())
}

func previewDuration(p model.Preview) string {
	if p.DurationSec > 0 {
		return timefmt.Format(p.DurationSec)
	}
	return p.DurationString
}

func (m Model) viewJobs() string {
	if len(m.order) == 0 {
		return m.styles.Faint.Render("No jobs yet. Paste a URL and press enter.")
	}
	first, last := m.visibleRange()
	var b strings.Builder
	if first > 0 {
		b.WriteString(m.styles.Faint.Render(fmt.Sprintf("  ↑ %d more", first)) + "\n")
	}
	for i := first; i < last; i++ {
		b.WriteString(m.viewJob(i, m.jobs[m.order[i]]))
		b.WriteString("\n")
	}
	if last < len(m.order) {
		b.WriteString(m.styles.Faint.Render(fmt.Sprintf("  ↓ %d more", len(m.order)-last)) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// visibleRange keeps the selection on screen when the list is taller than
// the space left for it.
func (m Model) visibleRange() (int, int) {
	rows := len(m.order)
	if m.height > 0 {
		rows = max((m.height-m.logs.Height-12)/2, 2)
	}
	if rows >= len(m.order) {
		return 0, len(m.order)
	}
	first := min(max(m.selected-rows/2, 0), len(m.order)-rows)
	return first, first + rows
}

func (m Model) viewJob(i int, js *jobState) string {
	cursor := "  "
	nameStyle := m.styles.JobTitle
	if i == m.selected {
		cursor = "> "
		if m.focus == focusList {
			nameStyle = m.styles.Selected
		}
	}

	label := m.styles.forStatus(js.status).Render(fmt.Sprintf("%-18s", statusLabel(js.status)))
	line1 := cursor + label + " " + nameStyle.Render(truncate(js.name(), 60))

	var right string
	switch {
	case js.status.Active() && js.percent >= 0 && js.percent <= 100:
		right = fmt.Sprintf("%s %5.1f%%", m.bar.ViewAs(js.percent/100.0), js.percent)
		if js.speed != "" {
			right += "  " + js.speed
		}
		if js.eta != nil {
			right += "  ETA " + format.ETA(*js.eta)
		}
	case js.status.Active():
		right = m.styles.Spinner.Render(m.spinner.View())
	case js.status == model.StatusDone:
		right = m.styles.Success.Render("✓")
	case js.status == model.StatusFailed:
		right = m.styles.Error.Render("✗")
	}
	info := js.message
	if right != "" {
		info = right + "  " + m.styles.JobInfo.Render(truncate(info, 60))
	} else {
		info = m.styles.JobInfo.Render(truncate(info, 80))
	}
	return m.styles.Box.Render(line1 + "\n    " + info)
}

func (m Model) viewHelp() string {
	if m.focus == focusInput {
		return m.styles.Faint.Render("enter: add • tab: job list • ↑/↓: select • esc: clear • ctrl+c: quit")
	}
	return m.styles.Faint.Render("x: cancel • d: remove • ↑/↓ j/k: select • pgup/pgdown: log • tab: input • q: quit")
}

func truncate(s string, n int) string {
	rs := []rune(s)
	if n <= 0 || len(rs) <= n {
		return s
	}
	return string(rs[:n-1]) + "…"
}
