package ui

import (
	"github.com/charmbracelet/lipgloss"

	"tubeshift/internal/model"
)

type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Header    lipgloss.Style
	JobTitle  lipgloss.Style
	JobInfo   lipgloss.Style
	Selected  lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Faint     lipgloss.Style
	Box       lipgloss.Style
	Panel     lipgloss.Style
	Spinner   lipgloss.Style
	StageWait lipgloss.Style
	StageDL   lipgloss.Style
	StageProc lipgloss.Style
	StageEnc  lipgloss.Style
}

func defaultStyles() Styles {
	base := lipgloss.NewStyle()
	return Styles{
		Title:     base.Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		Subtitle:  base.Faint(true),
		Header:    base.Bold(true),
		JobTitle:  base.Foreground(lipgloss.Color("#A3A3A3")),
		JobInfo:   base.Foreground(lipgloss.Color("#D1D5DB")),
		Selected:  base.Bold(true).Foreground(lipgloss.Color("#F9FAFB")),
		Success:   base.Foreground(lipgloss.Color("#22C55E")),
		Error:     base.Foreground(lipgloss.Color("#EF4444")),
		Warning:   base.Foreground(lipgloss.Color("#F59E0B")),
		Faint:     base.Faint(true),
		Box:       base.Padding(0, 1),
		Panel:     base.Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#4B5563")).Padding(0, 1),
		Spinner:   base.Foreground(lipgloss.Color("#22D3EE")),
		StageWait: base.Foreground(lipgloss.Color("#9CA3AF")),
		StageDL:   base.Foreground(lipgloss.Color("#06B6D4")),
		StageProc: base.Foreground(lipgloss.Color("#60A5FA")),
		StageEnc:  base.Foreground(lipgloss.Color("#D946EF")),
	}
}

// forStatus picks the colour of a status label.
func (s Styles) forStatus(st model.Status) lipgloss.Style {
	switch st {
	case model.StatusQueued:
		return s.StageWait
	case model.StatusDownloading:
		return s.StageDL
	case model.StatusProbing, model.StatusSkippingTranscode, model.StatusCleaningUp:
		return s.StageProc
	case model.StatusTranscoding:
		return s.StageEnc
	case model.StatusDone:
		return s.Success
	case model.StatusFailed:
		return s.Error
	case model.StatusCancelled:
		return s.Warning
	default:
		return s.JobInfo
	}
}
