package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrJobsFailed is returned by Run when any job of the session failed.
var ErrJobsFailed = errors.New("jobs failed")

// Run shows the interactive queue until the user quits. The caller owns
// the queue and must keep draining opts.Events after Run returns until its
// workers have stopped.
func Run(ctx context.Context, opts Options) error {
	m := NewModel(ctx, opts)
	prog := tea.NewProgram(m, tea.WithContext(ctx), tea.WithAltScreen())
	final, err := prog.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	if fm, ok := final.(Model); ok {
		if failed := fm.Failed(); len(failed) > 0 {
			return fmt.Errorf("%w: %d job(s):\n%s", ErrJobsFailed, len(failed), strings.Join(failed, "\n"))
		}
	}
	return nil
}
