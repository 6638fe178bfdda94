package ui

import (
	"tubeshift/internal/preview"
	"tubeshift/internal/progress"
)

// eventMsg carries one reporter event from the workers.
type eventMsg struct {
	ev progress.Event
}

// eventsClosedMsg is sent once the event channel is closed.
type eventsClosedMsg struct{}

type previewMsg struct {
	res preview.Result
}
