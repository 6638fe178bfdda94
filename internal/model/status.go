package model

// Status is the lifecycle position of a job.
type Status string

const (
	StatusQueued            Status = "queued"
	StatusDownloading       Status = "downloading"
	StatusProbing           Status = "probing"
	StatusSkippingTranscode Status = "skipping_transcode"
	StatusTranscoding       Status = "transcoding"
	StatusCleaningUp        Status = "cleaning_up"
	StatusDone              Status = "done"
	StatusFailed            Status = "failed"
	StatusCancelled         Status = "cancelled"
)

// Rank orders statuses along the pipeline. Both decision branches share a
// rank, as do the three terminal statuses. Unknown statuses rank -1.
func (s Status) Rank() int {
	switch s {
	case StatusQueued:
		return 0
	case StatusDownloading:
		return 1
	case StatusProbing:
		return 2
	case StatusSkippingTranscode, StatusTranscoding:
		return 3
	case StatusCleaningUp:
		return 4
	case StatusDone, StatusFailed, StatusCancelled:
		return 5
	default:
		return -1
	}
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed || s == StatusCancelled
}

// Active reports whether a worker is currently executing the job.
func (s Status) Active() bool {
	r := s.Rank()
	return r > 0 && r < 5
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s.Rank() >= 0
}

// CanAdvance reports whether a job in status from may move to status to.
// Transitions only move forward; failed and cancelled are reachable from any
// non-terminal status, done only after cleanup.
func CanAdvance(from, to Status) bool {
	if !from.Valid() || !to.Valid() || from.Terminal() {
		return false
	}
	switch to {
	case StatusFailed, StatusCancelled:
		return true
	case StatusDone:
		return from == StatusCleaningUp
	}
	return to.Rank() > from.Rank()
}
