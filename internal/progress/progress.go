package progress

import "bookfoundry/internal/model"

// Stage identifies a high-level step of a render job.
type Stage string

const (
	StageSubmitting Stage = "submitting"
	StageQueued     Stage = "queued"
	StageRendering  Stage = "rendering"
	StageRetrying   Stage = "retrying"
	StageCompleted  Stage = "completed"
	StageError      Stage = "error"
)

// StageFor maps a polled status value to a display stage.
func StageFor(s model.StatusValue) Stage {
	switch s {
	case model.StatusPending:
		return StageQueued
	case model.StatusCompleted:
		return StageCompleted
	case model.StatusError:
		return StageError
	default:
		return StageRendering
	}
}

// Update conveys a state change for a job. State is a snapshot and is safe
// to retain.
type Update struct {
	JobID   string
	Stage   Stage
	State   model.DisplayState
	Message string // short human-friendly status line
}

// Result is emitted once per job when it completes or fails.
type Result struct {
	JobID string
	State model.DisplayState
	Err   error // nil on success
}

// Reporter is implemented by UI or any observer interested in progress events.
type Reporter interface {
	Update(u Update)
	Result(r Result)
}

// Nop discards all events.
type Nop struct{}

func (Nop) Update(Update) {}
func (Nop) Result(Result) {}
