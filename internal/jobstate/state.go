// Package jobstate owns the display state of the active render job and the
// transitions applied to it by submissions and polls.
package jobstate

import (
	"errors"

	"bookfoundry/internal/model"
)

// Phase is the reducer's lifecycle position.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhasePolling    Phase = "polling"
	PhaseCompleted  Phase = "completed"
	PhaseFailed     Phase = "failed"
)

// Terminal reports whether the phase ends a job.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseFailed
}

// FallbackError is shown when a failure carries no message of its own.
const FallbackError = "Failed to generate audiobook"

// ErrStale is returned for updates addressed to a job that is no longer active.
var ErrStale = errors.New("stale update for inactive job")

// ErrInvalidTransition is returned when an operation does not fit the current phase.
var ErrInvalidTransition = errors.New("invalid transition")

// isValidTransition enforces the allowed phase edges.
func isValidTransition(from, to Phase) bool {
	switch to {
	case PhaseIdle, PhaseSubmitting:
		return true
	case PhasePolling:
		return from == PhaseSubmitting || from == PhasePolling
	case PhaseCompleted:
		return from == PhasePolling
	case PhaseFailed:
		return from == PhaseSubmitting || from == PhasePolling
	default:
		return false
	}
}

func cloneState(s model.DisplayState) model.DisplayState {
	out := s
	out.ElapsedSeconds = cloneFloat(s.ElapsedSeconds)
	out.EstimatedSeconds = cloneFloat(s.EstimatedSeconds)
	if s.Error != nil {
		out.Error = model.String(*s.Error)
	}
	if s.Result != nil {
		r := *s.Result
		r.AudioFiles = append([]string(nil), s.Result.AudioFiles...)
		if s.Result.DownloadURL != nil {
			r.DownloadURL = model.String(*s.Result.DownloadURL)
		}
		out.Result = &r
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return model.Float(*v)
}
