package jobstate

import (
	"fmt"
	"strings"
	"sync"

	"bookfoundry/internal/model"
	"bookfoundry/internal/progress"
)

// Ticket ties a submission's outcome to the submission that started it.
type Ticket struct {
	epoch uint64
}

// Reducer is the single owner of the render DisplayState. All mutation goes
// through its methods; it is safe for concurrent use.
type Reducer struct {
	mu    sync.RWMutex
	phase Phase
	epoch uint64
	jobID string
	state model.DisplayState
}

// NewReducer creates a reducer in idle phase.
func NewReducer() *Reducer {
	return &Reducer{phase: PhaseIdle}
}

// Submit resets the display state for a new submission and invalidates any
// previously active job.
func (r *Reducer) Submit() Ticket {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.epoch++
	r.jobID = ""
	r.state = model.DisplayState{IsGenerating: true}
	r.phase = PhaseSubmitting
	return Ticket{epoch: r.epoch}
}

// Accept records the handle returned for the submission identified by t.
func (r *Reducer) Accept(t Ticket, h model.JobHandle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.epoch != r.epoch {
		return ErrStale
	}
	if err := r.moveLocked(PhasePolling); err != nil {
		return err
	}
	r.jobID = h.JobID
	if h.TotalChapters > 0 {
		r.state.TotalChapters = h.TotalChapters
	}
	return nil
}

// Reject fails the submission identified by t.
func (r *Reducer) Reject(t Ticket, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if t.epoch != r.epoch {
		return ErrStale
	}
	if r.phase != PhaseSubmitting {
		return fmt.Errorf("%w: reject in %s", ErrInvalidTransition, r.phase)
	}
	return r.failLocked(errorMessage(err))
}

// Apply folds one polled status into the display state. Statuses for any job
// other than the active one are rejected with ErrStale.
func (r *Reducer) Apply(jobID string, st model.JobStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if jobID == "" || jobID != r.jobID || r.phase != PhasePolling {
		return ErrStale
	}

	s := &r.state
	s.ProgressPercent = progress.Percent(st)
	s.CompletedChapters = max(st.CompletedChapters, 0)
	s.TotalChapters = max(s.TotalChapters, st.TotalChapters, s.CompletedChapters)
	s.ElapsedSeconds = cloneFloat(st.ElapsedSeconds)
	s.EstimatedSeconds = cloneFloat(st.EstimatedSeconds)

	switch st.Status {
	case model.StatusCompleted:
		if st.Result == nil {
			return r.failLocked("render completed without a result")
		}
		if err := r.moveLocked(PhaseCompleted); err != nil {
			return err
		}
		res := ResolveResult(*st.Result)
		s.Result = &res
		s.Error = nil
		s.IsGenerating = false
		s.ProgressPercent = 100
	case model.StatusError:
		msg := FallbackError
		if st.Error != nil && strings.TrimSpace(*st.Error) != "" {
			msg = *st.Error
		}
		return r.failLocked(msg)
	}
	return nil
}

// Fail moves the active job to failed, e.g. after poll transport errors or a
// timeout.
func (r *Reducer) Fail(jobID, msg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if jobID == "" || jobID != r.jobID || r.phase != PhasePolling {
		return ErrStale
	}
	if strings.TrimSpace(msg) == "" {
		msg = FallbackError
	}
	return r.failLocked(msg)
}

// Reset returns the reducer to idle and drops interest in any active job.
func (r *Reducer) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.epoch++
	r.jobID = ""
	r.state = model.DisplayState{}
	r.phase = PhaseIdle
}

// Snapshot returns a deep copy of the display state.
func (r *Reducer) Snapshot() model.DisplayState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneState(r.state)
}

// Phase returns the current lifecycle phase.
func (r *Reducer) Phase() Phase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase
}

// ActiveJob returns the job id currently being polled, if any.
func (r *Reducer) ActiveJob() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.jobID
}

func (r *Reducer) moveLocked(to Phase) error {
	if !isValidTransition(r.phase, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.phase, to)
	}
	r.phase = to
	return nil
}

func (r *Reducer) failLocked(msg string) error {
	if err := r.moveLocked(PhaseFailed); err != nil {
		return err
	}
	r.state.Error = model.String(msg)
	r.state.Result = nil
	r.state.IsGenerating = false
	return nil
}

func errorMessage(err error) string {
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return FallbackError
	}
	return err.Error()
}
