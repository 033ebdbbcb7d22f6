// Package poller follows a submitted render job until it reaches a terminal
// status.
package poller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"bookfoundry/internal/api"
	"bookfoundry/internal/jobstate"
	"bookfoundry/internal/model"
)

// DefaultInterval is the delay between the end of one status fetch and the
// start of the next.
const DefaultInterval = 1500 * time.Millisecond

// ErrTimedOut is returned when polling gives up before the job finishes.
var ErrTimedOut = errors.New("render job timed out")

// JobError is a failure reported by the job itself.
type JobError struct {
	JobID   string
	Message string
}

func (e *JobError) Error() string {
	return e.Message
}

// Fetcher retrieves one status snapshot for a job.
type Fetcher interface {
	RenderStatus(ctx context.Context, jobID string) (model.JobStatus, error)
}

// Options configure a Poller. Zero values select defaults, except Timeout
// and MaxAttempts where zero means unbounded.
type Options struct {
	Interval         time.Duration
	Timeout          time.Duration
	MaxAttempts      int
	TransientRetries int
	IsTransient      func(error) bool
	// OnRetry is called before waiting out a transient failure.
	OnRetry func(attempt int, err error)
	Logger  *slog.Logger
}

// Poller drives the fetch loop for a single job at a time.
type Poller struct {
	fetch Fetcher
	opts  Options
}

// New returns a poller using f for status fetches.
func New(f Fetcher, opts Options) *Poller {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.TransientRetries < 0 {
		opts.TransientRetries = 0
	}
	if opts.IsTransient == nil {
		opts.IsTransient = api.IsTransient
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Poller{fetch: f, opts: opts}
}

// Run polls jobID until it completes, fails, times out or ctx is cancelled.
// onStatus receives every snapshot fetched before the loop stops; a response
// that arrives after cancellation is dropped. On completion the final status
// is returned. A job-reported failure returns *JobError.
func (p *Poller) Run(ctx context.Context, jobID string, onStatus func(model.JobStatus)) (model.JobStatus, error) {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, p.opts.Timeout, ErrTimedOut)
		defer cancel()
	}
	log := p.opts.Logger.With("job_id", jobID)

	failures := 0
	for attempt := 1; ; attempt++ {
		if p.opts.MaxAttempts > 0 && attempt > p.opts.MaxAttempts {
			return model.JobStatus{}, fmt.Errorf("job %s: no terminal status after %d polls: %w", jobID, p.opts.MaxAttempts, ErrTimedOut)
		}
		if ctx.Err() != nil {
			return model.JobStatus{}, p.stopped(ctx, jobID)
		}

		st, err := p.fetch.RenderStatus(ctx, jobID)
		if ctx.Err() != nil {
			log.Debug("discarding status received after cancellation", "attempt", attempt)
			return model.JobStatus{}, p.stopped(ctx, jobID)
		}

		if err != nil {
			failures++
			if !p.opts.IsTransient(err) || failures > p.opts.TransientRetries {
				return model.JobStatus{}, fmt.Errorf("poll job %s: %w", jobID, err)
			}
			log.Warn("status fetch failed, retrying", "attempt", attempt, "failures", failures, "error", err)
			if p.opts.OnRetry != nil {
				p.opts.OnRetry(attempt, err)
			}
		} else {
			failures = 0
			log.Debug("status", "attempt", attempt, "status", st.Status, "progress", st.Progress,
				"completed_chapters", st.CompletedChapters, "total_chapters", st.TotalChapters)
			if onStatus != nil {
				onStatus(st)
			}
			switch st.Status {
			case model.StatusCompleted:
				return st, nil
			case model.StatusError:
				msg := jobstate.FallbackError
				if st.Error != nil && strings.TrimSpace(*st.Error) != "" {
					msg = *st.Error
				}
				return st, &JobError{JobID: jobID, Message: msg}
			}
		}

		if err := p.wait(ctx); err != nil {
			return model.JobStatus{}, p.stopped(ctx, jobID)
		}
	}
}

func (p *Poller) wait(ctx context.Context) error {
	t := time.NewTimer(p.opts.Interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// stopped explains why ctx ended: ErrTimedOut for our own deadline,
// otherwise the caller's cancellation cause.
func (p *Poller) stopped(ctx context.Context, jobID string) error {
	cause := context.Cause(ctx)
	if errors.Is(cause, ErrTimedOut) {
		return fmt.Errorf("job %s: no terminal status within %s: %w", jobID, p.opts.Timeout, ErrTimedOut)
	}
	return cause
}
