// Package pipeline provides planning and orchestration for audiobook renders.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"bookfoundry/internal/api"
	"bookfoundry/internal/jobstate"
	"bookfoundry/internal/model"
	"bookfoundry/internal/poller"
	"bookfoundry/internal/progress"
	"bookfoundry/internal/util/format"
)

// ErrSuperseded is returned by Render when a newer submission on the same
// reducer replaced the job before it finished.
var ErrSuperseded = errors.New("render superseded by a newer submission")

// Backend is the part of the service API a render needs.
type Backend interface {
	StartRender(ctx context.Context, req model.RenderRequest) (model.JobHandle, error)
	poller.Fetcher
}

// Service orchestrates the submit → poll → reduce workflow.
type Service struct {
	backend  Backend
	reducer  *jobstate.Reducer
	reporter progress.Reporter
	pollOpts poller.Options
	log      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithReducer shares an existing reducer, e.g. one a UI also reads from.
func WithReducer(r *jobstate.Reducer) Option {
	return func(s *Service) {
		s.reducer = r
	}
}

// WithReporter attaches a progress reporter (used by TUI).
func WithReporter(rp progress.Reporter) Option {
	return func(s *Service) {
		s.reporter = rp
	}
}

// WithPollOptions sets interval, bounds and retry policy for status polling.
func WithPollOptions(o poller.Options) Option {
	return func(s *Service) {
		s.pollOpts = o
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// NewService constructs a new Service with the provided options.
// It applies sensible defaults for missing components.
func NewService(b Backend, opts ...Option) *Service {
	s := &Service{backend: b}
	for _, o := range opts {
		o(s)
	}
	if s.reducer == nil {
		s.reducer = jobstate.NewReducer()
	}
	if s.reporter == nil {
		s.reporter = progress.Nop{}
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if s.pollOpts.Logger == nil {
		s.pollOpts.Logger = s.log
	}
	return s
}

// Reducer exposes the state owner so callers can take snapshots.
func (s *Service) Reducer() *jobstate.Reducer {
	return s.reducer
}

// Render submits req and follows the job to a terminal state. The returned
// DisplayState is the final snapshot; on failure it carries the error
// message and the error is also returned. Exactly one progress.Result is
// reported per call.
func (s *Service) Render(ctx context.Context, req model.RenderRequest) (model.DisplayState, error) {
	ticket := s.reducer.Submit()
	s.update("", progress.StageSubmitting, "Submitting render job")

	h, err := s.backend.StartRender(ctx, req)
	if err != nil {
		if rerr := s.reducer.Reject(ticket, err); rerr != nil {
			s.log.Debug("submission outcome not applied", "error", rerr)
		}
		return s.finish("", err)
	}
	if err := s.reducer.Accept(ticket, h); err != nil {
		return s.superseded(h.JobID, model.DisplayState{}, err)
	}
	log := s.log.With("job_id", h.JobID)
	log.Info("polling render job", "total_chapters", h.TotalChapters)
	s.update(h.JobID, progress.StageQueued, fmt.Sprintf("Job %s accepted", h.JobID))

	opts := s.pollOpts
	userRetry := opts.OnRetry
	opts.OnRetry = func(attempt int, err error) {
		s.update(h.JobID, progress.StageRetrying, "Status check failed, retrying: "+err.Error())
		if userRetry != nil {
			userRetry(attempt, err)
		}
	}

	// A newer submission on the same reducer cancels this loop.
	pctx, stop := context.WithCancelCause(ctx)
	defer stop(nil)
	var last model.DisplayState

	_, err = poller.New(s.backend, opts).Run(pctx, h.JobID, func(st model.JobStatus) {
		if aerr := s.reducer.Apply(h.JobID, st); aerr != nil {
			if errors.Is(aerr, jobstate.ErrStale) && s.reducer.ActiveJob() != h.JobID {
				stop(ErrSuperseded)
				return
			}
			log.Debug("status not applied", "status", st.Status, "error", aerr)
			return
		}
		snap := s.reducer.Snapshot()
		last = snap
		s.reporter.Update(progress.Update{
			JobID:   h.JobID,
			Stage:   progress.StageFor(st.Status),
			State:   snap,
			Message: StatusLine(snap),
		})
	})
	if errors.Is(context.Cause(pctx), ErrSuperseded) || s.reducer.ActiveJob() != h.JobID {
		return s.superseded(h.JobID, last, ErrSuperseded)
	}

	if err != nil {
		var je *poller.JobError
		if !errors.As(err, &je) {
			if ferr := s.reducer.Fail(h.JobID, failureMessage(err)); ferr != nil {
				log.Debug("failure not applied", "error", ferr)
			}
		}
	}
	return s.finish(h.JobID, err)
}

// finish reports the terminal result. A job that ended failed in the
// reducer without a poll error still surfaces as a *poller.JobError.
func (s *Service) finish(jobID string, err error) (model.DisplayState, error) {
	snap := s.reducer.Snapshot()
	if err == nil && snap.Error != nil {
		err = &poller.JobError{JobID: jobID, Message: *snap.Error}
	}
	if err != nil {
		s.log.Warn("render failed", "job_id", jobID, "error", err)
		s.reporter.Update(progress.Update{JobID: jobID, Stage: progress.StageError, State: snap, Message: failureMessage(err)})
	} else {
		files := 0
		if snap.Result != nil {
			files = len(snap.Result.AudioFiles)
		}
		s.log.Info("render completed", "job_id", jobID, "files", files)
	}
	s.reporter.Result(progress.Result{JobID: jobID, State: snap, Err: err})
	return snap, err
}

// superseded ends a render whose job a newer submission replaced. st is
// the last state this render reported; the shared reducer now belongs to
// the newer submission and is left alone.
func (s *Service) superseded(jobID string, st model.DisplayState, cause error) (model.DisplayState, error) {
	err := fmt.Errorf("job %s: %w", jobID, ErrSuperseded)
	s.log.Info("dropping superseded job", "job_id", jobID, "cause", cause)
	s.reporter.Result(progress.Result{JobID: jobID, State: st, Err: err})
	return st, err
}

func (s *Service) update(jobID string, stage progress.Stage, msg string) {
	s.reporter.Update(progress.Update{
		JobID:   jobID,
		Stage:   stage,
		State:   s.reducer.Snapshot(),
		Message: msg,
	})
}

// StatusLine summarizes a snapshot the way the render screen footnote does.
func StatusLine(st model.DisplayState) string {
	switch {
	case st.Result != nil:
		return fmt.Sprintf("Audiobook ready: %d files in %s", len(st.Result.AudioFiles), st.Result.Folder)
	case st.Error != nil:
		return *st.Error
	case st.ElapsedSeconds != nil && st.EstimatedSeconds != nil && *st.EstimatedSeconds > 0:
		return fmt.Sprintf("%s elapsed of ~%s", format.Seconds(*st.ElapsedSeconds), format.Seconds(*st.EstimatedSeconds))
	case st.TotalChapters > 0:
		return fmt.Sprintf("%d of %d chapters rendered", st.CompletedChapters, st.TotalChapters)
	default:
		return "Waiting for the render to start"
	}
}

// failureMessage picks the human-facing text for err.
func failureMessage(err error) string {
	var je *poller.JobError
	var ae *api.APIError
	switch {
	case errors.As(err, &je):
		return je.Message
	case errors.Is(err, ErrSuperseded):
		return "Render superseded by a newer submission"
	case errors.Is(err, poller.ErrTimedOut):
		return "Timed out waiting for the audiobook to finish"
	case errors.Is(err, context.Canceled):
		return "Render cancelled"
	case errors.As(err, &ae):
		return ae.Error()
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}
