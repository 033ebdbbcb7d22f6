package jobstate

import (
	"errors"
	"testing"

	"bookfoundry/internal/model"
)

func startPolling(t *testing.T, r *Reducer, jobID string, total int) {
	t.Helper()
	tk := r.Submit()
	if err := r.Accept(tk, model.JobHandle{JobID: jobID, TotalChapters: total}); err != nil {
		t.Fatalf("accept: %v", err)
	}
}

// TestReducerScenarioA covers a unit-based running status.
func TestReducerScenarioA(t *testing.T) {
	r := NewReducer()
	startPolling(t, r, "j1", 2)

	if got := r.Snapshot().TotalChapters; got != 2 {
		t.Fatalf("total after accept = %d, want 2", got)
	}
	err := r.Apply("j1", model.JobStatus{Status: model.StatusRunning, CompletedChapters: 1, TotalChapters: 2, Progress: 50})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	s := r.Snapshot()
	if s.ProgressPercent != 50 {
		t.Errorf("ProgressPercent = %d, want 50", s.ProgressPercent)
	}
	if s.CompletedChapters != 1 || s.TotalChapters != 2 {
		t.Errorf("chapters = %d/%d, want 1/2", s.CompletedChapters, s.TotalChapters)
	}
	if !s.IsGenerating || s.Result != nil || s.Error != nil {
		t.Errorf("non-terminal state leaked terminal fields: %+v", s)
	}
	if r.Phase() != PhasePolling {
		t.Errorf("phase = %s, want polling", r.Phase())
	}
}

func TestReducerTimeBasedScenarios(t *testing.T) {
	tests := []struct {
		name              string
		elapsed, estimate float64
		want              int
	}{
		{name: "scenario B", elapsed: 30, estimate: 60, want: 50},
		{name: "scenario C", elapsed: 59, estimate: 60, want: 98},
		{name: "overrun capped", elapsed: 75, estimate: 60, want: 99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReducer()
			startPolling(t, r, "j1", 2)
			st := model.JobStatus{
				Status:           model.StatusRunning,
				ElapsedSeconds:   model.Float(tt.elapsed),
				EstimatedSeconds: model.Float(tt.estimate),
			}
			if err := r.Apply("j1", st); err != nil {
				t.Fatalf("apply: %v", err)
			}
			s := r.Snapshot()
			if s.ProgressPercent != tt.want {
				t.Errorf("ProgressPercent = %d, want %d", s.ProgressPercent, tt.want)
			}
			if s.ElapsedSeconds == nil || *s.ElapsedSeconds != tt.elapsed {
				t.Errorf("ElapsedSeconds = %v, want %v", s.ElapsedSeconds, tt.elapsed)
			}
		})
	}
}

// TestReducerScenarioD covers completion without a download reference.
func TestReducerScenarioD(t *testing.T) {
	r := NewReducer()
	startPolling(t, r, "j1", 2)

	err := r.Apply("j1", model.JobStatus{
		Status: model.StatusCompleted,
		Result: &model.ResultPayload{Folder: "out/book1", AudioFiles: []string{"ch1.mp3", "ch2.mp3"}},
	})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	s := r.Snapshot()
	if s.IsGenerating {
		t.Error("IsGenerating = true after completion")
	}
	if s.Error != nil {
		t.Errorf("Error = %q, want nil", *s.Error)
	}
	if s.Result == nil {
		t.Fatal("Result = nil after completion")
	}
	if s.Result.Folder != "out/book1" {
		t.Errorf("Folder = %q", s.Result.Folder)
	}
	if len(s.Result.AudioFiles) != 2 || s.Result.AudioFiles[0] != "ch1.mp3" || s.Result.AudioFiles[1] != "ch2.mp3" {
		t.Errorf("AudioFiles = %v", s.Result.AudioFiles)
	}
	if s.Result.DownloadURL != nil {
		t.Errorf("DownloadURL = %q, want nil", *s.Result.DownloadURL)
	}
	if s.ProgressPercent != 100 {
		t.Errorf("ProgressPercent = %d, want 100", s.ProgressPercent)
	}
	if r.Phase() != PhaseCompleted {
		t.Errorf("phase = %s, want completed", r.Phase())
	}

	// Terminal state is frozen.
	if err := r.Apply("j1", model.JobStatus{Status: model.StatusRunning, Progress: 10}); !errors.Is(err, ErrStale) {
		t.Errorf("apply after completion err = %v, want ErrStale", err)
	}
	if got := r.Snapshot().ProgressPercent; got != 100 {
		t.Errorf("ProgressPercent changed after completion: %d", got)
	}
}

// TestReducerScenarioE covers a job-reported error.
func TestReducerScenarioE(t *testing.T) {
	r := NewReducer()
	startPolling(t, r, "j1", 2)

	if err := r.Apply("j1", model.JobStatus{Status: model.StatusError, Error: model.String("tts quota exceeded")}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	s := r.Snapshot()
	if s.Error == nil || *s.Error != "tts quota exceeded" {
		t.Fatalf("Error = %v, want tts quota exceeded", s.Error)
	}
	if s.IsGenerating || s.Result != nil {
		t.Errorf("unexpected state %+v", s)
	}
	if r.Phase() != PhaseFailed {
		t.Errorf("phase = %s, want failed", r.Phase())
	}
}

func TestReducerErrorFallbackMessage(t *testing.T) {
	for _, msg := range []*string{nil, model.String("  ")} {
		r := NewReducer()
		startPolling(t, r, "j1", 1)
		if err := r.Apply("j1", model.JobStatus{Status: model.StatusError, Error: msg}); err != nil {
			t.Fatalf("apply: %v", err)
		}
		if s := r.Snapshot(); s.Error == nil || *s.Error != FallbackError {
			t.Errorf("Error = %v, want fallback", s.Error)
		}
	}
}

func TestReducerCompletedWithoutResultFails(t *testing.T) {
	r := NewReducer()
	startPolling(t, r, "j1", 1)
	if err := r.Apply("j1", model.JobStatus{Status: model.StatusCompleted}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	s := r.Snapshot()
	if s.Error == nil || s.Result != nil {
		t.Fatalf("want error-only terminal state, got %+v", s)
	}
}

func TestReducerTotalChaptersNeverShrinks(t *testing.T) {
	r := NewReducer()
	startPolling(t, r, "j1", 4)

	steps := []model.JobStatus{
		{Status: model.StatusRunning, CompletedChapters: 1, TotalChapters: 3},
		{Status: model.StatusRunning, CompletedChapters: 2, TotalChapters: 5},
		{Status: model.StatusRunning, CompletedChapters: 3, TotalChapters: 0},
	}
	prev := 0
	for i, st := range steps {
		if err := r.Apply("j1", st); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		total := r.Snapshot().TotalChapters
		if total < prev {
			t.Errorf("step %d: total shrank from %d to %d", i, prev, total)
		}
		prev = total
	}
	if prev != 5 {
		t.Errorf("final total = %d, want 5", prev)
	}
}

func TestReducerRejectsStaleJob(t *testing.T) {
	r := NewReducer()
	startPolling(t, r, "old", 2)

	// A new submission supersedes the old job before its poll resolves.
	tk := r.Submit()
	if err := r.Apply("old", model.JobStatus{Status: model.StatusRunning, Progress: 80}); !errors.Is(err, ErrStale) {
		t.Fatalf("apply old during submit err = %v, want ErrStale", err)
	}
	if err := r.Accept(tk, model.JobHandle{JobID: "new", TotalChapters: 3}); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if err := r.Apply("old", model.JobStatus{Status: model.StatusCompleted, Result: &model.ResultPayload{Folder: "x"}}); !errors.Is(err, ErrStale) {
		t.Fatalf("apply old after accept err = %v, want ErrStale", err)
	}
	if err := r.Fail("old", "boom"); !errors.Is(err, ErrStale) {
		t.Fatalf("fail old err = %v, want ErrStale", err)
	}
	s := r.Snapshot()
	if s.ProgressPercent != 0 || s.Result != nil || s.Error != nil || s.TotalChapters != 3 {
		t.Errorf("stale updates leaked into state: %+v", s)
	}
}

func TestReducerStaleTicket(t *testing.T) {
	r := NewReducer()
	first := r.Submit()
	second := r.Submit()

	if err := r.Accept(first, model.JobHandle{JobID: "a"}); !errors.Is(err, ErrStale) {
		t.Errorf("accept stale ticket err = %v, want ErrStale", err)
	}
	if err := r.Reject(first, errors.New("late")); !errors.Is(err, ErrStale) {
		t.Errorf("reject stale ticket err = %v, want ErrStale", err)
	}
	if err := r.Accept(second, model.JobHandle{JobID: "b"}); err != nil {
		t.Errorf("accept current ticket: %v", err)
	}
}

func TestReducerSubmissionError(t *testing.T) {
	r := NewReducer()
	tk := r.Submit()
	if !r.Snapshot().IsGenerating {
		t.Fatal("IsGenerating = false while submitting")
	}
	if err := r.Reject(tk, errors.New("Chapters are required")); err != nil {
		t.Fatalf("reject: %v", err)
	}
	s := r.Snapshot()
	if s.IsGenerating || s.Error == nil || *s.Error != "Chapters are required" {
		t.Errorf("unexpected state %+v", s)
	}
	if r.Phase() != PhaseFailed {
		t.Errorf("phase = %s, want failed", r.Phase())
	}
	// Already terminal: a second reject is not a valid transition.
	if err := r.Reject(tk, errors.New("again")); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second reject err = %v, want ErrInvalidTransition", err)
	}
}

func TestReducerResubmitResetsState(t *testing.T) {
	r := NewReducer()
	startPolling(t, r, "j1", 2)
	if err := r.Apply("j1", model.JobStatus{Status: model.StatusError, Error: model.String("nope")}); err != nil {
		t.Fatalf("apply: %v", err)
	}

	r.Submit()
	s := r.Snapshot()
	if s.Error != nil || s.Result != nil || s.ProgressPercent != 0 || s.TotalChapters != 0 {
		t.Errorf("state not reset on resubmit: %+v", s)
	}
	if r.Phase() != PhaseSubmitting {
		t.Errorf("phase = %s, want submitting", r.Phase())
	}
}

func TestReducerFail(t *testing.T) {
	r := NewReducer()
	startPolling(t, r, "j1", 2)
	if err := r.Fail("j1", ""); err != nil {
		t.Fatalf("fail: %v", err)
	}
	s := r.Snapshot()
	if s.Error == nil || *s.Error != FallbackError || s.IsGenerating {
		t.Errorf("unexpected state %+v", s)
	}
}

func TestReducerReset(t *testing.T) {
	r := NewReducer()
	startPolling(t, r, "j1", 2)
	r.Reset()
	if r.Phase() != PhaseIdle || r.ActiveJob() != "" {
		t.Fatalf("reset left phase=%s job=%q", r.Phase(), r.ActiveJob())
	}
	if err := r.Apply("j1", model.JobStatus{Status: model.StatusRunning}); !errors.Is(err, ErrStale) {
		t.Errorf("apply after reset err = %v, want ErrStale", err)
	}
}

func TestSnapshotIsIndependent(t *testing.T) {
	r := NewReducer()
	startPolling(t, r, "j1", 1)
	_ = r.Apply("j1", model.JobStatus{
		Status: model.StatusCompleted,
		Result: &model.ResultPayload{Folder: "f", AudioFiles: []string{"a.mp3"}},
	})
	s := r.Snapshot()
	s.Result.AudioFiles[0] = "mutated"
	if got := r.Snapshot().Result.AudioFiles[0]; got != "a.mp3" {
		t.Errorf("snapshot aliased reducer state: %q", got)
	}
}
