package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"bookfoundry/internal/model"
	"bookfoundry/internal/progress"
)

type idleBackend struct{}

func (idleBackend) StartRender(context.Context, model.RenderRequest) (model.JobHandle, error) {
	return model.JobHandle{}, errors.New("not used")
}

func (idleBackend) RenderStatus(context.Context, string) (model.JobStatus, error) {
	return model.JobStatus{}, errors.New("not used")
}

func newTestModel() Model {
	return NewModel(context.Background(), idleBackend{}, model.RenderRequest{
		Title:    "The Lost Lighthouse",
		Chapters: []string{"a", "b", "c"},
	})
}

func step(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm
}

func TestModelRendersProgress(t *testing.T) {
	m := newTestModel()
	if v := m.View(); !strings.Contains(v, "The Lost Lighthouse") || !strings.Contains(v, "waiting") {
		t.Errorf("initial view = %q", v)
	}

	m = step(t, m, jobUpdateMsg{U: progress.Update{
		JobID: "j1",
		Stage: progress.StageRendering,
		State: model.DisplayState{
			IsGenerating:     true,
			ProgressPercent:  50,
			TotalChapters:    3,
			ElapsedSeconds:   model.Float(30),
			EstimatedSeconds: model.Float(60),
		},
	}})
	v := m.View()
	if !strings.Contains(v, " 50%") {
		t.Errorf("view missing percentage: %q", v)
	}
	if !strings.Contains(v, "30s elapsed of ~1m 0s") {
		t.Errorf("view missing timing footnote: %q", v)
	}
	if !strings.Contains(v, "j1") {
		t.Errorf("view missing job id: %q", v)
	}
}

func TestModelResult(t *testing.T) {
	m := newTestModel()
	res := model.DisplayState{
		ProgressPercent: 100,
		Result: &model.RenderResult{
			Folder:      "books/lost",
			AudioFiles:  []string{"books/lost/audio/chapter_01.mp3"},
			DownloadURL: model.String("/api/audiobook/jobs/j1/download"),
		},
	}
	next, cmd := m.Update(jobResultMsg{R: progress.Result{JobID: "j1", State: res}})
	m = next.(Model)
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if !m.Done() || m.Err() != nil {
		t.Errorf("done=%v err=%v", m.Done(), m.Err())
	}
	v := m.View()
	for _, want := range []string{"books/lost", "chapter_01.mp3", "archive: /api/audiobook/jobs/j1/download"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q: %q", want, v)
		}
	}
}

func TestModelFailure(t *testing.T) {
	m := newTestModel()
	m = step(t, m, jobResultMsg{R: progress.Result{
		JobID: "j1",
		State: model.DisplayState{Error: model.String("Voice not supported")},
		Err:   errors.New("Voice not supported"),
	}})
	if m.Err() == nil {
		t.Fatal("expected error")
	}
	if v := m.View(); !strings.Contains(v, "✗ Voice not supported") {
		t.Errorf("view = %q", v)
	}
}

func TestModelQuitCancels(t *testing.T) {
	m := newTestModel()
	m = step(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if m.ctx.Err() == nil {
		t.Error("expected context to be cancelled")
	}
}

func TestReporterReturnsAfterQuit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := teaReporter{ch: make(chan tea.Msg), ctx: ctx}
	cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.Update(progress.Update{Stage: progress.StageError, Message: "boom"})
		r.Result(progress.Result{JobID: "job-a"})
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reporter blocked with nobody reading")
	}
}

func TestReporterDeliversResult(t *testing.T) {
	r := teaReporter{ch: make(chan tea.Msg), ctx: context.Background()}
	go r.Result(progress.Result{JobID: "job-a"})

	select {
	case msg := <-r.ch:
		res, ok := msg.(jobResultMsg)
		if !ok || res.R.JobID != "job-a" {
			t.Errorf("msg = %#v", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("result not delivered")
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}
