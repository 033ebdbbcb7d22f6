package ui

import (
	bubblesprogress "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"

	"bookfoundry/internal/model"
	"bookfoundry/internal/progress"
)

type jobState struct {
	id     string
	title  string
	stage  progress.Stage
	status string
	state  model.DisplayState
	err    error
	done   bool

	spinner spinner.Model
	bar     bubblesprogress.Model
}

func newJobState(title string, styles Styles) *jobState {
	sp := spinner.New()
	sp.Style = styles.Spinner
	bar := bubblesprogress.New(
		bubblesprogress.WithDefaultGradient(),
		bubblesprogress.WithWidth(40),
	)
	return &jobState{
		title:   title,
		stage:   progress.StageSubmitting,
		status:  "Submitting render job",
		spinner: sp,
		bar:     bar,
	}
}

// apply folds a reporter update into the job.
func (js *jobState) apply(u progress.Update) {
	if u.JobID != "" {
		js.id = u.JobID
	}
	js.stage = u.Stage
	js.state = u.State
	if u.Message != "" {
		js.status = u.Message
	}
}

// finish records the terminal result.
func (js *jobState) finish(r progress.Result) {
	js.done = true
	js.err = r.Err
	js.state = r.State
	if r.Err != nil {
		js.stage = progress.StageError
		if r.State.Error != nil {
			js.status = *r.State.Error
		} else {
			js.status = r.Err.Error()
		}
		return
	}
	js.stage = progress.StageCompleted
	js.status = "Audiobook ready"
}

// showBar reports whether a percentage is meaningful yet.
func (js *jobState) showBar() bool {
	return js.id != "" && js.stage != progress.StageQueued && js.stage != progress.StageError
}
