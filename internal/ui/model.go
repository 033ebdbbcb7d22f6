package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"bookfoundry/internal/model"
	"bookfoundry/internal/pipeline"
	"bookfoundry/internal/progress"
)

type Model struct {
	ctx    context.Context
	cancel context.CancelFunc

	svc *pipeline.Service
	req model.RenderRequest
	job *jobState

	// UI
	width, height int
	styles        Styles

	// Internal event channel used by reporter to feed tea messages
	eventCh chan tea.Msg
}

// NewModel builds the render screen. The pipeline service is created here so
// its reporter feeds this model; opts configure polling and logging.
func NewModel(ctx context.Context, b pipeline.Backend, req model.RenderRequest, opts ...pipeline.Option) Model {
	c, cancel := context.WithCancel(ctx)
	sty := defaultStyles()
	ch := make(chan tea.Msg, 256)

	opts = append(opts, pipeline.WithReporter(teaReporter{ch: ch, ctx: c}))
	return Model{
		ctx:     c,
		cancel:  cancel,
		svc:     pipeline.NewService(b, opts...),
		req:     req,
		job:     newJobState(req.Title, sty),
		styles:  sty,
		eventCh: ch,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.job.spinner.Tick, m.listenEventsCmd(), m.renderCmd())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.cancel()
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.job.bar.Width = min(max(msg.Width-12, 10), 60)

	case jobUpdateMsg:
		m.job.apply(msg.U)
	case jobResultMsg:
		m.job.finish(msg.R)
		return m, tea.Quit
	case allDoneMsg:
		return m, tea.Quit
	}

	var cmds []tea.Cmd
	var c tea.Cmd
	m.job.spinner, c = m.job.spinner.Update(msg)
	if c != nil {
		cmds = append(cmds, c)
	}
	// Keep listening for events
	cmds = append(cmds, m.listenEventsCmd())
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	out := m.viewHeader() + "\n\n" + m.viewJob()
	if summary := m.viewSummary(); summary != "" {
		out += "\n" + summary
	}
	return out
}

func (m Model) listenEventsCmd() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-m.ctx.Done():
			return allDoneMsg{}
		case msg := <-m.eventCh:
			return msg
		}
	}
}

// renderCmd runs the whole submit and poll cycle off the UI goroutine; its
// outcome arrives through the reporter.
func (m Model) renderCmd() tea.Cmd {
	return func() tea.Msg {
		go func() {
			_, _ = m.svc.Render(m.ctx, m.req)
		}()
		return nil
	}
}

// State returns the last display state seen by the UI.
func (m Model) State() model.DisplayState {
	return m.job.state
}

// Err returns the render error, if the job finished with one.
func (m Model) Err() error {
	return m.job.err
}

// Done reports whether a terminal result was received.
func (m Model) Done() bool {
	return m.job.done
}

type teaReporter struct {
	ch  chan tea.Msg
	ctx context.Context
}

func (r teaReporter) Update(u progress.Update) {
	// Terminal updates must reach the model unless it has gone away.
	if u.Stage == progress.StageCompleted || u.Stage == progress.StageError {
		r.send(jobUpdateMsg{U: u})
		return
	}
	select {
	case r.ch <- jobUpdateMsg{U: u}:
	default:
	}
}

func (r teaReporter) Result(res progress.Result) {
	r.send(jobResultMsg{R: res})
}

// send blocks until msg is queued or the model's context ends, so a render
// finishing after the program quit never waits on a reader that is gone.
func (r teaReporter) send(msg tea.Msg) {
	select {
	case r.ch <- msg:
	case <-r.ctx.Done():
	}
}
