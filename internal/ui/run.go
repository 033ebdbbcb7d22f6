package ui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"bookfoundry/internal/model"
	"bookfoundry/internal/pipeline"
)

// Run shows the render screen until the job finishes or the user quits.
// It returns the final display state and the render error, or
// context.Canceled when the user quit first.
func Run(ctx context.Context, b pipeline.Backend, req model.RenderRequest, opts ...pipeline.Option) (model.DisplayState, error) {
	m := NewModel(ctx, b, req, opts...)
	// Stops the render and releases its reporter however the program ends.
	defer m.cancel()
	prog := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := prog.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return m.State(), err
	}
	fm, ok := final.(Model)
	if !ok {
		return m.State(), errors.New("unexpected final UI model")
	}
	if !fm.Done() {
		return fm.State(), context.Canceled
	}
	return fm.State(), fm.Err()
}
