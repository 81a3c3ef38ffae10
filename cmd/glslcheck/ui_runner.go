package main

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"glslcheck/internal/driver"
	"glslcheck/internal/pipeline"
	"glslcheck/internal/ui"
)

// errInterrupted is returned when the progress view is closed before
// validation finishes.
var errInterrupted = errors.New("interrupted")

type validateOutcome struct {
	results []*driver.FileResult
	err     error
}

// runWithUI validates files while the progress view renders their events.
// Closing the view cancels the remaining validation.
func runWithUI(ctx context.Context, title string, files []string, env *driver.Env, jobs int, opts ...tea.ProgramOption) ([]*driver.FileResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan validateOutcome, 1)

	envCopy := *env
	envCopy.Progress = pipeline.ChannelSink{Ch: events}
	go func() {
		res, err := driver.ValidateFiles(ctx, files, &envCopy, jobs)
		outcomeCh <- validateOutcome{results: res, err: err}
		close(events)
	}()

	opts = append([]tea.ProgramOption{tea.WithOutput(os.Stderr)}, opts...)
	uiErr := ui.Run(title, files, events, opts...)

	// the view may quit early (ctrl+c); stop the workers and keep reading
	// events so none of them stays blocked on the channel
	cancel()
	for range events {
	}
	outcome := <-outcomeCh

	if uiErr != nil {
		return outcome.results, uiErr
	}
	if outcome.err != nil && errors.Is(outcome.err, context.Canceled) && ctx.Err() != nil {
		return outcome.results, errInterrupted
	}
	return outcome.results, outcome.err
}
