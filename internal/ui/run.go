package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"glslcheck/internal/pipeline"
)

// Run shows the progress view until events is closed. It blocks, so the
// producer must run in another goroutine.
func Run(title string, files []string, events <-chan pipeline.Event, opts ...tea.ProgramOption) error {
	p := tea.NewProgram(NewProgressModel(title, files, events), opts...)
	_, err := p.Run()
	return err
}
