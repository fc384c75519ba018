package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"gpuport/internal/driver"
	"gpuport/internal/pipeline"
	"gpuport/internal/ui"
)

type runOutcome struct {
	result driver.Result
	err    error
}

// runWithUI executes the driver in a goroutine and renders its progress
// events with the Bubble Tea model until the event channel closes.
func runWithUI(ctx context.Context, title string, files []string, opts *driver.Options) (driver.Result, error) {
	events := make(chan pipeline.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		optsCopy := *opts
		optsCopy.Progress = pipeline.ChannelSink{Ch: events}
		res, err := driver.RunFiles(ctx, files, &optsCopy)
		outcomeCh <- runOutcome{result: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := waitForOutcome(events, outcomeCh)
	if uiErr != nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}

// waitForOutcome keeps draining progress events while waiting for the driver
// to finish. After an early UI exit (Ctrl+C) nothing else reads the event
// channel, and a driver blocked on a full channel would never deliver its
// outcome.
func waitForOutcome(events <-chan pipeline.Event, outcomeCh <-chan runOutcome) runOutcome {
	for {
		select {
		case <-events:
		case outcome := <-outcomeCh:
			return outcome
		}
	}
}
