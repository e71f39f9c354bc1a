package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"solver/internal/coherence"
	"solver/internal/ui"
)

// progressUI is the --ui setting of check. The zero value is auto.
type progressUI uint8

const (
	progressAuto progressUI = iota
	progressAlways
	progressNever
)

var progressUINames = map[string]progressUI{
	"":     progressAuto,
	"auto": progressAuto,
	"on":   progressAlways,
	"off":  progressNever,
}

func parseProgressUI(value string) (progressUI, error) {
	p, ok := progressUINames[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		return progressAuto, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
	return p, nil
}

// show decides whether a check run draws the progress view. Quiet runs never
// do; auto draws only short output on a terminal.
func (p progressUI) show(flags checkFlags, stdoutTTY bool) bool {
	if flags.quiet {
		return false
	}
	switch p {
	case progressAlways:
		return true
	case progressNever:
		return false
	}
	return stdoutTTY && flags.format != "json"
}

type checkOutcome struct {
	report *coherence.Report
	err    error
}

// runCheckWithUI runs coherence.Check in the background and renders its
// progress until the check finishes.
func runCheckWithUI(ctx context.Context, title string, set *coherence.Set, opts coherence.Options) (*coherence.Report, error) {
	events := make(chan coherence.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		opts.Progress = coherence.ChannelSink{Ch: events}
		report, err := coherence.Check(ctx, set, opts)
		outcomeCh <- checkOutcome{report: report, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, events), tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	go func() {
		for range events {
		}
	}()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.report, uiErr
	}
	return outcome.report, outcome.err
}
