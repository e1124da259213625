package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"sdkpcm/internal/buildpipeline"
	"sdkpcm/internal/ui"
)

// wantTUI interprets --ui. "auto" enables the interactive view only when
// stdout is a terminal.
func wantTUI(value string) (bool, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return isTerminal(os.Stdout), nil
	case "on":
		return true, nil
	case "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// runBuildWithUI runs the build on a separate goroutine and renders its
// progress until the event stream closes. Quitting the view cancels the build.
func runBuildWithUI(ctx context.Context, req *buildpipeline.BuildRequest) (buildpipeline.BuildResult, error) {
	if req == nil || req.Manifest == nil {
		return buildpipeline.BuildResult{}, fmt.Errorf("missing build request")
	}
	names := make([]string, 0, len(req.Manifest.Modules))
	for _, mod := range req.Manifest.Modules {
		names = append(names, mod.ModuleName)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan buildpipeline.Event, 256)
	local := *req
	local.Progress = buildpipeline.ChannelSink{Ch: events}

	var (
		res      buildpipeline.BuildResult
		buildErr error
	)
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		defer close(events)
		res, buildErr = buildpipeline.Build(ctx, &local)
	}()

	model := ui.NewProgressModel(fmt.Sprintf("precompiling %d SDK modules", len(names)), names, events)
	_, uiErr := tea.NewProgram(model, tea.WithOutput(os.Stdout)).Run()
	cancel()
	go func() {
		for range events {
		}
	}()
	<-finished

	if uiErr != nil {
		return res, fmt.Errorf("progress view: %w", uiErr)
	}
	return res, buildErr
}
