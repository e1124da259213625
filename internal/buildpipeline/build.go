package buildpipeline

import (
	"context"
	"fmt"
	"io"

	"sdkpcm/internal/manifest"
	"sdkpcm/internal/trace"
)

// BuildRequest configures a full build from a manifest.
type BuildRequest struct {
	Manifest      *manifest.Manifest
	Jobs          int
	DryRun        bool
	PrintCommands bool
	RegistryOut   string // msgpack registry snapshot path; empty to skip
	Stdout        io.Writer
	Progress      ProgressSink
}

// BuildResult captures the plan and stage timings of a build.
type BuildResult struct {
	Plan    PlanResult
	Timings Timings
}

// Build plans every module of the manifest, runs the invocations and writes
// the registry snapshot when requested.
func Build(ctx context.Context, req *BuildRequest) (BuildResult, error) {
	var result BuildResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil || req.Manifest == nil {
		return result, fmt.Errorf("missing build request")
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeDriver, "build", trace.CurrentSpan(ctx).SpanID)
	defer span.End("")
	ctx = trace.WithSpan(ctx, span)

	plan, err := Plan(ctx, &PlanRequest{
		Toolchain: req.Manifest.Toolchain,
		Modules:   req.Manifest.Modules,
		OutputDir: req.Manifest.OutputDir,
		Progress:  req.Progress,
	})
	result.Plan = plan
	result.Timings = plan.Timings
	if err != nil {
		return result, err
	}

	execTimings, err := Execute(ctx, &ExecRequest{
		Batches:       plan.Batches,
		Jobs:          req.Jobs,
		WorkDir:       req.Manifest.Root,
		DryRun:        req.DryRun,
		PrintCommands: req.PrintCommands,
		Stdout:        req.Stdout,
		Progress:      req.Progress,
	})
	if execTimings.Has(StageExecute) {
		result.Timings.Set(StageExecute, execTimings.Duration(StageExecute))
	}
	if err != nil {
		return result, err
	}

	if req.RegistryOut != "" && !req.DryRun {
		if err := plan.Planner.Registry().Save(req.RegistryOut, plan.Planner.Sets()); err != nil {
			return result, err
		}
		trace.Point(trace.FromContext(ctx), trace.ScopePass, "registry", req.RegistryOut, span.ID())
	}
	return result, nil
}
