// Package buildpipeline drives SDK module precompilation: it orders the
// modules of a manifest, assembles one compiler invocation per module and
// optionally runs them.
package buildpipeline

import (
	"context"
	"fmt"
	"time"

	"sdkpcm/internal/dag"
	"sdkpcm/internal/pcm"
	"sdkpcm/internal/sdk"
	"sdkpcm/internal/trace"
)

// PlanRequest configures command assembly for one build evaluation.
type PlanRequest struct {
	Toolchain sdk.Toolchain
	Modules   []sdk.UncompiledModule
	OutputDir string
	Progress  ProgressSink
}

// PlanResult holds the assembled invocations batch by batch. Invocations in
// one batch only depend on earlier batches.
type PlanResult struct {
	Batches [][]sdk.Invocation
	Planner *pcm.Planner
	Timings Timings
}

// Invocations returns every invocation in dependency order.
func (r *PlanResult) Invocations() []sdk.Invocation {
	var out []sdk.Invocation
	for _, b := range r.Batches {
		out = append(out, b...)
	}
	return out
}

// Plan orders req.Modules and assembles their invocations. Each module's
// partial command gets the shared reproducibility flags prepended.
func Plan(ctx context.Context, req *PlanRequest) (PlanResult, error) {
	var result PlanResult
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return result, fmt.Errorf("missing plan request")
	}
	tracer := trace.FromContext(ctx)
	parent := trace.CurrentSpan(ctx).SpanID

	orderStart := time.Now()
	orderSpan := trace.Begin(tracer, trace.ScopePass, "order", parent)
	batches, err := dag.Plan(req.Modules)
	orderSpan.End(fmt.Sprintf("%d batches", len(batches)))
	if err != nil {
		emit(req.Progress, Event{Stage: StageOrder, Status: StatusError, Err: err})
		return result, err
	}
	result.Timings.Set(StageOrder, time.Since(orderStart))

	for _, batch := range batches {
		for _, mod := range batch {
			emit(req.Progress, Event{Module: mod.ModuleName, Stage: StageAssemble, Status: StatusQueued})
		}
	}

	assembleStart := time.Now()
	span := trace.Begin(tracer, trace.ScopePass, "assemble", parent)
	actx := trace.WithSpan(ctx, span)
	planner := pcm.NewPlanner(req.Toolchain, req.OutputDir)
	result.Planner = planner
	for _, batch := range batches {
		invs := make([]sdk.Invocation, 0, len(batch))
		for _, mod := range batch {
			mod.PartialCmd = pcm.PartialCommand(mod.ModuleName, req.Toolchain, mod.PartialCmd)
			inv, err := planner.Compile(actx, mod)
			if err != nil {
				span.End("error")
				emit(req.Progress, Event{Module: mod.ModuleName, Stage: StageAssemble, Status: StatusError, Err: err})
				return result, err
			}
			invs = append(invs, inv)
		}
		result.Batches = append(result.Batches, invs)
	}
	span.End(fmt.Sprintf("%d modules", planner.Registry().Len()))
	result.Timings.Set(StageAssemble, time.Since(assembleStart))
	return result, nil
}
