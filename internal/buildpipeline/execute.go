package buildpipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"sdkpcm/internal/sdk"
	"sdkpcm/internal/trace"
)

// ExecRequest configures local execution of planned invocations.
type ExecRequest struct {
	Batches       [][]sdk.Invocation
	Jobs          int    // parallel compiler processes; <= 0 means GOMAXPROCS
	WorkDir       string // working directory of every compiler process
	DryRun        bool
	PrintCommands bool
	Stdout        io.Writer
	Progress      ProgressSink
}

// Execute runs the invocations batch by batch. A batch starts only after the
// previous one succeeded; the first failure cancels the rest of its batch.
func Execute(ctx context.Context, req *ExecRequest) (Timings, error) {
	var timings Timings
	if ctx == nil {
		ctx = context.Background()
	}
	if req == nil {
		return timings, fmt.Errorf("missing exec request")
	}
	stdout := req.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	jobs := req.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	span := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "execute", trace.CurrentSpan(ctx).SpanID)
	ctx = trace.WithSpan(ctx, span)

	if !req.DryRun {
		if err := ensureCompilersAvailable(req.Batches); err != nil {
			span.End("error")
			emit(req.Progress, Event{Stage: StageExecute, Status: StatusError, Err: err})
			return timings, err
		}
	}

	var outMu sync.Mutex
	for _, batch := range req.Batches {
		if len(batch) == 0 {
			continue
		}
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobs, len(batch)))
		for _, inv := range batch {
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				if req.PrintCommands || req.DryRun {
					outMu.Lock()
					_, err := fmt.Fprintln(stdout, inv.String())
					outMu.Unlock()
					if err != nil {
						return fmt.Errorf("failed to print command: %w", err)
					}
				}
				if req.DryRun {
					emit(req.Progress, Event{Module: inv.ModuleName, Stage: StageExecute, Status: StatusSkipped})
					return nil
				}
				emit(req.Progress, Event{Module: inv.ModuleName, Stage: StageExecute, Status: StatusWorking})
				modStart := time.Now()
				if err := runInvocation(gctx, req.WorkDir, inv); err != nil {
					err = fmt.Errorf("module %q: %w", inv.ModuleName, err)
					emit(req.Progress, Event{Module: inv.ModuleName, Stage: StageExecute, Status: StatusError, Err: err})
					return err
				}
				emit(req.Progress, Event{Module: inv.ModuleName, Stage: StageExecute, Status: StatusDone, Elapsed: time.Since(modStart)})
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			span.End("error")
			return timings, err
		}
	}
	span.End("")
	timings.Set(StageExecute, time.Since(start))
	return timings, nil
}

func ensureCompilersAvailable(batches [][]sdk.Invocation) error {
	checked := make(map[string]struct{})
	for _, batch := range batches {
		for _, inv := range batch {
			if _, ok := checked[inv.Executable]; ok {
				continue
			}
			checked[inv.Executable] = struct{}{}
			if _, err := exec.LookPath(inv.Executable); err != nil {
				return fmt.Errorf("compiler %q not found: %w", inv.Executable, err)
			}
		}
	}
	return nil
}

func runInvocation(ctx context.Context, workDir string, inv sdk.Invocation) error {
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeCommand, inv.Executable, trace.CurrentSpan(ctx).SpanID)
	output := inv.Output
	if workDir != "" && !filepath.IsAbs(output) {
		output = filepath.Join(workDir, output)
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o750); err != nil {
		span.End("error")
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	// #nosec G204 -- argv comes from the manifest the user asked to build
	cmd := exec.CommandContext(ctx, inv.Executable, inv.Args...)
	cmd.Dir = workDir
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		span.End("error")
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return err
		}
		return fmt.Errorf("%s: %s", filepath.Base(inv.Executable), msg)
	}
	span.End(inv.Output)
	return nil
}
