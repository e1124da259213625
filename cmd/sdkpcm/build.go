package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sdkpcm/internal/buildpipeline"
	"sdkpcm/internal/observ"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Precompile every SDK module of sdkpcm.toml",
	Long:  "Plan every SDK module and run the compiler for each, dependencies first.",
	Args:  cobra.NoArgs,
	RunE:  buildExecution,
}

func init() {
	buildCmd.Flags().Int("jobs", 0, "parallel compiler processes (0 = number of CPUs)")
	buildCmd.Flags().Bool("dry-run", false, "print the commands without running them")
	buildCmd.Flags().Bool("print-commands", false, "print each command before running it")
	buildCmd.Flags().String("registry-out", "", "write a registry snapshot of the compiled modules to this file")
	buildCmd.Flags().String("ui", "auto", "interactive progress (auto|on|off)")
}

func buildExecution(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	printCommands, err := cmd.Flags().GetBool("print-commands")
	if err != nil {
		return err
	}
	registryOut, err := cmd.Flags().GetString("registry-out")
	if err != nil {
		return err
	}
	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	useTUI, err := wantTUI(uiFlag)
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	if jobs < 0 {
		return fmt.Errorf("--jobs must not be negative")
	}

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()
	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	tm := observ.NewTimer()
	loadIdx := tm.Begin("manifest")
	m, err := loadManifest(cmd)
	if err != nil {
		return err
	}
	tm.End(loadIdx, m.Path)

	req := buildpipeline.BuildRequest{
		Manifest:      m,
		Jobs:          jobs,
		DryRun:        dryRun,
		PrintCommands: printCommands,
		RegistryOut:   registryOut,
		Stdout:        cmd.OutOrStdout(),
	}
	var res buildpipeline.BuildResult
	if !quiet && !dryRun && !printCommands && useTUI {
		res, err = runBuildWithUI(cmd.Context(), &req)
	} else {
		if !quiet {
			req.Progress = &buildpipeline.WriterSink{W: cmd.ErrOrStderr()}
		}
		res, err = buildpipeline.Build(cmd.Context(), &req)
	}
	if err != nil {
		return err
	}
	if showTimings {
		return printStageTimings(cmd.ErrOrStderr(), tm, res.Timings, len(m.Modules))
	}
	return nil
}
