package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"sdkpcm/internal/buildpipeline"
	"sdkpcm/internal/observ"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the compiler invocation of every SDK module",
	Long:  "Load sdkpcm.toml, order modules by dependency and print one compiler invocation per module without running anything.",
	Args:  cobra.NoArgs,
	RunE:  planExecution,
}

func init() {
	planCmd.Flags().Bool("json", false, "print invocations as JSON")
}

type planEntry struct {
	Module string   `json:"module"`
	Batch  int      `json:"batch"`
	Output string   `json:"output"`
	Argv   []string `json:"argv"`
}

func planExecution(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
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

	res, err := buildpipeline.Plan(cmd.Context(), &buildpipeline.PlanRequest{
		Toolchain: m.Toolchain,
		Modules:   m.Modules,
		OutputDir: m.OutputDir,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if asJSON {
		entries := make([]planEntry, 0, len(m.Modules))
		for i, batch := range res.Batches {
			for _, inv := range batch {
				entries = append(entries, planEntry{
					Module: inv.ModuleName,
					Batch:  i,
					Output: inv.Output,
					Argv:   inv.Argv(),
				})
			}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(entries); err != nil {
			return err
		}
	} else {
		for _, inv := range res.Invocations() {
			line, err := inv.Command()
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintln(out, line); err != nil {
				return err
			}
		}
	}
	if showTimings {
		return printStageTimings(cmd.ErrOrStderr(), tm, res.Timings, len(m.Modules))
	}
	return nil
}
