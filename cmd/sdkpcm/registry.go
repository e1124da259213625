package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sdkpcm/internal/registry"
)

var registryCmd = &cobra.Command{
	Use:   "registry <snapshot>",
	Short: "Show a registry snapshot written by build --registry-out",
	Args:  cobra.ExactArgs(1),
	RunE:  registryExecution,
}

func init() {
	registryCmd.Flags().Bool("json", false, "print entries as JSON")
	registryCmd.Flags().String("module", "", "show a single module")
}

func registryExecution(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	only, err := cmd.Flags().GetString("module")
	if err != nil {
		return err
	}
	snap, err := registry.Load(args[0])
	if err != nil {
		return err
	}
	entries := snap.Entries
	if only != "" {
		entry, ok := snap.Lookup(only)
		if !ok {
			return fmt.Errorf("%q: %w", only, registry.ErrNotFound)
		}
		entries = []registry.SnapshotEntry{entry}
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}
	bold := color.New(color.Bold)
	for _, e := range entries {
		kind := "module"
		if e.IsFramework {
			kind = "framework"
		}
		fmt.Fprintf(out, "%s (%s)\n", bold.Sprint(e.ModuleName), kind)
		fmt.Fprintf(out, "  output:    %s\n", e.Output)
		fmt.Fprintf(out, "  modulemap: %s\n", e.InputRelativePath)
		if len(e.DepModules) > 0 {
			fmt.Fprintf(out, "  deps:      %s\n", strings.Join(e.DepModules, ", "))
		}
	}
	return nil
}
