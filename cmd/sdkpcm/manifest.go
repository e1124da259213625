package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"sdkpcm/internal/manifest"
)

var errNoManifest = errors.New("no " + manifest.FileName + " found\nplease pass one explicitly, e.g.:\n  sdkpcm plan --manifest path/to/" + manifest.FileName)

func loadManifest(cmd *cobra.Command) (*manifest.Manifest, error) {
	path, err := cmd.Root().PersistentFlags().GetString("manifest")
	if err != nil {
		return nil, fmt.Errorf("failed to get manifest flag: %w", err)
	}
	if path != "" {
		return manifest.Load(path)
	}
	m, found, err := manifest.LoadFromDir(".")
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, errNoManifest
	}
	return m, nil
}
