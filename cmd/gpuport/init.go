package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gpuport/internal/project"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Create a starter gpuport.toml manifest",
	Long: `Init writes a gpuport.toml manifest with the default rewrite settings
into the target directory (created if missing). It refuses to overwrite an
existing manifest.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

const manifestTemplate = `[rewrite]
extensions = [".f90"]
include_line = "include 'macros.h'"
# mapping = "renames.yaml"
`

func runInit(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	target, err := filepath.Abs(target)
	if err != nil {
		return err
	}

	if st, err := os.Stat(target); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := os.MkdirAll(target, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", target, err)
		}
	} else if !st.IsDir() {
		return fmt.Errorf("%q is not a directory", target)
	}

	manifestPath := filepath.Join(target, project.ManifestName)
	if _, err := os.Stat(manifestPath); err == nil {
		return fmt.Errorf("already initialized: %s exists", manifestPath)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := os.WriteFile(manifestPath, []byte(manifestTemplate), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", manifestPath, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created %s\n", manifestPath)
	return nil
}
