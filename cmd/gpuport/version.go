package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpuport/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the gpuport version",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	if err := configureColor(cmd); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "gpuport %s\n", version.Version)
	if version.GitCommit != "" {
		fmt.Fprintf(out, "commit: %s\n", version.GitCommit)
	}
	if version.BuildDate != "" {
		fmt.Fprintf(out, "built:  %s\n", version.BuildDate)
	}
	return nil
}
