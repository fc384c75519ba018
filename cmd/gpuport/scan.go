package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpuport/internal/directive"
	"gpuport/internal/driver"
	"gpuport/internal/project"
	"gpuport/internal/source"
)

var scanCmd = &cobra.Command{
	Use:   "scan [flags] [path]",
	Short: "List recognized directives without rewriting anything",
	Long: `Scan classifies every directive in the target and prints the macro call
each one would become. Nothing is written; unrecognized directives are
reported as passed through.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringSlice("ext", nil, "file extensions to process (default .f90)")
	scanCmd.Flags().Bool("all", false, "also list directives no rule recognizes")
}

func runScan(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	exts, err := cmd.Flags().GetStringSlice("ext")
	if err != nil {
		return err
	}
	showAll, err := cmd.Flags().GetBool("all")
	if err != nil {
		return err
	}
	if err := configureColor(cmd); err != nil {
		return err
	}
	if len(exts) == 0 {
		exts = project.DefaultExtensions
	}

	files, err := driver.Targets(target, exts)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	out := cmd.OutOrStdout()
	rules := directive.Rules()
	fileSet := source.NewFileSetWithBase(target)

	recognized, passed := 0, 0
	for _, path := range files {
		id, err := fileSet.Load(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s: %v\n", path, err)
			continue
		}
		for _, line := range directive.JoinLines(fileSet.Get(id).Lines()) {
			if !line.IsDirective {
				continue
			}
			if text, ok := directive.RewriteBody(line.Body, rules); ok {
				fmt.Fprintf(out, "%s: %s\n    -> %s\n", path, line.Body, text)
				recognized++
				continue
			}
			passed++
			if showAll {
				fmt.Fprintf(out, "%s: %s\n    -> (passed through)\n", path, line.Body)
			}
		}
	}
	fmt.Fprintf(out, "%d directive(s) recognized, %d passed through\n", recognized, passed)
	return nil
}
