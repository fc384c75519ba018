package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"gpuport/internal/driver"
	"gpuport/internal/mapping"
	"gpuport/internal/observ"
	"gpuport/internal/project"
	"gpuport/internal/rewrite"
)

var rewriteCmd = &cobra.Command{
	Use:   "rewrite [flags] [path]",
	Short: "Rewrite OpenACC directives into GPU_* macro calls",
	Long: `Rewrite joins continued !$ACC lines, replaces every recognized data
directive with the matching GPU_* macro call, and inserts the supporting
include into files that changed. Files without changes are left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRewrite,
}

func init() {
	rewriteCmd.Flags().Bool("dry-run", false, "report changes without writing files")
	rewriteCmd.Flags().StringSlice("ext", nil, "file extensions to process (default from manifest, else .f90)")
	rewriteCmd.Flags().Int("jobs", 0, "parallel workers (0 = number of CPUs)")
	rewriteCmd.Flags().Bool("no-cache", false, "disable the result cache")
	rewriteCmd.Flags().String("mapping", "", "YAML token replacement table")
	rewriteCmd.Flags().String("ui", "auto", "progress rendering (auto|plain|fancy)")
}

func runRewrite(cmd *cobra.Command, args []string) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}

	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	extFlag, err := cmd.Flags().GetStringSlice("ext")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return err
	}
	mappingFlag, err := cmd.Flags().GetString("mapping")
	if err != nil {
		return err
	}
	uiMode, err := cmd.Flags().GetString("ui")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return err
	}
	if err := configureColor(cmd); err != nil {
		return err
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}
	startDir := target
	if !info.IsDir() {
		startDir = filepath.Dir(target)
	}

	manifest, _, err := project.Find(startDir)
	if err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}

	exts := extFlag
	includeLine := ""
	mappingPath := mappingFlag
	if manifest != nil {
		if len(exts) == 0 {
			exts = manifest.Config.Extensions()
		}
		includeLine = manifest.Config.Rewrite.IncludeLine
		if mappingPath == "" {
			mappingPath = manifest.MappingPath()
		}
	}
	if len(exts) == 0 {
		exts = project.DefaultExtensions
	}

	var table *mapping.Table
	if mappingPath != "" {
		table, err = mapping.Load(mappingPath)
		if err != nil {
			return fmt.Errorf("rewrite: %w", err)
		}
	}

	var cache *driver.DiskCache
	if !noCache {
		cache, err = driver.OpenDiskCache("gpuport")
		if err != nil {
			// The cache is an optimization; run without it.
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: result cache unavailable: %v\n", err)
			cache = nil
		}
	}

	opts := &driver.Options{
		Transform: rewrite.NewEngine(rewrite.Options{
			IncludeLine: includeLine,
			Mapping:     table,
		}),
		Extensions: exts,
		Jobs:       jobs,
		DryRun:     dryRun,
		Cache:      cache,
	}

	timer := observ.NewTimer()
	enumerate := timer.Begin("enumerate")
	files, err := driver.Targets(target, exts)
	if err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}
	timer.End(enumerate, fmt.Sprintf("%d files", len(files)))

	useFancy := uiMode == "fancy" ||
		(uiMode == "auto" && isTerminal(os.Stdout) && len(files) > 1)

	run := timer.Begin("rewrite")
	var result driver.Result
	if useFancy {
		result, err = runWithUI(cmd.Context(), "rewriting directives", files, opts)
	} else {
		result, err = driver.RunFiles(cmd.Context(), files, opts)
	}
	timer.End(run, "")
	if err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}

	printReports(cmd, result, dryRun, quiet)
	if showTimings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	if result.Failed() > 0 {
		return fmt.Errorf("rewrite: %d file(s) failed", result.Failed())
	}
	return nil
}

func printReports(cmd *cobra.Command, result driver.Result, dryRun, quiet bool) {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()

	for _, report := range result.Reports {
		switch {
		case report.Err != nil:
			fmt.Fprintf(errOut, "failed: %s: %v\n", report.Path, report.Err)
		case report.Changed && dryRun && !quiet:
			fmt.Fprintf(out, "Would update: %s (%d directives, %d tokens)\n",
				report.Path, report.Rewritten, report.Replaced)
		case report.Changed && !quiet:
			fmt.Fprintf(out, "Updated: %s\n", report.Path)
		}
	}
	if !quiet {
		fmt.Fprintf(out, "%d file(s), %d updated, %d skipped, %d failed\n",
			len(result.Reports), result.Changed(), result.Skipped(), result.Failed())
	}
}
