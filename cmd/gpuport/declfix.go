package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpuport/internal/driver"
	"gpuport/internal/fdecl"
	"gpuport/internal/project"
)

var tempsCmd = &cobra.Command{
	Use:   "temps [flags] [path]",
	Short: "Rewrite temp(...) declarations into pointer declarations",
	Long: `Temps replaces temp(TYPE, NAME, (dims)) helper declarations with the
equivalent deferred-shape pointer declaration, e.g.
temp(REAL(KIND=JPRB), ZX, (KLON,KLEV)) becomes
REAL (KIND=JPRB), pointer :: ZX(:,:).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLineTransform(cmd, args, fdecl.TempDeclTransform{})
	},
}

var allocsCmd = &cobra.Command{
	Use:   "allocs [flags] [path]",
	Short: "Expand alloc8/alloc4 calls from matching temp(...) declarations",
	Long: `Allocs finds IF (KIND(var) == n) THEN blocks and replaces the argument
list of alloc8(...)/alloc4(...) calls inside them with the full argument
string of the file's matching temp(...) declaration.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLineTransform(cmd, args, fdecl.AllocCallTransform{})
	},
}

func init() {
	for _, c := range []*cobra.Command{tempsCmd, allocsCmd} {
		c.Flags().Bool("dry-run", false, "report changes without writing files")
		c.Flags().StringSlice("ext", nil, "file extensions to process (default .f90)")
		c.Flags().Int("jobs", 0, "parallel workers (0 = number of CPUs)")
	}
}

// runLineTransform drives the shared walk/rewrite/write loop for the
// supplemental line-level transforms.
func runLineTransform(cmd *cobra.Command, args []string, tr driver.Transform) error {
	target := "."
	if len(args) == 1 {
		target = args[0]
	}
	dryRun, err := cmd.Flags().GetBool("dry-run")
	if err != nil {
		return err
	}
	exts, err := cmd.Flags().GetStringSlice("ext")
	if err != nil {
		return err
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return err
	}
	if err := configureColor(cmd); err != nil {
		return err
	}
	if len(exts) == 0 {
		exts = project.DefaultExtensions
	}

	result, err := driver.Run(cmd.Context(), target, &driver.Options{
		Transform:  tr,
		Extensions: exts,
		Jobs:       jobs,
		DryRun:     dryRun,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", tr.Name(), err)
	}

	printReports(cmd, result, dryRun, quiet)
	if result.Failed() > 0 {
		return fmt.Errorf("%s: %d file(s) failed", tr.Name(), result.Failed())
	}
	return nil
}
