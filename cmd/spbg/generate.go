package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"spbg/internal/pipeline"
	"spbg/internal/project"
)

type generateOptions struct {
	out    string
	config string
	emitIR string
}

func newGenerateCmd() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate <context-dir>",
		Short: "Generate Cython bindings for a compiled model",
		Long: `Reads codeInfo.json from the context directory and writes the declaration,
wrapper, build script and helper module next to copies of the native sources.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "output directory (default <context>/python_out)")
	cmd.Flags().StringVar(&opts.config, "config", "", "config file (default spbg.toml from the context upwards)")
	cmd.Flags().StringVar(&opts.emitIR, "emit-ir", "", "write an IR snapshot (.mp, .msgpack, .yaml, .yml or .json)")
	return cmd
}

func runGenerate(cmd *cobra.Command, dir string, opts generateOptions) error {
	if _, err := project.CheckContext(dir); err != nil {
		return err
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

	flags := cmd.Root().PersistentFlags()
	quiet, err := flags.GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}
	showTimings, err := flags.GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	uiFlag, err := flags.GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	req := &pipeline.Request{
		Context:    dir,
		Out:        opts.out,
		ConfigPath: opts.config,
		EmitIR:     opts.emitIR,
	}
	var res pipeline.Result
	if !quiet && shouldUseTUI(mode) {
		res, err = runGenerateWithUI(cmd.Context(), "spbg generate "+filepath.Base(dir), req)
	} else {
		res, err = pipeline.Generate(cmd.Context(), req)
	}
	if showTimings {
		printStageTimings(cmd.ErrOrStderr(), res)
	}
	if err != nil {
		return err
	}
	if !quiet {
		printSummary(cmd.OutOrStdout(), res)
	}
	return nil
}

func printSummary(out io.Writer, res pipeline.Result) {
	fmt.Fprintf(out, "generated %d artifacts in %s\n", len(res.Written), res.Plan.Out)
	for _, a := range res.Written {
		fmt.Fprintf(out, "  %-14s %s\n", a.Kind, a.FileName)
	}
	if res.Backup != "" {
		fmt.Fprintf(out, "previous helper kept as %s\n", res.Backup)
	}
	if res.IR != "" {
		fmt.Fprintf(out, "IR snapshot written to %s\n", res.IR)
	}
}
