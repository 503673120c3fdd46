package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"spbg/internal/diag"
	"spbg/internal/version"
)

var errorColor = color.New(color.FgRed, color.Bold)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "spbg",
		Short:         "Simulink-Python binding generator",
		Long:          `spbg turns an Embedded Coder build directory into a Cython extension module`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return applyColorFlag(cmd)
		},
	}
	// Устанавливаем версию для автоматического флага --version
	root.Version = version.Version

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newVersionCmd())

	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().String("ui", "auto", "progress UI (auto|on|off)")
	root.PersistentFlags().String("trace", "", "write trace events to a file (- for stderr, *.ndjson for JSON lines)")
	root.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	root.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	root.PersistentFlags().String("mem-profile", "", "write a heap profile to file")
	root.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")
	return root
}

// main runs the command tree; any error is printed with its code and the
// process exits with status 1.
func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

func execute(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		printError(stderr, err)
		return 1
	}
	return 0
}

func printError(w io.Writer, err error) {
	var de *diag.Error
	if errors.As(err, &de) {
		errorColor.Fprintf(w, "error[%s]", de.Code.ID())
		fmt.Fprintf(w, ": %s\n", de.Text())
		return
	}
	errorColor.Fprint(w, "error")
	fmt.Fprintf(w, ": %v\n", err)
}

func applyColorFlag(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	switch strings.TrimSpace(strings.ToLower(mode)) {
	case "", "auto":
		color.NoColor = !isTerminal(os.Stderr)
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
