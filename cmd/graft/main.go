package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		if !errors.Is(err, errDiagnostics) {
			fmt.Fprintln(os.Stderr, "graft:", err)
		}
		os.Exit(1)
	}
}

type cliFlags struct {
	config              string
	verbose             bool
	outSuffix           string
	fullGraphValidation bool
}

func newRootCmd(out io.Writer) *cobra.Command {
	flags := &cliFlags{}

	root := &cobra.Command{
		Use:           "graft",
		Short:         "compile-time dependency injection for Go",
		Long:          "graft scans //graft: directives, builds and validates the binding graph per root component, and generates the wiring code.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.config, "config", "", "options file (default graft.yaml if present)")
	root.PersistentFlags().BoolVar(&flags.verbose, "verbose", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&flags.fullGraphValidation, "full-graph-validation", false, "also validate subcomponent graphs in isolation")

	generate := &cobra.Command{
		Use:   "generate [packages...]",
		Short: "generate wiring code for every valid root component",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(flags, out, true)
			if err != nil {
				return err
			}
			return r.run(args)
		},
	}
	generate.Flags().StringVar(&flags.outSuffix, "out-suffix", "", "generated file suffix (default _graft.gen.go)")

	check := &cobra.Command{
		Use:   "check [packages...]",
		Short: "validate binding graphs without writing files",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := newRunner(flags, out, false)
			if err != nil {
				return err
			}
			return r.run(args)
		},
	}

	root.AddCommand(generate, check)
	return root
}

func newRunner(flags *cliFlags, out io.Writer, emit bool) (*runner, error) {
	opts, err := loadOptions(flags.config)
	if err != nil {
		return nil, err
	}
	if flags.outSuffix != "" {
		opts.OutSuffix = flags.outSuffix
	}
	if flags.verbose {
		opts.Verbose = true
	}
	if flags.fullGraphValidation {
		opts.FullGraphValidation = true
	}

	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	return &runner{log: log, opts: opts, out: out, emit: emit}, nil
}
