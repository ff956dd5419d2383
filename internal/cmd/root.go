// Package cmd implements the mdfront command line.
package cmd

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Execute runs the command line with args and exits with its status code.
func Execute(args []string, stdout, stderr io.Writer) {
	os.Exit(run(context.Background(), args, os.Stdin, stdout, stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts := &options{stdin: stdin} //nolint:exhaustruct

	root := rootCmd(opts)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	return report(root.ExecuteContext(ctx), stderr)
}

func rootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{ //nolint:exhaustruct
		Use:   "mdfront",
		Short: "Inspect and edit Markdown front matter",
		Long: `mdfront recognizes the metadata block fenced by "---" lines at the top
of Markdown, Quarto and R Markdown documents. It can print the block as
tokens or decoded data, strip it, update keys in place, validate whole
directory trees and hand the metadata to shell scripts.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},

		DisableAutoGenTag: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default: .mdfront.yaml in the working or home directory)")
	flags.CountVarP(&opts.verbosity, "verbose", "v", "increase verbosity (-v, -vv)")
	flags.BoolVarP(&opts.quiet, "quiet", "q", false, "suppress status and log output")
	flags.StringVar(&opts.logFormat, "log-format", "text", "log format: text, json")
	flags.StringVar(&opts.color, "color", "auto", "color output: auto, always, never")
	flags.StringVar(&opts.marker, "marker", "-", "fence marker character")
	flags.IntVar(&opts.minMarkers, "min-markers", 3, "minimum marker run opening a block") //nolint:gomnd

	root.AddCommand(
		tokensCmd(opts),
		metaCmd(opts),
		bodyCmd(opts),
		checkCmd(opts),
		setCmd(opts),
		execCmd(opts),
		renderCmd(opts),
	)

	return root
}

func fileArg(args []string) string {
	if len(args) == 0 {
		return stdinArg
	}

	return args[0]
}
