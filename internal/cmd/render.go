package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ezerfernandes/mdfront/internal/markdown"
)

func renderCmd(opts *options) *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct
		Use:   "render [filename]",
		Short: "Render a document to HTML, leaving the front matter out",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := opts.readSource(fileArg(args))
			if err != nil {
				return err
			}

			if err := markdown.Render(src, opts.recognizer(), cmd.OutOrStdout()); err != nil {
				return newSystemError(err, "")
			}

			return nil
		},

		DisableAutoGenTag: true,
	}
}
