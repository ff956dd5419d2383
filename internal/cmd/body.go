package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ezerfernandes/mdfront/internal/block"
	"github.com/ezerfernandes/mdfront/internal/frontmatter"
)

func bodyCmd(opts *options) *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct
		Use:   "body [filename]",
		Short: "Print a document without its front matter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := fileArg(args)

			src, err := opts.readSource(name)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(body(src, opts.recognizer()))

			return err
		},

		DisableAutoGenTag: true,
	}
}

// body returns the normalized document after its front matter block.
func body(src []byte, recognizer frontmatter.Options) []byte {
	state := block.NewState(src)

	m, ok := frontmatter.New(recognizer).Scan(state, 0, state.LineMax)
	if !ok {
		return state.Src
	}

	return state.Src[state.BMarks[m.NextLine]:]
}
