package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"

	"github.com/ezerfernandes/mdfront/internal/block"
	"github.com/ezerfernandes/mdfront/internal/frontmatter"
	"github.com/ezerfernandes/mdfront/internal/logging"
)

const previewWidth = 40

func tokensCmd(opts *options) *cobra.Command {
	return &cobra.Command{ //nolint:exhaustruct
		Use:   "tokens [filename]",
		Short: "Print the block token stream of a document",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := fileArg(args)

			src, err := opts.readSource(name)
			if err != nil {
				return err
			}

			tokens, err := tokenize(src, opts.recognizer())
			if err != nil {
				return newSystemError(err, "")
			}

			opts.logger.Debug("tokenized", "file", name, "tokens", len(tokens))

			printTokens(cmd.OutOrStdout(), opts.colorMode, tokens)

			return nil
		},

		DisableAutoGenTag: true,
	}
}

func tokenize(src []byte, recognizer frontmatter.Options) ([]*block.Token, error) {
	parser := block.New()

	if err := frontmatter.Use(parser, recognizer); err != nil {
		return nil, err
	}

	return parser.Parse(src)
}

func newTable(out io.Writer, mode logging.ColorMode, headers ...interface{}) table.Table {
	tbl := table.New(headers...).WithWriter(out)

	if mode.Enabled(out) {
		tbl.WithHeaderFormatter(logging.NewColor(color.FgGreen, color.Underline).SprintfFunc())
	}

	return tbl
}

func printTokens(out io.Writer, mode logging.ColorMode, tokens []*block.Token) {
	tbl := newTable(out, mode, "TYPE", "LINES", "LEVEL", "HIDDEN", "TEXT")

	for _, token := range tokens {
		lines := ""
		if start, end := token.Lines(); start >= 0 {
			lines = fmt.Sprintf("%d-%d", start, end)
		}

		text := token.Content
		if token.Type == frontmatter.TokenType {
			text = token.Meta
		}

		tbl.AddRow(token.Type, lines, token.Level, strconv.FormatBool(token.Hidden), preview(text))
	}

	tbl.Print()
}

func preview(text string) string {
	quoted := strconv.Quote(text)
	if len(quoted) <= previewWidth {
		return quoted
	}

	return strings.TrimSuffix(quoted[:previewWidth-3], "\\") + "..."
}
