package cmd

import (
	"encoding/json"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ezerfernandes/mdfront/internal/frontmatter"
	"github.com/ezerfernandes/mdfront/internal/markdown"
)

func metaCmd(opts *options) *cobra.Command {
	var (
		key    string
		format string
		raw    bool
	)

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:   "meta [filename]",
		Short: "Print the front matter of a document",
		Long: `Print the front matter of a document decoded as YAML, re-encoded as YAML
or JSON. With --raw the text between the fences is printed verbatim; with
--key only the value of one top-level key is printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := fileArg(args)

			src, err := opts.readSource(name)
			if err != nil {
				return err
			}

			m, ok := frontmatter.Extract(src, opts.recognizer())
			if !ok {
				return newUserError(errors.Wrap(errNoFrontMatter, name), "")
			}

			opts.logMatch(name, m)

			out := cmd.OutOrStdout()

			if raw {
				_, err = io.WriteString(out, m.Meta)

				return err
			}

			meta, err := markdown.Decode([]byte(m.Meta))
			if err != nil {
				return newUserError(err, "fix the YAML between the fences")
			}

			if !cmd.Flags().Changed("format") {
				format = opts.cfg.Format
			}

			if cmd.Flags().Changed("key") {
				value, has := meta[key]
				if !has {
					return newUserError(errors.Newf("key %q not found in %s", key, name), "")
				}

				return encodeMeta(out, value, format)
			}

			return encodeMeta(out, meta, format)
		},

		DisableAutoGenTag: true,
	}

	cmd.Flags().StringVarP(&key, "key", "k", "", "print a single top-level key")
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format: yaml, json")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the meta text verbatim")

	return cmd
}

func encodeMeta(out io.Writer, value interface{}, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")

		return enc.Encode(value)
	case "yaml":
		if s, ok := value.(string); ok {
			_, err := io.WriteString(out, s+"\n")

			return err
		}

		enc := yaml.NewEncoder(out)
		enc.SetIndent(2) //nolint:gomnd

		if err := enc.Encode(value); err != nil {
			return err
		}

		return enc.Close()
	default:
		return newUserError(errors.Newf("unknown format %q", format), "use --format yaml or json")
	}
}
