package cmd

import (
	"bytes"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ezerfernandes/mdfront/internal/markdown"
)

func setCmd(opts *options) *cobra.Command {
	var (
		create bool
		dryRun bool
	)

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:   "set [flags] filename key=value...",
		Short: "Update front matter keys in place",
		Long: `Update top-level front matter keys in place. Each argument after the file
name holds one or more shell-quoted key=value assignments. Values are read
as YAML scalars: draft=true stores a boolean, draft="'true'" a string.
Comments and the order of existing keys are kept.`,
		Args: cobra.MinimumNArgs(2), //nolint:gomnd
		RunE: func(cmd *cobra.Command, args []string) error {
			filename := args[0]

			values, err := assignments(args[1:])
			if err != nil {
				return newUserError(err, "use key=value arguments")
			}

			src, err := os.ReadFile(filename)
			if err != nil {
				return newSystemError(err, "")
			}

			result, err := setValues(src, values, opts, create)
			if err != nil {
				return err
			}

			if dryRun {
				_, err = cmd.OutOrStdout().Write(result)

				return err
			}

			if err := os.WriteFile(filename, result, fileMode); err != nil {
				return newSystemError(err, "")
			}

			opts.status("updated %d key(s) in %s\n", len(values), filename)

			return nil
		},

		DisableAutoGenTag: true,
	}

	cmd.Flags().BoolVar(&create, "create", false, "add a front matter block when the document has none")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the result instead of writing the file")

	return cmd
}

func assignments(args []string) (markdown.Meta, error) {
	values := make(markdown.Meta)

	for _, arg := range args {
		parsed, err := markdown.ParseAssignments(arg)
		if err != nil {
			return nil, err
		}

		for k, v := range parsed {
			values[k] = v
		}
	}

	if len(values) == 0 {
		return nil, errNoAssignments
	}

	return values, nil
}

func setValues(src []byte, values markdown.Meta, opts *options, create bool) ([]byte, error) {
	found := false

	modified, result, err := walk(src, opts.recognizer(), opts.logger, func(block *markdown.Block) error {
		found = true

		meta, err := markdown.SetValues(block.Meta, values)
		if err != nil {
			return newUserError(err, "fix the YAML between the fences")
		}

		block.Meta = meta

		return nil
	})
	if err != nil {
		return nil, err
	}

	if found {
		if !modified {
			return src, nil
		}

		return result, nil
	}

	if !create {
		return nil, newUserError(errNoFrontMatter, "pass --create to add a block")
	}

	meta, err := markdown.SetValues(nil, values)
	if err != nil {
		return nil, err
	}

	recognizer := opts.recognizer()
	fence := bytes.Repeat([]byte{recognizer.Marker}, recognizer.MinMarkers)

	out := make([]byte, 0, len(src)+len(meta)+2*len(fence)+2) //nolint:gomnd
	out = append(out, fence...)
	out = append(out, '\n')
	out = append(out, meta...)
	out = append(out, fence...)
	out = append(out, '\n')

	return append(out, src...), nil
}

var errNoAssignments = errors.New("no key=value assignments given")
