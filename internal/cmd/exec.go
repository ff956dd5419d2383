package cmd

import (
	"context"
	_ "embed"
	"io"
	"os"
	"sort"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/ezerfernandes/mdfront/internal/block"
	"github.com/ezerfernandes/mdfront/internal/frontmatter"
	"github.com/ezerfernandes/mdfront/internal/markdown"
)

//go:embed help/exec.md
var execHelp string

const metaEnvPrefix = "MDFRONT_META_"

func execCmd(opts *options) *cobra.Command {
	var dir string

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:     "exec [flags] filename -- script",
		Aliases: []string{"e"},
		Short:   "Run a shell script with the front matter on stdin",
		Long:    execHelp,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scr, args := script(cmd, args)
			if len(scr) == 0 {
				return newUserError(errMissingScript, "mdfront exec file.md -- 'cat'")
			}

			if len(args) != 1 {
				return newUserError(errors.Newf("expected one filename, got %d", len(args)), "")
			}

			return execRun(cmd, opts, args[0], scr, dir)
		},

		DisableAutoGenTag: true,
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "working directory of the script")

	return cmd
}

func script(cmd *cobra.Command, args []string) (string, []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return "", args
	}

	return strings.Join(args[dash:], " "), args[:dash]
}

func execRun(cmd *cobra.Command, opts *options, filename, scr, dir string) error {
	src, err := opts.readSource(filename)
	if err != nil {
		return err
	}

	var metas []string

	recognizer := opts.recognizer()
	recognizer.OnMeta = func(meta string) {
		metas = append(metas, meta)
	}

	parser := block.New()
	if err := frontmatter.Use(parser, recognizer); err != nil {
		return newUserError(err, "")
	}

	if _, err := parser.Parse(src); err != nil {
		return newSystemError(err, "")
	}

	if len(metas) == 0 {
		return newUserError(errors.Wrap(errNoFrontMatter, filename), "")
	}

	env := append(os.Environ(), "MDFRONT_FILE="+filename)

	if decoded, err := markdown.Decode([]byte(metas[0])); err == nil {
		env = append(env, metaEnv(decoded)...)
	} else {
		opts.logger.Warn("front matter is not a YAML mapping", "file", filename, "error", err)
	}

	opts.logger.Debug("running script", "file", filename, "dir", dir)

	exitCode, err := runCommand(cmd.Context(), scr, dir, env,
		strings.NewReader(metas[0]), cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return newSystemError(err, "")
	}

	if exitCode != 0 {
		return &exitError{err: errors.Newf("script exited with %d", exitCode), code: exitCode} //nolint:exhaustruct
	}

	return nil
}

// metaEnv exports the scalar top-level keys of meta, in key order.
func metaEnv(meta markdown.Meta) []string {
	keys := make([]string, 0, len(meta))

	for key, value := range meta {
		switch value.(type) {
		case map[string]interface{}, []interface{}, nil:
			continue
		}

		keys = append(keys, key)
	}

	sort.Strings(keys)

	env := make([]string, 0, len(keys))
	for _, key := range keys {
		env = append(env, metaEnvPrefix+envName(key)+"="+meta.Get(key))
	}

	return env
}

func envName(key string) string {
	return strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return unicode.ToUpper(r)
		}

		return '_'
	}, key)
}

func runCommand(ctx context.Context, command, dir string, env []string, stdin io.Reader, stdout, stderr io.Writer) (int, error) {
	file, err := syntax.NewParser().Parse(strings.NewReader(command), "")
	if err != nil {
		return -1, err
	}

	runner, err := interp.New(
		interp.Dir(dir),
		interp.Env(expand.ListEnviron(env...)),
		interp.StdIO(stdin, stdout, stderr),
	)
	if err != nil {
		return -1, err
	}

	err = runner.Run(ctx, file)
	if err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return int(status), nil
		}

		return -1, err
	}

	return 0, nil
}
