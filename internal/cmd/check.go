package cmd

import (
	_ "embed"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/ezerfernandes/mdfront/internal/frontmatter"
	"github.com/ezerfernandes/mdfront/internal/markdown"
)

//go:embed help/check.md
var checkHelp string

const (
	statusNone     = "none"
	statusOK       = "ok"
	statusUnclosed = "unclosed"
	statusInvalid  = "invalid"
)

type checkResult struct {
	file   string
	status string
	lines  string
	detail string
}

func (r *checkResult) failed(strict bool) bool {
	return r.status == statusInvalid || (strict && r.status == statusUnclosed)
}

func checkCmd(opts *options) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{ //nolint:exhaustruct
		Use:   "check [flags] [path...]",
		Short: "Validate the front matter of documents",
		Long:  checkHelp,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}

			globs, err := compileGlobs(opts.cfg.Include)
			if err != nil {
				return newUserError(err, "fix the include globs in the config")
			}

			var results []*checkResult

			for _, arg := range args {
				res, err := checkPath(arg, globs, opts.recognizer())
				if err != nil {
					return newSystemError(err, "")
				}

				results = append(results, res...)
			}

			return reportChecks(cmd, opts, results, strict)
		},

		DisableAutoGenTag: true,
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat unclosed front matter as a failure")

	return cmd
}

func reportChecks(cmd *cobra.Command, opts *options, results []*checkResult, strict bool) error {
	tbl := newTable(cmd.OutOrStdout(), opts.colorMode, "FILE", "STATUS", "LINES", "DETAIL")
	failures := 0

	for _, res := range results {
		if res.failed(strict) {
			failures++
		}

		tbl.AddRow(res.file, res.status, res.lines, res.detail)
	}

	tbl.Print()

	opts.status("%d file(s) checked, %d failed\n", len(results), failures)

	if failures > 0 {
		return newUserError(errors.Wrapf(errChecksFailed, "%d file(s)", failures), "")
	}

	return nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))

	for _, pattern := range patterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, errors.Wrapf(err, "include pattern %q", pattern)
		}

		globs = append(globs, g)
	}

	return globs, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		// "./" lets a leading "**/" match files at the root
		if g.Match(name) || g.Match("./"+name) {
			return true
		}
	}

	return false
}

func checkPath(arg string, globs []glob.Glob, recognizer frontmatter.Options) ([]*checkResult, error) {
	info, err := os.Stat(arg)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		src, err := os.ReadFile(arg)
		if err != nil {
			return nil, err
		}

		return []*checkResult{checkSource(arg, src, recognizer)}, nil
	}

	results, err := checkFS(os.DirFS(arg), globs, recognizer)
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		res.file = filepath.Join(arg, filepath.FromSlash(res.file))
	}

	return results, nil
}

// checkFS checks every file of fsys matching globs, in lexical order.
func checkFS(fsys fs.FS, globs []glob.Glob, recognizer frontmatter.Options) ([]*checkResult, error) {
	var results []*checkResult

	err := fs.WalkDir(fsys, ".", func(name string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if entry.IsDir() {
			if name != "." && path.Base(name)[0] == '.' {
				return fs.SkipDir
			}

			return nil
		}

		if !matchAny(globs, name) {
			return nil
		}

		src, err := fs.ReadFile(fsys, name)
		if err != nil {
			return err
		}

		results = append(results, checkSource(name, src, recognizer))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

func checkSource(name string, src []byte, recognizer frontmatter.Options) *checkResult {
	res := &checkResult{file: name} //nolint:exhaustruct

	m, ok := frontmatter.Extract(src, recognizer)
	if !ok {
		res.status = statusNone

		return res
	}

	start, end := m.Lines()
	res.lines = formatLines(start, end)

	if _, err := markdown.Decode([]byte(m.Meta)); err != nil {
		res.status = statusInvalid
		res.detail = errors.UnwrapAll(err).Error()

		return res
	}

	if !m.Closed() {
		res.status = statusUnclosed
		res.detail = m.Reason.String()

		return res
	}

	res.status = statusOK

	return res
}

func formatLines(start, end int) string {
	return strconv.Itoa(start+1) + "-" + strconv.Itoa(end)
}
