package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/liamg/memoryfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezerfernandes/mdfront/internal/frontmatter"
	"github.com/ezerfernandes/mdfront/internal/markdown"
)

const doc = "---\ntitle: Report\ndraft: false\n---\n# Body\n\ntext\n"

type result struct {
	code   int
	stdout string
	stderr string
}

func isolate(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Setenv("HOME", dir)
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	return dir
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()

	var stdout, stderr bytes.Buffer

	code := run(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)

	return result{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestTokens(t *testing.T) {
	isolate(t)

	res := execute(t, "---\ntitle: X\n---\n# Body", "tokens")
	require.Equal(t, exitSuccess, res.code, res.stderr)

	assert.Contains(t, res.stdout, "front_matter")
	assert.Contains(t, res.stdout, "0-3")
	assert.Contains(t, res.stdout, `"title: X\n"`)
	assert.Contains(t, res.stdout, "heading_open")
}

func TestMeta(t *testing.T) {
	isolate(t)

	res := execute(t, doc, "meta")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "draft: false\ntitle: Report\n", res.stdout)

	res = execute(t, doc, "meta", "--format", "json")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.JSONEq(t, `{"title": "Report", "draft": false}`, res.stdout)

	res = execute(t, doc, "meta", "--key", "title")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "Report\n", res.stdout)

	res = execute(t, doc, "meta", "--raw")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "title: Report\ndraft: false\n", res.stdout)
}

func TestMetaFormatFromConfig(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, ".mdfront.yaml", "format: json\n")

	res := execute(t, doc, "meta")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.JSONEq(t, `{"title": "Report", "draft": false}`, res.stdout)

	res = execute(t, doc, "meta", "--key", "title")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "\"Report\"\n", res.stdout)

	res = execute(t, doc, "meta", "--key", "title", "--format", "yaml")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "Report\n", res.stdout)
}

func TestFlagsOverrideInvalidEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("MDFRONT_MIN_MARKERS", "0")

	res := execute(t, "----\ntitle: X\n----\n", "--min-markers", "4", "meta", "--raw")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "title: X\n", res.stdout)

	res = execute(t, doc, "meta", "--raw")
	assert.Equal(t, exitUser, res.code)
	assert.Contains(t, res.stderr, "min markers 0")
}

func TestColorFlag(t *testing.T) {
	isolate(t)

	res := execute(t, doc, "tokens", "--color", "always")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "\x1b[")

	res = execute(t, doc, "tokens", "--color", "never")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.NotContains(t, res.stdout, "\x1b[")

	res = execute(t, doc, "tokens", "--color", "rainbow")
	assert.Equal(t, exitUser, res.code)
}

func TestMetaErrors(t *testing.T) {
	isolate(t)

	res := execute(t, "# No front matter\n", "meta")
	assert.Equal(t, exitUser, res.code)
	assert.Contains(t, res.stderr, "no front matter found")

	res = execute(t, doc, "meta", "--key", "missing")
	assert.Equal(t, exitUser, res.code)

	res = execute(t, "---\ntitle: [x\n---\n", "meta")
	assert.Equal(t, exitUser, res.code)
	assert.Contains(t, res.stderr, "Hint:")

	res = execute(t, "", "meta", "does-not-exist.md")
	assert.Equal(t, exitSystem, res.code)
}

func TestMetaCustomMarker(t *testing.T) {
	isolate(t)

	res := execute(t, "++++\ntitle: X\n++++\n", "meta", "--marker", "+", "--min-markers", "4", "--key", "title")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "X\n", res.stdout)

	res = execute(t, doc, "meta", "--marker=ab")
	assert.Equal(t, exitUser, res.code)
}

func TestBody(t *testing.T) {
	isolate(t)

	res := execute(t, doc, "body")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "# Body\n\ntext\n", res.stdout)

	res = execute(t, "---\ntitle: X\n...\nrest\n", "body")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "...\nrest\n", res.stdout)

	res = execute(t, "plain\n", "body")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "plain\n", res.stdout)
}

func TestRender(t *testing.T) {
	isolate(t)

	res := execute(t, doc, "render")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "<h1>Body</h1>\n<p>text</p>\n", res.stdout)
}

func TestSet(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "doc.md", doc)

	res := execute(t, "", "set", path, `title="Final Report"`, "draft=true author=Ann")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stderr, "updated 3 key(s)")

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	block := markdown.Extract(content, frontmatter.DefaultOptions())
	require.NotNil(t, block)

	meta, err := markdown.Decode(block.Meta)
	require.NoError(t, err)
	assert.Equal(t, markdown.Meta{"title": "Final Report", "draft": true, "author": "Ann"}, meta)
	assert.True(t, strings.HasSuffix(string(content), "---\n# Body\n\ntext\n"))
}

func TestSetDryRunAndCreate(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "plain.md", "# Title\n")

	res := execute(t, "", "set", path, "title=X")
	assert.Equal(t, exitUser, res.code)
	assert.Contains(t, res.stderr, "--create")

	res = execute(t, "", "set", "--create", "--dry-run", path, "title=X")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "---\ntitle: X\n---\n# Title\n", res.stdout)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Title\n", string(content))

	res = execute(t, "", "set", path, "novalue")
	assert.Equal(t, exitUser, res.code)
}

func TestCheck(t *testing.T) {
	dir := isolate(t)

	writeFile(t, dir, "docs/ok.md", doc)
	writeFile(t, dir, "docs/plain.qmd", "# Plain\n")
	writeFile(t, dir, "docs/open.Rmd", "---\ntitle: X\n")
	writeFile(t, dir, "notes.txt", "---\ntitle: [x\n---\n")

	res := execute(t, "", "check")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stdout, "docs/ok.md")
	assert.Contains(t, res.stdout, statusUnclosed)
	assert.NotContains(t, res.stdout, "notes.txt")
	assert.Contains(t, res.stderr, "3 file(s) checked, 0 failed")

	res = execute(t, "", "check", "--strict")
	assert.Equal(t, exitUser, res.code)

	writeFile(t, dir, "bad.md", "---\ntitle: [x\n---\n")

	res = execute(t, "", "check", "-q")
	assert.Equal(t, exitUser, res.code)
	assert.Contains(t, res.stdout, statusInvalid)
	assert.NotContains(t, res.stderr, "file(s) checked")

	res = execute(t, "", "check", filepath.Join(dir, "docs", "ok.md"))
	require.Equal(t, exitSuccess, res.code, res.stderr)
}

func TestCheckFS(t *testing.T) {
	t.Parallel()

	fsys := memoryfs.New()
	require.NoError(t, fsys.MkdirAll("a/b", 0o700))
	require.NoError(t, fsys.MkdirAll(".git", 0o700))
	require.NoError(t, fsys.WriteFile("root.md", []byte(doc), 0o600))
	require.NoError(t, fsys.WriteFile("a/b/deep.qmd", []byte("---\n---\n"), 0o600))
	require.NoError(t, fsys.WriteFile("a/skip.txt", []byte(doc), 0o600))
	require.NoError(t, fsys.WriteFile(".git/hidden.md", []byte(doc), 0o600))

	globs, err := compileGlobs([]string{"**/*.md", "**/*.qmd"})
	require.NoError(t, err)

	results, err := checkFS(fsys, globs, frontmatter.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, results, 2)

	sort.Slice(results, func(i, j int) bool { return results[i].file < results[j].file })

	assert.Equal(t, "a/b/deep.qmd", results[0].file)
	assert.Equal(t, statusOK, results[0].status)
	assert.Equal(t, "1-2", results[0].lines)

	assert.Equal(t, "root.md", results[1].file)
	assert.Equal(t, statusOK, results[1].status)
	assert.Equal(t, "1-4", results[1].lines)
}

func TestCheckSource(t *testing.T) {
	t.Parallel()

	tests := []struct {
		src    string
		status string
		detail string
	}{
		{doc, statusOK, ""},
		{"text\n", statusNone, ""},
		{"---\na: 1\n", statusUnclosed, "end of input"},
		{"---\na: 1\n...\n", statusUnclosed, "terminator"},
		{"---\n- a\n---\n", statusInvalid, ""},
	}

	for _, tt := range tests {
		res := checkSource("doc.md", []byte(tt.src), frontmatter.DefaultOptions())
		assert.Equal(t, tt.status, res.status, tt.src)

		if tt.detail != "" {
			assert.Equal(t, tt.detail, res.detail, tt.src)
		}
	}

	assert.True(t, (&checkResult{status: statusUnclosed}).failed(true))
	assert.False(t, (&checkResult{status: statusUnclosed}).failed(false))
}

func TestCompileGlobsError(t *testing.T) {
	t.Parallel()

	_, err := compileGlobs([]string{"[unclosed"})
	require.Error(t, err)
}

func TestExec(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "doc.md", doc)

	res := execute(t, "", "exec", path, "--", `while IFS= read -r line; do echo "got $line"; done`)
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "got title: Report\ngot draft: false\n", res.stdout)

	res = execute(t, "", "exec", path, "--", `echo "$MDFRONT_META_TITLE $MDFRONT_META_DRAFT $MDFRONT_FILE"`)
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Equal(t, "Report false "+path+"\n", res.stdout)

	res = execute(t, "", "exec", path, "--", "exit 3")
	assert.Equal(t, 3, res.code)
}

func TestExecErrors(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "plain.md", "text\n")

	res := execute(t, "", "exec", path)
	assert.Equal(t, exitUser, res.code)
	assert.Contains(t, res.stderr, "script is required")

	res = execute(t, "", "exec", path, "--", "echo hi")
	assert.Equal(t, exitUser, res.code)
	assert.Contains(t, res.stderr, "no front matter found")
}

func TestMetaEnv(t *testing.T) {
	t.Parallel()

	env := metaEnv(markdown.Meta{
		"title":      "X",
		"page-count": 3,
		"tags":       []interface{}{"a"},
		"format":     map[string]interface{}{"html": true},
		"empty":      nil,
	})

	assert.Equal(t, []string{"MDFRONT_META_PAGE_COUNT=3", "MDFRONT_META_TITLE=X"}, env)
	assert.Equal(t, "A_B_C1", envName("a.b-c1"))
}

func TestPreview(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"short"`, preview("short"))

	long := preview(strings.Repeat("x", 100))
	assert.Len(t, long, previewWidth)
	assert.True(t, strings.HasSuffix(long, "..."))
}

func TestQuietAndVerbose(t *testing.T) {
	isolate(t)

	res := execute(t, doc, "meta", "-q", "-v")
	assert.Equal(t, exitUser, res.code)
	assert.Contains(t, res.stderr, "mutually exclusive")

	res = execute(t, doc, "meta", "--log-format", "xml")
	assert.Equal(t, exitUser, res.code)
}

func TestVerboseLogsMatch(t *testing.T) {
	isolate(t)

	res := execute(t, "---\ntitle: X\n", "meta", "-v", "--log-format", "json")
	require.Equal(t, exitSuccess, res.code, res.stderr)
	assert.Contains(t, res.stderr, `"msg":"front matter recognized"`)
	assert.Contains(t, res.stderr, `"msg":"front matter is not closed"`)
}

func TestReport(t *testing.T) {
	t.Parallel()

	var stderr bytes.Buffer

	assert.Equal(t, exitSuccess, report(nil, &stderr))
	assert.Equal(t, exitUser, report(assert.AnError, &stderr))
	assert.Equal(t, exitSystem, report(newSystemError(assert.AnError, "retry"), &stderr))
	assert.Contains(t, stderr.String(), "Hint: retry")
	assert.Equal(t, "exit code 2", (&exitError{code: exitSystem}).Error())
}
