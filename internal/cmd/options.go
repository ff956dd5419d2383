package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ezerfernandes/mdfront/internal/config"
	"github.com/ezerfernandes/mdfront/internal/frontmatter"
	"github.com/ezerfernandes/mdfront/internal/logging"
)

const (
	fileMode = 0o644
	stdinArg = "-"
)

type statusFunc func(format string, args ...interface{})

type options struct {
	configPath string
	verbosity  int
	quiet      bool
	logFormat  string
	color      string
	marker     string
	minMarkers int

	cfg       *config.Config
	colorMode logging.ColorMode
	logger    *slog.Logger
	status statusFunc
	stdin  io.Reader
}

func (opts *options) createStatus(out io.Writer) {
	if opts.quiet {
		opts.status = func(string, ...interface{}) {}

		return
	}

	opts.status = func(format string, args ...interface{}) {
		fmt.Fprintf(out, format, args...)
	}
}

func (opts *options) setup(cmd *cobra.Command) error {
	if opts.quiet && opts.verbosity > 0 {
		return newUserError(errQuietVerbose, "use either --quiet or --verbose")
	}

	format, ok := logging.ParseFormat(opts.logFormat)
	if !ok {
		return newUserError(errors.Newf("unknown log format %q", opts.logFormat), "use --log-format text or json")
	}

	mode, ok := logging.ParseColorMode(opts.color)
	if !ok {
		return newUserError(errors.Newf("unknown color mode %q", opts.color), "use --color auto, always or never")
	}

	opts.colorMode = mode
	opts.logger = logging.New(logging.Config{
		Level:  logging.LevelFromVerbosity(opts.verbosity, opts.quiet),
		Format: format,
		Output: cmd.ErrOrStderr(),
		Color:  mode,
	})

	opts.createStatus(cmd.ErrOrStderr())

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return newUserError(err, "check the config file or the MDFRONT_* environment")
	}

	if cmd.Flags().Changed("marker") {
		cfg.Marker = opts.marker
	}

	if cmd.Flags().Changed("min-markers") {
		cfg.MinMarkers = opts.minMarkers
	}

	if err := cfg.Validate(); err != nil {
		return newUserError(err, "fix the config file, the MDFRONT_* environment or the flags")
	}

	opts.cfg = cfg

	opts.logger.Debug("configuration loaded",
		"marker", cfg.Marker, "min_markers", cfg.MinMarkers, "include", cfg.Include)

	return nil
}

func (opts *options) recognizer() frontmatter.Options {
	return opts.cfg.Options()
}

func (opts *options) readSource(name string) ([]byte, error) {
	if name == stdinArg {
		src, err := io.ReadAll(opts.stdin)
		if err != nil {
			return nil, newSystemError(err, "")
		}

		return src, nil
	}

	src, err := os.ReadFile(name)
	if err != nil {
		return nil, newSystemError(err, "")
	}

	return src, nil
}

func (opts *options) logMatch(name string, m frontmatter.Match) {
	start, end := m.Lines()

	opts.logger.Debug("front matter recognized",
		"file", name, "run", m.Run, "start", start, "end", end, "reason", m.Reason.String())

	if !m.Closed() {
		opts.logger.Warn("front matter is not closed", "file", name, "reason", m.Reason.String())
	}
}
