package cmd

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
)

// Exit codes.
const (
	exitSuccess = 0
	exitUser    = 1
	exitSystem  = 2
)

// exitError carries the process exit code and an optional hint for the user.
type exitError struct {
	err        error
	code       int
	suggestion string
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}

	return e.err.Error()
}

func (e *exitError) Unwrap() error {
	return e.err
}

func newUserError(err error, suggestion string) *exitError {
	return &exitError{err: err, code: exitUser, suggestion: suggestion}
}

func newSystemError(err error, suggestion string) *exitError {
	return &exitError{err: err, code: exitSystem, suggestion: suggestion}
}

// report prints err and returns the exit code it maps to. Errors that are
// not exitErrors are usage errors from cobra.
func report(err error, stderr io.Writer) int {
	if err == nil {
		return exitSuccess
	}

	var exit *exitError
	if !errors.As(err, &exit) {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return exitUser
	}

	if exit.err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", exit.err)
	}

	if exit.suggestion != "" {
		fmt.Fprintf(stderr, "Hint: %s\n", exit.suggestion)
	}

	return exit.code
}

var (
	errQuietVerbose  = errors.New("--quiet and --verbose are mutually exclusive")
	errNoFrontMatter = errors.New("no front matter found")
	errMissingScript = errors.New("script is required after '--'")
	errChecksFailed  = errors.New("front matter checks failed")
)
