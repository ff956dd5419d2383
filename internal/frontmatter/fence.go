package frontmatter

import (
	"bytes"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultMarker is the fence character of YAML front matter.
	DefaultMarker = '-'
	// DefaultMinMarkers is the shortest marker run that opens a block.
	DefaultMinMarkers = 3

	// Terminator is the YAML end-of-document line. It stops the search for
	// a closing fence without being consumed.
	Terminator = "..."

	maxFenceIndent = 3
)

// Options configure the recognizer.
type Options struct {
	Marker     byte
	MinMarkers int

	// OnMeta, when set, receives the raw meta text of every emitted block.
	OnMeta func(meta string)
}

// ErrInvalidOptions is returned by [Options.Validate].
var ErrInvalidOptions = errors.New("invalid front matter options")

// DefaultOptions returns options recognizing "---" fenced blocks.
func DefaultOptions() Options {
	return Options{Marker: DefaultMarker, MinMarkers: DefaultMinMarkers} //nolint:exhaustruct
}

// Validate checks that the options describe a usable fence.
func (o Options) Validate() error {
	switch o.Marker {
	case 0, ' ', '\t', '\n', '\r':
		return errors.Wrapf(ErrInvalidOptions, "marker %q", o.Marker)
	}

	if o.MinMarkers < 1 {
		return errors.Wrapf(ErrInvalidOptions, "min markers %d", o.MinMarkers)
	}

	return nil
}

func (o Options) withDefaults() Options {
	if o.Marker == 0 {
		o.Marker = DefaultMarker
	}

	if o.MinMarkers == 0 {
		o.MinMarkers = DefaultMinMarkers
	}

	return o
}

// MarkerRun returns the length of the run of marker bytes at the start of line.
func MarkerRun(line []byte, marker byte) int {
	n := 0
	for n < len(line) && line[n] == marker {
		n++
	}

	return n
}

// OpenRun reports whether line opens a front matter block, and the length of
// its marker run. Content after the run is allowed on the opening line.
func (o Options) OpenRun(line []byte) (int, bool) {
	run := MarkerRun(line, o.Marker)
	if run < o.MinMarkers {
		return 0, false
	}

	return run, true
}

// Closes reports whether line, stripped of its indentation, closes a block
// opened by a run of openRun markers: a run at least as long followed only
// by spaces and tabs.
func (o Options) Closes(line []byte, openRun int) bool {
	line = trimEOL(line)

	run := MarkerRun(line, o.Marker)
	if run == 0 || run < openRun {
		return false
	}

	return len(bytes.TrimLeft(line[run:], " \t")) == 0
}

// IsTerminator reports whether line is exactly the end-of-document marker.
func IsTerminator(line []byte) bool {
	return string(trimEOL(line)) == Terminator
}

func trimEOL(line []byte) []byte {
	line = bytes.TrimSuffix(line, []byte("\n"))

	return bytes.TrimSuffix(line, []byte("\r"))
}
