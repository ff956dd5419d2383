// Package frontmatter recognizes a fenced metadata block at the very start
// of a Markdown document.
//
// The block opens with a run of at least three marker characters ("---") on
// the first line of the document and closes at the first later line holding
// a run at least as long and nothing else. An unclosed block is not an
// error: it ends at the end of the input, at a YAML "..." line, or at a
// line dedented below the enclosing block.
package frontmatter

import "github.com/ezerfernandes/mdfront/internal/block"

// TokenType is the type of the token emitted for a recognized block.
const TokenType = "front_matter"

// StopReason tells why the search for a closing fence ended.
type StopReason int

const (
	// Closed means a closing fence was found.
	Closed StopReason = iota
	// EndOfInput means the available lines ran out.
	EndOfInput
	// Terminated means a "..." line was reached.
	Terminated
	// Dedented means a non-empty line was indented less than the block.
	Dedented
)

func (r StopReason) String() string {
	switch r {
	case Closed:
		return "closed"
	case EndOfInput:
		return "end of input"
	case Terminated:
		return "terminator"
	case Dedented:
		return "dedent"
	default:
		return "unknown"
	}
}

// Match describes a recognized block.
type Match struct {
	// Run is the length of the opening marker run.
	Run int
	// StopLine is the line where the search ended: the closing fence, or the
	// first line left out of an auto-closed block.
	StopLine int
	// NextLine is where tokenizing resumes.
	NextLine int
	Reason   StopReason

	Markup string
	Meta   string
}

// Closed reports whether the block ended at a closing fence.
func (m Match) Closed() bool {
	return m.Reason == Closed
}

// Lines returns the block's line range [start, end).
func (m Match) Lines() (int, int) {
	return 0, m.NextLine
}

// Recognizer is a block rule for front matter.
type Recognizer struct {
	opts Options
}

// New returns a recognizer. Zero option fields take their defaults.
func New(opts Options) *Recognizer {
	return &Recognizer{opts: opts.withDefaults()}
}

// Options returns the effective options.
func (r *Recognizer) Options() Options {
	return r.opts
}

// Use registers the front matter rule on parser ahead of every other rule.
func Use(parser *block.Parser, opts Options) error {
	if err := opts.withDefaults().Validate(); err != nil {
		return err
	}

	return parser.Ruler.Before("hr", TokenType, New(opts).Rule, "paragraph", "reference", "blockquote", "list")
}

// Extract scans src for a front matter block without a tokenizer pass.
func Extract(src []byte, opts Options) (Match, bool) {
	state := block.NewState(src)

	return New(opts).Scan(state, 0, state.LineMax)
}

// Rule implements [block.Rule].
func (r *Recognizer) Rule(state *block.State, startLine, endLine int, silent bool) bool {
	run, ok := r.open(state, startLine)
	if !ok {
		return false
	}

	if silent {
		return true
	}

	m := r.scan(state, startLine, endLine, run)
	r.emit(state, startLine, m)

	if r.opts.OnMeta != nil {
		r.opts.OnMeta(m.Meta)
	}

	return true
}

// Scan runs the full recognition at startLine and returns the match without
// touching the token stream or the cursor.
func (r *Recognizer) Scan(state *block.State, startLine, endLine int) (Match, bool) {
	run, ok := r.open(state, startLine)
	if !ok {
		return Match{}, false //nolint:exhaustruct
	}

	return r.scan(state, startLine, endLine, run), true
}

func (r *Recognizer) open(state *block.State, startLine int) (int, bool) {
	if startLine != 0 || len(state.Src) == 0 || state.Src[0] != r.opts.Marker {
		return 0, false
	}

	return r.opts.OpenRun(state.LineText(startLine))
}

func (r *Recognizer) scan(state *block.State, startLine, endLine, run int) Match {
	m := Match{Run: run, Reason: EndOfInput} //nolint:exhaustruct

	line := startLine + 1

	for ; line < endLine; line++ {
		if IsTerminator(state.RawLine(line)) {
			m.Reason = Terminated

			break
		}

		if !state.IsEmpty(line) && state.SCount[line] < state.BlkIndent {
			m.Reason = Dedented

			break
		}

		text := state.LineText(line)
		if len(text) == 0 || text[0] != r.opts.Marker {
			continue
		}

		if state.SCount[line]-state.BlkIndent > maxFenceIndent {
			continue
		}

		if r.opts.Closes(text, run) {
			m.Reason = Closed

			break
		}
	}

	m.StopLine = line
	m.NextLine = line

	markupEnd := state.EMarks[line-1]
	if m.Closed() {
		m.NextLine++
		markupEnd = state.EMarks[line]
	}

	m.Markup = string(state.Src[state.BMarks[startLine]:markupEnd])
	m.Meta = string(state.Src[state.BMarks[startLine+1]:state.BMarks[line]])

	return m
}

func (r *Recognizer) emit(state *block.State, startLine int, m Match) {
	restore := state.Reparent(block.ParentRoot, m.StopLine)
	defer restore()

	token := state.Push(TokenType, "", 0)
	token.Hidden = true
	token.Markup = m.Markup
	token.Map = []int{startLine, m.NextLine}
	token.Meta = m.Meta

	state.Line = m.NextLine
}
