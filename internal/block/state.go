// Package block implements a line-oriented Markdown block tokenizer.
//
// The tokenizer walks a line-indexed [State] and tries an ordered list of
// [Rule] functions at each line. A rule either declines, leaving the input
// for the next rule, or consumes some lines, pushes tokens and moves the
// cursor forward.
package block

import (
	"bytes"
	"strings"
)

// ParentRoot is the parent type of top-level content.
const ParentRoot = "root"

const tabWidth = 4

// State is the line-indexed source plus the transient context shared by the
// block rules during one tokenizer pass.
type State struct {
	Src []byte

	// Per-line tables. Each holds LineMax+1 entries: the last one is a
	// sentinel positioned at len(Src).
	BMarks []int
	EMarks []int
	TShift []int
	SCount []int

	BlkIndent  int
	Line       int
	LineMax    int
	ParentType string
	Level      int

	Tokens []*Token

	parser *Parser
}

// NewState normalizes src and builds its line tables.
func NewState(src []byte) *State {
	s := &State{ //nolint:exhaustruct
		Src:        normalize(src),
		ParentType: ParentRoot,
	}

	s.index()

	return s
}

func normalize(src []byte) []byte {
	out := bytes.ReplaceAll(src, []byte("\r\n"), []byte("\n"))
	out = bytes.ReplaceAll(out, []byte("\r"), []byte("\n"))

	return bytes.ReplaceAll(out, []byte{0}, []byte("�"))
}

func (s *State) index() {
	src := s.Src
	start := 0

	for start < len(src) {
		end := bytes.IndexByte(src[start:], '\n')
		if end < 0 {
			end = len(src)
		} else {
			end += start
		}

		shift, cols := Indent(src[start:end])

		s.BMarks = append(s.BMarks, start)
		s.EMarks = append(s.EMarks, end)
		s.TShift = append(s.TShift, shift)
		s.SCount = append(s.SCount, cols)

		start = end + 1
	}

	s.BMarks = append(s.BMarks, len(src))
	s.EMarks = append(s.EMarks, len(src))
	s.TShift = append(s.TShift, 0)
	s.SCount = append(s.SCount, 0)

	s.LineMax = len(s.BMarks) - 1
}

// Indent returns the number of leading space and tab bytes of line and the
// column they span, with tabs advancing to the next multiple of four.
func Indent(line []byte) (int, int) {
	var shift, cols int

	for shift < len(line) {
		switch line[shift] {
		case ' ':
			cols++
		case '\t':
			cols += tabWidth - cols%tabWidth
		default:
			return shift, cols
		}

		shift++
	}

	return shift, cols
}

// Push appends a new token to the stream, tracking nesting level.
func (s *State) Push(typ, tag string, nesting int) *Token {
	if nesting < 0 {
		s.Level--
	}

	token := &Token{ //nolint:exhaustruct
		Type:    typ,
		Tag:     tag,
		Nesting: nesting,
		Level:   s.Level,
		Block:   true,
	}

	if nesting > 0 {
		s.Level++
	}

	s.Tokens = append(s.Tokens, token)

	return token
}

// Reparent installs parentType and lineMax for the duration of a nested
// region. The returned function restores the previous values.
func (s *State) Reparent(parentType string, lineMax int) func() {
	oldParent, oldLineMax := s.ParentType, s.LineMax

	s.ParentType = parentType
	s.LineMax = lineMax

	return func() {
		s.ParentType = oldParent
		s.LineMax = oldLineMax
	}
}

// Parser returns the parser driving this state, or nil for a standalone state.
func (s *State) Parser() *Parser {
	return s.parser
}

// LineText returns the content of line after its indentation, without the
// line break.
func (s *State) LineText(line int) []byte {
	return s.Src[s.BMarks[line]+s.TShift[line] : s.EMarks[line]]
}

// RawLine returns the full text of line, indentation included.
func (s *State) RawLine(line int) []byte {
	return s.Src[s.BMarks[line]:s.EMarks[line]]
}

// IsEmpty reports whether line holds only whitespace.
func (s *State) IsEmpty(line int) bool {
	return s.BMarks[line]+s.TShift[line] >= s.EMarks[line]
}

// SkipEmptyLines returns the first non-empty line at or after from.
func (s *State) SkipEmptyLines(from int) int {
	for from < s.LineMax && s.IsEmpty(from) {
		from++
	}

	return from
}

// SkipSpaces returns the first offset at or after pos that is not a space
// or a tab.
func (s *State) SkipSpaces(pos int) int {
	for pos < len(s.Src) && (s.Src[pos] == ' ' || s.Src[pos] == '\t') {
		pos++
	}

	return pos
}

// Lines joins lines [begin, end) after stripping up to indent columns of
// leading whitespace from each. The final line break is kept only when
// keepLastLF is set.
func (s *State) Lines(begin, end, indent int, keepLastLF bool) string {
	if begin >= end {
		return ""
	}

	var b strings.Builder

	for line := begin; line < end; line++ {
		first := s.BMarks[line]
		cols := 0

		for first < s.EMarks[line] && cols < indent {
			switch s.Src[first] {
			case ' ':
				cols++
			case '\t':
				cols += tabWidth - cols%tabWidth
			default:
				cols = indent
				continue
			}

			first++
		}

		last := s.EMarks[line]
		if (line+1 < end || keepLastLF) && last < len(s.Src) {
			last++
		}

		b.Write(s.Src[first:last])
	}

	return b.String()
}
