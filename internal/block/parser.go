package block

import "github.com/cockroachdb/errors"

const defaultMaxNesting = 100

// Parser tokenizes documents with the rules of its Ruler.
type Parser struct {
	Ruler      *Ruler
	MaxNesting int
}

// New returns a parser with the default rules: thematic breaks, ATX
// headings and paragraphs.
func New() *Parser {
	ruler := &Ruler{} //nolint:exhaustruct

	ruler.Push("hr", thematicBreak, "paragraph", "reference", "blockquote", "list")
	ruler.Push("heading", heading, "paragraph", "reference", "blockquote")
	ruler.Push("paragraph", paragraph)

	return &Parser{Ruler: ruler, MaxNesting: defaultMaxNesting}
}

// Parse tokenizes src and returns the resulting block tokens.
func (p *Parser) Parse(src []byte) ([]*Token, error) {
	state := p.NewState(src)

	if err := p.Tokenize(state, state.Line, state.LineMax); err != nil {
		return nil, err
	}

	return state.Tokens, nil
}

// NewState builds a state bound to this parser.
func (p *Parser) NewState(src []byte) *State {
	state := NewState(src)
	state.parser = p

	return state
}

// Tokenize runs the rule chain over lines [startLine, endLine).
func (p *Parser) Tokenize(state *State, startLine, endLine int) error {
	rules := p.Ruler.Rules("")
	line := startLine

	for line < endLine {
		line = state.SkipEmptyLines(line)
		state.Line = line

		if line >= endLine {
			break
		}

		if state.SCount[line] < state.BlkIndent {
			break
		}

		if state.Level >= p.MaxNesting {
			state.Line = endLine

			break
		}

		matched := false

		for _, rule := range rules {
			if rule(state, line, endLine, false) {
				if state.Line <= line {
					return errors.AssertionFailedf("block rule matched at line %d without advancing", line)
				}

				matched = true

				break
			}
		}

		if !matched {
			return errors.AssertionFailedf("no block rule matched at line %d", line)
		}

		line = state.Line
	}

	return nil
}
