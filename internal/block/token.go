package block

import "fmt"

// Token is one entry of the block token stream.
type Token struct {
	Type    string
	Tag     string
	Nesting int
	Level   int

	// Map is the source line range [start, end) the token covers.
	Map []int

	Content string
	Markup  string
	Meta    string

	Block  bool
	Hidden bool
}

// Lines returns the token's line range, or -1, -1 when it has none.
func (t *Token) Lines() (int, int) {
	if len(t.Map) != 2 { //nolint:gomnd
		return -1, -1
	}

	return t.Map[0], t.Map[1]
}

func (t *Token) String() string {
	start, end := t.Lines()

	return fmt.Sprintf("%s[%d:%d]", t.Type, start, end)
}
