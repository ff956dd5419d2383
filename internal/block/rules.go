package block

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	maxHeadingLevel = 6
	minBreakMarkers = 3
	codeIndent      = 4
)

func thematicBreak(state *State, startLine, _ int, silent bool) bool {
	if state.SCount[startLine]-state.BlkIndent >= codeIndent {
		return false
	}

	line := state.LineText(startLine)
	if len(line) == 0 {
		return false
	}

	marker := line[0]
	if marker != '*' && marker != '-' && marker != '_' {
		return false
	}

	count := 0

	for _, ch := range line {
		switch ch {
		case marker:
			count++
		case ' ', '\t':
		default:
			return false
		}
	}

	if count < minBreakMarkers {
		return false
	}

	if silent {
		return true
	}

	state.Line = startLine + 1

	token := state.Push("hr", "hr", 0)
	token.Map = []int{startLine, state.Line}
	token.Markup = strings.Repeat(string(marker), count)

	return true
}

func heading(state *State, startLine, _ int, silent bool) bool {
	if state.SCount[startLine]-state.BlkIndent >= codeIndent {
		return false
	}

	line := state.LineText(startLine)

	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}

	if level == 0 || level > maxHeadingLevel {
		return false
	}

	if level < len(line) && line[level] != ' ' && line[level] != '\t' {
		return false
	}

	if silent {
		return true
	}

	content := string(bytes.TrimSpace(line[level:]))

	if strings.HasSuffix(content, "#") {
		trimmed := strings.TrimRight(content, "#")
		if trimmed == "" || strings.HasSuffix(trimmed, " ") || strings.HasSuffix(trimmed, "\t") {
			content = strings.TrimSpace(trimmed)
		}
	}

	state.Line = startLine + 1

	tag := fmt.Sprintf("h%d", level)
	markup := strings.Repeat("#", level)

	open := state.Push("heading_open", tag, 1)
	open.Markup = markup
	open.Map = []int{startLine, state.Line}

	inline := state.Push("inline", "", 0)
	inline.Content = content
	inline.Map = []int{startLine, state.Line}

	closing := state.Push("heading_close", tag, -1)
	closing.Markup = markup

	return true
}

func paragraph(state *State, startLine, endLine int, _ bool) bool {
	var terminators []Rule
	if p := state.Parser(); p != nil {
		terminators = p.Ruler.Rules("paragraph")
	}

	oldParent := state.ParentType
	state.ParentType = "paragraph"

	nextLine := startLine + 1

	for ; nextLine < endLine && !state.IsEmpty(nextLine); nextLine++ {
		// indented lines never interrupt a paragraph
		if state.SCount[nextLine]-state.BlkIndent >= codeIndent {
			continue
		}

		if terminates(terminators, state, nextLine, endLine) {
			break
		}
	}

	content := strings.TrimSpace(state.Lines(startLine, nextLine, state.BlkIndent, false))

	state.Line = nextLine

	open := state.Push("paragraph_open", "p", 1)
	open.Map = []int{startLine, state.Line}

	inline := state.Push("inline", "", 0)
	inline.Content = content
	inline.Map = []int{startLine, state.Line}

	state.Push("paragraph_close", "p", -1)

	state.ParentType = oldParent

	return true
}

func terminates(rules []Rule, state *State, line, endLine int) bool {
	for _, rule := range rules {
		if rule(state, line, endLine, true) {
			return true
		}
	}

	return false
}
