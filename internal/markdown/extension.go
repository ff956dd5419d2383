package markdown

import (
	"strconv"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"

	"github.com/ezerfernandes/mdfront/internal/block"
	"github.com/ezerfernandes/mdfront/internal/frontmatter"
)

// KindFrontMatter is the [ast.NodeKind] of a [FrontMatter] node.
var KindFrontMatter = ast.NewNodeKind("FrontMatter")

// FrontMatter is the AST node of a front matter block. Its lines hold the
// meta text; it renders to nothing.
type FrontMatter struct {
	ast.BaseBlock

	Run     int
	Reason  frontmatter.StopReason
	Opening text.Segment
	Closing text.Segment
}

// Kind implements [ast.Node].
func (n *FrontMatter) Kind() ast.NodeKind {
	return KindFrontMatter
}

// IsRaw implements [ast.Node]. The meta lines are never parsed as inlines.
func (n *FrontMatter) IsRaw() bool {
	return true
}

// Dump implements [ast.Node].
func (n *FrontMatter) Dump(source []byte, level int) {
	ast.DumpHelper(n, source, level, map[string]string{
		"Run":    strconv.Itoa(n.Run),
		"Reason": n.Reason.String(),
	}, nil)
}

// Meta returns the raw text between the fences.
func (n *FrontMatter) Meta(source []byte) []byte {
	var meta []byte

	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		meta = append(meta, seg.Value(source)...)
	}

	return meta
}

var contextKey = parser.NewContextKey()

// Get returns the front matter node recorded in pc by the last parse, or nil.
func Get(pc parser.Context) *FrontMatter {
	if node, ok := pc.Get(contextKey).(*FrontMatter); ok {
		return node
	}

	return nil
}

// Extender adds front matter support to a goldmark instance.
type Extender struct {
	Options frontmatter.Options
}

// New returns an extender recognizing front matter with opts.
func New(opts frontmatter.Options) *Extender {
	return &Extender{Options: opts}
}

// Extend implements [goldmark.Extender].
func (e *Extender) Extend(md goldmark.Markdown) {
	opts := frontmatter.New(e.Options).Options()

	md.Parser().AddOptions(parser.WithBlockParsers(
		util.Prioritized(&blockParser{opts: opts}, 0),
	))
	md.Renderer().AddOptions(renderer.WithNodeRenderers(
		util.Prioritized(nodeRenderer{}, 0),
	))
}

type blockParser struct {
	opts frontmatter.Options
}

func (b *blockParser) Trigger() []byte {
	return []byte{b.opts.Marker}
}

func (b *blockParser) Open(parent ast.Node, reader text.Reader, pc parser.Context) (ast.Node, parser.State) {
	lineNum, _ := reader.Position()
	if lineNum != 0 || parent.Kind() != ast.KindDocument {
		return nil, parser.NoChildren
	}

	line, segment := reader.PeekLine()
	if segment.Start != 0 {
		return nil, parser.NoChildren
	}

	run, ok := b.opts.OpenRun(line)
	if !ok {
		return nil, parser.NoChildren
	}

	node := &FrontMatter{Run: run, Reason: frontmatter.EndOfInput, Opening: segment} //nolint:exhaustruct

	return node, parser.NoChildren
}

func (b *blockParser) Continue(node ast.Node, reader text.Reader, pc parser.Context) parser.State {
	fm, _ := node.(*FrontMatter)

	line, segment := reader.PeekLine()
	if line == nil {
		return parser.Close
	}

	if frontmatter.IsTerminator(line) {
		fm.Reason = frontmatter.Terminated

		return parser.Close
	}

	shift, cols := block.Indent(line)
	if shift < len(line) && line[shift] == b.opts.Marker && cols <= 3 && b.opts.Closes(line[shift:], fm.Run) {
		fm.Reason = frontmatter.Closed
		fm.Closing = segment

		newline := 0
		if line[len(line)-1] == '\n' {
			newline = 1
		}

		reader.Advance(segment.Len() - newline)

		return parser.Close
	}

	fm.Lines().Append(segment)

	return parser.Continue | parser.NoChildren
}

func (b *blockParser) Close(node ast.Node, reader text.Reader, pc parser.Context) {
	fm, ok := node.(*FrontMatter)
	if !ok {
		return
	}

	pc.Set(contextKey, fm)

	if b.opts.OnMeta != nil {
		b.opts.OnMeta(string(fm.Meta(reader.Source())))
	}
}

func (b *blockParser) CanInterruptParagraph() bool {
	return false
}

func (b *blockParser) CanAcceptIndentedLine() bool {
	return false
}

type nodeRenderer struct{}

func (nodeRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(KindFrontMatter, func(util.BufWriter, []byte, ast.Node, bool) (ast.WalkStatus, error) {
		return ast.WalkSkipChildren, nil
	})
}
