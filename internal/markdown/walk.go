package markdown

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/ezerfernandes/mdfront/internal/frontmatter"
)

// Walker is a callback invoked with the front matter block of a Markdown
// document. The walker may modify block.Meta in place; any change is written
// back into the document by [Walk].
type Walker func(block *Block) error

type change struct {
	node  *FrontMatter
	block *Block
}

// bounds returns the source range of the meta lines.
func (c *change) bounds() (int, int) {
	lines := c.node.Lines()
	if lines.Len() == 0 {
		return c.node.Opening.Stop, c.node.Opening.Stop
	}

	return lines.At(0).Start, lines.At(lines.Len() - 1).Stop
}

func (c *change) sizeIncrement() int {
	start, stop := c.bounds()

	return len(c.block.Meta) - (stop - start)
}

// Parse parses a Markdown document with front matter support and returns its
// AST together with the front matter node, nil when the document has none.
func Parse(source []byte, opts frontmatter.Options) (ast.Node, *FrontMatter) {
	md := goldmark.New(goldmark.WithExtensions(New(opts)))
	pc := parser.NewContext()
	root := md.Parser().Parse(text.NewReader(source), parser.WithContext(pc))

	return root, Get(pc)
}

// Extract returns the front matter block of a document, or nil.
func Extract(source []byte, opts frontmatter.Options) *Block {
	_, node := Parse(source, opts)
	if node == nil {
		return nil
	}

	return extractBlock(node, source)
}

// Walk parses a Markdown document and calls walker with its front matter
// block. If the walker modifies the block's Meta, Walk returns true and the
// updated document. Otherwise, including when the document has no front
// matter, it returns false and a nil slice.
func Walk(source []byte, opts frontmatter.Options, walker Walker) (bool, []byte, error) {
	_, node := Parse(source, opts)
	if node == nil {
		return false, nil, nil
	}

	block := extractBlock(node, source)
	meta := block.Meta

	if err := walker(block); err != nil {
		return false, nil, err
	}

	if bytes.Equal(meta, block.Meta) {
		return false, nil, nil
	}

	return true, applyChange(&change{node: node, block: block}, source), nil
}

// Render converts source to HTML, leaving the front matter out.
func Render(source []byte, opts frontmatter.Options, w io.Writer) error {
	md := goldmark.New(goldmark.WithExtensions(New(opts)))

	return errors.Wrap(md.Convert(source, w), "rendering markdown")
}

func extractBlock(node *FrontMatter, source []byte) *Block {
	end := markupEnd(node, source)

	return &Block{
		Meta:      node.Meta(source),
		Markup:    source[node.Opening.Start:end],
		Run:       node.Run,
		Reason:    node.Reason,
		StartLine: lineAt(source, node.Opening.Start),
		EndLine:   lineAt(source, end),
	}
}

func markupEnd(node *FrontMatter, source []byte) int {
	stop := node.Opening.Stop

	if lines := node.Lines(); lines.Len() > 0 {
		stop = lines.At(lines.Len() - 1).Stop
	}

	if node.Reason == frontmatter.Closed {
		stop = node.Closing.Stop
	}

	return trimEOL(source, stop)
}

func trimEOL(source []byte, stop int) int {
	if stop > 0 && source[stop-1] == '\n' {
		stop--
	}

	if stop > 0 && source[stop-1] == '\r' {
		stop--
	}

	return stop
}

func lineAt(source []byte, offset int) int {
	line := 1

	for i := 0; i < offset && i < len(source); i++ {
		if source[i] == '\n' {
			line++
		}
	}

	return line
}

func applyChange(c *change, source []byte) []byte {
	start, stop := c.bounds()

	meta := c.block.Meta
	if start > 0 && source[start-1] != '\n' {
		meta = append([]byte{'\n'}, meta...)
	}

	if len(meta) > 0 && meta[len(meta)-1] != '\n' && stop < len(source) {
		meta = append(meta, '\n')
	}

	result := make([]byte, 0, len(source)+c.sizeIncrement()+2) //nolint:gomnd

	result = append(result, source[:start]...)
	result = append(result, meta...)
	result = append(result, source[stop:]...)

	return result
}
