package markdown

import "github.com/ezerfernandes/mdfront/internal/frontmatter"

// Block is the front matter block of a document. Line numbers are 1-based.
type Block struct {
	Meta      []byte
	Markup    []byte
	Run       int
	Reason    frontmatter.StopReason
	StartLine int
	EndLine   int
}

// Closed reports whether the block ends with a closing fence.
func (b *Block) Closed() bool {
	return b.Reason == frontmatter.Closed
}
