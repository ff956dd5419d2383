package cmd

import (
	"log/slog"

	"github.com/ezerfernandes/mdfront/internal/frontmatter"
	"github.com/ezerfernandes/mdfront/internal/markdown"
)

func walk(source []byte, recognizer frontmatter.Options, logger *slog.Logger, walker markdown.Walker) (bool, []byte, error) {
	return markdown.Walk(source, recognizer, func(block *markdown.Block) error {
		logger.Debug("front matter block",
			"start", block.StartLine, "end", block.EndLine, "run", block.Run, "reason", block.Reason.String())

		return walker(block)
	})
}
