package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// PlainText strips Markdown formatting from source, returning the document
// text with block boundaries preserved as newlines. Prompts are often
// stored as Markdown; headings markers, emphasis and list bullets would
// otherwise leak into keyword and regex matching.
func PlainText(source []byte) string {
	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(source))

	var sb strings.Builder
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			// Separate blocks so adjacent headings and paragraphs don't
			// run together into one pseudo-sentence.
			switch n.(type) {
			case *ast.Heading, *ast.Paragraph, *ast.ListItem, *ast.Blockquote:
				sb.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}

		switch node := n.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteString("\n")
			}
		case *ast.CodeSpan:
			// Inline code keeps its literal text.
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				segment := lines.At(i)
				sb.Write(segment.Value(source))
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(sb.String())
}

// LoadPromptFile reads a single prompt file. Markdown files are stripped to
// plain text; anything else is returned verbatim.
func LoadPromptFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read prompt file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return PlainText(data), nil
	default:
		return string(data), nil
	}
}
