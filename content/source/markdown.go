package source

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// relativeLinkTransformer points relative image sources at the raw content host and
// relative links at the article routes of the API
type relativeLinkTransformer struct {
	rawBaseURL string
}

func (t *relativeLinkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := n.(type) {
		case *ast.Image:
			dest := string(v.Destination)
			if isRelativeLink(dest) && t.rawBaseURL != "" {
				v.Destination = []byte(t.rawBaseURL + "/images/" + path.Base(dest))
			}
		case *ast.Link:
			dest := string(v.Destination)
			if isRelativeLink(dest) && !strings.HasPrefix(dest, "#") {
				id := strings.TrimSuffix(path.Base(dest), path.Ext(dest))
				v.Destination = []byte("/articles/" + id)
			}
		}

		return ast.WalkContinue, nil
	})
}

func isRelativeLink(dest string) bool {
	if dest == "" {
		return false
	}

	// Absolute path check
	if strings.HasPrefix(dest, "/") {
		return !strings.HasPrefix(dest, "//")
	}

	if strings.HasPrefix(dest, "./") || strings.HasPrefix(dest, "../") {
		return true
	}

	return !strings.Contains(dest, ":")
}

// MarkdownRenderer converts the markdown fields of content records to HTML.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

type goldmarkRenderer struct {
	renderer goldmark.Markdown
}

// NewMarkdownRenderer creates a renderer resolving relative images against rawBaseURL.
func NewMarkdownRenderer(rawBaseURL string) MarkdownRenderer {
	renderer := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Table,
			extension.Strikethrough,
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
			parser.WithASTTransformers(
				util.Prioritized(&relativeLinkTransformer{rawBaseURL: strings.TrimSuffix(rawBaseURL, "/")}, 100),
			),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)

	return &goldmarkRenderer{
		renderer: renderer,
	}
}

func (r *goldmarkRenderer) Render(markdown string) (string, error) {
	if strings.TrimSpace(markdown) == "" {
		return "", nil
	}

	var buf bytes.Buffer
	if err := r.renderer.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to convert markdown to HTML: %w", err)
	}
	return buf.String(), nil
}
