// Package render turns recipe markdown into HTML with a fixed class per
// element, so every client styles recipes the same way.
package render

import (
	"bytes"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// Classes maps an element name to the class attribute it is rendered with
var Classes = map[string]string{
	"h1":     "text-2xl md:text-3xl font-bold mb-4 text-[color:var(--color-primary)]",
	"h2":     "text-xl md:text-2xl font-bold mb-3 mt-6 text-[color:var(--color-primary)]",
	"p":      "text-sm md:text-base leading-relaxed mb-4 text-[color:var(--color-text)]",
	"ul":     "list-disc list-inside pl-2 md:pl-4 space-y-2 mb-4 marker:text-[color:var(--color-accent)]",
	"ol":     "list-decimal pl-2 md:pl-4 space-y-2 marker:font-bold marker:text-[color:var(--color-accent)]",
	"li":     "ml-1 md:ml-2 text-sm md:text-base text-[color:var(--color-text)]",
	"strong": "font-bold text-[color:var(--color-primary)]",
	"em":     "italic text-[var(--color-text)]",
	"code":   "bg-gray-100 px-1 py-0.5 rounded text-xs md:text-sm text-[var(--color-text)] font-mono",
}

var md = goldmark.New(
	goldmark.WithParserOptions(
		parser.WithASTTransformers(util.Prioritized(classTransformer{}, 100)),
	),
)

// Markdown renders src. Raw HTML in src is not passed through.
func Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.String(), nil
}

type classTransformer struct{}

func (classTransformer) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if class, ok := Classes[elementName(n)]; ok {
			n.SetAttributeString("class", []byte(class))
		}
		return ast.WalkContinue, nil
	})
}

func elementName(n ast.Node) string {
	switch node := n.(type) {
	case *ast.Heading:
		// Anything deeper than h2 shares the h2 style
		if node.Level == 1 {
			return "h1"
		}
		return "h2"
	case *ast.Paragraph:
		return "p"
	case *ast.List:
		if node.IsOrdered() {
			return "ol"
		}
		return "ul"
	case *ast.ListItem:
		return "li"
	case *ast.Emphasis:
		if node.Level == 2 {
			return "strong"
		}
		return "em"
	case *ast.CodeSpan:
		return "code"
	}
	return ""
}
