// Package normalize turns markdown bodies and model output into one bounded
// declarative sentence.
//
// [StripMarkup] removes markdown/MDX/HTML structure and keeps readable text.
// [Declarative] canonicalizes punctuation to full-width marks, folds all
// sentences into one clause chain and bounds the result by rune length.
package normalize

import (
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

var (
	mdxStatement = regexp.MustCompile(`(?m)^(?:import|export)\s.*$`)
	htmlTag      = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
	whitespace   = regexp.MustCompile(`\s+`)
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// StripMarkup returns the readable text of a markdown body on one line.
//
// Headings, code (fenced, indented and inline), images, raw HTML, autolinks
// and thematic breaks are dropped. Links keep their visible text. Blocks and
// line breaks become single spaces.
func StripMarkup(body string) string {
	src := []byte(mdxStatement.ReplaceAllString(body, ""))
	root := markdown.Parser().Parse(text.NewReader(src))

	var b strings.Builder

	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		switch node := n.(type) {
		case *gmast.Heading, *gmast.FencedCodeBlock, *gmast.CodeBlock, *gmast.CodeSpan,
			*gmast.Image, *gmast.HTMLBlock, *gmast.RawHTML, *gmast.AutoLink, *gmast.ThematicBreak:
			return gmast.WalkSkipChildren, nil
		case *gmast.Text:
			if entering {
				b.Write(node.Segment.Value(src))

				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteByte(' ')
				}
			}
		case *gmast.String:
			if entering {
				b.Write(node.Value)
			}
		default:
			if !entering && n.Type() == gmast.TypeBlock {
				b.WriteByte(' ')
			}
		}

		return gmast.WalkContinue, nil
	})

	out := htmlTag.ReplaceAllString(html.UnescapeString(b.String()), " ")

	return strings.TrimSpace(whitespace.ReplaceAllString(out, " "))
}
