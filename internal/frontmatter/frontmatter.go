// Package frontmatter splits markdown documents into a front-matter block and
// a body, and rewrites the block's summary field without disturbing the rest.
//
// The block is kept as raw lines rather than a decoded map:
//
//	---
//	title: "Hello"
//	tags:
//	  - go
//	# comments survive
//	summary: "One sentence。"
//	---
//	# Body starts here
//
// Only the summary field is managed. Every other key, list item, comment and
// blank line is carried through byte for byte. The body is never modified.
//
// Two blocks written back to back (a known artifact of broken writers) are
// merged into one by [Split], dropping their summary lines.
package frontmatter

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Delimiter opens and closes a front-matter block.
const Delimiter = "---"

// SummaryKey is the field managed by [Document.WithSummary].
const SummaryKey = "summary"

// Document is a markdown file split into its front-matter block and body.
//
// Lines holds the raw block lines between the delimiters without their "\n"
// terminators; a "\r" of CRLF files stays part of the line. Body is
// everything after the closing delimiter line.
type Document struct {
	Lines    []string
	Body     string
	HasBlock bool

	open  string
	close string
}

// Split parses text into a [Document].
//
// Without a leading "---" line, or without a closing one, the whole text is
// the body. Adjacent blocks are merged; see [MergeBlocks].
func Split(text string) Document {
	first, rest, ok := cutBlock(text)
	if !ok {
		return Document{Body: text}
	}

	doc := Document{
		Lines:    first.lines,
		HasBlock: true,
		open:     first.open,
		close:    first.close,
	}

	for {
		next, after, found := cutBlock(skipBlankLines(rest))
		if !found || !looksLikeYAML(next.lines) {
			break
		}

		doc.Lines = MergeBlocks(doc.Lines, next.lines)
		rest = after
	}

	doc.Body = rest

	return doc
}

// MergeBlocks joins two adjacent block line sets into one. Top-level summary
// lines (with their continuation lines) are dropped from both; all other
// lines are kept, first block then second.
func MergeBlocks(first, second []string) []string {
	merged := make([]string, 0, len(first)+len(second))
	merged = append(merged, dropKey(first, SummaryKey)...)
	merged = append(merged, dropKey(second, SummaryKey)...)

	return merged
}

// String reassembles the document. The closing delimiter is always followed
// by exactly one newline, then the unchanged body.
func (d Document) String() string {
	if !d.HasBlock {
		return d.Body
	}

	var b strings.Builder

	b.Grow(len(d.Body) + 64*(len(d.Lines)+2))
	b.WriteString(d.openLine())
	b.WriteByte('\n')

	for _, line := range d.Lines {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	b.WriteString(d.closeLine())
	b.WriteByte('\n')
	b.WriteString(d.Body)

	return b.String()
}

// Field returns the value of a top-level key, matched case-insensitively.
// Keys nested under lists or mappings are not considered. Quotes are
// removed and escapes decoded.
func (d Document) Field(key string) (string, bool) {
	for i, line := range d.Lines {
		name, ok := topLevelKey(line)
		if !ok || !strings.EqualFold(name, key) {
			continue
		}

		snippet := []string{trimCR(line)}

		for _, next := range d.Lines[i+1:] {
			kind := classify(next)
			if kind != kindIndented && kind != kindBlank {
				break
			}

			snippet = append(snippet, trimCR(next))
		}

		return decodeValue(snippet), true
	}

	return "", false
}

// Summary returns the current summary. An empty or whitespace-only value
// counts as absent.
func (d Document) Summary() (string, bool) {
	v, ok := d.Field(SummaryKey)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}

	return v, true
}

// WithSummary returns a copy of d whose block holds exactly one summary line,
// appended as the last line before the closing delimiter.
//
// Existing summary lines are removed, as are lines that are not YAML at all
// (stray code fences, free text). That cleanup is lossy on purpose: only
// the summary field is guaranteed to round-trip. A document without a block
// gets one containing only the summary.
func (d Document) WithSummary(summary string) Document {
	lines := cleanLines(d.Lines, SummaryKey)

	eol := ""
	if strings.HasSuffix(d.open, "\r") {
		eol = "\r"
	}

	out := d
	out.Lines = append(lines, SummaryKey+": "+Quote(summary)+eol)
	out.HasBlock = true

	return out
}

// Quote renders s as a single-line double-quoted YAML scalar.
func Quote(s string) string {
	s = lineBreaks.Replace(s)
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)

	return `"` + s + `"`
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", "\t", " ")

func (d Document) openLine() string {
	if d.open == "" {
		return Delimiter
	}

	return d.open
}

func (d Document) closeLine() string {
	if d.close == "" {
		return Delimiter
	}

	return d.close
}

// --- block scanning ---

type block struct {
	open  string
	close string
	lines []string
}

// cutBlock cuts a leading delimited block off text.
func cutBlock(text string) (block, string, bool) {
	open, rest, hasNL := strings.Cut(text, "\n")
	if !isDelimiter(open) || !hasNL {
		return block{}, "", false
	}

	var lines []string

	for {
		line, after, nl := strings.Cut(rest, "\n")
		if isDelimiter(line) {
			return block{open: open, close: line, lines: lines}, after, true
		}

		if !nl {
			return block{}, "", false
		}

		lines = append(lines, line)
		rest = after
	}
}

func isDelimiter(line string) bool {
	return strings.TrimRight(line, " \t\r") == Delimiter
}

func skipBlankLines(text string) string {
	for {
		line, rest, ok := strings.Cut(text, "\n")
		if !ok || strings.TrimSpace(line) != "" {
			return text
		}

		text = rest
	}
}

// --- line classification ---

type lineKind uint8

const (
	kindBlank lineKind = iota
	kindComment
	kindKey
	kindListItem
	kindIndented
	kindNoise
)

var (
	keyPattern  = regexp.MustCompile("^(\"[^\"]*\"|'[^']*'|[^\\s#\"'\\-?:,\\[\\]{}&*!|>%@`][^#]*?)\\s*:(?:\\s|$)")
	listPattern = regexp.MustCompile(`^-(?:\s|$)`)
)

func classify(line string) lineKind {
	line = trimCR(line)
	trimmed := strings.TrimSpace(line)

	switch {
	case trimmed == "":
		return kindBlank
	case strings.HasPrefix(trimmed, "#"):
		return kindComment
	case line[0] == ' ' || line[0] == '\t':
		return kindIndented
	case strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~"):
		return kindNoise
	case listPattern.MatchString(line):
		return kindListItem
	case keyPattern.MatchString(line):
		return kindKey
	default:
		return kindNoise
	}
}

func topLevelKey(line string) (string, bool) {
	m := keyPattern.FindStringSubmatch(trimCR(line))
	if m == nil {
		return "", false
	}

	return strings.Trim(m[1], `"'`), true
}

func isKey(line, key string) bool {
	name, ok := topLevelKey(line)

	return ok && strings.EqualFold(name, key)
}

// looksLikeYAML reports whether every line is YAML-shaped and at least one
// is a top-level key.
func looksLikeYAML(lines []string) bool {
	keys := 0

	for _, line := range lines {
		switch classify(line) {
		case kindNoise:
			return false
		case kindKey:
			keys++
		}
	}

	return keys > 0
}

// dropKey removes top-level lines for key and the indented lines under them.
func dropKey(lines []string, key string) []string {
	out := make([]string, 0, len(lines))
	dropping := false

	for _, line := range lines {
		kind := classify(line)
		if dropping && (kind == kindIndented || kind == kindBlank) {
			continue
		}

		dropping = false

		if kind == kindKey && isKey(line, key) {
			dropping = true

			continue
		}

		out = append(out, line)
	}

	return out
}

// cleanLines drops key like dropKey and additionally drops noise: top-level
// lines that are not key, list item, comment or blank, and indented lines
// that do not belong to a preceding key or list item.
func cleanLines(lines []string, key string) []string {
	out := make([]string, 0, len(lines)+1)
	owned := false

	for _, line := range dropKey(lines, key) {
		switch classify(line) {
		case kindKey, kindListItem:
			owned = true
		case kindIndented:
			if !owned {
				continue
			}
		case kindNoise:
			owned = false

			continue
		case kindBlank, kindComment:
		}

		out = append(out, line)
	}

	return out
}

// decodeValue decodes "key: value" plus continuation lines with yaml.v3,
// falling back to stripping quotes from the raw value.
func decodeValue(snippet []string) string {
	var fields map[string]any

	err := yaml.Unmarshal([]byte(strings.Join(snippet, "\n")), &fields)
	if err == nil && len(fields) == 1 {
		for _, v := range fields {
			switch typed := v.(type) {
			case nil:
				return ""
			case string:
				return typed
			case []any, map[string]any:
			default:
				return fmt.Sprint(typed)
			}
		}
	}

	_, raw, _ := strings.Cut(snippet[0], ":")
	raw = strings.TrimSpace(raw)

	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		raw = raw[1 : len(raw)-1]
	}

	return raw
}

func trimCR(line string) string {
	return strings.TrimSuffix(line, "\r")
}
