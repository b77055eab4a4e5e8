package normalize

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/width"
)

// Terminal ends every non-empty sentence produced by [Declarative].
const Terminal = "。"

// Separator joins clauses that were separate sentences.
const Separator = "，"

const (
	terminators = "。！？"
	separators  = "，；：、"
)

// decorative runes are removed outright. Apostrophes are handled separately
// so contractions survive.
const decorative = "\"“”„‟«»‹›「」『』《》〈〉【】〔〕〖〗[](){}<>`*_~#|^/\\"

var (
	spacedMark   = regexp.MustCompile(`\s*([，。！？；：、])\s*`)
	repeatedSeps = regexp.MustCompile(`([，；：、])[，；：、]+`)
)

// Declarative canonicalizes text into a single sentence of at most maxLen
// runes ending in [Terminal].
//
// Punctuation is mapped to full-width marks, sentences are folded into one
// clause chain joined by [Separator], and the result is truncated to
// maxLen-1 runes before the terminal mark is appended. Empty input, input
// that is only decoration, or maxLen < 2 yields "".
func Declarative(s string, maxLen int) string {
	if maxLen < 2 {
		return ""
	}

	s = canonicalPunctuation(width.Fold.String(s))
	s = strings.Join(strings.Fields(s), " ")

	var clauses []string

	for _, c := range strings.FieldsFunc(s, isTerminator) {
		c = strings.Trim(c, " "+separators)
		if c != "" {
			clauses = append(clauses, c)
		}
	}

	if len(clauses) == 0 {
		return ""
	}

	out := strings.Join(clauses, Separator)
	out = spacedMark.ReplaceAllString(out, "$1")
	out = repeatedSeps.ReplaceAllString(out, "$1")

	if utf8.RuneCountInString(out) > maxLen-1 {
		out = string([]rune(out)[:maxLen-1])
		out = strings.TrimRight(out, " .,:'"+separators)
	}

	if out == "" {
		return ""
	}

	return out + Terminal
}

func isTerminator(r rune) bool {
	return strings.ContainsRune(terminators, r)
}

// canonicalPunctuation maps ASCII punctuation to the full-width set and drops
// decorative symbols and invalid UTF-8. Dots, commas and colons inside tokens
// such as 3.14, Node.js, 1,000 or 10:30 are kept.
func canonicalPunctuation(s string) string {
	runes := []rune(s)

	var b strings.Builder

	b.Grow(len(s))

	for i, r := range runes {
		prev, next := runeAt(runes, i-1), runeAt(runes, i+1)

		switch {
		case r == '\'' || r == '’' || r == '‘':
			if isLetter(prev) && isLetter(next) {
				b.WriteRune('\'')
			} else {
				b.WriteRune(' ')
			}
		case r == utf8.RuneError || strings.ContainsRune(decorative, r):
			b.WriteRune(' ')
		case r == '.':
			if isAlnum(prev) && isAlnum(next) {
				b.WriteRune('.')
			} else {
				b.WriteRune('。')
			}
		case r == '…':
			b.WriteRune('。')
		case r == '!':
			b.WriteRune('！')
		case r == '?':
			b.WriteRune('？')
		case r == ',':
			if isDigit(prev) && isDigit(next) {
				b.WriteRune(',')
			} else {
				b.WriteRune('，')
			}
		case r == ':':
			if isDigit(prev) && isDigit(next) {
				b.WriteRune(':')
			} else {
				b.WriteRune('：')
			}
		case r == ';':
			b.WriteRune('；')
		default:
			b.WriteRune(r)
		}
	}

	return b.String()
}

func runeAt(runes []rune, i int) rune {
	if i < 0 || i >= len(runes) {
		return 0
	}

	return runes[i]
}

func isLetter(r rune) bool { return unicode.IsLetter(r) }

func isDigit(r rune) bool { return unicode.IsDigit(r) }

func isAlnum(r rune) bool { return isLetter(r) || isDigit(r) }
