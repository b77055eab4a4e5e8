package summary

import (
	"regexp"
	"strings"
)

// CodeThreshold is the [CodeScore] at which a candidate is rejected.
const CodeThreshold = 2

var (
	inlineCode  = regexp.MustCompile("`[^`\n]+`")
	codeKeyword = regexp.MustCompile(
		`\b(?:function|const|let|var|class|import|export|return|def|func)\b|\bconsole\.log\(|#include\s*<`,
	)
	arrowFunc    = regexp.MustCompile(`=>`)
	memberAccess = regexp.MustCompile(`\b[A-Za-z_$][\w$]*\.[A-Za-z_$][\w$]*\b`)
)

const structuralChars = "{}[]();"

// CodeScore rates how much s looks like source code rather than prose.
//
//	fenced code block          +2 (else inline code span +1)
//	source keyword             +2
//	arrow function syntax      +1
//	dotted member access       +1
//	three or more of {}[]();   +1
//
// Candidates scoring [CodeThreshold] or more are not used as summaries.
func CodeScore(s string) int {
	score := 0

	switch {
	case strings.Contains(s, "```") || strings.Contains(s, "~~~"):
		score += 2
	case inlineCode.MatchString(s):
		score++
	}

	if codeKeyword.MatchString(s) {
		score += 2
	}

	if arrowFunc.MatchString(s) {
		score++
	}

	if memberAccess.MatchString(s) {
		score++
	}

	structural := 0

	for _, r := range s {
		if strings.ContainsRune(structuralChars, r) {
			structural++
		}
	}

	if structural >= 3 {
		score++
	}

	return score
}

// IsCodeLike reports whether s scores at or above [CodeThreshold].
func IsCodeLike(s string) bool {
	return CodeScore(s) >= CodeThreshold
}
