package frontmatter_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/calvinalkan/mdsummary/internal/frontmatter"
)

// Contract: splitting and rejoining without changes reproduces the input.
func Test_Split_RoundTripsBytes_When_DocumentUnchanged(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		text string
	}{
		{name: "no block", text: "# Title\n\nBody text.\n"},
		{name: "empty file", text: ""},
		{name: "simple block", text: "---\ntitle: \"Hello\"\ntags:\n  - go\n---\n# Body\n"},
		{name: "empty block", text: "---\n---\nbody\n"},
		{name: "comments and blanks", text: "---\n# only a comment\n\n---\n\nbody"},
		{name: "crlf", text: "---\r\ntitle: x\r\n---\r\nbody\r\n"},
		{name: "blank line before body", text: "---\na: 1\n---\n\n\nbody\n"},
		{name: "unclosed block", text: "---\ntitle: x\nno closing delimiter\n"},
		{name: "thematic break later", text: "intro\n---\nnot: frontmatter\n---\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := frontmatter.Split(tc.text).String()
			if diff := cmp.Diff(tc.text, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_Split_AddsTrailingNewline_When_ClosingDelimiterAtEOF(t *testing.T) {
	t.Parallel()

	got := frontmatter.Split("---\ntitle: x\n---").String()
	if want := "---\ntitle: x\n---\n"; got != want {
		t.Fatalf("got=%q, want=%q", got, want)
	}
}

func Test_Split_SeparatesBlockAndBody(t *testing.T) {
	t.Parallel()

	doc := frontmatter.Split("---\ntitle: T\n---\n# Heading\n\ntext\n")

	if !doc.HasBlock {
		t.Fatal("HasBlock=false, want true")
	}

	if diff := cmp.Diff([]string{"title: T"}, doc.Lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}

	if doc.Body != "# Heading\n\ntext\n" {
		t.Fatalf("body=%q", doc.Body)
	}
}

func Test_Split_TreatsWholeFileAsBody_When_NoBlock(t *testing.T) {
	t.Parallel()

	text := "# T\n\nHello\n"
	doc := frontmatter.Split(text)

	if doc.HasBlock || len(doc.Lines) != 0 || doc.Body != text {
		t.Fatalf("doc=%+v, want body-only document", doc)
	}
}

func Test_Split_MergesAdjacentBlocks_And_DropsSummaries(t *testing.T) {
	t.Parallel()

	text := strings.Join([]string{
		"---",
		`summary: "A"`,
		"date: 2024-01-01",
		"---",
		"",
		"---",
		`title: "T"`,
		`summary: "B"`,
		"---",
		"body",
	}, "\n")

	doc := frontmatter.Split(text)

	want := []string{"date: 2024-01-01", `title: "T"`}
	if diff := cmp.Diff(want, doc.Lines); diff != "" {
		t.Fatalf("merged lines mismatch (-want +got):\n%s", diff)
	}

	if doc.Body != "body" {
		t.Fatalf("body=%q, want=%q", doc.Body, "body")
	}

	if _, ok := doc.Summary(); ok {
		t.Fatal("summary present after merge, want dropped")
	}

	title, ok := doc.Field("title")
	if !ok || title != "T" {
		t.Fatalf("title=%q ok=%v, want T", title, ok)
	}
}

func Test_Split_KeepsSecondDelimitedSection_When_NotYAML(t *testing.T) {
	t.Parallel()

	text := "---\ntitle: x\n---\n---\nJust a sentence between rules\n---\n"
	doc := frontmatter.Split(text)

	if diff := cmp.Diff([]string{"title: x"}, doc.Lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}

	if doc.Body != "---\nJust a sentence between rules\n---\n" {
		t.Fatalf("body=%q", doc.Body)
	}
}

func Test_Field_ReadsTopLevelKeysOnly(t *testing.T) {
	t.Parallel()

	doc := frontmatter.Split(strings.Join([]string{
		"---",
		"items:",
		"  - summary: nested",
		"meta:",
		"  summary: nested too",
		`Summary: "Top \"level\" value"`,
		"---",
		"",
	}, "\n"))

	got, ok := doc.Summary()
	if !ok {
		t.Fatal("summary not found")
	}

	if want := `Top "level" value`; got != want {
		t.Fatalf("summary=%q, want=%q", got, want)
	}
}

func Test_Field_DecodesScalarStyles(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		lines []string
		want  string
	}{
		{name: "plain", lines: []string{"summary: plain text"}, want: "plain text"},
		{name: "single quoted", lines: []string{"summary: 'it''s'"}, want: "it's"},
		{name: "double quoted", lines: []string{`summary: "a \\ b"`}, want: `a \ b`},
		{name: "folded", lines: []string{"summary: >-", "  first", "  second"}, want: "first second"},
		{name: "broken quoting", lines: []string{`summary: "unterminated`}, want: `"unterminated`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			doc := frontmatter.Document{Lines: tc.lines, HasBlock: true}

			got, ok := doc.Field("summary")
			if !ok || got != tc.want {
				t.Fatalf("field=%q ok=%v, want=%q", got, ok, tc.want)
			}
		})
	}
}

func Test_Summary_ReportsAbsent_When_ValueEmpty(t *testing.T) {
	t.Parallel()

	doc := frontmatter.Split("---\nsummary: \"\"\n---\n")
	if _, ok := doc.Summary(); ok {
		t.Fatal("empty summary reported as present")
	}
}

func Test_WithSummary_AppendsQuotedLineBeforeClosingDelimiter(t *testing.T) {
	t.Parallel()

	doc := frontmatter.Split("---\ntitle: T\nsummary: old\ntags:\n  - a\n---\nbody\n")
	got := doc.WithSummary(`Say "hi"。`).String()

	want := "---\ntitle: T\ntags:\n  - a\nsummary: \"Say \\\"hi\\\"。\"\n---\nbody\n"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("document mismatch (-want +got):\n%s", diff)
	}
}

func Test_WithSummary_SynthesizesBlock_When_DocumentHasNone(t *testing.T) {
	t.Parallel()

	got := frontmatter.Split("# T\n\nHello\n").WithSummary("Hello。").String()

	if want := "---\nsummary: \"Hello。\"\n---\n# T\n\nHello\n"; got != want {
		t.Fatalf("got=%q, want=%q", got, want)
	}
}

func Test_WithSummary_PreservesCommentOnlyBlock(t *testing.T) {
	t.Parallel()

	got := frontmatter.Split("---\n# draft\n\n---\nbody").WithSummary("S。").String()

	if want := "---\n# draft\n\nsummary: \"S。\"\n---\nbody"; got != want {
		t.Fatalf("got=%q, want=%q", got, want)
	}
}

func Test_WithSummary_DropsNoiseLines(t *testing.T) {
	t.Parallel()

	doc := frontmatter.Document{
		HasBlock: true,
		Lines: []string{
			"title: T",
			"```yaml",
			"stray free text",
			"  orphan indented after noise",
			"description: |",
			"  kept block scalar line",
			"summary: >",
			"  old folded",
			"  summary text",
			"- top level item",
			"# comment",
			"```",
		},
	}

	got := doc.WithSummary("New。").Lines

	want := []string{
		"title: T",
		"description: |",
		"  kept block scalar line",
		"- top level item",
		"# comment",
		`summary: "New。"`,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}
}

func Test_WithSummary_IsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"",
		"body only\n",
		"---\ntitle: T\n\n---\nbody\n",
		"---\nsummary: \"A\"\n---\n---\ntitle: \"T\"\n---\nbody\n",
		"---\r\ntitle: T\r\n---\r\nbody\r\n",
	}

	for _, in := range inputs {
		once := frontmatter.Split(in).WithSummary("Same text。").String()
		twice := frontmatter.Split(once).WithSummary("Same text。").String()

		if diff := cmp.Diff(once, twice); diff != "" {
			t.Fatalf("input %q not idempotent (-once +twice):\n%s", in, diff)
		}

		if n := strings.Count(twice, "summary:"); n != 1 {
			t.Fatalf("input %q: %d summary lines, want 1", in, n)
		}

		if n := strings.Count(twice, "---"); n != 2 {
			t.Fatalf("input %q: %d delimiters, want 2:\n%s", in, n, twice)
		}
	}
}

func Test_WithSummary_RoundTripsValue(t *testing.T) {
	t.Parallel()

	values := []string{
		"plain。",
		`with "quotes" and \ backslash。`,
		"line\nbreak。",
		"冒号：在里面，也没问题。",
	}

	for _, v := range values {
		doc := frontmatter.Split(frontmatter.Split("").WithSummary(v).String())

		got, ok := doc.Summary()
		want := strings.ReplaceAll(v, "\n", " ")

		if !ok || got != want {
			t.Fatalf("summary=%q ok=%v, want=%q", got, ok, want)
		}
	}
}

func Test_WithSummary_KeepsCRLF(t *testing.T) {
	t.Parallel()

	got := frontmatter.Split("---\r\ntitle: T\r\n---\r\nbody\r\n").WithSummary("S。").String()

	if want := "---\r\ntitle: T\r\nsummary: \"S。\"\r\n---\r\nbody\r\n"; got != want {
		t.Fatalf("got=%q, want=%q", got, want)
	}
}
