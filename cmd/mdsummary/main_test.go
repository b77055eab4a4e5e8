package main

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func Test_Environ_KeepsFirstValue_When_KeyRepeats(t *testing.T) {
	t.Parallel()

	got := environ([]string{
		"AI_SUMMARY_API=https://a.example",
		"AI_SUMMARY_KEY=k=with=equals",
		"AI_SUMMARY_API=https://b.example",
		"EMPTY=",
		"NOEQUALS",
		"=C:=C:\\dir",
	})

	want := map[string]string{
		"AI_SUMMARY_API": "https://a.example",
		"AI_SUMMARY_KEY": "k=with=equals",
		"EMPTY":          "",
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("environ mismatch (-want +got):\n%s", diff)
	}
}
