package cli_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/mdsummary/internal/cli"
)

const plainDoc = "# T\n\nHello **world**, visit [here](http://x).\n"

func Test_Run_WritesSummary_When_NoCommandGiven(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDoc("post/index.md", plainDoc)

	stdout := c.MustRun()

	assert.Equal(t, "---\nsummary: \"Hello world，visit here。\"\n---\n"+plainDoc, c.ReadDoc("post/index.md"))
	cli.AssertContains(t, stdout, "1 documents: 1 written, 0 overwritten, 0 unchanged, 0 skipped, 0 failed (api 0, local 1)")
}

func Test_Run_UsesEndpoint_When_Configured(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret-key", r.Header.Get("Authorization"))

		_, _ = io.WriteString(w, `{"summary": "From the endpoint."}`)
	}))
	t.Cleanup(srv.Close)

	c := cli.NewCLI(t)
	c.Env["AI_SUMMARY_API"] = srv.URL
	c.Env["AI_SUMMARY_KEY"] = "secret-key"
	c.WriteDoc("a/index.md", plainDoc)

	stdout := c.MustRun("run")

	cli.AssertContains(t, c.ReadDoc("a/index.md"), `summary: "From the endpoint。"`)
	cli.AssertContains(t, stdout, "(api 1, local 0)")
}

func Test_Run_ReadsSideFile_When_Present(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".summaryrc", "# AI_SUMMARY_OVERWRITE: always\n# AI_SUMMARY_MAX_LENGTH: 9\n")
	c.WriteDoc("a/index.md", "---\nsummary: \"Old。\"\n---\nA fairly long body sentence.\n")

	stdout := c.MustRun()

	cli.AssertContains(t, stdout, "1 overwritten")
	cli.AssertContains(t, c.ReadDoc("a/index.md"), `summary: "A fairly。"`)
}

func Test_Run_PromptsAndSkips_When_AskAnsweredNo(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.Env["AI_SUMMARY_OVERWRITE"] = "ask"

	original := "---\nsummary: \"Keep me。\"\n---\nBody.\n"
	c.WriteDoc("a/index.md", original)
	c.WriteDoc("b/index.md", original)

	stdout, stderr, code := c.RunWithInput("n\ny\n")

	require.Equal(t, 0, code, stderr)
	cli.AssertContains(t, stderr, `Overwrite summary in a/index.md? current: "Keep me。" [y/N] `)
	cli.AssertNotContains(t, stdout, "Overwrite summary")
	cli.AssertContains(t, stdout, "1 overwritten")
	cli.AssertContains(t, stdout, "1 skipped")
	assert.Equal(t, original, c.ReadDoc("a/index.md"))
	cli.AssertContains(t, c.ReadDoc("b/index.md"), `summary: "Body。"`)
}

func Test_Run_Fails_When_ContentDirMissing(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stderr := c.MustFail("run")
	cli.AssertContains(t, stderr, "error: locate documents:")
}

func Test_Run_Fails_When_ContentDirIsFile(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("src/content", "not a directory\n")

	stderr := c.MustFail("run")
	cli.AssertContains(t, stderr, "error: locate documents: content root is not a directory")
}

func Test_Run_LogsEndpointFailure_When_LogLevelIsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c := cli.NewCLI(t)
	c.Env["AI_SUMMARY_API"] = srv.URL
	c.Env["AI_SUMMARY_LOG_LEVEL"] = "error"
	c.WriteDoc("a/index.md", plainDoc)

	stdout, stderr, code := c.Run()

	assert.Equal(t, 0, code)
	cli.AssertContains(t, stdout, "(api 0, local 1)")
	cli.AssertContains(t, stderr, "level=ERROR")
	cli.AssertContains(t, stderr, "summary endpoint failed, using local summary")
	cli.AssertNotContains(t, stderr, "level=INFO")
}

func Test_Run_Succeeds_When_DocumentsFail(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	c := cli.NewCLI(t)
	c.WriteDoc("a/index.md", "Fine.\n")
	c.WriteDoc("b/index.md", "Unreadable.\n")
	require.NoError(t, os.Chmod(filepath.Join(c.ContentDir(), "b", "index.md"), 0o000))

	stdout, stderr, code := c.Run()

	assert.Equal(t, 0, code)
	cli.AssertContains(t, stdout, "1 written")
	cli.AssertContains(t, stdout, "1 failed")
	cli.AssertContains(t, stderr, "path=b/index.md")
}

func Test_Run_UsesContentFlag(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("docs/x/index.mdx", "Docs page.\n")

	stdout := c.MustRun("--content", "docs")

	cli.AssertContains(t, stdout, "1 written")
	cli.AssertContains(t, c.ReadFile("docs/x/index.mdx"), `summary: "Docs page。"`)
}

func Test_Run_Fails_When_UsageInvalid(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	cli.AssertContains(t, c.MustFail("--bogus"), "unknown flag: --bogus")
	cli.AssertContains(t, c.MustFail("frobnicate"), "unknown command: frobnicate")
	cli.AssertContains(t, c.MustFail("ls", "--nope"), "unknown flag: --nope")

	stderr := c.MustFail("ls", "extra")
	cli.AssertContains(t, stderr, `error: unexpected argument "extra"`)
	cli.AssertContains(t, stderr, "Run 'mdsummary ls --help' for usage.")

	stderr = c.MustFail("run", "now")
	cli.AssertContains(t, stderr, `error: unexpected argument "now"`)
}

func Test_Run_PrintsHelp(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun("--help")
	cli.AssertContains(t, stdout, "Usage: mdsummary [options] [command] [args]")
	cli.AssertContains(t, stdout, "print-config")

	stdout = c.MustRun("ls", "--help")
	cli.AssertContains(t, stdout, "Usage: mdsummary [options] ls [flags]")
	cli.AssertContains(t, stdout, "--missing")
}

func Test_Ls_ListsSummaryState(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteDoc("a/index.md", "---\nsummary: \"Has one。\"\n---\nA\n")
	c.WriteDoc("b/index.md", "B\n")

	stdout := c.MustRun("ls")
	assert.Equal(t, "a/index.md\tHas one。\nb/index.md\t(no summary)", stdout)

	stdout = c.MustRun("ls", "--missing")
	assert.Equal(t, "b/index.md\t(no summary)", stdout)

	assert.Equal(t, "B\n", c.ReadDoc("b/index.md"))
}

func Test_Ls_ListsProblemsLast_When_DocumentUnreadable(t *testing.T) {
	t.Parallel()

	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}

	c := cli.NewCLI(t)
	c.WriteDoc("a/index.md", "A\n")
	c.WriteDoc("b/index.md", "B\n")
	require.NoError(t, os.Chmod(filepath.Join(c.ContentDir(), "b", "index.md"), 0o000))

	stdout, stderr, code := c.Run("ls")

	assert.Equal(t, cli.ExitProblems, code)
	assert.Equal(t, "a/index.md\t(no summary)\n", stdout)
	cli.AssertContains(t, stderr, "warning: cannot read b/index.md:")
	cli.AssertContains(t, stderr, "warning: 1 document(s) skipped")
}

func Test_PrintConfig_ShowsSourcesAndMasksKey(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.Env["AI_SUMMARY_KEY"] = "sk-abcdef123456"
	c.Env["AI_SUMMARY_OVERWRITE"] = "ask"
	c.WriteFile(".env", "AI_SUMMARY_WORD_LIMIT=500\n")

	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, "AI_SUMMARY_KEY=****3456 # env")
	cli.AssertNotContains(t, stdout, "sk-abcdef123456")
	cli.AssertContains(t, stdout, "AI_SUMMARY_WORD_LIMIT=500 # env")
	cli.AssertContains(t, stdout, "AI_SUMMARY_CONCURRENCY=1 # forced")
	cli.AssertContains(t, stdout, "AI_SUMMARY_MAX_LENGTH=120 # default")
	cli.AssertContains(t, stdout, "dotenv=")
}

func Test_Run_CancelsRemaining_When_SignalReceived(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	docDir := filepath.Join(dir, "src", "content", "a")
	require.NoError(t, os.MkdirAll(docDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(docDir, "index.md"), []byte("Body.\n"), 0o600))

	release := make(chan struct{})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}

		_, _ = io.WriteString(w, `{"summary": "late"}`)
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	sigCh := make(chan os.Signal, 1)

	var out, errOut bytes.Buffer

	done := make(chan int, 1)

	go func() {
		env := map[string]string{"AI_SUMMARY_API": srv.URL, "AI_SUMMARY_LOG_LEVEL": "debug"}
		done <- cli.Run(strings.NewReader(""), &out, &errOut, []string{"mdsummary", "-C", dir}, env, sigCh)
	}()

	time.Sleep(100 * time.Millisecond)
	sigCh <- syscall.SIGTERM

	select {
	case code := <-done:
		assert.Equal(t, 0, code)
	case <-time.After(10 * time.Second):
		t.Fatal("run did not stop after signal")
	}

	assert.Contains(t, errOut.String(), "received signal")
}
