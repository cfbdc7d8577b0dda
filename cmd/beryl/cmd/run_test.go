package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/karlandr1/beryl-go/pkg/beryl"
)

func TestMain(m *testing.M) {
	v := m.Run()
	snaps.Clean(m)
	os.Exit(v)
}

// runScriptForTest mirrors runFile's eval+render logic against a string of
// source rather than a path, capturing the rendered output for a golden
// comparison instead of writing to the real stdout.
func runScriptForTest(t *testing.T, src string) (string, int) {
	t.Helper()
	engine := beryl.New()
	var out string
	engine.SetIO(func(s string) { out += s })

	res, err := engine.EvalWithDisposition(src, beryl.Print)
	if err != nil {
		return out, 1
	}
	return out, exitCodeFor(res)
}

func TestCLIPrintTranscript(t *testing.T) {
	out, code := runScriptForTest(t, `print "hello, beryl"`)
	snaps.MatchSnapshot(t, "print_output", out)
	if code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestCLIErrorTranscript(t *testing.T) {
	out, code := runScriptForTest(t, `error "boom"`)
	snaps.MatchSnapshot(t, "error_output", out)
	if code != 1 {
		t.Fatalf("expected exit code 1 on an unhandled error, got %d", code)
	}
}

func TestBootstrapReadsFileAndRunsFirst(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "boot.beryl")
	if err := os.WriteFile(path, []byte(`let bootstrapped = 1`), 0o644); err != nil {
		t.Fatalf("failed to write bootstrap fixture: %v", err)
	}

	engine := beryl.New()
	engine.SetIO(func(string) {})
	if err := runBootstrap(engine, nil); err != nil {
		t.Fatalf("unexpected error with no bootstrap configured: %v", err)
	}

	bootstrapFlag = path
	t.Cleanup(func() { bootstrapFlag = "" })
	if err := runBootstrap(engine, []string{"a", "b"}); err != nil {
		t.Fatalf("bootstrap run failed: %v", err)
	}

	found := false
	for _, name := range engine.Vars() {
		if name == "argv" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected argv to be bound after runBootstrap")
	}
}
