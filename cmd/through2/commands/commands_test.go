package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// execute runs the CLI with args against stdin and returns stdout and stderr.
func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(cfg, []byte("logging:\n  level: disabled\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return executeWithConfig(t, cfg, stdin, args...)
}

func executeWithConfig(t *testing.T, cfg, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", cfg, "--env-file", filepath.Join(filepath.Dir(cfg), "none.env")}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestAppend(t *testing.T) {
	out, _, err := execute(t, "hello world", "append", " add string")
	if err != nil {
		t.Fatal(err)
	}
	if out != "hello world add string" {
		t.Errorf("got %q", out)
	}
}

func TestAppendPerChunk(t *testing.T) {
	out, _, err := execute(t, "abcdef", "--chunk-size", "2", "append", ".")
	if err != nil {
		t.Fatal(err)
	}
	if out != "ab.cd.ef." {
		t.Errorf("got %q", out)
	}
}

func TestReplace(t *testing.T) {
	out, _, err := execute(t, "hello world", "replace", "world", "node")
	if err != nil {
		t.Fatal(err)
	}
	if out != "hello node" {
		t.Errorf("got %q", out)
	}
}

func TestCount(t *testing.T) {
	out, _, err := execute(t, strings.Repeat("x", 100), "--chunk-size", "7", "count")
	if err != nil {
		t.Fatal(err)
	}
	if out != "100\n" {
		t.Errorf("got %q", out)
	}
}

func TestCountEmptyInput(t *testing.T) {
	out, _, err := execute(t, "", "count")
	if err != nil {
		t.Fatal(err)
	}
	if out != "0\n" {
		t.Errorf("got %q", out)
	}
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out, "through2 dev") {
		t.Errorf("got %q", out)
	}
}

func TestStreamOptionsFromConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yml")
	content := "logging:\n  level: disabled\nstream:\n  object_mode: true\n  high_water_mark: 1\n  name: stdin\n"
	if err := os.WriteFile(cfg, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	out, _, err := executeWithConfig(t, cfg, "one two", "--chunk-size", "4", "append", "|")
	if err != nil {
		t.Fatal(err)
	}
	if out != "one |two|" {
		t.Errorf("got %q", out)
	}
}

func TestInvalidConfig(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(cfg, []byte("stream:\n  encoding: latin1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := executeWithConfig(t, cfg, "", "append", "x"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestInvalidLogLevel(t *testing.T) {
	if _, _, err := execute(t, "", "--log-level", "loud", "version"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestMissingArgs(t *testing.T) {
	if _, _, err := execute(t, "", "replace", "only-one"); err == nil {
		t.Fatal("expected argument error")
	}
}

func TestDebugLogsGoToStderr(t *testing.T) {
	out, errOut, err := execute(t, "abc", "--log-level", "debug", "append", "!")
	if err != nil {
		t.Fatal(err)
	}
	if out != "abc!" {
		t.Errorf("got %q", out)
	}
	if !strings.Contains(errOut, "transform complete") {
		t.Errorf("expected debug log on stderr, got %q", errOut)
	}
}
