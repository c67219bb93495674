package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/AlexKimmel/ratelog/internal/config"
)

func execute(t *testing.T, input string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errBuf bytes.Buffer
	cmd := newRootCmd(strings.NewReader(input), &out, &errBuf)
	cmd.SetArgs(args)
	err = cmd.ExecuteContext(context.Background())
	return out.String(), errBuf.String(), err
}

func TestRun_CountFlag(t *testing.T) {
	out, _, err := execute(t, "x\nx\nx\nx\nx\ny\n", "--count", "3")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	want := "x\n" +
		`Message: "x" repeat for 3 times in the past 0ms` + "\n" +
		"y\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestRun_DefaultLimit(t *testing.T) {
	input := strings.Repeat("spam\n", 11)
	out, _, err := execute(t, input)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 || lines[0] != "spam" || !strings.HasPrefix(lines[1], `Message: "spam" repeat for 10 times`) {
		t.Errorf("stdout = %q", out)
	}
}

func TestRun_JSONFormat(t *testing.T) {
	out, _, err := execute(t, "hello\n", "--format", "json")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	var ev map[string]any
	if err := json.Unmarshal([]byte(out), &ev); err != nil {
		t.Fatalf("stdout is not JSON: %v (%q)", err, out)
	}
	if ev["message"] != "hello" {
		t.Errorf("message = %v", ev["message"])
	}
}

func TestRun_MaxLineBytes(t *testing.T) {
	out, _, err := execute(t, "abcdefghij\n", "--max-line-bytes", "4")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if out != "abcd\n" {
		t.Errorf("stdout = %q", out)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "limit:\n  count: 2\nobservability:\n  log_level: debug\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	out, stderr, err := execute(t, "a\na\na\n", "--config", path)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if want := "a\n" + `Message: "a" repeat for 2 times in the past 0ms` + "\n"; out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
	if !strings.Contains(stderr, `"limit":"count(2)"`) {
		t.Errorf("diagnostics missing limit: %q", stderr)
	}
}

func TestRun_FlagOverridesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("limit:\n  count: 100\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, _, err := execute(t, "a\na\n", "--config", path, "--count", "1")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(out, `Message: "a" repeat for 1 times`) {
		t.Errorf("stdout = %q", out)
	}
}

func TestRun_Errors(t *testing.T) {
	cases := [][]string{
		{"--count", "2", "--duration", "1s"},
		{"--format", "xml"},
		{"--duration", "10us"},
		{"--count", "0"},
		{"--duration", "0s"},
		{"--config", filepath.Join(t.TempDir(), "missing.yaml")},
		{"unexpected-arg"},
	}
	for _, args := range cases {
		if _, _, err := execute(t, "", args...); err == nil {
			t.Errorf("args %q: expected error", args)
		}
	}
}

func TestRun_ZeroLimitFlagIsRejected(t *testing.T) {
	out, _, err := execute(t, "a\na\na\n", "--count", "0")
	if !errors.Is(err, config.ErrNonPositiveLimit) {
		t.Fatalf("err = %v, want ErrNonPositiveLimit", err)
	}
	if out != "" {
		t.Errorf("stdout = %q, want nothing", out)
	}
}
