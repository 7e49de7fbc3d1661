package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidelang/tide/internal/testutil"
)

func writeTempSource(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.tir")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing source: %v", err)
	}
	return path
}

func TestVersionCmd(t *testing.T) {
	var out strings.Builder
	cmd := newVersionCmd()
	cmd.SetOut(&out)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out.String(), version) {
		t.Errorf("output %q missing version %s", out.String(), version)
	}
}

func TestRunCmd(t *testing.T) {
	src := writeTempSource(t, "LOAD_LITERAL r0, \"hi\"\nRETURN r0\n")

	var out strings.Builder
	cmd := newRunCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{src})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("run: %v", err)
	}
	if strings.TrimSpace(out.String()) != "hi" {
		t.Errorf("run output = %q, want hi", out.String())
	}
}

func TestCompileExecRoundTrip(t *testing.T) {
	src := writeTempSource(t, "LOAD_LITERAL r0, \"compiled\"\nRETURN r0\n")
	bytecode := filepath.Join(t.TempDir(), "prog.tbc")

	compile := newCompileCmd()
	compile.SetOut(&strings.Builder{})
	compile.SetArgs([]string{src, "-o", bytecode})
	if err := compile.Execute(); err != nil {
		t.Fatalf("compile: %v", err)
	}

	var out strings.Builder
	exec := newExecCmd()
	exec.SetOut(&out)
	exec.SetArgs([]string{bytecode})
	if err := exec.Execute(); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if strings.TrimSpace(out.String()) != "compiled" {
		t.Errorf("exec output = %q, want compiled", out.String())
	}
}

func TestDisasmCmd(t *testing.T) {
	src := writeTempSource(t, "CALL r0, \"echo\"\nRETURN r0\n")

	var out strings.Builder
	cmd := newDisasmCmd()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{src})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("disasm: %v", err)
	}
	if !strings.Contains(out.String(), "CALL") || !strings.Contains(out.String(), "echo") {
		t.Errorf("disassembly missing CALL echo:\n%s", out.String())
	}
}

func TestRunCmdStepHonorsInput(t *testing.T) {
	src := writeTempSource(t, "CALL r0, \"length\"\nRETURN r0\n")
	csv := testutil.TempCSV(t, testutil.SalesCSV())

	var out strings.Builder
	cmd := newRunCmd()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs([]string{src, "--step", "--input", csv})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("run --step --input: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if got := lines[len(lines)-1]; got != "5" {
		t.Errorf("result line = %q, want 5 (row count of the loaded table)", got)
	}
	if !strings.Contains(out.String(), "CALL") {
		t.Errorf("step trace missing instructions:\n%s", out.String())
	}
}

// scriptedReader serves one chunk per Read call, so a test can tell fresh
// reads apart from consumption of already-buffered bytes.
type scriptedReader struct {
	chunks []string
	reads  int
}

func (r *scriptedReader) Read(p []byte) (int, error) {
	if r.reads >= len(r.chunks) {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[r.reads])
	r.reads++
	return n, nil
}

func TestWaitForEnterDrainsQueuedInput(t *testing.T) {
	in := &scriptedReader{chunks: []string{"a\nb\n", "\n"}}
	wait := waitForEnter(in)

	wait()
	wait()

	// The queued "b\n" must be discarded, forcing the second wait to read
	// fresh input instead of auto-advancing.
	if in.reads != 2 {
		t.Errorf("reads = %d, want 2 (second wait consumed pre-typed input)", in.reads)
	}
}

func TestRunCmdRejectsStepAndProfile(t *testing.T) {
	src := writeTempSource(t, "RETURN r0\n")
	cmd := newRunCmd()
	cmd.SetOut(&strings.Builder{})
	cmd.SetErr(&strings.Builder{})
	cmd.SetArgs([]string{src, "--step", "--profile"})
	if err := cmd.Execute(); err == nil {
		t.Error("run accepted --step with --profile")
	}
}
