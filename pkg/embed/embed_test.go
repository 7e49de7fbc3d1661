package embed

import (
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/tidelang/tide/pkg/debugger"
	"github.com/tidelang/tide/pkg/engine"
	"github.com/tidelang/tide/pkg/ir"
	"github.com/tidelang/tide/pkg/pipeline"
	"github.com/tidelang/tide/pkg/signals"
	"github.com/tidelang/tide/pkg/span"
)

const helloSrc = "LOAD_LITERAL r0, \"hello\"\nRETURN r0\n"

func TestExecute(t *testing.T) {
	out, err := New().Execute(helloSrc)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.Value() != "hello" {
		t.Errorf("result = %v, want hello", out.Value())
	}
}

func TestExecuteWithInput(t *testing.T) {
	src := "CALL r0, \"upper\"\nRETURN r0\n"
	out, err := New().ExecuteWithInput(src, pipeline.FromValue("shout"))
	if err != nil {
		t.Fatalf("ExecuteWithInput: %v", err)
	}
	if out.Value() != "SHOUT" {
		t.Errorf("result = %v, want SHOUT", out.Value())
	}
}

func TestLinesStreamsAndCollects(t *testing.T) {
	src := "CALL r0, \"lines\"\nCOLLECT r0\nRETURN r0\n"
	out, err := New().ExecuteWithInput(src, pipeline.FromValue("a\nb\nc\n"))
	if err != nil {
		t.Fatalf("ExecuteWithInput: %v", err)
	}
	if diff := cmp.Diff([]any{"a", "b", "c"}, out.Value()); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}

func TestLengthBuiltin(t *testing.T) {
	src := "CALL r0, \"length\"\nRETURN r0\n"
	out, err := New().ExecuteWithInput(src, pipeline.FromValue([]any{int64(1), int64(2)}))
	if err != nil {
		t.Fatalf("ExecuteWithInput: %v", err)
	}
	if out.Value() != int64(2) {
		t.Errorf("length = %v, want 2", out.Value())
	}
}

func TestStepThrough(t *testing.T) {
	var trace strings.Builder
	waits := 0

	out, err := New().StepThrough(helloSrc, pipeline.Empty(), &trace, func() { waits++ })
	if err != nil {
		t.Fatalf("StepThrough: %v", err)
	}
	if out.Value() != "hello" {
		t.Errorf("result = %v, want hello", out.Value())
	}
	if waits != 2 {
		t.Errorf("wait fired %d times, want one per instruction (2)", waits)
	}
	if !strings.Contains(trace.String(), "LOAD_LITERAL") || !strings.Contains(trace.String(), "RETURN") {
		t.Errorf("trace missing instructions:\n%s", trace.String())
	}
}

func TestStepThroughHonorsInput(t *testing.T) {
	src := "CALL r0, \"upper\"\nRETURN r0\n"
	out, err := New().StepThrough(src, pipeline.FromValue("quiet"), &strings.Builder{}, nil)
	if err != nil {
		t.Fatalf("StepThrough: %v", err)
	}
	if out.Value() != "QUIET" {
		t.Errorf("result = %v, want QUIET", out.Value())
	}
}

func TestStepThroughReleasesDebugger(t *testing.T) {
	rt := New()
	if _, err := rt.StepThrough(helloSrc, pipeline.Empty(), &strings.Builder{}, nil); err != nil {
		t.Fatalf("StepThrough: %v", err)
	}
	if rt.Engine().DebuggerActive() {
		t.Error("debugger still active after StepThrough")
	}

	// Even a failed run must release the slot.
	if _, err := rt.StepThrough("CALL r0, \"missing\"\nRETURN r0\n", pipeline.Empty(), &strings.Builder{}, nil); err == nil {
		t.Fatal("StepThrough on bad source succeeded")
	}
	if rt.Engine().DebuggerActive() {
		t.Error("debugger still active after failed StepThrough")
	}
}

func TestStepThroughFailsWhileDebugging(t *testing.T) {
	rt := New()
	if err := rt.Engine().ActivateDebugger(debuggerStub{}); err != nil {
		t.Fatalf("ActivateDebugger: %v", err)
	}
	_, err := rt.StepThrough(helloSrc, pipeline.Empty(), &strings.Builder{}, nil)
	if !errors.Is(err, engine.ErrDebuggerActive) {
		t.Errorf("StepThrough = %v, want ErrDebuggerActive", err)
	}
}

func TestProfile(t *testing.T) {
	src := `
LOAD_LITERAL r1, list
loop:
ITERATE r2, r0, done
LIST_PUSH r1, r2
JUMP loop
done:
RETURN r1
`
	in := pipeline.FromValue([]any{int64(1), int64(2), int64(3)})
	out, report, err := New().Profile(src, in)
	if err != nil {
		t.Fatalf("Profile: %v", err)
	}
	if diff := cmp.Diff([]any{int64(1), int64(2), int64(3)}, out.Value()); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
	if report.NRows() == 0 {
		t.Fatal("profile report is empty")
	}
	names := report.Names()
	want := []string{"index", "instruction", "calls", "duration_ms"}
	for i, n := range want {
		if names[i] != n {
			t.Errorf("report column %d = %q, want %q", i, names[i], n)
		}
	}
}

func TestExecuteInterrupted(t *testing.T) {
	var flag atomic.Bool
	rt := New()
	rt.Engine().SetSignals(signals.New(&flag))
	flag.Store(true)

	_, err := rt.Execute(helloSrc)
	var ie *signals.InterruptedError
	if !errors.As(err, &ie) {
		t.Errorf("Execute = %v, want *InterruptedError", err)
	}
}

func TestDisassemble(t *testing.T) {
	dis, err := New().Disassemble("CALL r0, \"echo\"\nRETURN r0\n")
	if err != nil {
		t.Fatalf("Disassemble: %v", err)
	}
	if !strings.Contains(dis, `CALL         r0, "echo"`) {
		t.Errorf("disassembly missing resolved decl name:\n%s", dis)
	}
}

// debuggerStub occupies the debugger slot for contention tests.
type debuggerStub struct{}

func (debuggerStub) EnterInstruction(debugger.Context, *ir.Block, int, []pipeline.Data) {}

func (debuggerStub) Report(debugger.Context, span.Span) (any, error) {
	return nil, nil
}
