// Package embed provides a high-level API for running tide IR from Go
// programs without assembling the engine, compiler, and debugger plumbing by
// hand.
//
// Basic usage:
//
//	rt := embed.New()
//	result, err := rt.Execute(`LOAD_LITERAL r0, "hi"` + "\nRETURN r0\n")
package embed

import (
	"fmt"
	"io"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/tidelang/tide/pkg/compiler"
	"github.com/tidelang/tide/pkg/debugger"
	"github.com/tidelang/tide/pkg/engine"
	"github.com/tidelang/tide/pkg/ir"
	"github.com/tidelang/tide/pkg/pipeline"
	"github.com/tidelang/tide/pkg/span"
)

// Runtime couples an engine with the assembler and a set of builtin
// declarations.
type Runtime struct {
	engine *engine.EngineState
}

// New creates a runtime with the builtin declarations registered.
func New() *Runtime {
	rt := &Runtime{engine: engine.New()}
	registerBuiltins(rt.engine)
	return rt
}

// Engine exposes the underlying engine for signal wiring, extra
// declarations, and debugger control.
func (rt *Runtime) Engine() *engine.EngineState {
	return rt.engine
}

// Compile assembles source against the runtime's declarations.
func (rt *Runtime) Compile(src string) (*ir.Block, error) {
	return compiler.Compile(src, rt.engine)
}

// Disassemble assembles source and renders it back, resolving decl names.
func (rt *Runtime) Disassemble(src string) (string, error) {
	block, err := rt.Compile(src)
	if err != nil {
		return "", err
	}
	return ir.Disassemble(block, rt.engine), nil
}

// Execute compiles and runs source with empty pipeline input, returning the
// collected result.
func (rt *Runtime) Execute(src string) (pipeline.Data, error) {
	return rt.ExecuteWithInput(src, pipeline.Empty())
}

// ExecuteWithInput compiles and runs source with the given pipeline input.
func (rt *Runtime) ExecuteWithInput(src string, input pipeline.Data) (pipeline.Data, error) {
	block, err := rt.Compile(src)
	if err != nil {
		return pipeline.Empty(), err
	}
	out, err := rt.engine.EvalBlock(block, input)
	if err != nil {
		return pipeline.Empty(), err
	}
	return out.Collect(span.Unknown())
}

// StepThrough runs source under the stepping debugger: each instruction is
// printed to out before executing, and wait is invoked between instructions.
// The debugger is deactivated before returning, whatever the outcome.
func (rt *Runtime) StepThrough(src string, input pipeline.Data, out io.Writer, wait func()) (pipeline.Data, error) {
	block, err := rt.Compile(src)
	if err != nil {
		return pipeline.Empty(), err
	}

	stepper := debugger.NewStepper(out, wait)
	result, err := rt.runInstrumented(block, input, stepper)
	if err != nil {
		return pipeline.Empty(), err
	}
	return result, nil
}

// Profile runs source under the profiling debugger and returns both the
// result and the profile table (columns index, instruction, calls,
// duration_ms).
func (rt *Runtime) Profile(src string, input pipeline.Data) (pipeline.Data, *dataframe.DataFrame, error) {
	block, err := rt.Compile(src)
	if err != nil {
		return pipeline.Empty(), nil, err
	}

	prof := debugger.NewProfiler()
	result, err := rt.runInstrumented(block, input, prof)
	if err != nil {
		return pipeline.Empty(), nil, err
	}
	report, err := prof.Report(rt.engine, span.Unknown())
	if err != nil {
		return pipeline.Empty(), nil, err
	}
	return result, report.(*dataframe.DataFrame), nil
}

// runInstrumented is the activate/eval/collect/deactivate sequence shared by
// the debugging entry points. The result is collected while the debugger is
// still active so lazy streams are pulled under instrumentation, and the
// slot is released even when evaluation fails.
func (rt *Runtime) runInstrumented(block *ir.Block, input pipeline.Data, d debugger.Debugger) (pipeline.Data, error) {
	if err := rt.engine.ActivateDebugger(d); err != nil {
		return pipeline.Empty(), err
	}

	result, evalErr := rt.engine.EvalBlock(block, input)
	var collected pipeline.Data
	if evalErr == nil {
		collected, evalErr = result.Collect(span.Unknown())
	}

	if _, err := rt.engine.DeactivateDebugger(); err != nil {
		return pipeline.Empty(), fmt.Errorf("releasing debugger: %w", err)
	}
	if evalErr != nil {
		return pipeline.Empty(), evalErr
	}
	return collected, nil
}

// registerBuiltins installs the small standard declarations the assembly
// examples and tests rely on.
func registerBuiltins(e *engine.EngineState) {
	mustRegister(e, "echo", func(_ *engine.EngineState, input pipeline.Data, _ span.Span) (pipeline.Data, error) {
		return input, nil
	})

	mustRegister(e, "upper", func(_ *engine.EngineState, input pipeline.Data, sp span.Span) (pipeline.Data, error) {
		collected, err := input.Collect(sp)
		if err != nil {
			return pipeline.Empty(), err
		}
		s, ok := collected.Value().(string)
		if !ok {
			return pipeline.Empty(), fmt.Errorf("%w: upper needs a string, got %s", engine.ErrTypeMismatch, collected)
		}
		return pipeline.FromValue(strings.ToUpper(s)), nil
	})

	// lines splits a string into a lazy stream, one element per line.
	mustRegister(e, "lines", func(e *engine.EngineState, input pipeline.Data, sp span.Span) (pipeline.Data, error) {
		collected, err := input.Collect(sp)
		if err != nil {
			return pipeline.Empty(), err
		}
		s, ok := collected.Value().(string)
		if !ok {
			return pipeline.Empty(), fmt.Errorf("%w: lines needs a string, got %s", engine.ErrTypeMismatch, collected)
		}
		parts := strings.Split(strings.TrimRight(s, "\n"), "\n")
		values := make([]any, len(parts))
		for i, p := range parts {
			values[i] = p
		}
		return pipeline.FromStream(pipeline.StreamFromSlice(values, e.Signals(), sp)), nil
	})

	mustRegister(e, "length", func(_ *engine.EngineState, input pipeline.Data, sp span.Span) (pipeline.Data, error) {
		collected, err := input.Collect(sp)
		if err != nil {
			return pipeline.Empty(), err
		}
		switch v := collected.Value().(type) {
		case nil:
			return pipeline.FromValue(int64(0)), nil
		case string:
			return pipeline.FromValue(int64(len(v))), nil
		case []any:
			return pipeline.FromValue(int64(len(v))), nil
		case *dataframe.DataFrame:
			return pipeline.FromValue(int64(v.NRows())), nil
		default:
			return pipeline.Empty(), fmt.Errorf("%w: length needs a string, list, or table, got %s", engine.ErrTypeMismatch, collected)
		}
	})
}

func mustRegister(e *engine.EngineState, name string, fn engine.DeclFunc) {
	if _, err := e.RegisterDecl(name, fn); err != nil {
		panic(fmt.Sprintf("registering builtin %s: %v", name, err))
	}
}
