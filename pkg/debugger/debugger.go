// Package debugger defines the instrumentation hook the engine drives and
// the built-in implementations: Noop (default), Stepper (interactive
// single-stepping), and Profiler (per-instruction timing).
//
// The engine holds exactly one debugger at a time and calls EnterInstruction
// before each instruction takes effect. Implementations other than Noop must
// tolerate concurrent calls: frames evaluated in parallel share the one
// installed debugger.
package debugger

import (
	"github.com/tidelang/tide/pkg/ir"
	"github.com/tidelang/tide/pkg/pipeline"
	"github.com/tidelang/tide/pkg/span"
)

// Context is the narrow view of engine state a debugger may consult.
// Today that is declaration-name resolution for disassembly.
type Context = ir.DeclResolver

// Debugger observes block evaluation. EnterInstruction is called strictly
// before the instruction at index executes; index always matches the
// position DisplayInstruction and Disassemble report for that instruction.
// registers is a read-only view of the frame; implementations must not
// mutate or retain it.
type Debugger interface {
	EnterInstruction(ctx Context, block *ir.Block, index int, registers []pipeline.Data)

	// Report summarizes what was observed, for presentation after the
	// debugger is deactivated. The shape is implementation-defined.
	Report(ctx Context, sp span.Span) (any, error)
}
