// Package engine evaluates compiled IR blocks.
//
// An EngineState owns the declaration table, the shared cancellation handle,
// and the single debugger slot. Evaluation itself is re-entrant: each
// EvalBlock call gets its own register frame, while concurrent frames share
// the installed debugger and the Signals handle.
//
// Basic usage:
//
//	e := engine.New()
//	e.RegisterDecl("echo", echoFn)
//	result, err := e.EvalBlock(block, pipeline.Empty())
package engine

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/tidelang/tide/pkg/debugger"
	"github.com/tidelang/tide/pkg/ir"
	"github.com/tidelang/tide/pkg/pipeline"
	"github.com/tidelang/tide/pkg/signals"
	"github.com/tidelang/tide/pkg/span"
)

// Error definitions
var (
	ErrNoReturn           = errors.New("block ended without RETURN")
	ErrInvalidInstruction = errors.New("invalid instruction")
	ErrUnknownDecl        = errors.New("unknown declaration")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrTooManyDecls       = errors.New("declaration table full")

	ErrDebuggerActive = errors.New("debugger: a debugger is already active")
	ErrDebuggerLocked = errors.New("debugger: state is locked by another caller")
)

// DeclFunc is the implementation of a callable declaration. It receives the
// engine, the pipeline input from the call's register, and the call site.
type DeclFunc func(e *EngineState, input pipeline.Data, sp span.Span) (pipeline.Data, error)

// Decl is a named declaration in the engine's table.
type Decl struct {
	Name string
	Fn   DeclFunc
}

// debugSlot is the value behind the atomic debugger pointer. The slot is
// replaced wholesale on activate/deactivate so the hot path reads one
// pointer and never observes a half-updated pair.
type debugSlot struct {
	d      debugger.Debugger
	active bool
}

// EngineState holds everything shared between evaluations.
type EngineState struct {
	decls     []Decl
	declIndex map[string]ir.DeclID
	signals   signals.Signals
	logger    *slog.Logger

	// debugMu serializes activate/deactivate; debug is read lock-free on
	// the instruction hot path.
	debugMu sync.Mutex
	debug   atomic.Pointer[debugSlot]
}

// New creates an engine with no declarations, an empty Signals handle, and
// the Noop debugger installed.
func New() *EngineState {
	e := &EngineState{
		declIndex: make(map[string]ir.DeclID),
		signals:   signals.Empty(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	e.debug.Store(&debugSlot{d: debugger.Noop{}})
	return e
}

// SetSignals installs the cancellation handle checked during evaluation.
func (e *EngineState) SetSignals(sig signals.Signals) {
	e.signals = sig
}

// Signals returns the engine's cancellation handle.
func (e *EngineState) Signals() signals.Signals {
	return e.signals
}

// SetLogger installs the structured logger. nil restores the discard logger.
func (e *EngineState) SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e.logger = logger
}

// RegisterDecl adds a named declaration and returns its id. Registering a
// name twice replaces the earlier implementation under the same id.
func (e *EngineState) RegisterDecl(name string, fn DeclFunc) (ir.DeclID, error) {
	if id, ok := e.declIndex[name]; ok {
		e.decls[id].Fn = fn
		return id, nil
	}
	if len(e.decls) > int(^ir.DeclID(0)) {
		return 0, ErrTooManyDecls
	}
	id := ir.DeclID(len(e.decls))
	e.decls = append(e.decls, Decl{Name: name, Fn: fn})
	e.declIndex[name] = id
	return id, nil
}

// FindDecl returns the id registered for name.
func (e *EngineState) FindDecl(name string) (ir.DeclID, bool) {
	id, ok := e.declIndex[name]
	return id, ok
}

// DeclName resolves a declaration id back to its name. Implements the
// resolver consulted by disassembly and debuggers.
func (e *EngineState) DeclName(id ir.DeclID) (string, bool) {
	if int(id) >= len(e.decls) {
		return "", false
	}
	return e.decls[id].Name, true
}

// ActivateDebugger installs d as the engine's debugger. It fails with
// ErrDebuggerActive if a debugger is already active and ErrDebuggerLocked if
// another caller holds the debugger state. Neither failure is retried
// internally; the caller decides.
func (e *EngineState) ActivateDebugger(d debugger.Debugger) error {
	if !e.debugMu.TryLock() {
		return ErrDebuggerLocked
	}
	defer e.debugMu.Unlock()

	if e.debug.Load().active {
		return ErrDebuggerActive
	}
	e.debug.Store(&debugSlot{d: d, active: true})
	e.logger.Debug("debugger activated", "debugger", fmt.Sprintf("%T", d))
	return nil
}

// DeactivateDebugger removes the active debugger and returns it so the
// caller can collect its report. When no debugger is active it returns the
// Noop debugger and no error.
func (e *EngineState) DeactivateDebugger() (debugger.Debugger, error) {
	if !e.debugMu.TryLock() {
		return nil, ErrDebuggerLocked
	}
	defer e.debugMu.Unlock()

	slot := e.debug.Load()
	if !slot.active {
		return debugger.Noop{}, nil
	}
	e.debug.Store(&debugSlot{d: debugger.Noop{}})
	e.logger.Debug("debugger deactivated", "debugger", fmt.Sprintf("%T", slot.d))
	return slot.d, nil
}

// DebuggerActive reports whether a debugger is currently installed.
func (e *EngineState) DebuggerActive() bool {
	return e.debug.Load().active
}
