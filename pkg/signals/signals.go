// Package signals implements the cooperative cancellation substrate shared
// by every blocking or streaming operation in the engine.
//
// A Signals is a cheap handle over an optional shared atomic flag, typically
// set by a process-level interrupt handler (ctrl+c / SIGINT). Handles are
// plain values: copying one yields another handle over the same flag, so a
// Trigger through any copy is visible to all of them.
//
// Note an intentional asymmetry between the two consumption paths: the
// synchronous Check reports interruption but leaves the flag set (it stays
// set until an explicit Reset), while the asynchronous Protect race resets
// the flag itself upon observing interruption, so a single interrupt cancels
// exactly one protected operation. Do not unify the two.
package signals

import (
	"sync/atomic"

	"github.com/tidelang/tide/pkg/span"
)

// Signals is used to check for a request to suspend or terminate running
// code. For now it only supports interruption (ctrl+c or SIGINT).
type Signals struct {
	signals *atomic.Bool
}

// Empty returns a Signals that is not hooked up to any interrupt source and
// therefore never reports interruption. Use it in tests, or when the stream
// being built already carries its own Signals and checking twice would
// double-handle the interrupt.
func Empty() Signals {
	return Signals{}
}

// New creates a Signals bound to an externally owned interrupt flag.
// Once the flag is set, Check errors and Interrupted returns true until
// the flag is Reset.
func New(flag *atomic.Bool) Signals {
	return Signals{signals: flag}
}

// Check returns an error tagged with sp if an interrupt has been triggered,
// and nil otherwise. It never blocks; it is cheap enough (a single atomic
// load) to call on every loop iteration or stream pull.
func (s Signals) Check(sp span.Span) error {
	if s.Interrupted() {
		return &InterruptedError{Span: sp}
	}
	return nil
}

// Trigger sets the interrupt flag. Idempotent; a no-op on an empty handle.
func (s Signals) Trigger() {
	if s.signals != nil {
		s.signals.Store(true)
	}
}

// Interrupted reports whether an interrupt has been triggered.
func (s Signals) Interrupted() bool {
	return s.signals != nil && s.signals.Load()
}

// Reset clears the interrupt flag. The owner of the cancellation source must
// call this once an interruption has been fully handled, e.g. after the
// error has been reported to the user.
func (s Signals) Reset() {
	if s.signals != nil {
		s.signals.Store(false)
	}
}

// IsEmpty reports whether the handle is hooked up to an interrupt source.
func (s Signals) IsEmpty() bool {
	return s.signals == nil
}

// InterruptedError is the cancellation error produced when an interrupt is
// observed. It represents user intent to stop, not a defect; callers are
// expected to report it concisely and continue.
type InterruptedError struct {
	Span span.Span
}

func (e *InterruptedError) Error() string {
	if e.Span.IsUnknown() {
		return "operation interrupted"
	}
	return "operation interrupted (at " + e.Span.String() + ")"
}

// InterruptResult is the outcome of racing a protected operation against
// cancellation: either the operation's own output, or a marker that
// cancellation won first.
type InterruptResult[T any] struct {
	Value       T
	Interrupted bool
}
