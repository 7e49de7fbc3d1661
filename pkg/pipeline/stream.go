package pipeline

import (
	"github.com/tidelang/tide/pkg/signals"
	"github.com/tidelang/tide/pkg/span"
)

// ListStream is a lazy pull-based stream of values. Each pull is preceded by
// an interrupt check on the stream's own Signals handle, so a ctrl+c lands
// between elements rather than after the whole stream has been produced.
type ListStream struct {
	next    func() (any, bool)
	signals signals.Signals
	sp      span.Span
	done    bool
}

// NewListStream wraps a pull function. next returns the next element and
// true, or a zero value and false once exhausted; it is never called again
// after it reports exhaustion.
func NewListStream(next func() (any, bool), sig signals.Signals, sp span.Span) *ListStream {
	return &ListStream{next: next, signals: sig, sp: sp}
}

// StreamFromSlice builds a stream over an in-memory list.
func StreamFromSlice(values []any, sig signals.Signals, sp span.Span) *ListStream {
	i := 0
	return NewListStream(func() (any, bool) {
		if i >= len(values) {
			return nil, false
		}
		v := values[i]
		i++
		return v, true
	}, sig, sp)
}

// Span returns the source location the stream was created at.
func (ls *ListStream) Span() span.Span {
	return ls.sp
}

// Signals returns the stream's cancellation handle.
func (ls *ListStream) Signals() signals.Signals {
	return ls.signals
}

// Next pulls one element. It does not check for interrupts; use Collect or
// Drain for interrupt-aware consumption, or interleave Check calls yourself.
func (ls *ListStream) Next() (any, bool) {
	if ls.done {
		return nil, false
	}
	v, ok := ls.next()
	if !ok {
		ls.done = true
		return nil, false
	}
	return v, true
}

// Collect pulls the stream to exhaustion and returns the elements, checking
// for interrupts before each pull.
func (ls *ListStream) Collect() ([]any, error) {
	var out []any
	for {
		if err := ls.signals.Check(ls.sp); err != nil {
			return nil, err
		}
		v, ok := ls.Next()
		if !ok {
			return out, nil
		}
		out = append(out, v)
	}
}

// Drain consumes the stream, discarding elements, still honoring interrupts.
func (ls *ListStream) Drain() error {
	for {
		if err := ls.signals.Check(ls.sp); err != nil {
			return err
		}
		if _, ok := ls.Next(); !ok {
			return nil
		}
	}
}
