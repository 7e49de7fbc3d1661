// Package span provides source locations used to tag runtime errors and
// diagnostics with the code region they originate from.
package span

import "fmt"

// Span is a half-open byte range [Start, End) into a source buffer.
// The zero value is the unknown span.
type Span struct {
	Start int
	End   int
}

// New creates a span covering [start, end).
func New(start, end int) Span {
	return Span{Start: start, End: end}
}

// Unknown returns the span used when no source location is available.
func Unknown() Span {
	return Span{}
}

// IsUnknown reports whether the span carries no location information.
func (s Span) IsUnknown() bool {
	return s.Start == 0 && s.End == 0
}

func (s Span) String() string {
	if s.IsUnknown() {
		return "<unknown>"
	}
	return fmt.Sprintf("%d..%d", s.Start, s.End)
}

// Error attaches a span to an underlying error so callers can report
// where a failure happened without losing the original cause.
type Error struct {
	Span Span
	Err  error
}

func (e *Error) Error() string {
	if e.Span.IsUnknown() {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (at %s)", e.Err, e.Span)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Attach wraps err with the given span. A nil err passes through unchanged,
// as does an err that already carries a span.
func Attach(sp Span, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*Error); ok {
		return err
	}
	return &Error{Span: sp, Err: err}
}
