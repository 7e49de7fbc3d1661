package signals

import "github.com/tidelang/tide/pkg/span"

// ProtectResult races an (T, error)-returning fn against cancellation and
// folds an interrupt into the error channel as an *InterruptedError tagged
// with sp.
func ProtectResult[T any](s Signals, sp span.Span, fn func() (T, error)) (T, error) {
	type out struct {
		v   T
		err error
	}
	res := Protect(s, func() out {
		v, err := fn()
		return out{v: v, err: err}
	})
	if res.Interrupted {
		var zero T
		return zero, &InterruptedError{Span: sp}
	}
	return res.Value.v, span.Attach(sp, res.Value.err)
}

// ProtectErr is ProtectResult for error-only operations.
func ProtectErr(s Signals, sp span.Span, fn func() error) error {
	res := Protect(s, fn)
	if res.Interrupted {
		return &InterruptedError{Span: sp}
	}
	return span.Attach(sp, res.Value)
}
