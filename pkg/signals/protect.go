//go:build !sync_interrupt

package signals

import "time"

// pollInterval is how often the racing path samples the interrupt flag while
// the protected function runs. Coarse on purpose: interrupts come from a
// human at a terminal, not from other code.
const pollInterval = time.Millisecond

// Protect runs fn to completion unless an interrupt is observed first.
//
// On an empty handle fn runs inline. Otherwise fn runs in its own goroutine,
// racing a poll of the interrupt flag. If the poll wins, the flag is Reset
// (consuming the interrupt, see the package comment) and the result is marked
// Interrupted; fn keeps running in the background and its eventual value is
// discarded. fn must therefore not hold locks the caller needs afterward.
func Protect[T any](s Signals, fn func() T) InterruptResult[T] {
	if s.IsEmpty() {
		return InterruptResult[T]{Value: fn()}
	}

	done := make(chan T, 1)
	go func() {
		done <- fn()
	}()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case v := <-done:
			return InterruptResult[T]{Value: v}
		case <-ticker.C:
			if s.Interrupted() {
				s.Reset()
				return InterruptResult[T]{Interrupted: true}
			}
		}
	}
}
