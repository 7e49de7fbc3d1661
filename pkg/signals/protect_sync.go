//go:build sync_interrupt

package signals

// Protect runs fn to completion on the calling goroutine. This build omits
// the interrupt race entirely: environments that cannot tolerate the orphaned
// worker goroutine (or that forbid spawning) build with the sync_interrupt
// tag and rely on fn's own Check calls for cancellation.
func Protect[T any](s Signals, fn func() T) InterruptResult[T] {
	return InterruptResult[T]{Value: fn()}
}
