package debugger

import (
	"github.com/tidelang/tide/pkg/ir"
	"github.com/tidelang/tide/pkg/pipeline"
	"github.com/tidelang/tide/pkg/span"
)

// Noop is the debugger installed when nothing is being debugged. The engine
// skips the notification call entirely while Noop is installed, so its
// methods exist only to satisfy the interface.
type Noop struct{}

func (Noop) EnterInstruction(Context, *ir.Block, int, []pipeline.Data) {}

func (Noop) Report(Context, span.Span) (any, error) {
	return "", nil
}
