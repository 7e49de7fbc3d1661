package debugger

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/tidelang/tide/pkg/ir"
	"github.com/tidelang/tide/pkg/pipeline"
	"github.com/tidelang/tide/pkg/span"
)

// Stepper prints each instruction before it executes and blocks on a
// caller-supplied wait callback. What "wait" means (read a keypress, tick a
// test channel) is the caller's business; the stepper only guarantees the
// callback fires exactly once per instruction, after the line is printed.
type Stepper struct {
	out   io.Writer
	wait  func()
	mu    sync.Mutex
	steps atomic.Int64
}

// NewStepper creates a stepper writing to out. wait may be nil, in which
// case the stepper prints without pausing.
func NewStepper(out io.Writer, wait func()) *Stepper {
	return &Stepper{out: out, wait: wait}
}

func (s *Stepper) EnterInstruction(ctx Context, block *ir.Block, index int, registers []pipeline.Data) {
	s.mu.Lock()
	fmt.Fprintf(s.out, "-> %04d: %s\n", index, ir.DisplayInstruction(block, index, ctx))
	for i, reg := range registers {
		if !reg.IsEmpty() {
			fmt.Fprintf(s.out, "   r%d = %s\n", i, reg.String())
		}
	}
	s.mu.Unlock()

	s.steps.Add(1)
	if s.wait != nil {
		s.wait()
	}
}

// Steps returns how many instructions have been stepped so far.
func (s *Stepper) Steps() int64 {
	return s.steps.Load()
}

func (s *Stepper) Report(Context, span.Span) (any, error) {
	return fmt.Sprintf("stepped %d instructions", s.steps.Load()), nil
}
