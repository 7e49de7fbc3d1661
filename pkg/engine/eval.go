package engine

import (
	"fmt"

	"github.com/tidelang/tide/pkg/ir"
	"github.com/tidelang/tide/pkg/pipeline"
	"github.com/tidelang/tide/pkg/span"
)

// EvalBlock runs a block to its RETURN. input lands in register 0, matching
// the calling convention the compiler emits.
//
// Per instruction, in order: the interrupt check, the debugger notification
// (strictly before any effect, with the same index the disassembly shows),
// then dispatch. The block was bounds-validated at build time, so operand
// accesses index without rechecking.
func (e *EngineState) EvalBlock(block *ir.Block, input pipeline.Data) (pipeline.Data, error) {
	regs := make([]pipeline.Data, block.RegisterCount())
	regs[0] = input

	ip := 0
	for ip < block.Len() {
		sp := block.SpanAt(ip)

		if err := e.signals.Check(sp); err != nil {
			e.logger.Debug("evaluation interrupted", "ip", ip, "span", sp.String())
			return pipeline.Empty(), err
		}

		if slot := e.debug.Load(); slot.active {
			slot.d.EnterInstruction(e, block, ip, regs)
		}

		inst := block.Instr(ip)
		dst := inst.Dst()
		src := inst.Src()

		switch inst.Opcode() {
		case ir.OpLoadLiteral:
			regs[dst] = literalData(block.Literal(int(inst.Imm16())))

		case ir.OpMove:
			// Metadata travels with the data; the source is emptied.
			if dst != src {
				regs[dst] = regs[src]
				regs[src] = pipeline.Empty()
			}

		case ir.OpClone:
			cloned, err := regs[src].Clone()
			if err != nil {
				return pipeline.Empty(), span.Attach(sp, err)
			}
			regs[dst] = cloned

		case ir.OpCollect:
			collected, err := regs[dst].Collect(sp)
			if err != nil {
				return pipeline.Empty(), err
			}
			regs[dst] = collected

		case ir.OpDrain:
			if err := regs[dst].Drain(sp); err != nil {
				return pipeline.Empty(), err
			}
			regs[dst] = pipeline.Empty()

		case ir.OpDrop:
			regs[dst] = pipeline.Empty()

		case ir.OpNot:
			b, ok := regs[dst].Value().(bool)
			if !ok || regs[dst].IsStream() {
				return pipeline.Empty(), span.Attach(sp, fmt.Errorf("%w: NOT needs a bool, got %s", ErrTypeMismatch, regs[dst]))
			}
			regs[dst] = pipeline.FromValue(!b)

		case ir.OpListPush:
			elem, err := regs[src].Collect(sp)
			if err != nil {
				return pipeline.Empty(), err
			}
			regs[src] = pipeline.Empty()
			list, err := asList(regs[dst])
			if err != nil {
				return pipeline.Empty(), span.Attach(sp, err)
			}
			regs[dst] = pipeline.FromValue(append(list, elem.Value()))

		case ir.OpStrAppend:
			part, err := regs[src].Collect(sp)
			if err != nil {
				return pipeline.Empty(), err
			}
			regs[src] = pipeline.Empty()
			base, err := asString(regs[dst])
			if err != nil {
				return pipeline.Empty(), span.Attach(sp, err)
			}
			tail, ok := part.Value().(string)
			if !ok {
				return pipeline.Empty(), span.Attach(sp, fmt.Errorf("%w: STR_APPEND needs a string, got %s", ErrTypeMismatch, part))
			}
			regs[dst] = pipeline.FromValue(base + tail)

		case ir.OpJump:
			ip = int(inst.Imm16())
			continue

		case ir.OpBranchIf:
			cond, ok := regs[dst].Value().(bool)
			if !ok || regs[dst].IsStream() {
				return pipeline.Empty(), span.Attach(sp, fmt.Errorf("%w: BRANCH_IF needs a bool, got %s", ErrTypeMismatch, regs[dst]))
			}
			regs[dst] = pipeline.Empty()
			if cond {
				ip = int(inst.Imm16())
				continue
			}

		case ir.OpIterate:
			stream, err := e.streamFor(&regs[src], sp)
			if err != nil {
				return pipeline.Empty(), err
			}
			v, ok := stream.Next()
			if !ok {
				regs[src] = pipeline.Empty()
				regs[dst] = pipeline.Empty()
				ip = int(inst.Imm8())
				continue
			}
			regs[dst] = pipeline.FromValue(v)

		case ir.OpCall:
			id := ir.DeclID(inst.Imm16())
			if int(id) >= len(e.decls) {
				return pipeline.Empty(), span.Attach(sp, fmt.Errorf("%w: decl %d", ErrUnknownDecl, id))
			}
			decl := e.decls[id]
			callInput := regs[dst]
			regs[dst] = pipeline.Empty()
			out, err := decl.Fn(e, callInput, sp)
			if err != nil {
				return pipeline.Empty(), span.Attach(sp, fmt.Errorf("calling %q: %w", decl.Name, err))
			}
			regs[dst] = out

		case ir.OpReturn:
			return regs[dst], nil

		case ir.OpNop:
			// nothing

		default:
			return pipeline.Empty(), span.Attach(sp, fmt.Errorf("%w: 0x%08X", ErrInvalidInstruction, uint32(inst)))
		}

		ip++
	}

	return pipeline.Empty(), ErrNoReturn
}

// streamFor returns the register's stream, converting an in-memory list to a
// lazy stream on first iteration. The converted stream shares the engine's
// Signals so interruption lands between elements.
func (e *EngineState) streamFor(reg *pipeline.Data, sp span.Span) (*pipeline.ListStream, error) {
	if reg.IsStream() {
		return reg.Stream(), nil
	}
	list, ok := reg.Value().([]any)
	if !ok {
		return nil, span.Attach(sp, fmt.Errorf("%w: ITERATE needs a list or stream, got %s", ErrTypeMismatch, reg))
	}
	stream := pipeline.StreamFromSlice(list, e.signals, sp)
	*reg = pipeline.FromStream(stream).WithMetadata(reg.Metadata())
	return stream, nil
}

// literalData wraps a literal pool entry. List literals are copied so a
// block stays reusable after its lists have been appended to.
func literalData(v any) pipeline.Data {
	if list, ok := v.([]any); ok {
		v = append([]any(nil), list...)
	}
	return pipeline.FromValue(v)
}

func asList(d pipeline.Data) ([]any, error) {
	if d.IsStream() {
		return nil, fmt.Errorf("%w: LIST_PUSH needs a collected list, got a stream", ErrTypeMismatch)
	}
	switch v := d.Value().(type) {
	case nil:
		return nil, nil
	case []any:
		// A clone shares the backing array; appending into its spare
		// capacity would write through to the other register.
		return append([]any(nil), v...), nil
	default:
		return nil, fmt.Errorf("%w: LIST_PUSH needs a list, got %s", ErrTypeMismatch, d)
	}
}

func asString(d pipeline.Data) (string, error) {
	if d.IsStream() {
		return "", fmt.Errorf("%w: STR_APPEND needs a collected string, got a stream", ErrTypeMismatch)
	}
	switch v := d.Value().(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("%w: STR_APPEND needs a string, got %s", ErrTypeMismatch, d)
	}
}
