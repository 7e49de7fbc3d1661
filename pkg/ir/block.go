package ir

import (
	"errors"
	"fmt"

	"github.com/tidelang/tide/pkg/span"
)

var (
	ErrRegisterOutOfRange = errors.New("ir: register out of range")
	ErrTargetOutOfRange   = errors.New("ir: jump target out of range")
	ErrLiteralOutOfRange  = errors.New("ir: literal index out of range")
	ErrNoRegisters        = errors.New("ir: block must declare at least one register")
)

// Block is a compiled unit of IR: an instruction sequence, its literal pool,
// a span per instruction, and the number of registers a frame needs. Blocks
// are immutable once built; the engine relies on BlockBuilder's validation
// and performs no per-step bounds revalidation.
type Block struct {
	code     []Instruction
	literals []any
	spans    []span.Span
	regCount int
}

// Len returns the number of instructions.
func (b *Block) Len() int {
	return len(b.code)
}

// Instr returns the instruction at index.
func (b *Block) Instr(index int) Instruction {
	return b.code[index]
}

// Code returns the instruction words. Callers must not modify the slice.
func (b *Block) Code() []Instruction {
	return b.code
}

// Literal returns the literal pool entry at index.
func (b *Block) Literal(index int) any {
	return b.literals[index]
}

// NumLiterals returns the size of the literal pool.
func (b *Block) NumLiterals() int {
	return len(b.literals)
}

// SpanAt returns the source span of the instruction at index.
func (b *Block) SpanAt(index int) span.Span {
	return b.spans[index]
}

// RegisterCount returns the number of registers a frame for this block needs.
func (b *Block) RegisterCount() int {
	return b.regCount
}

// BlockBuilder accumulates instructions and literals, then validates the
// whole block at Build time: register indices against the declared register
// count, jump targets against the instruction count, literal indices against
// the pool.
type BlockBuilder struct {
	code     []Instruction
	literals []any
	spans    []span.Span
	regCount int
}

// NewBlockBuilder creates a builder for a block with regCount registers.
func NewBlockBuilder(regCount int) *BlockBuilder {
	return &BlockBuilder{regCount: regCount}
}

// AddLiteral interns v into the literal pool and returns its index.
// Comparable values are deduplicated; others always get a fresh slot.
func (bb *BlockBuilder) AddLiteral(v any) uint16 {
	if isComparable(v) {
		for i, existing := range bb.literals {
			if isComparable(existing) && existing == v {
				return uint16(i)
			}
		}
	}
	bb.literals = append(bb.literals, v)
	return uint16(len(bb.literals) - 1)
}

func isComparable(v any) bool {
	switch v.(type) {
	case nil, bool, int64, float64, string:
		return true
	default:
		return false
	}
}

// Emit appends an instruction tagged with its source span.
func (bb *BlockBuilder) Emit(inst Instruction, sp span.Span) int {
	bb.code = append(bb.code, inst)
	bb.spans = append(bb.spans, sp)
	return len(bb.code) - 1
}

// Patch replaces the instruction at index, for backfilling forward jump
// targets. The span is kept.
func (bb *BlockBuilder) Patch(index int, inst Instruction) {
	bb.code[index] = inst
}

// Len returns the number of instructions emitted so far.
func (bb *BlockBuilder) Len() int {
	return len(bb.code)
}

// Build validates every instruction and returns the immutable block.
func (bb *BlockBuilder) Build() (*Block, error) {
	if bb.regCount < 1 {
		return nil, ErrNoRegisters
	}
	for i, inst := range bb.code {
		if err := bb.validate(inst); err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i, inst.Opcode(), err)
		}
	}
	return &Block{
		code:     bb.code,
		literals: bb.literals,
		spans:    bb.spans,
		regCount: bb.regCount,
	}, nil
}

func (bb *BlockBuilder) validate(inst Instruction) error {
	switch inst.Opcode() {
	case OpLoadLiteral:
		if err := bb.checkReg(inst.Dst()); err != nil {
			return err
		}
		return bb.checkLiteral(inst.Imm16())
	case OpMove, OpClone, OpListPush, OpStrAppend:
		if err := bb.checkReg(inst.Dst()); err != nil {
			return err
		}
		return bb.checkReg(inst.Src())
	case OpCollect, OpDrain, OpDrop, OpNot, OpReturn:
		return bb.checkReg(inst.Dst())
	case OpJump:
		return bb.checkTarget(int(inst.Imm16()))
	case OpBranchIf:
		if err := bb.checkReg(inst.Dst()); err != nil {
			return err
		}
		return bb.checkTarget(int(inst.Imm16()))
	case OpIterate:
		if err := bb.checkReg(inst.Dst()); err != nil {
			return err
		}
		if err := bb.checkReg(inst.Src()); err != nil {
			return err
		}
		return bb.checkTarget(int(inst.Imm8()))
	case OpCall:
		return bb.checkReg(inst.Dst())
	case OpNop:
		return nil
	default:
		return fmt.Errorf("unknown opcode 0x%02X", uint8(inst.Opcode()))
	}
}

func (bb *BlockBuilder) checkReg(r uint8) error {
	if int(r) >= bb.regCount {
		return fmt.Errorf("%w: r%d of %d", ErrRegisterOutOfRange, r, bb.regCount)
	}
	return nil
}

func (bb *BlockBuilder) checkTarget(t int) error {
	if t >= len(bb.code) {
		return fmt.Errorf("%w: %d of %d", ErrTargetOutOfRange, t, len(bb.code))
	}
	return nil
}

func (bb *BlockBuilder) checkLiteral(idx uint16) error {
	if int(idx) >= len(bb.literals) {
		return fmt.Errorf("%w: %d of %d", ErrLiteralOutOfRange, idx, len(bb.literals))
	}
	return nil
}
