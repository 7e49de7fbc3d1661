// Package compiler assembles textual tide IR into executable blocks.
//
// The assembly is line-oriented: one instruction per line, `label:` to mark
// a jump target, `;` to end-of-line comments. Registers are written r0-r255;
// string, integer, float, and bool literals are interned into the block's
// literal pool, and CALL takes a declaration name resolved against the
// engine's table.
package compiler

import (
	"errors"
	"fmt"

	"github.com/tidelang/tide/pkg/ir"
)

var (
	ErrUnknownOpcode  = errors.New("compiler: unknown opcode")
	ErrUnknownLabel   = errors.New("compiler: unknown label")
	ErrUnknownDecl    = errors.New("compiler: unknown declaration")
	ErrBadOperands    = errors.New("compiler: bad operands")
	ErrTargetTooFar   = errors.New("compiler: iterate target beyond 8-bit range")
	ErrProgramTooLong = errors.New("compiler: program exceeds 16-bit address space")
)

// DeclTable resolves declaration names at assembly time. The engine state
// implements it.
type DeclTable interface {
	FindDecl(name string) (ir.DeclID, bool)
}

// Compile assembles source into a validated block. decls may be nil when the
// source contains no CALL instructions.
func Compile(source string, decls DeclTable) (*ir.Block, error) {
	parser := NewParser(source)
	program, err := parser.Parse()
	if err != nil {
		return nil, err
	}
	if len(program.Instructions) > 1<<16 {
		return nil, ErrProgramTooLong
	}

	c := &compiler{program: program, decls: decls}
	return c.compile()
}

type compiler struct {
	program *AsmProgram
	decls   DeclTable
}

func (c *compiler) compile() (*ir.Block, error) {
	bb := ir.NewBlockBuilder(c.registerCount())

	for _, inst := range c.program.Instructions {
		word, err := c.compileInstruction(bb, inst)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", inst.Line, err)
		}
		bb.Emit(word, inst.Span)
	}

	return bb.Build()
}

// registerCount scans all register operands; the frame needs one register
// past the highest mentioned, and at least one for the pipeline input.
func (c *compiler) registerCount() int {
	max := 0
	for _, inst := range c.program.Instructions {
		for _, op := range inst.Operands {
			if op.Type == OperandReg && int(op.RegNum) > max {
				max = int(op.RegNum)
			}
		}
	}
	return max + 1
}

func (c *compiler) compileInstruction(bb *ir.BlockBuilder, inst AsmInstruction) (ir.Instruction, error) {
	opcode, ok := ir.OpcodeFromString(inst.Opcode)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownOpcode, inst.Opcode)
	}

	switch opcode {
	case ir.OpLoadLiteral:
		return c.compileLoadLiteral(bb, inst)

	case ir.OpMove, ir.OpClone, ir.OpListPush, ir.OpStrAppend:
		if err := wantOperands(inst, OperandReg, OperandReg); err != nil {
			return 0, err
		}
		return ir.Encode(opcode, inst.Operands[0].RegNum, inst.Operands[1].RegNum, 0), nil

	case ir.OpCollect, ir.OpDrain, ir.OpDrop, ir.OpNot, ir.OpReturn:
		if err := wantOperands(inst, OperandReg); err != nil {
			return 0, err
		}
		return ir.Encode(opcode, inst.Operands[0].RegNum, 0, 0), nil

	case ir.OpJump:
		target, err := c.resolveTarget(inst, 0)
		if err != nil {
			return 0, err
		}
		return ir.EncodeImm16(opcode, 0, uint16(target)), nil

	case ir.OpBranchIf:
		if err := wantOperandCount(inst, 2); err != nil {
			return 0, err
		}
		if inst.Operands[0].Type != OperandReg {
			return 0, fmt.Errorf("%w: BRANCH_IF needs a register first", ErrBadOperands)
		}
		target, err := c.resolveTarget(inst, 1)
		if err != nil {
			return 0, err
		}
		return ir.EncodeImm16(opcode, inst.Operands[0].RegNum, uint16(target)), nil

	case ir.OpIterate:
		if err := wantOperandCount(inst, 3); err != nil {
			return 0, err
		}
		if inst.Operands[0].Type != OperandReg || inst.Operands[1].Type != OperandReg {
			return 0, fmt.Errorf("%w: ITERATE needs two registers first", ErrBadOperands)
		}
		target, err := c.resolveTarget(inst, 2)
		if err != nil {
			return 0, err
		}
		if target > 0xFF {
			return 0, fmt.Errorf("%w: %d", ErrTargetTooFar, target)
		}
		return ir.Encode(opcode, inst.Operands[0].RegNum, inst.Operands[1].RegNum, uint8(target)), nil

	case ir.OpCall:
		return c.compileCall(inst)

	case ir.OpNop:
		return ir.Encode(opcode, 0, 0, 0), nil

	default:
		return 0, fmt.Errorf("%w: %s", ErrUnknownOpcode, inst.Opcode)
	}
}

// LOAD_LITERAL r0, <string|int|float|bool|list>
// The bare identifier `list` loads a fresh empty list, for LIST_PUSH
// accumulators.
func (c *compiler) compileLoadLiteral(bb *ir.BlockBuilder, inst AsmInstruction) (ir.Instruction, error) {
	if err := wantOperandCount(inst, 2); err != nil {
		return 0, err
	}
	if inst.Operands[0].Type != OperandReg {
		return 0, fmt.Errorf("%w: LOAD_LITERAL needs a register first", ErrBadOperands)
	}

	var value any
	switch op := inst.Operands[1]; op.Type {
	case OperandString:
		value = op.StrVal
	case OperandInt:
		value = op.IntVal
	case OperandFloat:
		value = op.FloatVal
	case OperandBool:
		value = op.BoolVal
	case OperandIdent:
		if op.StrVal != "list" {
			return 0, fmt.Errorf("%w: unknown literal %q", ErrBadOperands, op.StrVal)
		}
		value = []any{}
	default:
		return 0, fmt.Errorf("%w: LOAD_LITERAL needs a literal second", ErrBadOperands)
	}

	return ir.EncodeImm16(ir.OpLoadLiteral, inst.Operands[0].RegNum, bb.AddLiteral(value)), nil
}

// CALL r0, "name"
func (c *compiler) compileCall(inst AsmInstruction) (ir.Instruction, error) {
	if err := wantOperandCount(inst, 2); err != nil {
		return 0, err
	}
	if inst.Operands[0].Type != OperandReg {
		return 0, fmt.Errorf("%w: CALL needs a register first", ErrBadOperands)
	}
	name := inst.Operands[1]
	if name.Type != OperandString && name.Type != OperandIdent {
		return 0, fmt.Errorf("%w: CALL needs a declaration name second", ErrBadOperands)
	}
	if c.decls == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDecl, name.StrVal)
	}
	id, ok := c.decls.FindDecl(name.StrVal)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownDecl, name.StrVal)
	}
	return ir.EncodeImm16(ir.OpCall, inst.Operands[0].RegNum, uint16(id)), nil
}

// resolveTarget turns a label or integer operand into an instruction index.
func (c *compiler) resolveTarget(inst AsmInstruction, operand int) (int, error) {
	op := inst.Operands[operand]
	switch op.Type {
	case OperandIdent:
		idx, ok := c.program.Labels[op.StrVal]
		if !ok {
			return 0, fmt.Errorf("%w: %q", ErrUnknownLabel, op.StrVal)
		}
		return idx, nil
	case OperandInt:
		return int(op.IntVal), nil
	default:
		return 0, fmt.Errorf("%w: expected a label or index", ErrBadOperands)
	}
}

func wantOperandCount(inst AsmInstruction, n int) error {
	if len(inst.Operands) != n {
		return fmt.Errorf("%w: %s expects %d operands, got %d", ErrBadOperands, inst.Opcode, n, len(inst.Operands))
	}
	return nil
}

func wantOperands(inst AsmInstruction, types ...OperandType) error {
	if err := wantOperandCount(inst, len(types)); err != nil {
		return err
	}
	for i, want := range types {
		if inst.Operands[i].Type != want {
			return fmt.Errorf("%w: %s operand %d has the wrong kind", ErrBadOperands, inst.Opcode, i+1)
		}
	}
	return nil
}
