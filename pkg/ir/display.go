package ir

import (
	"bytes"
	"fmt"
)

// DeclResolver maps declaration ids back to command names for display.
// The engine state implements it.
type DeclResolver interface {
	DeclName(id DeclID) (string, bool)
}

// DisplayInstruction renders one instruction the way Disassemble does, with
// literal values and decl names inlined. The output for a given (block,
// index) is stable, so instrumentation can rely on it.
func DisplayInstruction(block *Block, index int, resolver DeclResolver) string {
	inst := block.Instr(index)
	op := inst.Opcode()
	opName := op.String()
	dst := inst.Dst()
	src := inst.Src()

	switch op {
	case OpLoadLiteral:
		litVal := "?"
		if int(inst.Imm16()) < block.NumLiterals() {
			litVal = formatLiteral(block.Literal(int(inst.Imm16())))
		}
		return fmt.Sprintf("%-12s r%d, %s", opName, dst, litVal)

	case OpMove, OpClone, OpListPush, OpStrAppend:
		return fmt.Sprintf("%-12s r%d, r%d", opName, dst, src)

	case OpCollect, OpDrain, OpDrop, OpNot, OpReturn:
		return fmt.Sprintf("%-12s r%d", opName, dst)

	case OpJump:
		return fmt.Sprintf("%-12s %d", opName, inst.Imm16())

	case OpBranchIf:
		return fmt.Sprintf("%-12s r%d, %d", opName, dst, inst.Imm16())

	case OpIterate:
		return fmt.Sprintf("%-12s r%d, r%d, end %d", opName, dst, src, inst.Imm8())

	case OpCall:
		name := fmt.Sprintf("decl %d", inst.Imm16())
		if resolver != nil {
			if n, ok := resolver.DeclName(DeclID(inst.Imm16())); ok {
				name = fmt.Sprintf("%q", n)
			}
		}
		return fmt.Sprintf("%-12s r%d, %s", opName, dst, name)

	case OpNop:
		return opName

	default:
		return fmt.Sprintf("%-12s 0x%08X", opName, uint32(inst))
	}
}

func formatLiteral(v any) string {
	switch v := v.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Disassemble renders a whole block, one numbered line per instruction.
func Disassemble(block *Block, resolver DeclResolver) string {
	var buf bytes.Buffer

	buf.WriteString("; Disassembled from tide IR\n")
	buf.WriteString(fmt.Sprintf("; %d instructions, %d literals, %d registers\n\n",
		block.Len(), block.NumLiterals(), block.RegisterCount()))

	for i := 0; i < block.Len(); i++ {
		buf.WriteString(fmt.Sprintf("%04d: %s\n", i, DisplayInstruction(block, i, resolver)))
	}

	return buf.String()
}
