package ir

// Instruction represents a 32-bit encoded instruction.
//
// Layout:
// ┌─────────┬─────────┬─────────┬─────────┐
// │ opcode  │   dst   │   src   │  imm8   │
// │ 8 bits  │ 8 bits  │ 8 bits  │ 8 bits  │
// └─────────┴─────────┴─────────┴─────────┘
//
// For instructions needing a larger immediate (literal indices, jump
// targets, decl ids), src+imm8 combine into imm16:
// ┌─────────┬─────────┬───────────────────┐
// │ opcode  │   dst   │       imm16       │
// │ 8 bits  │ 8 bits  │      16 bits      │
// └─────────┴─────────┴───────────────────┘
//
// dst occupies its own byte, so an instruction can address a destination
// register and carry a full 16-bit immediate at the same time (BRANCH_IF,
// CALL, LOAD_LITERAL all rely on that).
type Instruction uint32

// DeclID identifies a declaration (command) in the engine's decl table.
type DeclID uint16

// Encode creates an instruction in register mode (dst, src, imm8).
func Encode(op Opcode, dst, src, imm8 uint8) Instruction {
	return Instruction(uint32(op)<<24 | uint32(dst)<<16 | uint32(src)<<8 | uint32(imm8))
}

// EncodeImm16 creates an instruction in immediate mode (dst, imm16).
func EncodeImm16(op Opcode, dst uint8, imm16 uint16) Instruction {
	return Instruction(uint32(op)<<24 | uint32(dst)<<16 | uint32(imm16))
}

// Opcode returns the opcode (bits 31-24).
func (i Instruction) Opcode() Opcode {
	return Opcode(i >> 24)
}

// Dst returns the destination register (bits 23-16).
func (i Instruction) Dst() uint8 {
	return uint8(i >> 16)
}

// Src returns the source register (bits 15-8).
func (i Instruction) Src() uint8 {
	return uint8(i >> 8)
}

// Imm8 returns the 8-bit immediate value (bits 7-0).
func (i Instruction) Imm8() uint8 {
	return uint8(i)
}

// Imm16 returns the 16-bit immediate value (bits 15-0).
func (i Instruction) Imm16() uint16 {
	return uint16(i)
}

// String returns the opcode mnemonic.
func (i Instruction) String() string {
	return i.Opcode().String()
}
