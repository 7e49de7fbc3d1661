package ir

// Opcode identifies an IR instruction.
type Opcode uint8

const (
	// ===== Data Movement (0x00-0x0F) =====
	OpLoadLiteral Opcode = 0x00 // R[dst] = literals[imm16]
	OpMove        Opcode = 0x01 // R[dst] = R[src]; R[src] = empty
	OpClone       Opcode = 0x02 // R[dst] = clone(R[src]); errors on streams
	OpDrop        Opcode = 0x03 // discard R[dst] without consuming streams
	OpCollect     Opcode = 0x04 // R[dst] = collect(R[dst]); streams -> list
	OpDrain       Opcode = 0x05 // consume R[dst] to exhaustion, keep nothing

	// ===== Value Operations (0x10-0x1F) =====
	OpNot       Opcode = 0x10 // R[dst] = !R[dst] (bool)
	OpListPush  Opcode = 0x11 // append collect(R[src]) to list in R[dst]
	OpStrAppend Opcode = 0x12 // append collect(R[src]) string to R[dst]

	// ===== Control Flow (0x20-0x2F) =====
	OpJump     Opcode = 0x20 // ip = imm16
	OpBranchIf Opcode = 0x21 // if R[dst] (bool, consumed) { ip = imm16 }
	OpIterate  Opcode = 0x22 // R[dst] = next(R[src] stream); exhausted -> ip = imm8

	// ===== Calls (0x30-0x3F) =====
	OpCall   Opcode = 0x30 // R[dst] = decls[imm16](R[dst] as input)
	OpReturn Opcode = 0x31 // return R[dst]

	// ===== Misc (0xF0-0xFF) =====
	OpNop Opcode = 0xF0 // no operation
)

// String returns the string representation of an opcode.
func (o Opcode) String() string {
	switch o {
	case OpLoadLiteral:
		return "LOAD_LITERAL"
	case OpMove:
		return "MOVE"
	case OpClone:
		return "CLONE"
	case OpDrop:
		return "DROP"
	case OpCollect:
		return "COLLECT"
	case OpDrain:
		return "DRAIN"
	case OpNot:
		return "NOT"
	case OpListPush:
		return "LIST_PUSH"
	case OpStrAppend:
		return "STR_APPEND"
	case OpJump:
		return "JUMP"
	case OpBranchIf:
		return "BRANCH_IF"
	case OpIterate:
		return "ITERATE"
	case OpCall:
		return "CALL"
	case OpReturn:
		return "RETURN"
	case OpNop:
		return "NOP"
	default:
		return "UNKNOWN"
	}
}

// OpcodeFromString returns the opcode for the given string.
func OpcodeFromString(s string) (Opcode, bool) {
	switch s {
	case "LOAD_LITERAL":
		return OpLoadLiteral, true
	case "MOVE":
		return OpMove, true
	case "CLONE":
		return OpClone, true
	case "DROP":
		return OpDrop, true
	case "COLLECT":
		return OpCollect, true
	case "DRAIN":
		return OpDrain, true
	case "NOT":
		return OpNot, true
	case "LIST_PUSH":
		return OpListPush, true
	case "STR_APPEND":
		return OpStrAppend, true
	case "JUMP":
		return OpJump, true
	case "BRANCH_IF":
		return OpBranchIf, true
	case "ITERATE":
		return OpIterate, true
	case "CALL":
		return OpCall, true
	case "RETURN":
		return OpReturn, true
	case "NOP":
		return OpNop, true
	default:
		return 0, false
	}
}
