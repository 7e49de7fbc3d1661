package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/tidelang/tide/pkg/ir"
)

type declTable map[string]ir.DeclID

func (d declTable) FindDecl(name string) (ir.DeclID, bool) {
	id, ok := d[name]
	return id, ok
}

func TestCompileStraightLine(t *testing.T) {
	src := `
; load a greeting and hand it back
LOAD_LITERAL r0, "hello"
MOVE r1, r0
RETURN r1
`
	block, err := Compile(src, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if block.Len() != 3 {
		t.Fatalf("Len = %d, want 3", block.Len())
	}
	if block.RegisterCount() != 2 {
		t.Errorf("RegisterCount = %d, want 2", block.RegisterCount())
	}

	inst := block.Instr(0)
	if inst.Opcode() != ir.OpLoadLiteral || inst.Dst() != 0 {
		t.Errorf("instruction 0 = %v r%d", inst.Opcode(), inst.Dst())
	}
	if block.Literal(int(inst.Imm16())) != "hello" {
		t.Errorf("literal = %v, want hello", block.Literal(int(inst.Imm16())))
	}
	if block.Instr(2).Opcode() != ir.OpReturn || block.Instr(2).Dst() != 1 {
		t.Errorf("instruction 2 = %v r%d", block.Instr(2).Opcode(), block.Instr(2).Dst())
	}
}

func TestCompileLiteralKinds(t *testing.T) {
	src := `
LOAD_LITERAL r0, 42
LOAD_LITERAL r0, -1.5
LOAD_LITERAL r0, true
LOAD_LITERAL r0, list
RETURN r0
`
	block, err := Compile(src, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	wants := []any{int64(42), float64(-1.5), true}
	for i, want := range wants {
		got := block.Literal(int(block.Instr(i).Imm16()))
		if got != want {
			t.Errorf("literal %d = %v (%T), want %v (%T)", i, got, got, want, want)
		}
	}
	list := block.Literal(int(block.Instr(3).Imm16()))
	if _, ok := list.([]any); !ok {
		t.Errorf("list literal = %T, want []any", list)
	}
}

func TestCompileForwardLabel(t *testing.T) {
	src := `
BRANCH_IF r0, done
LOAD_LITERAL r0, "fell through"
done:
RETURN r0
`
	block, err := Compile(src, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	branch := block.Instr(0)
	if branch.Opcode() != ir.OpBranchIf || branch.Imm16() != 2 {
		t.Errorf("BRANCH_IF target = %d, want 2", branch.Imm16())
	}
}

func TestCompileLoop(t *testing.T) {
	src := `
LOAD_LITERAL r1, list
loop:
ITERATE r2, r0, done
LIST_PUSH r1, r2
JUMP loop
done:
RETURN r1
`
	block, err := Compile(src, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	iter := block.Instr(1)
	if iter.Opcode() != ir.OpIterate || iter.Dst() != 2 || iter.Src() != 0 || iter.Imm8() != 4 {
		t.Errorf("ITERATE = r%d, r%d, end %d, want r2, r0, end 4", iter.Dst(), iter.Src(), iter.Imm8())
	}
	jump := block.Instr(3)
	if jump.Opcode() != ir.OpJump || jump.Imm16() != 1 {
		t.Errorf("JUMP target = %d, want 1", jump.Imm16())
	}
}

func TestCompileCall(t *testing.T) {
	decls := declTable{"echo": 3}
	block, err := Compile("CALL r0, \"echo\"\nRETURN r0\n", decls)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	call := block.Instr(0)
	if call.Opcode() != ir.OpCall || call.Imm16() != 3 {
		t.Errorf("CALL decl = %d, want 3", call.Imm16())
	}
}

func TestCompileSpansCoverSource(t *testing.T) {
	src := `LOAD_LITERAL r0, "x"
RETURN r0`
	block, err := Compile(src, nil)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	sp := block.SpanAt(0)
	if got := src[sp.Start:sp.End]; got != `LOAD_LITERAL r0, "x"` {
		t.Errorf("span 0 covers %q", got)
	}
	sp = block.SpanAt(1)
	if got := src[sp.Start:sp.End]; got != "RETURN r0" {
		t.Errorf("span 1 covers %q", got)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		wantErr error
	}{
		{"unknown opcode", "FROBNICATE r0\n", ErrUnknownOpcode},
		{"unknown label", "JUMP nowhere\n", ErrUnknownLabel},
		{"unknown decl", "CALL r0, \"missing\"\nRETURN r0\n", ErrUnknownDecl},
		{"missing operand", "MOVE r0\nRETURN r0\n", ErrBadOperands},
		{"literal where register expected", "MOVE 1, r0\nRETURN r0\n", ErrBadOperands},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src, declTable{})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Compile = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestCompileDuplicateLabel(t *testing.T) {
	src := "here:\nNOP\nhere:\nRETURN r0\n"
	_, err := Compile(src, nil)
	if err == nil || !strings.Contains(err.Error(), "duplicate label") {
		t.Errorf("Compile = %v, want duplicate label error", err)
	}
}
