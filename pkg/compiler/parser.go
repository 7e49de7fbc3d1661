package compiler

import (
	"fmt"
	"strconv"

	"github.com/tidelang/tide/pkg/span"
)

// OperandType represents the type of an operand.
type OperandType uint8

const (
	OperandReg OperandType = iota
	OperandInt
	OperandFloat
	OperandString
	OperandBool
	OperandIdent // label reference or decl name
)

// Operand represents an instruction operand.
type Operand struct {
	Type     OperandType
	RegNum   uint8
	IntVal   int64
	FloatVal float64
	StrVal   string // string literals, labels, decl names
	BoolVal  bool
}

// AsmInstruction represents a parsed assembly instruction.
type AsmInstruction struct {
	Opcode   string
	Operands []Operand
	Line     int
	Span     span.Span
}

// AsmProgram represents a parsed assembly program.
type AsmProgram struct {
	Instructions []AsmInstruction
	Labels       map[string]int // label -> instruction index
}

// Parser parses tide IR assembly source code.
type Parser struct {
	tokens  []Token
	pos     int
	program *AsmProgram
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	lexer := NewLexer(input)
	return &Parser{
		tokens: lexer.Tokenize(),
		program: &AsmProgram{
			Labels: make(map[string]int),
		},
	}
}

// Parse parses the entire input and returns the program. A bare identifier
// followed by a colon defines a label at the next instruction's index.
func (p *Parser) Parse() (*AsmProgram, error) {
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		switch tok.Type {
		case TokenEOF:
			return p.program, nil

		case TokenNewline:
			p.pos++

		case TokenIdent:
			if p.pos+1 < len(p.tokens) && p.tokens[p.pos+1].Type == TokenColon {
				if _, exists := p.program.Labels[tok.Value]; exists {
					return nil, fmt.Errorf("line %d: duplicate label %q", tok.Line, tok.Value)
				}
				p.program.Labels[tok.Value] = len(p.program.Instructions)
				p.pos += 2
				continue
			}
			inst, err := p.parseInstruction()
			if err != nil {
				return nil, err
			}
			p.program.Instructions = append(p.program.Instructions, inst)

		default:
			return nil, fmt.Errorf("line %d: unexpected token %q", tok.Line, tok.Value)
		}
	}

	return p.program, nil
}

func (p *Parser) parseInstruction() (AsmInstruction, error) {
	opTok := p.tokens[p.pos]
	inst := AsmInstruction{
		Opcode: opTok.Value,
		Line:   opTok.Line,
	}
	p.pos++ // Consume opcode

	end := opTok.End
	for p.pos < len(p.tokens) {
		tok := p.tokens[p.pos]

		if tok.Type == TokenNewline || tok.Type == TokenEOF {
			break
		}
		if tok.Type == TokenComma {
			p.pos++
			continue
		}

		operand, err := p.parseOperand()
		if err != nil {
			return inst, err
		}
		inst.Operands = append(inst.Operands, operand)
		end = tok.End
	}

	inst.Span = span.New(opTok.Start, end)
	return inst, nil
}

func (p *Parser) parseOperand() (Operand, error) {
	tok := p.tokens[p.pos]

	switch tok.Type {
	case TokenReg:
		num, err := strconv.ParseUint(tok.Value[1:], 10, 8)
		if err != nil {
			return Operand{}, fmt.Errorf("line %d: invalid register %q", tok.Line, tok.Value)
		}
		p.pos++
		return Operand{Type: OperandReg, RegNum: uint8(num)}, nil

	case TokenInt:
		intVal, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return Operand{}, fmt.Errorf("line %d: invalid integer %q", tok.Line, tok.Value)
		}
		p.pos++
		return Operand{Type: OperandInt, IntVal: intVal}, nil

	case TokenFloat:
		floatVal, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return Operand{}, fmt.Errorf("line %d: invalid float %q", tok.Line, tok.Value)
		}
		p.pos++
		return Operand{Type: OperandFloat, FloatVal: floatVal}, nil

	case TokenString:
		p.pos++
		return Operand{Type: OperandString, StrVal: tok.Value}, nil

	case TokenIdent:
		p.pos++
		switch tok.Value {
		case "true":
			return Operand{Type: OperandBool, BoolVal: true}, nil
		case "false":
			return Operand{Type: OperandBool, BoolVal: false}, nil
		}
		return Operand{Type: OperandIdent, StrVal: tok.Value}, nil

	default:
		return Operand{}, fmt.Errorf("line %d: unexpected token %q", tok.Line, tok.Value)
	}
}
