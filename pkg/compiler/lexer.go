package compiler

import (
	"strings"
	"unicode"
)

// TokenType represents the type of a token.
type TokenType uint8

const (
	TokenEOF TokenType = iota
	TokenNewline
	TokenIdent  // Opcode names, labels, decl names, true/false
	TokenInt    // Integer literals
	TokenFloat  // Float literals
	TokenString // "quoted strings"
	TokenComma  // ,
	TokenColon  // : (for labels)
	TokenReg    // r0-r255
)

// String returns the string representation of a token type.
func (t TokenType) String() string {
	switch t {
	case TokenEOF:
		return "EOF"
	case TokenNewline:
		return "NEWLINE"
	case TokenIdent:
		return "IDENT"
	case TokenInt:
		return "INT"
	case TokenFloat:
		return "FLOAT"
	case TokenString:
		return "STRING"
	case TokenComma:
		return "COMMA"
	case TokenColon:
		return "COLON"
	case TokenReg:
		return "REG"
	default:
		return "UNKNOWN"
	}
}

// Token represents a lexical token. Start and End are byte offsets into the
// source, carried through to instruction spans.
type Token struct {
	Type  TokenType
	Value string
	Line  int
	Start int
	End   int
}

// Lexer tokenizes tide IR assembly source code.
type Lexer struct {
	input  string
	pos    int
	line   int
	tokens []Token
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
	}
}

// Tokenize tokenizes the entire input and returns the tokens. Comments run
// from ';' to end of line.
func (l *Lexer) Tokenize() []Token {
	for l.pos < len(l.input) {
		l.skipWhitespace()
		if l.pos >= len(l.input) {
			break
		}

		ch := l.input[l.pos]

		switch {
		case ch == '\n':
			l.emit(TokenNewline, "\n", l.pos, l.pos+1)
			l.line++
			l.pos++

		case ch == ';':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}

		case ch == ',':
			l.emit(TokenComma, ",", l.pos, l.pos+1)
			l.pos++

		case ch == ':':
			l.emit(TokenColon, ":", l.pos, l.pos+1)
			l.pos++

		case ch == '"':
			l.scanString()

		case ch == '-' || unicode.IsDigit(rune(ch)):
			l.scanNumber()

		case unicode.IsLetter(rune(ch)) || ch == '_':
			l.scanIdentOrRegister()

		default:
			// Unknown character, skip it
			l.pos++
		}
	}

	l.emit(TokenEOF, "", l.pos, l.pos)
	return l.tokens
}

func (l *Lexer) emit(t TokenType, value string, start, end int) {
	l.tokens = append(l.tokens, Token{Type: t, Value: value, Line: l.line, Start: start, End: end})
}

func (l *Lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' {
			l.pos++
		} else {
			break
		}
	}
}

func (l *Lexer) scanString() {
	start := l.pos
	l.pos++ // Skip opening quote
	valStart := l.pos

	for l.pos < len(l.input) && l.input[l.pos] != '"' {
		if l.input[l.pos] == '\n' {
			l.line++
		}
		l.pos++
	}

	value := l.input[valStart:l.pos]
	if l.pos < len(l.input) {
		l.pos++ // Skip closing quote
	}
	l.emit(TokenString, value, start, l.pos)
}

func (l *Lexer) scanNumber() {
	start := l.pos
	isFloat := false

	if l.input[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.input) && unicode.IsDigit(rune(l.input[l.pos])) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' {
		isFloat = true
		l.pos++
		for l.pos < len(l.input) && unicode.IsDigit(rune(l.input[l.pos])) {
			l.pos++
		}
	}

	value := l.input[start:l.pos]
	if isFloat {
		l.emit(TokenFloat, value, start, l.pos)
	} else {
		l.emit(TokenInt, value, start, l.pos)
	}
}

func (l *Lexer) scanIdentOrRegister() {
	start := l.pos
	l.pos++
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		if unicode.IsLetter(rune(ch)) || unicode.IsDigit(rune(ch)) || ch == '_' {
			l.pos++
		} else {
			break
		}
	}

	value := l.input[start:l.pos]
	l.emit(classifyIdentOrRegister(value), value, start, l.pos)
}

func classifyIdentOrRegister(value string) TokenType {
	lower := strings.ToLower(value)
	if len(lower) >= 2 && lower[0] == 'r' && allDigits(lower[1:]) {
		return TokenReg
	}
	return TokenIdent
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
