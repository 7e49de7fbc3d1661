package ir

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io"

	"github.com/tidelang/tide/pkg/span"
)

// Bytecode file format:
// - Magic: "TIRB" (4 bytes)
// - Version: uint16
// - RegisterCount: uint16
// - NumInstructions: uint32
// - Instructions: []uint32
// - LiteralsLen: uint32
// - Literals: gob-encoded []any
// - Spans: []{int32 start, int32 end}, one per instruction

const (
	BytecodeMagic   = "TIRB"
	BytecodeVersion = 1
)

func init() {
	// Literal pool entries travel as interface values.
	gob.Register(int64(0))
	gob.Register([]any(nil))
}

var (
	ErrInvalidMagic   = errors.New("invalid bytecode magic")
	ErrInvalidVersion = errors.New("unsupported bytecode version")
)

// SerializeBlock serializes a block to bytecode format.
func SerializeBlock(b *Block) ([]byte, error) {
	buf := new(bytes.Buffer)

	buf.WriteString(BytecodeMagic)

	if err := binary.Write(buf, binary.LittleEndian, uint16(BytecodeVersion)); err != nil {
		return nil, fmt.Errorf("writing version: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, uint16(b.regCount)); err != nil {
		return nil, fmt.Errorf("writing register count: %w", err)
	}

	if err := binary.Write(buf, binary.LittleEndian, uint32(len(b.code))); err != nil {
		return nil, fmt.Errorf("writing instruction count: %w", err)
	}
	for _, inst := range b.code {
		if err := binary.Write(buf, binary.LittleEndian, uint32(inst)); err != nil {
			return nil, fmt.Errorf("writing instruction: %w", err)
		}
	}

	litBuf := new(bytes.Buffer)
	enc := gob.NewEncoder(litBuf)
	if err := enc.Encode(b.literals); err != nil {
		return nil, fmt.Errorf("encoding literals: %w", err)
	}
	litBytes := litBuf.Bytes()
	if err := binary.Write(buf, binary.LittleEndian, uint32(len(litBytes))); err != nil {
		return nil, fmt.Errorf("writing literals length: %w", err)
	}
	buf.Write(litBytes)

	for _, sp := range b.spans {
		if err := binary.Write(buf, binary.LittleEndian, int32(sp.Start)); err != nil {
			return nil, fmt.Errorf("writing span: %w", err)
		}
		if err := binary.Write(buf, binary.LittleEndian, int32(sp.End)); err != nil {
			return nil, fmt.Errorf("writing span: %w", err)
		}
	}

	return buf.Bytes(), nil
}

// DeserializeBlock deserializes bytecode to a block, revalidating it through
// BlockBuilder so a corrupted file cannot smuggle out-of-range operands past
// the engine.
func DeserializeBlock(data []byte) (*Block, error) {
	buf := bytes.NewReader(data)

	magic := make([]byte, 4)
	if _, err := io.ReadFull(buf, magic); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if string(magic) != BytecodeMagic {
		return nil, ErrInvalidMagic
	}

	var version uint16
	if err := binary.Read(buf, binary.LittleEndian, &version); err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != BytecodeVersion {
		return nil, ErrInvalidVersion
	}

	var regCount uint16
	if err := binary.Read(buf, binary.LittleEndian, &regCount); err != nil {
		return nil, fmt.Errorf("reading register count: %w", err)
	}

	var numInst uint32
	if err := binary.Read(buf, binary.LittleEndian, &numInst); err != nil {
		return nil, fmt.Errorf("reading instruction count: %w", err)
	}
	code := make([]Instruction, numInst)
	for i := range code {
		var word uint32
		if err := binary.Read(buf, binary.LittleEndian, &word); err != nil {
			return nil, fmt.Errorf("reading instruction %d: %w", i, err)
		}
		code[i] = Instruction(word)
	}

	var litLen uint32
	if err := binary.Read(buf, binary.LittleEndian, &litLen); err != nil {
		return nil, fmt.Errorf("reading literals length: %w", err)
	}
	litBytes := make([]byte, litLen)
	if _, err := io.ReadFull(buf, litBytes); err != nil {
		return nil, fmt.Errorf("reading literals: %w", err)
	}
	var literals []any
	dec := gob.NewDecoder(bytes.NewReader(litBytes))
	if err := dec.Decode(&literals); err != nil {
		return nil, fmt.Errorf("decoding literals: %w", err)
	}

	spans := make([]span.Span, numInst)
	for i := range spans {
		var start, end int32
		if err := binary.Read(buf, binary.LittleEndian, &start); err != nil {
			return nil, fmt.Errorf("reading span %d: %w", i, err)
		}
		if err := binary.Read(buf, binary.LittleEndian, &end); err != nil {
			return nil, fmt.Errorf("reading span %d: %w", i, err)
		}
		spans[i] = span.New(int(start), int(end))
	}

	bb := NewBlockBuilder(int(regCount))
	for _, v := range literals {
		bb.literals = append(bb.literals, v)
	}
	for i, inst := range code {
		bb.Emit(inst, spans[i])
	}
	return bb.Build()
}
