// Package emit lowers an *ast.TranslationUnit into ASTC bytecode: a flat
// instruction stream plus a fixed-shape container header. The opcode set,
// operand widths, and container layout below are fixed by the bytecode
// format this toolchain targets and must not drift from it.
package emit

import (
	"encoding/binary"
	"fmt"
)

// Opcode is a single byte identifying one VM instruction.
type Opcode byte

const (
	NOP  Opcode = 0x00
	HALT Opcode = 0x01

	CONST_I32    Opcode = 0x10
	CONST_F32    Opcode = 0x11
	CONST_STRING Opcode = 0x12

	ADD Opcode = 0x20
	SUB Opcode = 0x21
	MUL Opcode = 0x22
	DIV Opcode = 0x23
	MOD Opcode = 0x24

	EQ Opcode = 0x30
	NE Opcode = 0x31
	LT Opcode = 0x32
	LE Opcode = 0x33
	GT Opcode = 0x34
	GE Opcode = 0x35

	AND Opcode = 0x40
	OR  Opcode = 0x41
	NOT Opcode = 0x42

	JMP Opcode = 0x50
	JZ  Opcode = 0x51

	LOAD_LOCAL  Opcode = 0x60
	STORE_LOCAL Opcode = 0x61
	DROP        Opcode = 0x62

	BREAK    Opcode = 0x70
	CONTINUE Opcode = 0x71

	LIBC_CALL Opcode = 0xF0
	USER_CALL Opcode = 0xF1
)

var mnemonics = map[Opcode]string{
	NOP: "NOP", HALT: "HALT",
	CONST_I32: "CONST_I32", CONST_F32: "CONST_F32", CONST_STRING: "CONST_STRING",
	ADD: "ADD", SUB: "SUB", MUL: "MUL", DIV: "DIV", MOD: "MOD",
	EQ: "EQ", NE: "NE", LT: "LT", LE: "LE", GT: "GT", GE: "GE",
	AND: "AND", OR: "OR", NOT: "NOT",
	JMP: "JMP", JZ: "JZ",
	LOAD_LOCAL: "LOAD_LOCAL", STORE_LOCAL: "STORE_LOCAL", DROP: "DROP",
	BREAK: "BREAK", CONTINUE: "CONTINUE",
	LIBC_CALL: "LIBC_CALL", USER_CALL: "USER_CALL",
}

func (op Opcode) String() string {
	if s, ok := mnemonics[op]; ok {
		return s
	}
	return fmt.Sprintf("Opcode(0x%02X)", byte(op))
}

// operandWidths is the number of operand bytes each opcode carries, not
// counting the opcode byte itself. Opcodes absent here take no operand.
var operandWidths = map[Opcode]int{
	CONST_I32:   4,
	CONST_F32:   4,
	JMP:         4,
	JZ:          4,
	LOAD_LOCAL:  4,
	STORE_LOCAL: 4,
	BREAK:       4,
	CONTINUE:    4,
}

// Instructions is a flat, little-endian-encoded instruction stream.
type Instructions []byte

func putUint32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

func getUint32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// makeInstruction encodes a fixed-operand-width opcode (CONST_I32, CONST_F32,
// JMP, JZ, LOAD_LOCAL, STORE_LOCAL, BREAK, CONTINUE) into its byte form. It panics for any
// other opcode; use the zero-operand opcodes directly as a single byte, and
// CONST_STRING via makeConstString.
func makeInstruction(op Opcode, operand uint32) []byte {
	width, ok := operandWidths[op]
	if !ok || width != 4 {
		panic(fmt.Sprintf("emit: %s does not take a 4-byte operand", op))
	}
	buf := make([]byte, 1+width)
	buf[0] = byte(op)
	putUint32(buf[1:], operand)
	return buf
}

// makeConstString encodes CONST_STRING: opcode byte, 4-byte little-endian
// length, then the string bytes plus a terminating NUL (spec §4.4
// "Constants ... String").
func makeConstString(s string) []byte {
	data := append([]byte(s), 0)
	buf := make([]byte, 1+4+len(data))
	buf[0] = byte(CONST_STRING)
	putUint32(buf[1:5], uint32(len(data)))
	copy(buf[5:], data)
	return buf
}

// makeSimple encodes a zero-operand opcode as its single byte.
func makeSimple(op Opcode) []byte {
	return []byte{byte(op)}
}

// Container is the self-describing on-disk/in-memory ASTC bytecode unit:
// a fixed 20-byte header plus a length-prefixed instruction region
// (spec.md §6 "Bytecode container format").
type Container struct {
	Version         uint32
	Flags           uint32
	EntryPointOff   uint32
	ReservedSrcSize uint32
	Instructions    Instructions
}

const (
	magicBytes   = "ASTC"
	headerLength = 20
)

// Encode serializes the container to its wire format: magic, version,
// flags, entry-point offset, reserved source-size, then the little-endian
// instruction-length prefix followed by the instruction bytes.
func (c Container) Encode() []byte {
	out := make([]byte, headerLength+4+len(c.Instructions))
	copy(out[0:4], magicBytes)
	putUint32(out[4:8], c.Version)
	putUint32(out[8:12], c.Flags)
	putUint32(out[12:16], c.EntryPointOff)
	putUint32(out[16:20], c.ReservedSrcSize)
	putUint32(out[20:24], uint32(len(c.Instructions)))
	copy(out[24:], c.Instructions)
	return out
}

// ContainerError reports a malformed container: bad magic or a truncated
// instruction region (spec.md §7 "Container error").
type ContainerError struct {
	Message string
}

func (e *ContainerError) Error() string { return "container error: " + e.Message }

// Decode parses a container from its wire format, validating the magic and
// the instruction-length field against the buffer's actual size.
func Decode(data []byte) (Container, error) {
	if len(data) < headerLength+4 {
		return Container{}, &ContainerError{Message: "truncated header"}
	}
	if string(data[0:4]) != magicBytes {
		return Container{}, &ContainerError{Message: fmt.Sprintf("bad magic %q", data[0:4])}
	}
	c := Container{
		Version:         getUint32(data[4:8]),
		Flags:           getUint32(data[8:12]),
		EntryPointOff:   getUint32(data[12:16]),
		ReservedSrcSize: getUint32(data[16:20]),
	}
	length := getUint32(data[20:24])
	end := headerLength + 4 + int(length)
	if end > len(data) {
		return Container{}, &ContainerError{Message: "truncated instruction region"}
	}
	c.Instructions = Instructions(data[headerLength+4 : end])
	return c, nil
}
