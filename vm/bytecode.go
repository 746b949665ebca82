package vm

import "fmt"

// ---------------------------------------------------------------------------
// Opcode definitions
// ---------------------------------------------------------------------------

// Opcode identifies a compacted IR instruction.
type Opcode byte

// Tape movement
const (
	OpMoveRight Opcode = 0x01 // advance data pointer by Arg
	OpMoveLeft  Opcode = 0x02 // retreat data pointer by Arg, clamped at 0
)

// Cell arithmetic (Arg is an 8-bit count, wrapping)
const (
	OpIncrement Opcode = 0x10 // add Arg to current cell
	OpDecrement Opcode = 0x11 // subtract Arg from current cell
)

// I/O
const (
	OpOutput Opcode = 0x20 // write current cell
	OpInput  Opcode = 0x21 // read one byte into current cell
)

// Control flow (Arg is the index of the matching bracket)
const (
	OpJumpIfZero    Opcode = 0x30 // [
	OpJumpIfNotZero Opcode = 0x31 // ]
)

// ---------------------------------------------------------------------------
// Opcode metadata
// ---------------------------------------------------------------------------

// OpcodeInfo holds metadata about an opcode.
type OpcodeInfo struct {
	Name     string // mnemonic used by the disassembler
	Symbol   byte   // source character the opcode is compiled from
	Foldable bool   // consecutive instances merge into one with a count
	HasArg   bool   // Arg is meaningful
}

var opcodeTable = map[Opcode]OpcodeInfo{
	OpMoveRight:     {"MOVE_RIGHT", '>', true, true},
	OpMoveLeft:      {"MOVE_LEFT", '<', true, true},
	OpIncrement:     {"INC", '+', true, true},
	OpDecrement:     {"DEC", '-', true, true},
	OpOutput:        {"OUTPUT", '.', false, false},
	OpInput:         {"INPUT", ',', false, false},
	OpJumpIfZero:    {"JUMP_IF_ZERO", '[', false, true},
	OpJumpIfNotZero: {"JUMP_IF_NOT_ZERO", ']', false, true},
}

// GetOpcodeInfo returns metadata for an opcode.
// The second result is false if the opcode is not defined.
func GetOpcodeInfo(op Opcode) (OpcodeInfo, bool) {
	info, ok := opcodeTable[op]
	return info, ok
}

// String returns the mnemonic of an opcode.
func (op Opcode) String() string {
	if info, ok := opcodeTable[op]; ok {
		return info.Name
	}
	return fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))
}

// Valid reports whether op is a defined opcode.
func (op Opcode) Valid() bool {
	_, ok := opcodeTable[op]
	return ok
}

// IsJump returns true for the two bracket opcodes.
func (op Opcode) IsJump() bool {
	return op == OpJumpIfZero || op == OpJumpIfNotZero
}

// IsFoldable returns true if runs of this opcode collapse into one
// instruction carrying a repeat count.
func (op Opcode) IsFoldable() bool {
	return opcodeTable[op].Foldable
}

// ---------------------------------------------------------------------------
// Instruction
// ---------------------------------------------------------------------------

// Instruction is a single compacted IR instruction.
//
// Arg holds the repeat count for moves and cell arithmetic, and the index
// of the matching bracket for jumps. Increment and Decrement counts are
// always in the range 0-255.
type Instruction struct {
	Op  Opcode
	Arg uint32
}

// MoveRight returns a MoveRight(n) instruction.
func MoveRight(n uint32) Instruction { return Instruction{Op: OpMoveRight, Arg: n} }

// MoveLeft returns a MoveLeft(n) instruction.
func MoveLeft(n uint32) Instruction { return Instruction{Op: OpMoveLeft, Arg: n} }

// Increment returns an Increment(n) instruction.
func Increment(n uint8) Instruction { return Instruction{Op: OpIncrement, Arg: uint32(n)} }

// Decrement returns a Decrement(n) instruction.
func Decrement(n uint8) Instruction { return Instruction{Op: OpDecrement, Arg: uint32(n)} }

// Output returns an Output instruction.
func Output() Instruction { return Instruction{Op: OpOutput} }

// Input returns an Input instruction.
func Input() Instruction { return Instruction{Op: OpInput} }

// JumpIfZero returns a JumpIfZero instruction targeting the given index.
func JumpIfZero(target int) Instruction { return Instruction{Op: OpJumpIfZero, Arg: uint32(target)} }

// JumpIfNotZero returns a JumpIfNotZero instruction targeting the given index.
func JumpIfNotZero(target int) Instruction {
	return Instruction{Op: OpJumpIfNotZero, Arg: uint32(target)}
}

// Count returns the repeat count of a move or arithmetic instruction.
func (in Instruction) Count() uint32 {
	return in.Arg
}

// Delta returns the 8-bit count of an Increment or Decrement.
func (in Instruction) Delta() uint8 {
	return uint8(in.Arg)
}

// Target returns the jump target of a bracket instruction.
func (in Instruction) Target() int {
	return int(in.Arg)
}

// String formats the instruction as "MNEMONIC(arg)".
func (in Instruction) String() string {
	info, ok := opcodeTable[in.Op]
	if !ok || !info.HasArg {
		return in.Op.String()
	}
	return fmt.Sprintf("%s(%d)", info.Name, in.Arg)
}
