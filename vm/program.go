package vm

import "fmt"

// jumpPlaceholder is stored in a JumpIfZero until its closing bracket is
// compiled and PatchJump overwrites it.
const jumpPlaceholder = 0xFFFFFFFF

// Program is a compiled, flat list of IR instructions. Jump targets are
// absolute indices into the same list.
//
// A Program is only mutated by the compiler (Emit, EmitJump, PatchJump).
// Once compilation returns it is read-only and may be shared between
// interpreters.
type Program struct {
	Instructions []Instruction
}

// NewProgram creates an empty program.
func NewProgram() *Program {
	return &Program{
		Instructions: make([]Instruction, 0, 64),
	}
}

// Emit appends an instruction and returns its index.
func (p *Program) Emit(in Instruction) int {
	p.Instructions = append(p.Instructions, in)
	return len(p.Instructions) - 1
}

// EmitJump appends a jump instruction with a placeholder target.
// Returns the index of the jump for later patching.
func (p *Program) EmitJump(op Opcode) int {
	return p.Emit(Instruction{Op: op, Arg: jumpPlaceholder})
}

// PatchJump overwrites the target of the jump at index at.
func (p *Program) PatchJump(at, target int) {
	p.Instructions[at].Arg = uint32(target)
}

// Last returns a pointer to the most recently emitted instruction, or nil
// if the program is empty. Only the compiler uses it, to fold runs.
func (p *Program) Last() *Instruction {
	if len(p.Instructions) == 0 {
		return nil
	}
	return &p.Instructions[len(p.Instructions)-1]
}

// Len returns the number of instructions.
func (p *Program) Len() int {
	return len(p.Instructions)
}

// At returns the instruction at index i.
func (p *Program) At(i int) Instruction {
	return p.Instructions[i]
}

// Equal reports whether two programs hold the same instructions.
func (p *Program) Equal(other *Program) bool {
	if p.Len() != other.Len() {
		return false
	}
	for i, in := range p.Instructions {
		if in != other.Instructions[i] {
			return false
		}
	}
	return true
}

// Validate checks the structural invariants the interpreter relies on:
// every opcode is defined, arithmetic counts fit in a byte, and every
// JumpIfZero at i is paired with a later JumpIfNotZero at j such that the
// two target each other and the pairs nest without crossing.
func (p *Program) Validate() error {
	var open []int
	for i, in := range p.Instructions {
		switch in.Op {
		case OpMoveRight, OpMoveLeft, OpOutput, OpInput:
		case OpIncrement, OpDecrement:
			if in.Arg > 0xFF {
				return fmt.Errorf("%w: %s at %d has count %d > 255", ErrInvalidProgram, in.Op, i, in.Arg)
			}
		case OpJumpIfZero:
			open = append(open, i)
		case OpJumpIfNotZero:
			if len(open) == 0 {
				return fmt.Errorf("%w: %s at %d has no matching %s", ErrInvalidProgram, in.Op, i, OpJumpIfZero)
			}
			start := open[len(open)-1]
			open = open[:len(open)-1]
			if in.Target() != start {
				return fmt.Errorf("%w: %s at %d targets %d, want %d", ErrInvalidProgram, in.Op, i, in.Target(), start)
			}
			if p.Instructions[start].Target() != i {
				return fmt.Errorf("%w: %s at %d targets %d, want %d",
					ErrInvalidProgram, OpJumpIfZero, start, p.Instructions[start].Target(), i)
			}
		default:
			return fmt.Errorf("%w: undefined opcode 0x%02X at %d", ErrInvalidProgram, byte(in.Op), i)
		}
	}
	if len(open) > 0 {
		return fmt.Errorf("%w: %s at %d is never closed", ErrInvalidProgram, OpJumpIfZero, open[len(open)-1])
	}
	return nil
}
