// Package compiler turns source bytes into a compacted vm.Program.
package compiler

import (
	"github.com/chazu/bfir/vm"
)

// ---------------------------------------------------------------------------
// Compiler: symbols to compacted IR
// ---------------------------------------------------------------------------

// symbolOps maps the foldable and I/O symbols to their opcodes.
var symbolOps = map[Symbol]vm.Opcode{
	SymMoveRight: vm.OpMoveRight,
	SymMoveLeft:  vm.OpMoveLeft,
	SymIncrement: vm.OpIncrement,
	SymDecrement: vm.OpDecrement,
	SymOutput:    vm.OpOutput,
	SymInput:     vm.OpInput,
}

// Compiler turns a symbol sequence into a vm.Program in a single pass.
type Compiler struct {
	program *vm.Program

	// Pending loop starts: instruction index of each open JumpIfZero and
	// the symbol index it came from.
	pending    []int
	pendingSym []int
}

// NewCompiler creates a compiler with an empty program.
func NewCompiler() *Compiler {
	return &Compiler{program: vm.NewProgram()}
}

// Compile compacts syms into a program.
//
// Runs of identical move, increment and decrement symbols fold into one
// instruction carrying a count; only the most recently emitted instruction
// is ever extended. Loop brackets become JumpIfZero/JumpIfNotZero pairs
// whose targets are each other's indices. On error no program is returned.
func Compile(syms []Symbol) (*vm.Program, error) {
	c := NewCompiler()
	for i, sym := range syms {
		if err := c.compileSymbol(i, sym); err != nil {
			return nil, err
		}
	}
	return c.finish()
}

// CompileSource lexes and compiles a source program.
func CompileSource(src []byte) (*vm.Program, error) {
	syms, err := Lex(src)
	if err != nil {
		return nil, err
	}
	return Compile(syms)
}

func (c *Compiler) compileSymbol(index int, sym Symbol) error {
	switch sym {
	case SymMoveRight, SymMoveLeft, SymIncrement, SymDecrement:
		c.fold(symbolOps[sym])

	case SymOutput, SymInput:
		c.program.Emit(vm.Instruction{Op: symbolOps[sym]})

	case SymLoopStart:
		at := c.program.EmitJump(vm.OpJumpIfZero)
		c.pending = append(c.pending, at)
		c.pendingSym = append(c.pendingSym, index)

	case SymLoopEnd:
		n := len(c.pending)
		if n == 0 {
			return &SyntaxError{Index: index, Err: ErrUnmatchedLoopEnd}
		}
		start := c.pending[n-1]
		c.pending = c.pending[:n-1]
		c.pendingSym = c.pendingSym[:n-1]

		end := c.program.Emit(vm.JumpIfNotZero(start))
		c.program.PatchJump(start, end)
	}
	return nil
}

// fold extends the last instruction when it has the same opcode, otherwise
// emits a new instruction with a count of one. Arithmetic counts wrap at
// 256; move counts do not.
func (c *Compiler) fold(op vm.Opcode) {
	if last := c.program.Last(); last != nil && last.Op == op {
		switch op {
		case vm.OpIncrement, vm.OpDecrement:
			last.Arg = uint32(uint8(last.Arg) + 1)
		default:
			last.Arg++
		}
		return
	}
	c.program.Emit(vm.Instruction{Op: op, Arg: 1})
}

func (c *Compiler) finish() (*vm.Program, error) {
	if n := len(c.pendingSym); n > 0 {
		return nil, &SyntaxError{Index: c.pendingSym[n-1], Err: ErrUnclosedLoop}
	}
	return c.program, nil
}
