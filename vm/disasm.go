package vm

import (
	"fmt"
	"strings"
)

// Disassemble returns a human-readable listing of the program.
func (p *Program) Disassemble() string {
	return p.DisassembleWithName("")
}

// DisassembleWithName returns a listing with a name header.
func (p *Program) DisassembleWithName(name string) string {
	var sb strings.Builder

	if name != "" {
		sb.WriteString(fmt.Sprintf("; === %s ===\n", name))
	}
	sb.WriteString(fmt.Sprintf("; bfir IR v%d, %d instructions\n", ImageVersion, p.Len()))
	sb.WriteString("\n")

	depth := 0
	for i, in := range p.Instructions {
		if in.Op == OpJumpIfNotZero && depth > 0 {
			depth--
		}
		sb.WriteString(fmt.Sprintf("%04d  %s%s\n", i, strings.Repeat("  ", depth), disassembleInstruction(in)))
		if in.Op == OpJumpIfZero {
			depth++
		}
	}

	return sb.String()
}

func disassembleInstruction(in Instruction) string {
	switch in.Op {
	case OpMoveRight, OpMoveLeft, OpIncrement, OpDecrement:
		return fmt.Sprintf("%-16s %d", in.Op, in.Arg)
	case OpJumpIfZero, OpJumpIfNotZero:
		return fmt.Sprintf("%-16s -> %04d", in.Op, in.Arg)
	default:
		return in.Op.String()
	}
}
