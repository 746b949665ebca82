package vm

import (
	"errors"
	"testing"
)

func TestProgramEmitAndPatch(t *testing.T) {
	p := NewProgram()
	if p.Last() != nil {
		t.Error("Last() on empty program should be nil")
	}

	if idx := p.Emit(Increment(1)); idx != 0 {
		t.Errorf("first Emit index = %d, want 0", idx)
	}
	jiz := p.EmitJump(OpJumpIfZero)
	if jiz != 1 {
		t.Errorf("EmitJump index = %d, want 1", jiz)
	}
	if p.At(jiz).Target() == 2 {
		t.Error("placeholder target should not already point at the closer")
	}

	jnz := p.Emit(JumpIfNotZero(jiz))
	p.PatchJump(jiz, jnz)

	if p.At(jiz) != JumpIfZero(2) {
		t.Errorf("patched jump = %v, want JUMP_IF_ZERO(2)", p.At(jiz))
	}
	if p.Len() != 3 {
		t.Errorf("Len() = %d, want 3", p.Len())
	}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestProgramLastIsMutable(t *testing.T) {
	p := NewProgram()
	p.Emit(MoveRight(1))
	p.Last().Arg++
	if p.At(0) != MoveRight(2) {
		t.Errorf("At(0) = %v, want MOVE_RIGHT(2)", p.At(0))
	}
}

func TestProgramValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		code []Instruction
	}{
		{"lone JNZ", []Instruction{JumpIfNotZero(0)}},
		{"lone JIZ", []Instruction{JumpIfZero(0)}},
		{"JIZ points elsewhere", []Instruction{JumpIfZero(0), JumpIfNotZero(0)}},
		{"JNZ points elsewhere", []Instruction{Output(), JumpIfZero(2), JumpIfNotZero(0)}},
		{"crossed pairs", []Instruction{
			JumpIfZero(3), JumpIfZero(2), JumpIfNotZero(0), JumpIfNotZero(1),
		}},
		{"wide increment", []Instruction{{Op: OpIncrement, Arg: 256}}},
		{"wide decrement", []Instruction{{Op: OpDecrement, Arg: 1000}}},
		{"undefined opcode", []Instruction{{Op: 0x00}}},
	}

	for _, tc := range tests {
		p := &Program{Instructions: tc.code}
		if err := p.Validate(); !errors.Is(err, ErrInvalidProgram) {
			t.Errorf("%s: Validate error = %v, want ErrInvalidProgram", tc.name, err)
		}
	}
}

func TestProgramValidateAccepts(t *testing.T) {
	p := &Program{Instructions: []Instruction{
		MoveRight(0xFFFFFFFF),
		JumpIfZero(4),
		JumpIfZero(3),
		JumpIfNotZero(2),
		JumpIfNotZero(1),
		Increment(255),
		Decrement(0),
		Input(),
		Output(),
	}}
	if err := p.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}
}

func TestProgramEqual(t *testing.T) {
	a := &Program{Instructions: []Instruction{Increment(1), Output()}}
	b := &Program{Instructions: []Instruction{Increment(1), Output()}}
	c := &Program{Instructions: []Instruction{Increment(2), Output()}}

	if !a.Equal(b) {
		t.Error("identical programs compare unequal")
	}
	if a.Equal(c) {
		t.Error("different programs compare equal")
	}
	if a.Equal(NewProgram()) {
		t.Error("programs of different length compare equal")
	}
}

func TestOpcodeMetadata(t *testing.T) {
	ops := []Opcode{
		OpMoveRight, OpMoveLeft, OpIncrement, OpDecrement,
		OpOutput, OpInput, OpJumpIfZero, OpJumpIfNotZero,
	}
	seen := make(map[byte]bool)
	for _, op := range ops {
		info, ok := GetOpcodeInfo(op)
		if !ok {
			t.Errorf("%v has no metadata", op)
			continue
		}
		if seen[info.Symbol] {
			t.Errorf("%v reuses source character %q", op, info.Symbol)
		}
		seen[info.Symbol] = true
		if op.IsFoldable() != (op == OpMoveRight || op == OpMoveLeft || op == OpIncrement || op == OpDecrement) {
			t.Errorf("%v IsFoldable() = %v", op, op.IsFoldable())
		}
		if op.IsJump() != (op == OpJumpIfZero || op == OpJumpIfNotZero) {
			t.Errorf("%v IsJump() = %v", op, op.IsJump())
		}
	}

	if Opcode(0xEE).Valid() {
		t.Error("0xEE reported as a valid opcode")
	}
	if got := Opcode(0xEE).String(); got != "UNKNOWN(0xEE)" {
		t.Errorf("String() = %q, want UNKNOWN(0xEE)", got)
	}
}

func TestInstructionString(t *testing.T) {
	tests := []struct {
		in   Instruction
		want string
	}{
		{MoveRight(4), "MOVE_RIGHT(4)"},
		{Decrement(2), "DEC(2)"},
		{Output(), "OUTPUT"},
		{JumpIfNotZero(7), "JUMP_IF_NOT_ZERO(7)"},
	}
	for _, tc := range tests {
		if got := tc.in.String(); got != tc.want {
			t.Errorf("String() = %q, want %q", got, tc.want)
		}
	}
}
