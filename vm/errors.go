package vm

import (
	"errors"
	"fmt"
)

// Errors returned by the interpreter and the image codec.
var (
	ErrInputExhausted = errors.New("input exhausted")
	ErrTapeLimit      = errors.New("tape limit exceeded")
	ErrInvalidProgram = errors.New("invalid program")
	ErrInvalidImage   = errors.New("invalid image")
	ErrImageVersion   = errors.New("image version mismatch")
)

// RuntimeError reports a fatal failure while executing a program.
// PC is the index of the instruction that failed; it is not advanced
// past that instruction.
type RuntimeError struct {
	PC  int
	Op  Opcode
	Err error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s at instruction %d: %v", e.Op, e.PC, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}
