package compiler

import (
	"errors"
	"fmt"
)

// Structural errors. All of them abort compilation before anything runs.
var (
	// ErrUnbalancedLoop is reported by the lexer for a ']' with no open '['.
	ErrUnbalancedLoop = errors.New("unbalanced loop: ']' without matching '['")

	// ErrUnclosedLoop is reported when input ends with a '[' still open.
	ErrUnclosedLoop = errors.New("unclosed loop: '[' without matching ']'")

	// ErrUnmatchedLoopEnd is reported by the IR compiler when a loop end
	// finds the pending-loop stack empty.
	ErrUnmatchedLoopEnd = errors.New("unmatched loop end")
)

// SyntaxError locates a structural error. Pos is set when the error comes
// from the lexer; Index is the symbol index in both cases.
type SyntaxError struct {
	Index int
	Pos   Position
	Err   error
}

func (e *SyntaxError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %v", e.Pos, e.Err)
	}
	return fmt.Sprintf("symbol %d: %v", e.Index, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}
