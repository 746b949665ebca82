package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Symbols recognized by the lexer
// ---------------------------------------------------------------------------

// Symbol is one of the eight command characters. Every other byte of a
// source file is a comment.
type Symbol int

const (
	SymMoveRight Symbol = iota // >
	SymMoveLeft                // <
	SymIncrement               // +
	SymDecrement               // -
	SymOutput                  // .
	SymInput                   // ,
	SymLoopStart               // [
	SymLoopEnd                 // ]
)

var symbolNames = map[Symbol]string{
	SymMoveRight: "MOVE_RIGHT",
	SymMoveLeft:  "MOVE_LEFT",
	SymIncrement: "INCREMENT",
	SymDecrement: "DECREMENT",
	SymOutput:    "OUTPUT",
	SymInput:     "INPUT",
	SymLoopStart: "LOOP_START",
	SymLoopEnd:   "LOOP_END",
}

var symbolChars = map[Symbol]byte{
	SymMoveRight: '>',
	SymMoveLeft:  '<',
	SymIncrement: '+',
	SymDecrement: '-',
	SymOutput:    '.',
	SymInput:     ',',
	SymLoopStart: '[',
	SymLoopEnd:   ']',
}

// symbolTable maps each command byte to its symbol; -1 marks a comment byte.
var symbolTable [256]Symbol

func init() {
	for i := range symbolTable {
		symbolTable[i] = -1
	}
	for sym, ch := range symbolChars {
		symbolTable[ch] = sym
	}
}

// String returns the symbol name.
func (s Symbol) String() string {
	if name, ok := symbolNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Symbol(%d)", int(s))
}

// Char returns the source character for the symbol.
func (s Symbol) Char() byte {
	return symbolChars[s]
}

// LookupSymbol returns the symbol for a source byte. The second result is
// false for bytes that are not commands.
func LookupSymbol(b byte) (Symbol, bool) {
	s := symbolTable[b]
	return s, s >= 0
}

// ParseSymbols converts a string of command characters to symbols,
// skipping anything else. It performs no bracket checking.
func ParseSymbols(src string) []Symbol {
	syms := make([]Symbol, 0, len(src))
	for i := 0; i < len(src); i++ {
		if s, ok := LookupSymbol(src[i]); ok {
			syms = append(syms, s)
		}
	}
	return syms
}

// Position represents a source location.
type Position struct {
	Offset int // byte offset
	Line   int // 1-based line number
	Column int // 1-based column number
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// IsValid reports whether the position refers to a source location.
func (p Position) IsValid() bool {
	return p.Line > 0
}
