package compiler

// ---------------------------------------------------------------------------
// Lexer: source bytes to symbols
// ---------------------------------------------------------------------------

// Lexer scans source bytes for command characters.
type Lexer struct {
	input []byte
	pos   int // offset of the next byte to read
	line  int // line of the next byte (1-based)
	col   int // column of the next byte (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input []byte) *Lexer {
	return &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
}

// advance consumes one byte, tracking line and column.
func (l *Lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

// Next returns the next symbol and its position. ok is false once the input
// is exhausted. Next does not check brackets.
func (l *Lexer) Next() (sym Symbol, pos Position, ok bool) {
	for l.pos < len(l.input) {
		b := l.input[l.pos]
		pos = Position{Offset: l.pos, Line: l.line, Column: l.col}
		l.advance()
		if sym, ok = LookupSymbol(b); ok {
			return sym, pos, true
		}
	}
	return 0, Position{}, false
}

// Lex consumes the remaining input and returns its symbols in order.
//
// Brackets are checked as they are scanned: a ']' with no open '[' fails
// with ErrUnbalancedLoop, and input that ends with a '[' still open fails
// with ErrUnclosedLoop at the innermost open bracket. No symbols are
// returned on error.
func (l *Lexer) Lex() ([]Symbol, error) {
	syms := make([]Symbol, 0, len(l.input)-l.pos)
	var open []Position
	var openIndex []int

	for {
		sym, pos, ok := l.Next()
		if !ok {
			break
		}
		switch sym {
		case SymLoopStart:
			open = append(open, pos)
			openIndex = append(openIndex, len(syms))
		case SymLoopEnd:
			if len(open) == 0 {
				return nil, &SyntaxError{Index: len(syms), Pos: pos, Err: ErrUnbalancedLoop}
			}
			open = open[:len(open)-1]
			openIndex = openIndex[:len(openIndex)-1]
		}
		syms = append(syms, sym)
	}

	if n := len(open); n > 0 {
		return nil, &SyntaxError{Index: openIndex[n-1], Pos: open[n-1], Err: ErrUnclosedLoop}
	}
	return syms, nil
}

// Lex returns the symbols of input, checking that brackets balance.
func Lex(input []byte) ([]Symbol, error) {
	return NewLexer(input).Lex()
}
