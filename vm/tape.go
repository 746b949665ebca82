package vm

// ---------------------------------------------------------------------------
// Tape: auto-growing byte memory addressed by a data pointer
// ---------------------------------------------------------------------------

// Tape is the interpreter's linear memory. It starts as a single zero cell
// and grows, zero-filled, whenever the data pointer moves past its end. It
// never shrinks.
type Tape struct {
	cells []byte
	ptr   int
	limit int // maximum number of cells, 0 = unlimited
}

// NewTape creates a tape holding one zero cell with the pointer at 0.
func NewTape() *Tape {
	return &Tape{cells: make([]byte, 1, 64)}
}

// newTapeWithLimit creates a tape that refuses to grow beyond limit cells.
func newTapeWithLimit(limit int) *Tape {
	t := NewTape()
	t.limit = limit
	return t
}

// MoveRight advances the pointer by n cells, growing the tape so that the
// new position is addressable. With a limit set, a move that would need
// more than limit cells fails with ErrTapeLimit and leaves the pointer
// where it was.
func (t *Tape) MoveRight(n uint32) error {
	next := t.ptr + int(n)
	if next < len(t.cells) {
		t.ptr = next
		return nil
	}
	if t.limit > 0 && next >= t.limit {
		return ErrTapeLimit
	}
	t.cells = append(t.cells, make([]byte, next-len(t.cells)+1)...)
	t.ptr = next
	return nil
}

// MoveLeft retreats the pointer by n cells. Moving past the start clamps
// the pointer to 0.
func (t *Tape) MoveLeft(n uint32) {
	if uint64(n) >= uint64(t.ptr) {
		t.ptr = 0
		return
	}
	t.ptr -= int(n)
}

// Get returns the current cell.
func (t *Tape) Get() byte {
	return t.cells[t.ptr]
}

// Set stores b in the current cell.
func (t *Tape) Set(b byte) {
	t.cells[t.ptr] = b
}

// Add adds n to the current cell, wrapping modulo 256.
func (t *Tape) Add(n uint8) {
	t.cells[t.ptr] += n
}

// Sub subtracts n from the current cell, wrapping modulo 256.
func (t *Tape) Sub(n uint8) {
	t.cells[t.ptr] -= n
}

// Pointer returns the data pointer.
func (t *Tape) Pointer() int {
	return t.ptr
}

// Len returns the number of cells currently allocated.
func (t *Tape) Len() int {
	return len(t.cells)
}

// Cell returns the value of cell i, or 0 if i lies beyond the tape.
func (t *Tape) Cell(i int) byte {
	if i < 0 || i >= len(t.cells) {
		return 0
	}
	return t.cells[i]
}
