package vm

import (
	"errors"
	"io"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("bfir.vm")

// ---------------------------------------------------------------------------
// Interpreter: executes a compiled Program against a fresh Tape
// ---------------------------------------------------------------------------

// Option configures an Interpreter.
type Option func(*interpConfig)

type interpConfig struct {
	trace     bool
	tapeLimit int
}

// WithTrace logs every executed instruction at debug level.
func WithTrace(enabled bool) Option {
	return func(c *interpConfig) { c.trace = enabled }
}

// WithTapeLimit caps the tape at n cells. Zero, the default, leaves the
// tape unbounded.
func WithTapeLimit(n int) Option {
	return func(c *interpConfig) { c.tapeLimit = n }
}

// Stats describes the most recent run.
type Stats struct {
	Steps      uint64 // instructions executed
	TapeLength int    // cells allocated when the run ended
	BytesIn    uint64
	BytesOut   uint64
}

// Interpreter runs programs. Each call to Run starts from a fresh tape and
// program counter; nothing carries over between runs except the I/O
// streams.
type Interpreter struct {
	in  io.ByteReader
	out io.ByteWriter
	cfg interpConfig

	stats Stats
	tape  *Tape
}

// NewInterpreter creates an interpreter reading from in and writing to out.
// Input is consumed one byte per Input instruction and never read ahead
// unless in is already buffered.
func NewInterpreter(in io.Reader, out io.Writer, opts ...Option) *Interpreter {
	interp := &Interpreter{
		in:  asByteReader(in),
		out: asByteWriter(out),
	}
	for _, opt := range opts {
		opt(&interp.cfg)
	}
	return interp
}

// Stats returns statistics for the most recent call to Run.
func (interp *Interpreter) Stats() Stats {
	return interp.stats
}

// Tape returns the tape of the most recent run, or nil before the first
// run. The tape is discarded by the next call to Run.
func (interp *Interpreter) Tape() *Tape {
	return interp.tape
}

// Run executes p to completion. It returns nil when the program counter
// runs off the end of the program, and a *RuntimeError on the first fatal
// error. Bytes already written to the output stay written.
func (interp *Interpreter) Run(p *Program) error {
	tape := newTapeWithLimit(interp.cfg.tapeLimit)
	interp.tape = tape
	interp.stats = Stats{}
	defer func() { interp.stats.TapeLength = tape.Len() }()

	code := p.Instructions
	trace := interp.cfg.trace && log.AllowLevel(commonlog.Debug)

	for pc := 0; pc < len(code); pc++ {
		in := code[pc]
		interp.stats.Steps++

		if trace {
			log.Debugf("[%04d] %-24s ptr=%d cell=%d", pc, in, tape.Pointer(), tape.Get())
		}

		switch in.Op {
		case OpMoveRight:
			if err := tape.MoveRight(in.Arg); err != nil {
				return &RuntimeError{PC: pc, Op: in.Op, Err: err}
			}

		case OpMoveLeft:
			tape.MoveLeft(in.Arg)

		case OpIncrement:
			tape.Add(in.Delta())

		case OpDecrement:
			tape.Sub(in.Delta())

		case OpOutput:
			if err := interp.out.WriteByte(tape.Get()); err != nil {
				return &RuntimeError{PC: pc, Op: in.Op, Err: err}
			}
			interp.stats.BytesOut++

		case OpInput:
			// Pending output (a prompt) must be visible before blocking.
			if f, ok := interp.out.(flusher); ok {
				if err := f.Flush(); err != nil {
					return &RuntimeError{PC: pc, Op: in.Op, Err: err}
				}
			}
			b, err := interp.in.ReadByte()
			if err != nil {
				if errors.Is(err, io.EOF) {
					err = ErrInputExhausted
				}
				return &RuntimeError{PC: pc, Op: in.Op, Err: err}
			}
			tape.Set(b)
			interp.stats.BytesIn++

		// Jump targets are the matching bracket's own index; the loop's
		// pc++ then lands on the instruction after it.
		case OpJumpIfZero:
			if tape.Get() == 0 {
				pc = in.Target()
			}

		case OpJumpIfNotZero:
			if tape.Get() != 0 {
				pc = in.Target()
			}

		default:
			return &RuntimeError{PC: pc, Op: in.Op, Err: ErrInvalidProgram}
		}
	}

	return nil
}

// Run executes p with a new interpreter over the given streams.
func Run(p *Program, in io.Reader, out io.Writer, opts ...Option) error {
	return NewInterpreter(in, out, opts...).Run(p)
}

// ---------------------------------------------------------------------------
// Byte-level I/O adapters
// ---------------------------------------------------------------------------

type flusher interface {
	Flush() error
}

type singleByteReader struct {
	r   io.Reader
	buf [1]byte
}

func (s *singleByteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(s.r, s.buf[:]); err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			err = io.EOF
		}
		return 0, err
	}
	return s.buf[0], nil
}

type singleByteWriter struct {
	w   io.Writer
	buf [1]byte
}

func (s *singleByteWriter) WriteByte(b byte) error {
	s.buf[0] = b
	_, err := s.w.Write(s.buf[:])
	return err
}

func asByteReader(r io.Reader) io.ByteReader {
	if br, ok := r.(io.ByteReader); ok {
		return br
	}
	return &singleByteReader{r: r}
}

func asByteWriter(w io.Writer) io.ByteWriter {
	if bw, ok := w.(io.ByteWriter); ok {
		return bw
	}
	return &singleByteWriter{w: w}
}
