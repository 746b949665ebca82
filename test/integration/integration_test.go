package integration_test

import (
	"bytes"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chazu/bfir/compiler"
	"github.com/chazu/bfir/vm"
)

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// execute runs p with the given input and returns everything it wrote.
func execute(p *vm.Program, input string, opts ...vm.Option) ([]byte, error) {
	var out bytes.Buffer
	err := vm.Run(p, strings.NewReader(input), &out, opts...)
	return out.Bytes(), err
}

// roundTrip pushes p through the image codec.
func roundTrip(p *vm.Program) *vm.Program {
	data, err := vm.MarshalImage(p)
	Expect(err).NotTo(HaveOccurred())
	loaded, err := vm.UnmarshalImage(data)
	Expect(err).NotTo(HaveOccurred())
	return loaded
}

// pipeline is lexer, compiler, image codec and interpreter in sequence.
func pipeline(src, input string) ([]byte, error) {
	syms, err := compiler.Lex([]byte(src))
	if err != nil {
		return nil, err
	}
	p, err := compiler.Compile(syms)
	if err != nil {
		return nil, err
	}
	return execute(roundTrip(p), input)
}

const helloWorld = "++++++++[>++++[>++>+++>+++>+<<<<-]>+>+>->>+[<]<-]>>.>---.+++++++..+++.>>.<-.<.+++.------.--------.>>+.>++."

// ---------------------------------------------------------------------------
// Specs
// ---------------------------------------------------------------------------

var _ = Describe("Pipeline", func() {
	Context("Scenarios", func() {
		It("should write a single byte after three increments", func() {
			out, err := pipeline("+++.", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal([]byte{3}))
		})

		It("should leave a countdown loop right after the cell reaches zero", func() {
			out, err := pipeline("++[-.]", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal([]byte{1, 0}))
		})

		It("should stop on the input instruction when input runs out", func() {
			p, err := compiler.CompileSource([]byte(",."))
			Expect(err).NotTo(HaveOccurred())

			out, err := execute(p, "")
			Expect(errors.Is(err, vm.ErrInputExhausted)).To(BeTrue())
			Expect(out).To(BeEmpty())

			var rerr *vm.RuntimeError
			Expect(errors.As(err, &rerr)).To(BeTrue())
			Expect(rerr.PC).To(Equal(0))
			Expect(rerr.Op).To(Equal(vm.OpInput))
		})
	})

	Context("Programs", func() {
		It("should print Hello World", func() {
			out, err := pipeline(helloWorld, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(out)).To(Equal("Hello World!\n"))
		})

		It("should echo input until a zero byte", func() {
			out, err := pipeline(",[.,]", "bfir\x00ignored")
			Expect(err).NotTo(HaveOccurred())
			Expect(string(out)).To(Equal("bfir"))
		})

		It("should ignore comment characters", func() {
			out, err := pipeline("three: +++ then print it .", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal([]byte{3}))
		})
	})

	DescribeTable("Folding",
		func(src string, want int) {
			p, err := compiler.CompileSource([]byte(src))
			Expect(err).NotTo(HaveOccurred())
			Expect(p.Len()).To(Equal(want))
			Expect(roundTrip(p).Equal(p)).To(BeTrue())
		},
		Entry("increments fold", "+++++", 1),
		Entry("moves fold", ">>><<", 2),
		Entry("output is never folded", "...", 3),
		Entry("loops separate runs", "++[]++", 4),
		Entry("256 increments wrap to zero", strings.Repeat("+", 256), 1),
	)

	DescribeTable("Structural errors",
		func(src string, want error) {
			_, err := pipeline(src, "")
			Expect(errors.Is(err, want)).To(BeTrue(), "got %v", err)
		},
		Entry("stray loop end", "+]", compiler.ErrUnbalancedLoop),
		Entry("loop end before start", "][", compiler.ErrUnbalancedLoop),
		Entry("unclosed loop", "[+", compiler.ErrUnclosedLoop),
		Entry("nested unclosed loop", "[[]", compiler.ErrUnclosedLoop),
	)

	Context("Tape", func() {
		It("should saturate at the left edge", func() {
			out, err := pipeline("<<<+.", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal([]byte{1}))
		})

		It("should enforce a tape limit", func() {
			p, err := compiler.CompileSource([]byte("+[>+]"))
			Expect(err).NotTo(HaveOccurred())
			_, err = execute(p, "", vm.WithTapeLimit(16))
			Expect(errors.Is(err, vm.ErrTapeLimit)).To(BeTrue())
		})

		It("should wrap cell values", func() {
			out, err := pipeline("-.+.", "")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal([]byte{255, 0}))
		})
	})
})
