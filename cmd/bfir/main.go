// bfir CLI - compiles and runs Brainfuck programs
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/tebeka/atexit"
	"github.com/tliron/commonlog"
	"github.com/tliron/commonlog/simple"
	"github.com/tliron/kutil/util"

	"github.com/chazu/bfir/compiler"
	"github.com/chazu/bfir/manifest"
	"github.com/chazu/bfir/vm"
)

var log = commonlog.GetLogger("bfir.cli")

func main() {
	stdout := bufio.NewWriter(os.Stdout)
	atexit.Register(func() {
		stdout.Flush()
	})

	atexit.Exit(run(os.Args[1:], os.Stdin, stdout, os.Stderr))
}

// options holds the parsed command line.
type options struct {
	verbose    bool
	dump       bool
	output     string
	configPath string
	file       string
}

func parseArgs(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("bfir", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.verbose, "v", false, "Verbose output (log compile and run statistics)")
	fs.BoolVar(&opts.dump, "dump", false, "Print the compiled IR instead of running it")
	fs.StringVar(&opts.output, "o", "", "Write the compiled program as an image to `path` instead of running it")
	fs.StringVar(&opts.configPath, "config", "", "Use the configuration at `path` instead of searching for "+manifest.FileName)

	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: bfir [options] <file>\n\n")
		fmt.Fprintf(stderr, "Compiles a Brainfuck source file or loads a compiled image, then runs it.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  bfir hello.b                # Compile and run\n")
		fmt.Fprintf(stderr, "  bfir -dump hello.b          # Show the folded IR\n")
		fmt.Fprintf(stderr, "  bfir -o hello.bfc hello.b   # Save a compiled image\n")
		fmt.Fprintf(stderr, "  bfir hello.bfc              # Run a compiled image\n")
		fmt.Fprintf(stderr, "\nOutput is buffered and flushed before each input read. Set\n")
		fmt.Fprintf(stderr, "buffer-output = false under [run] in %s to flush every byte.\n", manifest.FileName)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return nil, errUsage
	}
	opts.file = fs.Arg(0)
	return opts, nil
}

var errUsage = errors.New("expected exactly one program file")

// run executes the CLI and returns the process exit code: 0 on success,
// 1 when compiling or running the program fails, 2 on bad usage.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseArgs(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	m, err := loadManifest(opts)
	if err != nil {
		fmt.Fprintf(stderr, "bfir: %v\n", err)
		return 1
	}

	verbosity := m.Log.Verbosity
	if opts.verbose && verbosity < 1 {
		verbosity = 1
	}
	if m.Run.Trace && verbosity < 2 {
		// trace lines are logged at debug level
		verbosity = 2
	}
	closeLog, err := configureLogging(verbosity, m.LogFile(), stderr)
	if err != nil {
		fmt.Fprintf(stderr, "bfir: %v\n", err)
		return 1
	}
	defer closeLog()
	if m.Path != "" {
		log.Debugf("using configuration %s", m.Path)
	}

	p, err := loadProgram(opts.file)
	if err != nil {
		return fail(stdout, stderr, err)
	}

	if opts.dump {
		fmt.Fprint(stdout, p.DisassembleWithName(filepath.Base(opts.file)))
		return finish(stdout, stderr)
	}
	if opts.output != "" {
		if err := vm.WriteImageFile(opts.output, p); err != nil {
			return fail(stdout, stderr, err)
		}
		log.Infof("wrote %s (%d instructions)", opts.output, p.Len())
		return finish(stdout, stderr)
	}

	var out io.Writer = stdout
	if !m.Run.BufferOutput {
		out = &flushWriter{w: stdout}
	}

	interp := vm.NewInterpreter(bufio.NewReader(stdin), out,
		vm.WithTapeLimit(m.Run.TapeLimit),
		vm.WithTrace(m.Run.Trace),
	)
	err = interp.Run(p)
	stats := interp.Stats()
	log.Infof("executed %d steps, tape %d cells, %d bytes in, %d bytes out",
		stats.Steps, stats.TapeLength, stats.BytesIn, stats.BytesOut)
	if err != nil {
		return fail(stdout, stderr, err)
	}
	return finish(stdout, stderr)
}

func loadManifest(opts *options) (*manifest.Manifest, error) {
	if opts.configPath != "" {
		return manifest.Load(opts.configPath)
	}
	m, err := manifest.FindAndLoad(filepath.Dir(opts.file))
	if err != nil {
		return nil, err
	}
	if m == nil {
		return manifest.Default(), nil
	}
	return m, nil
}

// configureLogging installs an unbuffered log backend writing to path, or
// to stderr when path is nil. Records are written synchronously, so nothing
// is lost when the process exits. The returned func closes the log file.
func configureLogging(verbosity int, path *string, stderr io.Writer) (func() error, error) {
	var w io.Writer = stderr
	closeLog := func() error { return nil }

	backend := simple.NewBackend()
	backend.Buffered = false
	if path != nil {
		file, err := os.OpenFile(*path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, simple.LOG_FILE_WRITE_PERMISSIONS)
		if err != nil {
			return nil, fmt.Errorf("cannot open log file: %w", err)
		}
		w = file
		closeLog = file.Close
		backend.Format = func(message *commonlog.UnstructuredMessage, name []string, level commonlog.Level, _ bool) string {
			return simple.DefaultFormat(message, name, level, false)
		}
	}

	backend.Configure(verbosity, nil)
	if commonlog.VerbosityToMaxLevel(verbosity) != commonlog.None {
		backend.Writer = util.NewSyncedWriter(w)
	}
	commonlog.SetBackend(backend)
	return closeLog, nil
}

// loadProgram reads a source file or a compiled image, telling them apart
// by the image magic number.
func loadProgram(path string) (*vm.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	if vm.IsImage(data) {
		p, err := vm.UnmarshalImage(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		log.Debugf("loaded image %s (%d instructions)", path, p.Len())
		return p, nil
	}

	p, err := compiler.CompileSource(data)
	if err != nil {
		var se *compiler.SyntaxError
		if errors.As(err, &se) && se.Pos.IsValid() {
			return nil, fmt.Errorf("%s:%w", path, err)
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Debugf("compiled %s: %d bytes to %d instructions", path, len(data), p.Len())
	return p, nil
}

// fail flushes any program output, then reports err.
func fail(stdout, stderr io.Writer, err error) int {
	flush(stdout)
	log.Debugf("failed: %v", err)
	fmt.Fprintf(stderr, "bfir: %v\n", err)
	return 1
}

func finish(stdout, stderr io.Writer) int {
	if err := flush(stdout); err != nil {
		fmt.Fprintf(stderr, "bfir: cannot write output: %v\n", err)
		return 1
	}
	return 0
}

type flusher interface {
	Flush() error
}

func flush(w io.Writer) error {
	if f, ok := w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// flushWriter pushes every byte through to the underlying writer so
// interactive programs see prompts before they block on input.
type flushWriter struct {
	w io.Writer
}

func (f *flushWriter) Write(p []byte) (int, error) {
	n, err := f.w.Write(p)
	if err != nil {
		return n, err
	}
	return n, flush(f.w)
}

func (f *flushWriter) WriteByte(b byte) error {
	_, err := f.Write([]byte{b})
	return err
}
