// Package vm implements the bfir intermediate representation and the tape
// interpreter that executes it.
//
// This package contains:
//   - Opcodes and the compacted Instruction format
//   - Program, the flat instruction list produced by the compiler
//   - Tape, the auto-growing byte memory
//   - Interpreter, the fetch/execute loop
//   - A CBOR image codec for saving compiled programs
package vm
