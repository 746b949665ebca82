package vm

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/fxamacker/cbor/v2"
)

// ---------------------------------------------------------------------------
// Image Format
// ---------------------------------------------------------------------------

// ImageMagic is the magic number identifying a compiled bfir image.
var ImageMagic = [4]byte{'B', 'F', 'I', 'R'}

// ImageVersion is the current image format version.
// Increment when making incompatible changes to the encoding.
const ImageVersion uint32 = 1

// image is the CBOR document that follows the magic bytes.
type image struct {
	Version      uint32             `cbor:"1,keyasint"`
	Instructions []imageInstruction `cbor:"2,keyasint"`
}

type imageInstruction struct {
	_   struct{} `cbor:",toarray"`
	Op  Opcode
	Arg uint32
}

var (
	cborEncMode cbor.EncMode
	cborDecMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em

	dm, err := cbor.DecOptions{MaxArrayElements: math.MaxInt32}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("vm: failed to create CBOR dec mode: %v", err))
	}
	cborDecMode = dm
}

// IsImage reports whether data starts with the image magic number.
func IsImage(data []byte) bool {
	return bytes.HasPrefix(data, ImageMagic[:])
}

// MarshalImage serializes a compiled program to image bytes.
func MarshalImage(p *Program) ([]byte, error) {
	doc := image{
		Version:      ImageVersion,
		Instructions: make([]imageInstruction, len(p.Instructions)),
	}
	for i, in := range p.Instructions {
		doc.Instructions[i] = imageInstruction{Op: in.Op, Arg: in.Arg}
	}

	body, err := cborEncMode.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("vm: marshal image: %w", err)
	}

	buf := make([]byte, 0, len(ImageMagic)+len(body))
	buf = append(buf, ImageMagic[:]...)
	buf = append(buf, body...)
	return buf, nil
}

// UnmarshalImage deserializes image bytes and validates the program, so a
// corrupt or hand-edited image can never reach the interpreter.
func UnmarshalImage(data []byte) (*Program, error) {
	if !IsImage(data) {
		return nil, fmt.Errorf("%w: bad magic number", ErrInvalidImage)
	}

	var doc image
	if err := cborDecMode.Unmarshal(data[len(ImageMagic):], &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}
	if doc.Version != ImageVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrImageVersion, doc.Version, ImageVersion)
	}

	p := &Program{Instructions: make([]Instruction, len(doc.Instructions))}
	for i, in := range doc.Instructions {
		p.Instructions[i] = Instruction{Op: in.Op, Arg: in.Arg}
	}
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	return p, nil
}

// WriteImageFile writes a compiled program to path.
func WriteImageFile(path string, p *Program) error {
	data, err := MarshalImage(p)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// ReadImageFile loads a compiled program from path.
func ReadImageFile(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	p, err := UnmarshalImage(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}
