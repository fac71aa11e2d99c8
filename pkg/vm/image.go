package vm

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// ImageVersion is the current program image format version.
// Increment when making incompatible changes to the format.
const ImageVersion uint16 = 1

// Magic bytes for program image files: "TMBI" (TiMBer Image)
var ImageMagic = []byte{'T', 'M', 'B', 'I'}

var imageEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("vm: cbor enc mode: %v", err))
	}
	imageEncMode = em
}

type imagePayload struct {
	Instrs []imageInstr `cbor:"1,keyasint"`
}

type imageInstr struct {
	Kind   uint8 `cbor:"1,keyasint"`
	Arg    int64 `cbor:"2,keyasint,omitempty"`
	HasArg bool  `cbor:"3,keyasint,omitempty"`
}

// EncodeImage serializes a linked program to the image format:
//
//	[magic:4] [version:2] [payload: canonical CBOR]
func EncodeImage(prog Program) ([]byte, error) {
	payload := imagePayload{Instrs: make([]imageInstr, len(prog))}
	for i, in := range prog {
		payload.Instrs[i] = imageInstr{Kind: uint8(in.Kind), Arg: in.Arg, HasArg: in.HasArg}
	}
	body, err := imageEncMode.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding image payload: %w", err)
	}
	buf := make([]byte, 0, 6+len(body))
	buf = append(buf, ImageMagic...)
	buf = binary.BigEndian.AppendUint16(buf, ImageVersion)
	buf = append(buf, body...)
	return buf, nil
}

// DecodeImage deserializes a program image produced by EncodeImage.
func DecodeImage(data []byte) (Program, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("image too short: need at least 6 bytes, got %d", len(data))
	}
	if !bytes.Equal(data[0:4], ImageMagic) {
		return nil, fmt.Errorf("invalid image magic: expected %q, got %q", ImageMagic, data[0:4])
	}
	version := binary.BigEndian.Uint16(data[4:6])
	if version > ImageVersion {
		return nil, fmt.Errorf("image version %d is newer than supported version %d", version, ImageVersion)
	}
	var payload imagePayload
	if err := cbor.Unmarshal(data[6:], &payload); err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}
	prog := make(Program, len(payload.Instrs))
	for i, in := range payload.Instrs {
		prog[i] = Instr{Kind: Kind(in.Kind), Arg: in.Arg, HasArg: in.HasArg}
	}
	return prog, nil
}
