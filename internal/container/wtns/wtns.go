// Package wtns parses the opaque ".wtns" binary witness container (spec §6,
// component C7).
package wtns

import (
	"encoding/binary"
	"fmt"

	"github.com/nume-crypto/zk-prover/internal/fr"
	"github.com/nume-crypto/zk-prover/internal/version"
)

const (
	magic         = "wtns"
	sectionHeader = 1
	sectionValues = 2
)

// ParseError reports a container-format defect (spec §7 InvalidContainer).
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "wtns: " + e.Reason }

// Witness is the parsed witness vector view (spec §3.4): w[0] = 1,
// w[1..NPublic] public inputs, the remainder auxiliary.
type Witness struct {
	NVars  uint32
	Values []fr.Element
}

type rawSection struct {
	payload []byte
}

// Parse validates the container framing and decodes the witness vector
// (spec §6 wtns v2 layout). It does not itself check n_vars against a
// proving key or the field modulus against r beyond "is this BN254's r" —
// the driver cross-checks witness-vs-zkey agreement (spec §4.8 step 1).
func Parse(b []byte) (*Witness, error) {
	if len(b) < 4 || string(b[:4]) != magic {
		return nil, &ParseError{"missing \"wtns\" magic"}
	}
	off := 4

	ver, off, err := readU32(b, off)
	if err != nil {
		return nil, err
	}
	if !version.WtnsSupported(version.FromUint32(ver)) {
		return nil, &ParseError{fmt.Sprintf("unsupported wtns version %d", ver)}
	}

	nSections, off, err := readU32(b, off)
	if err != nil {
		return nil, err
	}

	sections := make(map[uint32]rawSection, nSections)
	for i := uint32(0); i < nSections; i++ {
		var id uint32
		id, off, err = readU32(b, off)
		if err != nil {
			return nil, err
		}
		var size uint64
		size, off, err = readU64(b, off)
		if err != nil {
			return nil, err
		}
		if uint64(off)+size > uint64(len(b)) {
			return nil, &ParseError{"section payload exceeds buffer"}
		}
		sections[id] = rawSection{payload: b[off : uint64(off)+size]}
		off += int(size)
	}

	hdr, ok := sections[sectionHeader]
	if !ok {
		return nil, &ParseError{"missing section 1 (header)"}
	}
	n8, hoff, err := readU32(hdr.payload, 0)
	if err != nil {
		return nil, err
	}
	primeBytes, hoff, err := readBytes(hdr.payload, hoff, int(n8))
	if err != nil {
		return nil, err
	}
	var prime fr.Element
	prime.SetBytesLE(primeBytes)
	if prime.BigInt().Cmp(fr.Modulus()) != 0 {
		return nil, &ParseError{"witness field modulus does not match BN254's r"}
	}
	nVars, _, err := readU32(hdr.payload, hoff)
	if err != nil {
		return nil, err
	}

	valuesSec, ok := sections[sectionValues]
	if !ok {
		return nil, &ParseError{"missing section 2 (values)"}
	}
	stride := int(n8)
	if stride == 0 || len(valuesSec.payload) != int(nVars)*stride {
		return nil, &ParseError{"values section size inconsistent with n_vars * n8"}
	}

	values := make([]fr.Element, nVars)
	for i := uint32(0); i < nVars; i++ {
		values[i].SetBytesLE(valuesSec.payload[int(i)*stride : int(i+1)*stride])
	}

	return &Witness{NVars: nVars, Values: values}, nil
}

func readU32(b []byte, off int) (uint32, int, error) {
	if off+4 > len(b) {
		return 0, off, &ParseError{"truncated u32"}
	}
	return binary.LittleEndian.Uint32(b[off : off+4]), off + 4, nil
}

func readU64(b []byte, off int) (uint64, int, error) {
	if off+8 > len(b) {
		return 0, off, &ParseError{"truncated u64"}
	}
	return binary.LittleEndian.Uint64(b[off : off+8]), off + 8, nil
}

func readBytes(b []byte, off, n int) ([]byte, int, error) {
	if off+n > len(b) {
		return nil, off, &ParseError{"truncated section payload"}
	}
	return b[off : off+n], off + n, nil
}
