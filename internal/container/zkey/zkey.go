// Package zkey parses the opaque ".zkey" binary container (spec §6,
// component C7): a magic-tagged, versioned sequence of numbered sections.
// Parsing is format-only — section payloads are decoded into the typed
// views §3.3 describes and otherwise left semantically opaque to this
// package.
package zkey

import (
	"encoding/binary"
	"fmt"

	"github.com/nume-crypto/zk-prover/internal/bn254"
	"github.com/nume-crypto/zk-prover/internal/fq"
	"github.com/nume-crypto/zk-prover/internal/fr"
	"github.com/nume-crypto/zk-prover/internal/version"
)

const (
	magic          = "zkey"
	sectionHeader  = 1
	sectionGroth16 = 2
	sectionCoefs   = 4
	sectionA       = 5
	sectionB1      = 6
	sectionB2      = 7
	sectionC       = 8
	sectionH       = 9

	protocolGroth16 = 1
)

// Coef is one QAP coefficient record (spec §3.3 section 4).
type Coef struct {
	M    uint32 // 0 => target vector a, 1 => target vector b
	C    uint32 // row index, < DomainSize
	S    uint32 // witness index, < NVars
	Coef fr.Element
}

// Header is the Groth16 header view (spec §3.3 "Header").
type Header struct {
	N8Q        uint32
	N8R        uint32
	NVars      uint32
	NPublic    uint32
	DomainSize uint32

	Alpha1 bn254.G1Affine
	Beta1  bn254.G1Affine
	Beta2  bn254.G2Affine
	Delta1 bn254.G1Affine
	Delta2 bn254.G2Affine
}

// ProvingKey is the full read-only view over the eight logical sections a
// prover needs (spec §3.3), borrowed for the prover's lifetime.
type ProvingKey struct {
	Header Header
	Coefs  []Coef
	A      []bn254.G1Affine
	B1     []bn254.G1Affine
	B2     []bn254.G2Affine
	C      []bn254.G1Affine
	H      []bn254.G1Affine
}

// ParseError reports a container-format defect (spec §7 InvalidContainer).
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string { return "zkey: " + e.Reason }

type rawSection struct {
	id      uint32
	payload []byte
}

// Parse validates the container framing and decodes all eight sections into
// a ProvingKey (spec §6 zkey v1 layout).
func Parse(b []byte) (*ProvingKey, error) {
	if len(b) < 4 || string(b[:4]) != magic {
		return nil, &ParseError{"missing \"zkey\" magic"}
	}
	off := 4

	ver, off2, err := readU32(b, off)
	if err != nil {
		return nil, err
	}
	off = off2
	if !version.ZkeySupported(version.FromUint32(ver)) {
		return nil, &ParseError{fmt.Sprintf("unsupported zkey version %d", ver)}
	}

	nSections, off3, err := readU32(b, off)
	if err != nil {
		return nil, err
	}
	off = off3

	sections := make(map[uint32][]rawSection)
	for i := uint32(0); i < nSections; i++ {
		id, o, err := readU32(b, off)
		if err != nil {
			return nil, err
		}
		off = o
		size, o2, err := readU64(b, off)
		if err != nil {
			return nil, err
		}
		off = o2
		if uint64(off)+size > uint64(len(b)) {
			return nil, &ParseError{"section payload exceeds buffer"}
		}
		payload := b[off : uint64(off)+size]
		off += int(size)
		sections[id] = append(sections[id], rawSection{id: id, payload: payload})
	}

	protoSec, err := onlySection(sections, sectionHeader)
	if err != nil {
		return nil, err
	}
	proto, _, err := readU32(protoSec.payload, 0)
	if err != nil {
		return nil, err
	}
	if proto != protocolGroth16 {
		return nil, &ParseError{fmt.Sprintf("unsupported protocol id %d (want groth16=1)", proto)}
	}

	hdrSec, err := onlySection(sections, sectionGroth16)
	if err != nil {
		return nil, err
	}
	header, err := parseHeader(hdrSec.payload)
	if err != nil {
		return nil, err
	}

	coefSecs := sections[sectionCoefs]
	var coefs []Coef
	if len(coefSecs) == 1 {
		coefs, err = parseCoefs(coefSecs[0].payload, int(header.N8R))
		if err != nil {
			return nil, err
		}
	}

	aPts, err := parseG1Points(sections, sectionA, int(header.N8Q))
	if err != nil {
		return nil, err
	}
	b1Pts, err := parseG1Points(sections, sectionB1, int(header.N8Q))
	if err != nil {
		return nil, err
	}
	b2Pts, err := parseG2Points(sections, sectionB2, int(header.N8Q))
	if err != nil {
		return nil, err
	}
	cPts, err := parseG1Points(sections, sectionC, int(header.N8Q))
	if err != nil {
		return nil, err
	}
	hPts, err := parseG1Points(sections, sectionH, int(header.N8Q))
	if err != nil {
		return nil, err
	}

	return &ProvingKey{
		Header: *header,
		Coefs:  coefs,
		A:      aPts,
		B1:     b1Pts,
		B2:     b2Pts,
		C:      cPts,
		H:      hPts,
	}, nil
}

func onlySection(sections map[uint32][]rawSection, id uint32) (*rawSection, error) {
	ss, ok := sections[id]
	if !ok || len(ss) == 0 {
		return nil, &ParseError{fmt.Sprintf("missing section %d", id)}
	}
	return &ss[0], nil
}

func parseHeader(b []byte) (*Header, error) {
	var h Header
	off := 0
	var err error

	h.N8Q, off, err = readU32(b, off)
	if err != nil {
		return nil, err
	}
	qBytes, off2, err := readBytes(b, off, int(h.N8Q))
	if err != nil {
		return nil, err
	}
	off = off2
	var q fq.Element
	q.SetBytesLE(qBytes)
	if q.BigInt().Cmp(fq.Modulus()) != 0 {
		return nil, &ParseError{"zkey base-field modulus does not match BN254's q"}
	}

	h.N8R, off, err = readU32(b, off)
	if err != nil {
		return nil, err
	}
	rBytes, off3, err := readBytes(b, off, int(h.N8R))
	if err != nil {
		return nil, err
	}
	off = off3
	var r fr.Element
	r.SetBytesLE(rBytes)
	if r.BigInt().Cmp(fr.Modulus()) != 0 {
		return nil, &ParseError{"zkey scalar-field modulus does not match BN254's r"}
	}

	h.NVars, off, err = readU32(b, off)
	if err != nil {
		return nil, err
	}
	h.NPublic, off, err = readU32(b, off)
	if err != nil {
		return nil, err
	}
	h.DomainSize, off, err = readU32(b, off)
	if err != nil {
		return nil, err
	}

	n8q := int(h.N8Q)
	var alpha1, beta1, delta1 []byte
	var beta2, gamma2, delta2 []byte

	if alpha1, off, err = readBytes(b, off, 2*n8q); err != nil {
		return nil, err
	}
	if beta1, off, err = readBytes(b, off, 2*n8q); err != nil {
		return nil, err
	}
	if beta2, off, err = readBytes(b, off, 4*n8q); err != nil {
		return nil, err
	}
	if gamma2, off, err = readBytes(b, off, 4*n8q); err != nil {
		return nil, err
	}
	_ = gamma2 // vk_gamma2 is part of the verifier's view, not the prover's (§3.3/§4.8)
	if delta1, off, err = readBytes(b, off, 2*n8q); err != nil {
		return nil, err
	}
	if delta2, _, err = readBytes(b, off, 4*n8q); err != nil {
		return nil, err
	}

	if h.Alpha1, err = bn254.DecodeG1Affine(alpha1, n8q); err != nil {
		return nil, &ParseError{err.Error()}
	}
	if h.Beta1, err = bn254.DecodeG1Affine(beta1, n8q); err != nil {
		return nil, &ParseError{err.Error()}
	}
	if h.Beta2, err = bn254.DecodeG2Affine(beta2, n8q); err != nil {
		return nil, &ParseError{err.Error()}
	}
	if h.Delta1, err = bn254.DecodeG1Affine(delta1, n8q); err != nil {
		return nil, &ParseError{err.Error()}
	}
	if h.Delta2, err = bn254.DecodeG2Affine(delta2, n8q); err != nil {
		return nil, &ParseError{err.Error()}
	}

	return &h, nil
}

func parseCoefs(b []byte, n8r int) ([]Coef, error) {
	recSize := 12 + n8r
	if recSize <= 0 || len(b)%recSize != 0 {
		return nil, &ParseError{"coefs section size inconsistent with n8r"}
	}
	n := len(b) / recSize
	out := make([]Coef, n)
	off := 0
	for i := 0; i < n; i++ {
		var c Coef
		var err error
		c.M, off, err = readU32(b, off)
		if err != nil {
			return nil, err
		}
		c.C, off, err = readU32(b, off)
		if err != nil {
			return nil, err
		}
		c.S, off, err = readU32(b, off)
		if err != nil {
			return nil, err
		}
		coefBytes, off2, err := readBytes(b, off, n8r)
		if err != nil {
			return nil, err
		}
		off = off2
		c.Coef.SetBytesLE(coefBytes)
		out[i] = c
	}
	return out, nil
}

func parseG1Points(sections map[uint32][]rawSection, id uint32, n8q int) ([]bn254.G1Affine, error) {
	sec, err := onlySection(sections, id)
	if err != nil {
		return nil, err
	}
	stride := 2 * n8q
	if stride == 0 || len(sec.payload)%stride != 0 {
		return nil, &ParseError{fmt.Sprintf("G1 section %d size inconsistent with n8q", id)}
	}
	n := len(sec.payload) / stride
	out := make([]bn254.G1Affine, n)
	for i := 0; i < n; i++ {
		p, err := bn254.DecodeG1Affine(sec.payload[i*stride:(i+1)*stride], n8q)
		if err != nil {
			return nil, &ParseError{err.Error()}
		}
		out[i] = p
	}
	return out, nil
}

func parseG2Points(sections map[uint32][]rawSection, id uint32, n8q int) ([]bn254.G2Affine, error) {
	sec, err := onlySection(sections, id)
	if err != nil {
		return nil, err
	}
	stride := 4 * n8q
	if stride == 0 || len(sec.payload)%stride != 0 {
		return nil, &ParseError{fmt.Sprintf("G2 section %d size inconsistent with n8q", id)}
	}
	n := len(sec.payload) / stride
	out := make([]bn254.G2Affine, n)
	for i := 0; i < n; i++ {
		p, err := bn254.DecodeG2Affine(sec.payload[i*stride:(i+1)*stride], n8q)
		if err != nil {
			return nil, &ParseError{err.Error()}
		}
		out[i] = p
	}
	return out, nil
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
