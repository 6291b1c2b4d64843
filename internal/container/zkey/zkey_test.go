package zkey_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nume-crypto/zk-prover/internal/bn254"
	"github.com/nume-crypto/zk-prover/internal/container/zkey"
	"github.com/nume-crypto/zk-prover/internal/fq"
	"github.com/nume-crypto/zk-prover/internal/fr"
)

func zPutU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func zPutU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

func encodeG1(p bn254.G1Affine) []byte {
	return append(append([]byte{}, p.X.Bytes(fq.NBytes)...), p.Y.Bytes(fq.NBytes)...)
}

func encodeG2(p bn254.G2Affine) []byte {
	var out []byte
	out = append(out, p.X.A0.Bytes(fq.NBytes)...)
	out = append(out, p.X.A1.Bytes(fq.NBytes)...)
	out = append(out, p.Y.A0.Bytes(fq.NBytes)...)
	out = append(out, p.Y.A1.Bytes(fq.NBytes)...)
	return out
}

type zkeyOpts struct {
	version     uint32
	protocol    uint32
	badQ        bool
	badR        bool
	nVars       uint32
	nPublic     uint32
	domainSize  uint32
	omitSection uint32
}

// buildZkey assembles a minimal but well-formed zkey v1 container (header +
// groth16 header + A/B1/B2/C/H point sections, one point each), so parser
// behavior can be exercised without a real circuit-derived proving key.
func buildZkey(o zkeyOpts) []byte {
	g1 := bn254.G1Generator()
	g2 := bn254.G2Generator()

	qBytes := fq.Modulus().Bytes()
	qLE := make([]byte, fq.NBytes)
	for i, b := range qBytes {
		qLE[fq.NBytes-1-i] = b
	}
	if o.badQ {
		qLE[0] ^= 0xFF
	}

	rBytes := fr.Modulus().Bytes()
	rLE := make([]byte, fr.NBytes)
	for i, b := range rBytes {
		rLE[fr.NBytes-1-i] = b
	}
	if o.badR {
		rLE[0] ^= 0xFF
	}

	var hdrPayload []byte
	hdrPayload = zPutU32(hdrPayload, fq.NBytes)
	hdrPayload = append(hdrPayload, qLE...)
	hdrPayload = zPutU32(hdrPayload, fr.NBytes)
	hdrPayload = append(hdrPayload, rLE...)
	hdrPayload = zPutU32(hdrPayload, o.nVars)
	hdrPayload = zPutU32(hdrPayload, o.nPublic)
	hdrPayload = zPutU32(hdrPayload, o.domainSize)
	hdrPayload = append(hdrPayload, encodeG1(g1)...) // alpha1
	hdrPayload = append(hdrPayload, encodeG1(g1)...) // beta1
	hdrPayload = append(hdrPayload, encodeG2(g2)...) // beta2
	hdrPayload = append(hdrPayload, encodeG2(g2)...) // gamma2
	hdrPayload = append(hdrPayload, encodeG1(g1)...) // delta1
	hdrPayload = append(hdrPayload, encodeG2(g2)...) // delta2

	protoPayload := zPutU32(nil, o.protocol)

	type section struct {
		id      uint32
		payload []byte
	}
	sections := []section{
		{1, protoPayload},
		{2, hdrPayload},
		{5, encodeG1(g1)}, // A
		{6, encodeG1(g1)}, // B1
		{7, encodeG2(g2)}, // B2
		{8, encodeG1(g1)}, // C
		{9, encodeG1(g1)}, // H
	}

	var kept []section
	for _, s := range sections {
		if s.id == o.omitSection {
			continue
		}
		kept = append(kept, s)
	}

	var buf []byte
	buf = append(buf, []byte("zkey")...)
	buf = zPutU32(buf, o.version)
	buf = zPutU32(buf, uint32(len(kept)))
	for _, s := range kept {
		buf = zPutU32(buf, s.id)
		buf = zPutU64(buf, uint64(len(s.payload)))
		buf = append(buf, s.payload...)
	}
	return buf
}

func validOpts() zkeyOpts {
	return zkeyOpts{version: 1, protocol: 1, nVars: 4, nPublic: 1, domainSize: 4}
}

func TestZkeyParseValid(t *testing.T) {
	assert := require.New(t)

	buf := buildZkey(validOpts())
	pk, err := zkey.Parse(buf)
	assert.NoError(err)
	assert.Equal(uint32(4), pk.Header.NVars)
	assert.Equal(uint32(1), pk.Header.NPublic)
	assert.Len(pk.A, 1)
	assert.Len(pk.B1, 1)
	assert.Len(pk.B2, 1)
	assert.Len(pk.C, 1)
	assert.Len(pk.H, 1)
}

func TestZkeyRejectsBadMagic(t *testing.T) {
	assert := require.New(t)
	buf := buildZkey(validOpts())
	buf[0] = 'x'
	_, err := zkey.Parse(buf)
	assert.Error(err)
}

func TestZkeyRejectsUnsupportedVersion(t *testing.T) {
	assert := require.New(t)
	o := validOpts()
	o.version = 7
	_, err := zkey.Parse(buildZkey(o))
	assert.Error(err)
}

func TestZkeyRejectsUnsupportedProtocol(t *testing.T) {
	assert := require.New(t)
	o := validOpts()
	o.protocol = 2
	_, err := zkey.Parse(buildZkey(o))
	assert.Error(err)
}

func TestZkeyRejectsWrongBaseModulus(t *testing.T) {
	assert := require.New(t)
	o := validOpts()
	o.badQ = true
	_, err := zkey.Parse(buildZkey(o))
	assert.Error(err)
}

func TestZkeyRejectsWrongScalarModulus(t *testing.T) {
	assert := require.New(t)
	o := validOpts()
	o.badR = true
	_, err := zkey.Parse(buildZkey(o))
	assert.Error(err)
}

func TestZkeyRejectsMissingSection(t *testing.T) {
	assert := require.New(t)
	o := validOpts()
	o.omitSection = 9 // H section
	_, err := zkey.Parse(buildZkey(o))
	assert.Error(err)
}

func TestZkeyRejectsTruncatedBuffer(t *testing.T) {
	assert := require.New(t)
	buf := buildZkey(validOpts())
	_, err := zkey.Parse(buf[:len(buf)-10])
	assert.Error(err)
}
