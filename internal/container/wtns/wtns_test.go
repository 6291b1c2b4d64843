package wtns_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nume-crypto/zk-prover/internal/container/wtns"
	"github.com/nume-crypto/zk-prover/internal/fr"
)

func putU32(buf []byte, v uint32) []byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return append(buf, b[:]...)
}

func putU64(buf []byte, v uint64) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return append(buf, b[:]...)
}

// buildWtns assembles a well-formed wtns v2 container with the given field
// width, values, and version override, for exercising both the happy path
// and malformed-input edge cases (spec §6/§7).
func buildWtns(n8 uint32, version uint32, values []fr.Element) []byte {
	var header []byte
	header = putU32(header, n8)
	modBytes := fr.Modulus().Bytes()
	le := make([]byte, n8)
	for i, b := range modBytes {
		le[int(n8)-1-i] = b
	}
	header = append(header, le...)
	header = putU32(header, uint32(len(values)))

	var valuesPayload []byte
	for _, v := range values {
		valuesPayload = append(valuesPayload, v.Bytes(int(n8))...)
	}

	var buf []byte
	buf = append(buf, []byte("wtns")...)
	buf = putU32(buf, version)
	buf = putU32(buf, 2) // 2 sections

	buf = putU32(buf, 1)
	buf = putU64(buf, uint64(len(header)))
	buf = append(buf, header...)

	buf = putU32(buf, 2)
	buf = putU64(buf, uint64(len(valuesPayload)))
	buf = append(buf, valuesPayload...)

	return buf
}

func sampleValues() []fr.Element {
	var one, two, three fr.Element
	one.SetUint64(1)
	two.SetUint64(2)
	three.SetUint64(3)
	return []fr.Element{one, two, three}
}

func TestWtnsParseValid(t *testing.T) {
	assert := require.New(t)

	vals := sampleValues()
	buf := buildWtns(fr.NBytes, 2, vals)

	w, err := wtns.Parse(buf)
	assert.NoError(err)
	assert.Equal(uint32(len(vals)), w.NVars)
	for i := range vals {
		assert.True(vals[i].Equal(w.Values[i]))
	}
}

func TestWtnsRejectsBadMagic(t *testing.T) {
	assert := require.New(t)

	buf := buildWtns(fr.NBytes, 2, sampleValues())
	buf[0] = 'x'

	_, err := wtns.Parse(buf)
	assert.Error(err)
}

func TestWtnsRejectsUnsupportedVersion(t *testing.T) {
	assert := require.New(t)

	buf := buildWtns(fr.NBytes, 99, sampleValues())
	_, err := wtns.Parse(buf)
	assert.Error(err)
}

// headerPayloadOffset is the byte offset of section 1's payload within a
// buildWtns buffer: magic(4) + version(4) + nSections(4) + sectionId(4) +
// size(8).
const headerPayloadOffset = 4 + 4 + 4 + 4 + 8

func TestWtnsRejectsWrongModulus(t *testing.T) {
	assert := require.New(t)

	buf := buildWtns(fr.NBytes, 2, sampleValues())
	// corrupt a byte inside the modulus field (n8(4) precedes the prime
	// bytes within the header payload) so it no longer matches BN254's r.
	buf[headerPayloadOffset+4] ^= 0xFF

	_, err := wtns.Parse(buf)
	assert.Error(err)
}

func TestWtnsRejectsTruncatedBuffer(t *testing.T) {
	assert := require.New(t)

	buf := buildWtns(fr.NBytes, 2, sampleValues())
	_, err := wtns.Parse(buf[:len(buf)-5])
	assert.Error(err)
}

func TestWtnsRejectsValuesSizeMismatch(t *testing.T) {
	assert := require.New(t)

	buf := buildWtns(fr.NBytes, 2, sampleValues())
	// overwrite n_vars in the header to disagree with the values section.
	binary.LittleEndian.PutUint32(buf[headerPayloadOffset+4+fr.NBytes:], 99)

	_, err := wtns.Parse(buf)
	assert.Error(err)
}
