package bn254_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/nume-crypto/zk-prover/internal/bn254"
	"github.com/nume-crypto/zk-prover/internal/fq"
)

// cmpOpt lets cmp.Diff traverse field.Element via its Equal method instead
// of failing on the type's unexported limb storage.
var cmpOpt = cmp.Comparer(func(a, b fq.Element) bool { return a.Equal(b) })

func TestG1AffineEncodeDecodeRoundTrip(t *testing.T) {
	assert := require.New(t)

	want := bn254.G1Generator()
	encoded := make([]byte, 0, 2*fq.NBytes)
	encoded = append(encoded, want.X.Bytes(fq.NBytes)...)
	encoded = append(encoded, want.Y.Bytes(fq.NBytes)...)

	got, err := bn254.DecodeG1Affine(encoded, fq.NBytes)
	assert.NoError(err)

	if diff := cmp.Diff(want, got, cmpOpt); diff != "" {
		t.Fatalf("G1 affine round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestG2AffineEncodeDecodeRoundTrip(t *testing.T) {
	assert := require.New(t)

	want := bn254.G2Generator()
	encoded := make([]byte, 0, 4*fq.NBytes)
	encoded = append(encoded, want.X.A0.Bytes(fq.NBytes)...)
	encoded = append(encoded, want.X.A1.Bytes(fq.NBytes)...)
	encoded = append(encoded, want.Y.A0.Bytes(fq.NBytes)...)
	encoded = append(encoded, want.Y.A1.Bytes(fq.NBytes)...)

	got, err := bn254.DecodeG2Affine(encoded, fq.NBytes)
	assert.NoError(err)

	if diff := cmp.Diff(want.X.A0, got.X.A0, cmpOpt); diff != "" {
		t.Fatalf("G2 affine X.A0 round-trip mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want.Y.A1, got.Y.A1, cmpOpt); diff != "" {
		t.Fatalf("G2 affine Y.A1 round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeG1AffineRejectsWrongLength(t *testing.T) {
	assert := require.New(t)
	_, err := bn254.DecodeG1Affine(make([]byte, 3), fq.NBytes)
	assert.Error(err)
}
