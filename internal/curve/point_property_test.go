package curve_test

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/nume-crypto/zk-prover/internal/bn254"
	"github.com/nume-crypto/zk-prover/internal/curve"
	"github.com/nume-crypto/zk-prover/internal/fq"
	"github.com/nume-crypto/zk-prover/internal/fq2"
	"github.com/nume-crypto/zk-prover/internal/fr"
)

func scalarBytes(v uint64) []byte {
	var e fr.Element
	e.SetUint64(v)
	return e.Bytes(fr.NBytes)
}

// G1 (curve closure): k*G1 lies on the curve (y^2 = x^3 + 3); r*G1 = O.
func TestG1Closure(t *testing.T) {
	assert := require.New(t)
	g := bn254.G1Generator()

	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("k*G1 satisfies the curve equation", prop.ForAll(
		func(k uint64) bool {
			p := curve.ScalarMulAffine[fq.Element, *fq.Element](g, scalarBytes(k)).ToAffine()
			if p.IsInfinity() {
				return true
			}
			var x3, y2, b, lhs fq.Element
			x3.Square(p.X)
			x3.Mul(x3, p.X)
			b = fq.CurveB()
			lhs.Add(x3, b)
			y2.Square(p.Y)
			return y2.Equal(lhs)
		},
		gen.UInt64Range(0, 1<<32),
	))

	properties.TestingRun(t)

	rBytes := fr.Modulus().Bytes()
	le := make([]byte, len(rBytes))
	for i, b := range rBytes {
		le[len(rBytes)-1-i] = b
	}
	rg := curve.ScalarMulAffine[fq.Element, *fq.Element](g, le)
	assert.True(rg.IsInfinity())
}

// G2 (additive consistency): k*P + m*P = (k+m)*P; doubling equals self-addition.
func TestG1AdditiveConsistency(t *testing.T) {
	g := bn254.G1Generator()

	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("k*P + m*P = (k+m)*P", prop.ForAll(
		func(k, m uint64) bool {
			kp := curve.ScalarMulAffine[fq.Element, *fq.Element](g, scalarBytes(k))
			mp := curve.ScalarMulAffine[fq.Element, *fq.Element](g, scalarBytes(m))
			var sum curve.Point[fq.Element, *fq.Element]
			sum.Add(kp, mp)

			var kPlusM fr.Element
			var ke, me fr.Element
			ke.SetUint64(k)
			me.SetUint64(m)
			kPlusM.Add(ke, me)
			combined := curve.ScalarMulAffine[fq.Element, *fq.Element](g, kPlusM.Bytes(fr.NBytes))

			return sum.Equal(combined)
		},
		gen.UInt64Range(0, 1<<32), gen.UInt64Range(0, 1<<32),
	))

	properties.Property("doubling equals self-addition", prop.ForAll(
		func(k uint64) bool {
			p := curve.ScalarMulAffine[fq.Element, *fq.Element](g, scalarBytes(k))
			var doubled, added curve.Point[fq.Element, *fq.Element]
			doubled.Double(p)
			added.Add(p, p)
			return doubled.Equal(added)
		},
		gen.UInt64Range(0, 1<<32),
	))

	properties.TestingRun(t)
}

// Additive consistency over 𝔾₂ (2P = P+P, 5P = 2P+3P), mirroring the 𝔾₁
// property above but over the quadratic extension (spec §4.3 is generic over
// the base field).
func TestG2AdditiveConsistency(t *testing.T) {
	assert := require.New(t)
	g := bn254.G2Generator()

	p2 := curve.ScalarMulAffine[fq2.Element, *fq2.Element](g, scalarBytes(2))
	var doubled, added curve.Point[fq2.Element, *fq2.Element]
	doubled.Double(curve.ScalarMulAffine[fq2.Element, *fq2.Element](g, scalarBytes(1)))
	added.Add(
		curve.ScalarMulAffine[fq2.Element, *fq2.Element](g, scalarBytes(1)),
		curve.ScalarMulAffine[fq2.Element, *fq2.Element](g, scalarBytes(1)),
	)
	assert.True(doubled.Equal(added))
	assert.True(doubled.Equal(p2))

	p5 := curve.ScalarMulAffine[fq2.Element, *fq2.Element](g, scalarBytes(5))
	var p2plus3 curve.Point[fq2.Element, *fq2.Element]
	p2plus3.Add(p2, curve.ScalarMulAffine[fq2.Element, *fq2.Element](g, scalarBytes(3)))
	assert.True(p5.Equal(p2plus3))
}
