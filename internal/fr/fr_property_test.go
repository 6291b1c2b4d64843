package fr_test

import (
	"math/big"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/require"

	"github.com/nume-crypto/zk-prover/internal/fr"
)

func genElement() gopter.Gen {
	return gen.UInt64Range(0, 1<<63).Map(func(v uint64) fr.Element {
		var e fr.Element
		e.SetUint64(v)
		return e
	})
}

// F1: Montgomery round-trip — from_mont(to_mont(x)) = x for x in [0, r).
func TestMontgomeryRoundTrip(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("raw round-trips through Montgomery form", prop.ForAll(
		func(v uint64) bool {
			x := new(big.Int).SetUint64(v)
			var e fr.Element
			e.SetBigInt(x)
			return e.BigInt().Cmp(x) == 0
		},
		gen.UInt64Range(0, 1<<63),
	))

	properties.TestingRun(t)
}

// F2: field laws — distributivity, inverse, additive negation.
func TestFieldLaws(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("a*(b+c) = a*b + a*c", prop.ForAll(
		func(a, b, c fr.Element) bool {
			var lhs, rhs, bc, ab, ac fr.Element
			bc.Add(b, c)
			lhs.Mul(a, bc)
			ab.Mul(a, b)
			ac.Mul(a, c)
			rhs.Add(ab, ac)
			return lhs.Equal(rhs)
		},
		genElement(), genElement(), genElement(),
	))

	properties.Property("a*a^-1 = 1 when a != 0", prop.ForAll(
		func(a fr.Element) bool {
			if a.IsZero() {
				return true
			}
			var inv, one, prod fr.Element
			inv.Inverse(a)
			prod.Mul(a, inv)
			one.SetOne()
			return prod.Equal(one)
		},
		genElement(),
	))

	properties.Property("a + (r - a) = 0", prop.ForAll(
		func(a fr.Element) bool {
			var neg, sum, zero fr.Element
			neg.Neg(a)
			sum.Add(a, neg)
			zero.SetZero()
			return sum.Equal(zero)
		},
		genElement(),
	))

	properties.TestingRun(t)
}

func TestElementBytesRoundTrip(t *testing.T) {
	assert := require.New(t)

	var e fr.Element
	e.SetUint64(123456789)
	b := e.Bytes(fr.NBytes)
	assert.Len(b, fr.NBytes)

	var back fr.Element
	back.SetBytesLE(b)
	assert.True(e.Equal(back))
}
