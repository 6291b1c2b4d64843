// Package fq2 implements BN254's quadratic extension 𝔽_{q²} = 𝔽_q[u]/(u²-β),
// used for 𝔾₂ coordinates (spec §4.2, component C2).
package fq2

import "github.com/nume-crypto/zk-prover/internal/fq"

// Element represents a + b·u.
type Element struct {
	A0, A1 fq.Element
}

// SetZero sets z = 0.
func (z *Element) SetZero() *Element {
	z.A0.SetZero()
	z.A1.SetZero()
	return z
}

// SetOne sets z = 1.
func (z *Element) SetOne() *Element {
	z.A0.SetOne()
	z.A1.SetZero()
	return z
}

// IsZero reports whether z == 0.
func (z Element) IsZero() bool {
	return z.A0.IsZero() && z.A1.IsZero()
}

// Equal reports whether z == x.
func (z Element) Equal(x Element) bool {
	return z.A0.Equal(x.A0) && z.A1.Equal(x.A1)
}

// Set sets z = x.
func (z *Element) Set(x Element) *Element {
	z.A0.Set(x.A0)
	z.A1.Set(x.A1)
	return z
}

// Add sets z = a + b.
func (z *Element) Add(a, b Element) *Element {
	z.A0.Add(a.A0, b.A0)
	z.A1.Add(a.A1, b.A1)
	return z
}

// Sub sets z = a - b.
func (z *Element) Sub(a, b Element) *Element {
	z.A0.Sub(a.A0, b.A0)
	z.A1.Sub(a.A1, b.A1)
	return z
}

// Neg sets z = -a.
func (z *Element) Neg(a Element) *Element {
	z.A0.Neg(a.A0)
	z.A1.Neg(a.A1)
	return z
}

// Double sets z = a+a.
func (z *Element) Double(a Element) *Element {
	return z.Add(a, a)
}

// Mul sets z = a*b using Karatsuba (3 base-field multiplications): with
// β = -1, (a0+a1u)(b0+b1u) = (a0b0 - a1b1) + ((a0+a1)(b0+b1) - a0b0 - a1b1)u.
func (z *Element) Mul(a, b Element) *Element {
	var a0b0, a1b1, sum, t fq.Element
	a0b0.Mul(a.A0, b.A0)
	a1b1.Mul(a.A1, b.A1)

	t.Add(a.A0, a.A1)
	sum.Add(b.A0, b.A1)
	sum.Mul(sum, t) // (a0+a1)(b0+b1)

	var c0, c1 fq.Element
	c0.Sub(a0b0, a1b1) // β = -1: a0·b0 + β·a1·b1 = a0b0 - a1b1
	c1.Sub(sum, a0b0)
	c1.Sub(c1, a1b1)

	z.A0.Set(c0)
	z.A1.Set(c1)
	return z
}

// Square sets z = a*a using complex squaring (2 base-field multiplications):
// with β = -1, (a0+a1u)² = (a0+a1)(a0-a1) + 2a0a1·u.
func (z *Element) Square(a Element) *Element {
	var sum, diff, c0, c1 fq.Element
	sum.Add(a.A0, a.A1)
	diff.Sub(a.A0, a.A1)
	c0.Mul(sum, diff)
	c1.Mul(a.A0, a.A1)
	c1.Double(c1)
	z.A0.Set(c0)
	z.A1.Set(c1)
	return z
}

// Inverse sets z = a^-1: inv((a,b)) = (a·t, -b·t) where t = (a²-β·b²)^-1
// (β=-1, so a²-β·b² = a²+b²). Panics if a == 0 (§7 ArithmeticPrecondition).
func (z *Element) Inverse(a Element) *Element {
	if a.IsZero() {
		panic("fq2: inverse of zero")
	}
	var a2, b2, t fq.Element
	a2.Square(a.A0)
	b2.Square(a.A1)
	t.Add(a2, b2)
	t.Inverse(t)

	var c0, c1 fq.Element
	c0.Mul(a.A0, t)
	c1.Mul(a.A1, t)
	c1.Neg(c1)

	z.A0.Set(c0)
	z.A1.Set(c1)
	return z
}
