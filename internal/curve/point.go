// Package curve implements the generic XYZZ Jacobian-like elliptic-curve
// group law (spec §4.3, component C3), generic over the base field per the
// spec's "Generic over a base field F" note. Both BN254 curves (𝔾₁ over 𝔽_q,
// 𝔾₂ over 𝔽_{q²}) have curve parameter a = 0, so only that specialization is
// implemented (spec §4.3: "Dispatch on a ∈ {0,1,−1,other}... For BN254, a=0
// for both 𝔾₁ and 𝔾₂").
package curve

// FieldOps is satisfied by *T for a base field element type T: the full set
// of field operations the group law needs. Using a pointer-receiver
// constraint lets Point[T, PT] store T by value while calling through PT
// (see spec §9: "zero-sized type markers" — here the marker is the pointer
// receiver, not a runtime field descriptor).
type FieldOps[T any] interface {
	*T
	SetZero() *T
	SetOne() *T
	IsZero() bool
	Equal(T) bool
	Set(T) *T
	Add(a, b T) *T
	Sub(a, b T) *T
	Neg(a T) *T
	Double(a T) *T
	Mul(a, b T) *T
	Square(a T) *T
	Inverse(a T) *T
}

// Point is a curve point in XYZZ projective coordinates: x = X/ZZ,
// y = Y/ZZZ, ZZ³ = ZZZ². The identity is encoded as ZZ = ZZZ = 0 (§3.2 E1).
type Point[T any, PT FieldOps[T]] struct {
	X, Y, ZZ, ZZZ T
}

// Affine is an affine curve point; (0,0) is the identity (§3.2).
type Affine[T any, PT FieldOps[T]] struct {
	X, Y T
}

// SetInfinity sets p to the identity element.
func (p *Point[T, PT]) SetInfinity() *Point[T, PT] {
	PT(&p.X).SetZero()
	PT(&p.Y).SetZero()
	PT(&p.ZZ).SetZero()
	PT(&p.ZZZ).SetZero()
	return p
}

// IsInfinity reports whether p is the identity.
func (p *Point[T, PT]) IsInfinity() bool {
	return PT(&p.ZZ).IsZero()
}

// FromAffine lifts an affine point into projective coordinates.
func (p *Point[T, PT]) FromAffine(a Affine[T, PT]) *Point[T, PT] {
	if PT(&a.X).IsZero() && PT(&a.Y).IsZero() {
		p.SetInfinity()
		return p
	}
	PT(&p.X).Set(a.X)
	PT(&p.Y).Set(a.Y)
	PT(&p.ZZ).SetOne()
	PT(&p.ZZZ).SetOne()
	return p
}

// ToAffine divides out ZZ/ZZZ (the only hot-path inversion per §4.3).
func (p Point[T, PT]) ToAffine() Affine[T, PT] {
	var out Affine[T, PT]
	if PT(&p.ZZ).IsZero() {
		PT(&out.X).SetZero()
		PT(&out.Y).SetZero()
		return out
	}
	var zzInv, zzzInv T
	PT(&zzInv).Inverse(p.ZZ)
	PT(&zzzInv).Inverse(p.ZZZ)
	PT(&out.X).Mul(p.X, zzInv)
	PT(&out.Y).Mul(p.Y, zzzInv)
	return out
}

// IsInfinity reports whether a is the identity.
func (a Affine[T, PT]) IsInfinity() bool {
	return PT(&a.X).IsZero() && PT(&a.Y).IsZero()
}

// Double sets p = 2*q (§4.3 doubling law, a = 0).
func (p *Point[T, PT]) Double(q Point[T, PT]) *Point[T, PT] {
	if PT(&q.ZZ).IsZero() {
		p.SetInfinity()
		return p
	}
	var u, v, w, s, xx, m, x3, y3, zz3, zzz3 T

	PT(&u).Double(q.Y)               // U = 2Y
	PT(&v).Square(u)                 // V = U^2
	PT(&w).Mul(u, v)                 // W = U*V
	PT(&s).Mul(q.X, v)                // S = X*V
	PT(&xx).Square(q.X)               // X^2
	PT(&m).Double(xx)
	PT(&m).Add(m, xx)                // M = 3X^2 (a=0)

	PT(&x3).Square(m)
	var s2 T
	PT(&s2).Double(s)
	PT(&x3).Sub(x3, s2) // X' = M^2 - 2S

	var sMinusX3, wY T
	PT(&sMinusX3).Sub(s, x3)
	PT(&y3).Mul(m, sMinusX3)
	PT(&wY).Mul(w, q.Y)
	PT(&y3).Sub(y3, wY) // Y' = M(S-X') - W*Y

	PT(&zz3).Mul(v, q.ZZ)     // ZZ' = V*ZZ
	PT(&zzz3).Mul(w, q.ZZZ)   // ZZZ' = W*ZZZ

	PT(&p.X).Set(x3)
	PT(&p.Y).Set(y3)
	PT(&p.ZZ).Set(zz3)
	PT(&p.ZZZ).Set(zzz3)
	return p
}

// Add sets p = a + b, both in projective form (§4.3 addition law).
func (p *Point[T, PT]) Add(a, b Point[T, PT]) *Point[T, PT] {
	if PT(&a.ZZ).IsZero() {
		PT(&p.X).Set(b.X)
		PT(&p.Y).Set(b.Y)
		PT(&p.ZZ).Set(b.ZZ)
		PT(&p.ZZZ).Set(b.ZZZ)
		return p
	}
	if PT(&b.ZZ).IsZero() {
		PT(&p.X).Set(a.X)
		PT(&p.Y).Set(a.Y)
		PT(&p.ZZ).Set(a.ZZ)
		PT(&p.ZZZ).Set(a.ZZZ)
		return p
	}

	var u1, u2, s1, s2, pp, rr T
	PT(&u1).Mul(a.X, b.ZZ)
	PT(&u2).Mul(b.X, a.ZZ)
	PT(&s1).Mul(a.Y, b.ZZZ)
	PT(&s2).Mul(b.Y, a.ZZZ)
	PT(&pp).Sub(u2, u1)
	PT(&rr).Sub(s2, s1)

	if PT(&pp).IsZero() && PT(&rr).IsZero() {
		return p.Double(a)
	}

	var ppp, q, x3, y3, zz3, zzz3 T
	var ppSq T
	PT(&ppSq).Square(pp)
	PT(&ppp).Mul(pp, ppSq)
	PT(&q).Mul(u1, ppSq)

	var rr2, q2 T
	PT(&rr2).Square(rr)
	PT(&q2).Double(q)
	PT(&x3).Sub(rr2, ppp)
	PT(&x3).Sub(x3, q2) // X3 = R^2 - PPP - 2Q

	var qMinusX3, s1ppp T
	PT(&qMinusX3).Sub(q, x3)
	PT(&y3).Mul(rr, qMinusX3)
	PT(&s1ppp).Mul(s1, ppp)
	PT(&y3).Sub(y3, s1ppp) // Y3 = R(Q-X3) - S1*PPP

	PT(&zz3).Mul(a.ZZ, b.ZZ)
	PT(&zz3).Mul(zz3, ppSq) // ZZ3 = ZZ1*ZZ2*PP

	PT(&zzz3).Mul(a.ZZZ, b.ZZZ)
	PT(&zzz3).Mul(zzz3, ppp) // ZZZ3 = ZZZ1*ZZZ2*PPP

	PT(&p.X).Set(x3)
	PT(&p.Y).Set(y3)
	PT(&p.ZZ).Set(zz3)
	PT(&p.ZZZ).Set(zzz3)
	return p
}

// AddMixed sets p = a + aff, substituting ZZ2 = ZZZ2 = 1 (§4.3 mixed add).
func (p *Point[T, PT]) AddMixed(a Point[T, PT], aff Affine[T, PT]) *Point[T, PT] {
	if aff.IsInfinity() {
		PT(&p.X).Set(a.X)
		PT(&p.Y).Set(a.Y)
		PT(&p.ZZ).Set(a.ZZ)
		PT(&p.ZZZ).Set(a.ZZZ)
		return p
	}
	var b Point[T, PT]
	b.FromAffine(aff)
	return p.Add(a, b)
}

// Neg sets p = -q.
func (p *Point[T, PT]) Neg(q Point[T, PT]) *Point[T, PT] {
	PT(&p.X).Set(q.X)
	PT(&p.Y).Neg(q.Y)
	PT(&p.ZZ).Set(q.ZZ)
	PT(&p.ZZZ).Set(q.ZZZ)
	return p
}

// Equal compares two projective representations of possibly-different
// scalings by cross-multiplying coordinates (§3.2 E2).
func (p Point[T, PT]) Equal(o Point[T, PT]) bool {
	pInf, oInf := PT(&p.ZZ).IsZero(), PT(&o.ZZ).IsZero()
	if pInf || oInf {
		return pInf && oInf
	}
	var l, r T
	PT(&l).Mul(p.X, o.ZZ)
	PT(&r).Mul(o.X, p.ZZ)
	if !PT(&l).Equal(r) {
		return false
	}
	PT(&l).Mul(p.Y, o.ZZZ)
	PT(&r).Mul(o.Y, p.ZZZ)
	return PT(&l).Equal(r)
}
