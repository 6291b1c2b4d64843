// Package field implements a generic 254-bit prime-field element in
// Montgomery form, parameterized over the field's modulus.
//
// The storage contract follows the source this was distilled from: a field
// element is four little-endian 64-bit limbs holding a·R mod p, where
// R = 2^256. Montgomery form is preserved as a storage detail, not exposed
// as a second code path per value — every Element is always in Montgomery
// form, collapsing the legacy SHORT/LONG/mixed-Montgomery tag discipline
// into a single representation (see DESIGN.md, §9 rewrite recommendation).
//
// Add/Sub/Neg/Mul/Square operate directly on the raw limbs (CIOS reduction
// for Mul/Square), grounded on fr_raw_generic.cpp/fq_generic.cpp's
// Fr_rawAdd/Fr_rawSub/Fr_rawNeg/Fr_rawMMul. math/big is used only at the
// boundary: SetBigInt/BigInt/Inverse/Exp/Cmp/Shl/Shr/FromString/String,
// where the source this was distilled from itself round-trips through GMP's
// general-purpose mpn routines rather than a Montgomery-specific path.
package field

import (
	"math/big"
	"math/bits"
)

// Raw is a canonical (non-Montgomery), fully reduced 254-bit integer stored
// as four little-endian 64-bit limbs.
type Raw = [4]uint64

// Modulus supplies the constants for one prime field. Implementations are
// zero-sized type markers (see spec §9: "zero-sized type markers carrying
// associated constants") so Element[M] carries no runtime modulus pointer.
type Modulus interface {
	// P returns the field modulus.
	P() *big.Int
	// R2 returns R^2 mod P, used to enter Montgomery form.
	R2() *big.Int
	// RInv returns R^-1 mod P. (Leaving Montgomery form is done by montMul
	// with operand 1, see toValue, not through this constant.)
	RInv() *big.Int
	// NBits returns the bit length of P (254 for both BN254 fields).
	NBits() int
	// PLimbs returns the modulus as four little-endian 64-bit limbs, the
	// CIOS reduction's divisor (fr_raw_generic.cpp's static Fr_rawq[]).
	PLimbs() Raw
	// NP0 returns -P^-1 mod 2^64, the CIOS reduction's per-limb multiplier
	// (fr_raw_generic.cpp's static Fr_np).
	NP0() uint64
}

// Element is a field element in Montgomery form: limbs hold a·R mod p.
type Element[M Modulus] struct {
	limbs Raw
}

// RawToBig converts a little-endian limb array to a big.Int.
func RawToBig(r Raw) *big.Int {
	buf := make([]byte, 32)
	for i := 0; i < 4; i++ {
		b := r[i]
		for j := 0; j < 8; j++ {
			buf[31-(i*8+j)] = byte(b >> (56 - 8*j))
		}
	}
	return new(big.Int).SetBytes(buf)
}

// BigToRaw converts a non-negative big.Int less than 2^256 to a
// little-endian limb array.
func BigToRaw(x *big.Int) Raw {
	var out Raw
	buf := make([]byte, 32)
	xb := x.Bytes()
	copy(buf[32-len(xb):], xb)
	for i := 0; i < 4; i++ {
		var limb uint64
		for j := 0; j < 8; j++ {
			limb |= uint64(buf[31-(i*8+j)]) << (8 * j)
		}
		out[i] = limb
	}
	return out
}

// rawAdd computes a+b over the 256-bit limb arrays, returning the result and
// a 0/1 carry out (fr_raw_generic.cpp's mpn_add_n, Fr_N64=4).
func rawAdd(a, b Raw) (Raw, uint64) {
	var z Raw
	var c uint64
	z[0], c = bits.Add64(a[0], b[0], 0)
	z[1], c = bits.Add64(a[1], b[1], c)
	z[2], c = bits.Add64(a[2], b[2], c)
	z[3], c = bits.Add64(a[3], b[3], c)
	return z, c
}

// rawSub computes a-b over the 256-bit limb arrays, returning the result and
// a 0/1 borrow out (fr_raw_generic.cpp's mpn_sub_n).
func rawSub(a, b Raw) (Raw, uint64) {
	var z Raw
	var c uint64
	z[0], c = bits.Sub64(a[0], b[0], 0)
	z[1], c = bits.Sub64(a[1], b[1], c)
	z[2], c = bits.Sub64(a[2], b[2], c)
	z[3], c = bits.Sub64(a[3], b[3], c)
	return z, c
}

// rawCmp returns -1, 0, or 1 as a is less than, equal to, or greater than b,
// treating both as unsigned 256-bit integers (fr_raw_generic.cpp's mpn_cmp).
func rawCmp(a, b Raw) int {
	for i := 3; i >= 0; i-- {
		if a[i] != b[i] {
			if a[i] > b[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// mulAddCarry computes x*y + z + carry and returns the low and high 64-bit
// words of the 128-bit-or-less result. hi never exceeds 2^64-1: the sum is
// at most (2^64-1)^2 + 2(2^64-1) = 2^128-1, so neither carry fold into h
// can overflow and the discarded carry-outs are always zero.
func mulAddCarry(x, y, z, carry uint64) (lo, hi uint64) {
	h, l := bits.Mul64(x, y)
	var c uint64
	l, c = bits.Add64(l, z, 0)
	h, _ = bits.Add64(h, 0, c)
	l, c = bits.Add64(l, carry, 0)
	h, _ = bits.Add64(h, 0, c)
	return l, h
}

// montMul computes a*b*R^-1 mod p via the four-limb CIOS reduction,
// grounded on fr_raw_generic.cpp's Fr_rawMMul (the np0 = Fr_np * product[0]
// / mpn_addmul_1 round repeated once per limb of b).
func montMul(a, b, p Raw, np0 uint64) Raw {
	var t [5]uint64

	for i := 0; i < 4; i++ {
		var carry uint64
		for j := 0; j < 4; j++ {
			lo, hi := mulAddCarry(a[j], b[i], t[j], carry)
			t[j] = lo
			carry = hi
		}
		lo, c := bits.Add64(t[4], carry, 0)
		t[4] = lo
		guard := c

		m := t[0] * np0
		_, rc := mulAddCarry(m, p[0], t[0], 0)
		for j := 1; j < 4; j++ {
			lo, hi := mulAddCarry(m, p[j], t[j], rc)
			t[j-1] = lo
			rc = hi
		}
		lo, c = bits.Add64(t[4], rc, 0)
		t[3] = lo
		t[4] = guard + c
	}

	result := Raw{t[0], t[1], t[2], t[3]}
	if t[4] != 0 || rawCmp(result, p) >= 0 {
		result, _ = rawSub(result, p)
	}
	return result
}

// toValue extracts the "true" mathematical value the Montgomery-form limbs
// represent: value = limbs_as_int * R^-1 mod p, computed as mul_mont(limbs, 1)
// (fr_raw_generic.cpp's Fr_rawFromMontgomery).
func (z Element[M]) toValue() *big.Int {
	var m M
	one := Raw{1, 0, 0, 0}
	return RawToBig(montMul(z.limbs, one, m.PLimbs(), m.NP0()))
}

// fromValue encodes a canonical mathematical value into Montgomery-form
// limbs: limbs = mul_mont(value, R^2) (fr_raw_generic.cpp's
// Fr_rawToMontgomery).
func fromValue[M Modulus](v *big.Int) Element[M] {
	var m M
	x := new(big.Int).Mod(v, m.P())
	raw := BigToRaw(x)
	r2 := BigToRaw(m.R2())
	return Element[M]{limbs: montMul(raw, r2, m.PLimbs(), m.NP0())}
}

// SetRaw loads a canonical (non-Montgomery) raw value, reducing mod p and
// converting it to Montgomery form (this is the §4.1 `to_mont` contract).
func (z *Element[M]) SetRaw(r Raw) *Element[M] {
	*z = fromValue[M](RawToBig(r))
	return z
}

// Raw exports the canonical (non-Montgomery) reduced value (the §4.1
// `from_mont` contract).
func (z Element[M]) Raw() Raw {
	return BigToRaw(z.toValue())
}

// SetBigInt reduces x mod p and stores it in Montgomery form.
func (z *Element[M]) SetBigInt(x *big.Int) *Element[M] {
	*z = fromValue[M](x)
	return z
}

// BigInt returns the canonical value as a big.Int.
func (z Element[M]) BigInt() *big.Int {
	return z.toValue()
}

// SetUint64 sets z to v.
func (z *Element[M]) SetUint64(v uint64) *Element[M] {
	return z.SetBigInt(new(big.Int).SetUint64(v))
}

// SetZero sets z to 0.
func (z *Element[M]) SetZero() *Element[M] {
	z.limbs = Raw{}
	return z
}

// SetOne sets z to 1.
func (z *Element[M]) SetOne() *Element[M] {
	return z.SetUint64(1)
}

// IsZero reports whether z == 0.
func (z Element[M]) IsZero() bool {
	return z.limbs == Raw{}
}

// Equal reports whether z == x.
func (z Element[M]) Equal(x Element[M]) bool {
	return z.limbs == x.limbs
}

// Add sets z = a + b mod p, directly on the limb arrays (mpn_add_n plus a
// conditional subtract, fr_raw_generic.cpp's Fr_rawAdd).
func (z *Element[M]) Add(a, b Element[M]) *Element[M] {
	var m M
	sum, carry := rawAdd(a.limbs, b.limbs)
	p := m.PLimbs()
	if carry != 0 || rawCmp(sum, p) >= 0 {
		sum, _ = rawSub(sum, p)
	}
	z.limbs = sum
	return z
}

// Sub sets z = a - b mod p (fr_raw_generic.cpp's Fr_rawSub).
func (z *Element[M]) Sub(a, b Element[M]) *Element[M] {
	var m M
	diff, borrow := rawSub(a.limbs, b.limbs)
	if borrow != 0 {
		diff, _ = rawAdd(diff, m.PLimbs())
	}
	z.limbs = diff
	return z
}

// Neg sets z = -a mod p (fr_raw_generic.cpp's Fr_rawNeg).
func (z *Element[M]) Neg(a Element[M]) *Element[M] {
	var m M
	if a.IsZero() {
		z.SetZero()
		return z
	}
	diff, _ := rawSub(m.PLimbs(), a.limbs)
	z.limbs = diff
	return z
}

// Mul sets z = a*b mod p via the CIOS limb reduction (fr_raw_generic.cpp's
// Fr_rawMMul): each Element already stores a·R mod p, so the product carries
// exactly one extra R factor that montMul's R^-1 folds back in.
func (z *Element[M]) Mul(a, b Element[M]) *Element[M] {
	var m M
	z.limbs = montMul(a.limbs, b.limbs, m.PLimbs(), m.NP0())
	return z
}

// Square sets z = a*a mod p.
func (z *Element[M]) Square(a Element[M]) *Element[M] {
	return z.Mul(a, a)
}

// Inverse sets z = a^-1 mod p. Panics if a == 0 (§7 ArithmeticPrecondition:
// a programming error that cannot arise from well-formed inputs). Inversion
// is a boundary/cold-path operation (once per domain or key, not per MSM
// term), so it is computed via math/big.Int.ModInverse rather than a
// hand-rolled binary GCD.
func (z *Element[M]) Inverse(a Element[M]) *Element[M] {
	var m M
	if a.IsZero() {
		panic("field: inverse of zero")
	}
	v := new(big.Int).ModInverse(a.toValue(), m.P())
	*z = fromValue[M](v)
	return z
}

// Exp sets z = base^e mod p via left-to-right square-and-multiply (§4.1 pow).
func (z *Element[M]) Exp(base Element[M], e *big.Int) *Element[M] {
	var m M
	v := new(big.Int).Exp(base.toValue(), e, m.P())
	*z = fromValue[M](v)
	return z
}

// Set sets z = a.
func (z *Element[M]) Set(a Element[M]) *Element[M] {
	z.limbs = a.limbs
	return z
}

// Double sets z = a+a.
func (z *Element[M]) Double(a Element[M]) *Element[M] {
	return z.Add(a, a)
}

// Cmp implements the source's signed-mod-r comparison (§4.1 cmp_half):
// any canonical value > p/2 sorts as negative. Returns -1, 0, or 1.
func (z Element[M]) Cmp(x Element[M]) int {
	var m M
	half := new(big.Int).Rsh(m.P(), 1)
	za, xa := z.toValue(), x.toValue()
	zs, xs := za.Cmp(half) > 0, xa.Cmp(half) > 0
	if zs != xs {
		if zs {
			return -1
		}
		return 1
	}
	return za.Cmp(xa)
}

// FromString parses a canonical integer in the given base (2..62), reducing
// mod p (§4.1 from_string).
func (z *Element[M]) FromString(s string, base int) (*Element[M], bool) {
	v, ok := new(big.Int).SetString(s, base)
	if !ok {
		return z, false
	}
	*z = fromValue[M](v)
	return z, true
}

// String renders the canonical decimal representation (§4.1 to_string).
func (z Element[M]) String() string {
	return z.toValue().String()
}

// Bytes returns the canonical little-endian byte encoding, padded/truncated
// to n8 bytes (used by §6 wire encodings).
func (z Element[M]) Bytes(n8 int) []byte {
	be := z.toValue().Bytes()
	out := make([]byte, n8)
	for i := 0; i < len(be) && i < n8; i++ {
		out[i] = be[len(be)-1-i]
	}
	return out
}

// SetBytesLE loads a canonical little-endian byte encoding.
func (z *Element[M]) SetBytesLE(b []byte) *Element[M] {
	be := make([]byte, len(b))
	for i, v := range b {
		be[len(b)-1-i] = v
	}
	return z.SetBigInt(new(big.Int).SetBytes(be))
}

// Shl sets z = a * 2^k mod p for 0 <= k < NBits, else 0 (§4.1 shl).
func (z *Element[M]) Shl(a Element[M], k int) *Element[M] {
	var m M
	if k < 0 || k >= m.NBits() {
		z.SetZero()
		return z
	}
	v := new(big.Int).Lsh(a.toValue(), uint(k))
	v.Mod(v, m.P())
	*z = fromValue[M](v)
	return z
}

// Shr sets z = floor(a / 2^k), re-reduced mod p; 0 for k >= NBits (§4.1 shr).
func (z *Element[M]) Shr(a Element[M], k int) *Element[M] {
	var m M
	if k < 0 || k >= m.NBits() {
		z.SetZero()
		return z
	}
	v := new(big.Int).Rsh(a.toValue(), uint(k))
	v.Mod(v, m.P())
	*z = fromValue[M](v)
	return z
}
