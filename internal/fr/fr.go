// Package fr implements BN254's scalar field 𝔽ᵣ (Montgomery form) on top of
// the generic internal/field engine.
package fr

import (
	"math/big"

	"github.com/nume-crypto/zk-prover/internal/field"
)

// modulus is the zero-sized BN254 scalar-field marker (spec §9: zero-sized
// type markers carrying associated constants in place of a global singleton
// RawFr instance).
type modulus struct{}

var (
	p      = mustBig("21888242871839275222246405745257275088548364400416034343698204186575808495617")
	r2     = mustBig("0x216d0b17f4e44a58c49833d53bb808553fe3ab1e35c59e31bb8e645ae216da7")
	rInv   = computeRInv(p)
	order  = 254
	pLimbs = field.BigToRaw(p)
	np0    = computeNP0(p)
)

func mustBig(s string) *big.Int {
	var v *big.Int
	var ok bool
	if len(s) > 2 && s[0:2] == "0x" {
		v, ok = new(big.Int).SetString(s[2:], 16)
	} else {
		v, ok = new(big.Int).SetString(s, 10)
	}
	if !ok {
		panic("fr: bad constant " + s)
	}
	return v
}

func computeRInv(p *big.Int) *big.Int {
	bigR := new(big.Int).Lsh(big.NewInt(1), 256)
	return new(big.Int).ModInverse(bigR, p)
}

// computeNP0 derives -p^-1 mod 2^64, the CIOS reduction constant
// fr_raw_generic.cpp hardcodes as the static Fr_np.
func computeNP0(p *big.Int) uint64 {
	word := new(big.Int).Lsh(big.NewInt(1), 64)
	inv := new(big.Int).ModInverse(p, word)
	return new(big.Int).Sub(word, inv).Uint64()
}

func (modulus) P() *big.Int      { return p }
func (modulus) R2() *big.Int     { return r2 }
func (modulus) RInv() *big.Int   { return rInv }
func (modulus) NBits() int       { return order }
func (modulus) PLimbs() field.Raw { return pLimbs }
func (modulus) NP0() uint64      { return np0 }

// Element is a BN254 scalar-field element in Montgomery form.
type Element = field.Element[modulus]

// Modulus returns a copy of the BN254 scalar-field modulus r.
func Modulus() *big.Int { return new(big.Int).Set(p) }

// BitLen is the bit length of r (254).
const BitLen = 254

// NBytes is the number of bytes (n8r) of the canonical encoding.
const NBytes = 32

// S is v2(r-1), the 2-adicity of the scalar field's multiplicative group
// (28 for BN254, the FFT root-of-unity bound used by §7 DomainOverflow).
const S = 28

// rootOfUnity is a primitive 2^S-th root of unity in 𝔽ᵣ.
var rootOfUnity = mustBig("19103219067921713944291392827692070036145651957329286315305642004821462161904")

// RootOfUnity returns the primitive 2^S-th root of unity used to build the
// FFT domain's root table.
func RootOfUnity() Element {
	var e Element
	e.SetBigInt(rootOfUnity)
	return e
}
