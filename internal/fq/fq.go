// Package fq implements BN254's base field 𝔽_q (Montgomery form), the field
// 𝔾₁ coordinates live in, on top of the generic internal/field engine.
package fq

import (
	"math/big"

	"github.com/nume-crypto/zk-prover/internal/field"
)

type modulus struct{}

var (
	p      = mustBig("21888242871839275222246405745257275088696311157297823662689037894645226208583")
	r2     = mustBig("0x6d89f71cab8351f47ab1eff0a417ff6b5e71911d44501fbf32cfc5b538afa89")
	rInv   = computeRInv(p)
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
		panic("fq: bad constant " + s)
	}
	return v
}

func computeRInv(p *big.Int) *big.Int {
	bigR := new(big.Int).Lsh(big.NewInt(1), 256)
	return new(big.Int).ModInverse(bigR, p)
}

// computeNP0 derives -p^-1 mod 2^64, the CIOS reduction constant
// fq_generic.cpp hardcodes as its own static Fq_np.
func computeNP0(p *big.Int) uint64 {
	word := new(big.Int).Lsh(big.NewInt(1), 64)
	inv := new(big.Int).ModInverse(p, word)
	return new(big.Int).Sub(word, inv).Uint64()
}

func (modulus) P() *big.Int      { return p }
func (modulus) R2() *big.Int     { return r2 }
func (modulus) RInv() *big.Int   { return rInv }
func (modulus) NBits() int       { return 254 }
func (modulus) PLimbs() field.Raw { return pLimbs }
func (modulus) NP0() uint64      { return np0 }

// Element is a BN254 base-field element in Montgomery form.
type Element = field.Element[modulus]

// Modulus returns a copy of the BN254 base-field modulus q.
func Modulus() *big.Int { return new(big.Int).Set(p) }

// NBytes is the number of bytes (n8q) of the canonical encoding.
const NBytes = 32

// CurveB returns the 𝔾₁ curve coefficient b = 3 in y² = x³ + b.
func CurveB() Element {
	var e Element
	e.SetUint64(3)
	return e
}

// GeneratorX, GeneratorY return the 𝔾₁ generator (1, 2).
func GeneratorX() Element { var e Element; e.SetUint64(1); return e }
func GeneratorY() Element { var e Element; e.SetUint64(2); return e }
