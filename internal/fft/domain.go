// Package fft implements the radix-2 NTT (spec §4.6, component C6) used to
// evaluate and interpolate the QAP polynomials A, B, C. Grounded on the
// teacher's bw6-761/plonk Domain API shape (NewDomain, Cardinality,
// Generator, bit-reversal precomputation) generalized to BN254's scalar
// field.
package fft

import (
	"fmt"
	"math/big"
	"math/bits"

	"github.com/nume-crypto/zk-prover/internal/fr"
	"github.com/nume-crypto/zk-prover/internal/parallel"
)

// Domain precomputes the roots of unity needed to FFT/iFFT a size-Cardinality
// vector, plus a size-Cardinality coset shift table (powers of a primitive
// 2·Cardinality-th root) used for QAP coset
// evaluation in the C8 driver (spec §4.8 step 4: "evaluate the polynomial on
// the coset g·H where g is a primitive 2·domain_size-th root of unity").
type Domain struct {
	Cardinality    uint64
	Generator      fr.Element // primitive Cardinality-th root of unity
	GeneratorInv   fr.Element
	CardinalityInv fr.Element
	roots          []fr.Element // roots[i] = Generator^i, i in [0, Cardinality)
	powTwoInv      []fr.Element // powTwoInv[k] = 2^-k mod r
	logMaxSize     int
	cosetShift     []fr.Element // cosetShift[i] = g^i, g a primitive 2*Cardinality-th root
}

// NewDomain builds a Domain for a power-of-two size (spec §4.6: "Precomputes
// s = ν₂(r−1) roots of unity on construction; panics if the requested
// max_domain_size exceeds 2^s"). size MUST already be a power of two (the
// zkey header's domain_size, per §3.3).
func NewDomain(size uint64) *Domain {
	cardinality := nextPowerOfTwo(size)
	logSize := bits.TrailingZeros64(cardinality)

	// one extra bit of 2-adicity is needed for the coset-shift generator
	// (order 2*Cardinality), spec §4.8 step 4.
	if logSize+1 > fr.S {
		panic(fmt.Sprintf("fft: domain size 2^%d exceeds field's 2-adicity 2^%d", logSize, fr.S))
	}

	d := &Domain{
		Cardinality: cardinality,
		logMaxSize:  logSize,
	}

	omegaMax := fr.RootOfUnity()
	var omega fr.Element
	omega.Exp(omegaMax, expTwoBig(fr.S-logSize))
	d.Generator = omega
	d.GeneratorInv.Inverse(omega)

	var card fr.Element
	card.SetUint64(cardinality)
	d.CardinalityInv.Inverse(card)

	d.roots = make([]fr.Element, cardinality)
	d.roots[0].SetOne()
	for i := uint64(1); i < cardinality; i++ {
		d.roots[i].Mul(d.roots[i-1], omega)
	}

	d.powTwoInv = make([]fr.Element, logSize+1)
	d.powTwoInv[0].SetOne()
	var half fr.Element
	half.SetUint64(2)
	half.Inverse(half)
	for k := 1; k <= logSize; k++ {
		d.powTwoInv[k].Mul(d.powTwoInv[k-1], half)
	}

	var cosetGen fr.Element
	cosetGen.Exp(omegaMax, expTwoBig(fr.S-logSize-1))
	d.cosetShift = make([]fr.Element, cardinality)
	d.cosetShift[0].SetOne()
	for i := uint64(1); i < cardinality; i++ {
		d.cosetShift[i].Mul(d.cosetShift[i-1], cosetGen)
	}

	return d
}

// CosetShift returns g^i for i in [0, Cardinality), g a primitive
// 2*Cardinality-th root of unity (spec §4.8 step 4's coset generator).
func (d *Domain) CosetShift() []fr.Element {
	return d.cosetShift
}

func nextPowerOfTwo(n uint64) uint64 {
	if n <= 1 {
		return 1
	}
	return 1 << uint(bits.Len64(n-1))
}

// expTwoBig returns the big.Int exponent 2^k.
func expTwoBig(k int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(k))
}

// bitReverse permutes a in place so a[i] and a[reverse(i, log2 n)] swap
// (spec §4.6: "First bit-reverse a in place (parallel)").
func bitReverse(a []fr.Element, logN int) {
	n := len(a)
	_ = parallel.Chunks(n, parallel.NumCPU(), func(start, end int) error {
		for i := start; i < end; i++ {
			j := bits.Reverse64(uint64(i)) >> (64 - logN)
			if j > uint64(i) {
				a[i], a[j] = a[j], a[i]
			}
		}
		return nil
	})
}

// FFT evaluates the polynomial with coefficients a (len(a) a power of two)
// at the domain's roots of unity, in place (spec §4.6 fft: iterative
// Cooley-Tukey with per-stage butterflies).
func (d *Domain) FFT(a []fr.Element) {
	d.fft(a, d.roots)
}

// FFTInverse interpolates evaluations a back to coefficients, in place
// (spec §4.6 ifft: fft, then reverse-pair swap, then scale by 2^-log2(n)).
func (d *Domain) FFTInverse(a []fr.Element) {
	d.fft(a, d.roots)

	n := len(a)
	for i := 1; i < n/2; i++ {
		a[i], a[n-i] = a[n-i], a[i]
	}

	logN := bits.TrailingZeros(uint(n))
	scale := d.powTwoInv[logN]
	_ = parallel.Chunks(n, parallel.NumCPU(), func(start, end int) error {
		for i := start; i < end; i++ {
			a[i].Mul(a[i], scale)
		}
		return nil
	})
}

// fft runs the in-place iterative Cooley-Tukey transform using the supplied
// root table (both FFT and FFTInverse pass the forward roots), per §4.6's butterfly
// recurrence: twiddle ω^j = roots[j * 2^(sMax - s)].
func (d *Domain) fft(a []fr.Element, roots []fr.Element) {
	n := len(a)
	if n == 0 || n&(n-1) != 0 {
		panic("fft: length must be a power of two")
	}
	logN := bits.TrailingZeros(uint(n))
	if logN > d.logMaxSize {
		panic(fmt.Sprintf("fft: transform size 2^%d exceeds domain size 2^%d", logN, d.logMaxSize))
	}

	bitReverse(a, logN)

	sMax := d.logMaxSize
	for s := 1; s <= logN; s++ {
		m := 1 << uint(s)
		half := m / 2
		shift := sMax - s

		_ = parallel.Chunks(n/m, parallel.NumCPU(), func(start, end int) error {
			for block := start; block < end; block++ {
				base := block * m
				for j := 0; j < half; j++ {
					var t fr.Element
					t.Mul(roots[j<<uint(shift)], a[base+j+half])
					var aj fr.Element
					aj.Set(a[base+j])
					a[base+j+half].Sub(aj, t)
					a[base+j].Add(aj, t)
				}
			}
			return nil
		})
	}
}
