// Package bn254 instantiates the generic internal/curve group law over
// BN254's 𝔾₁ (𝔽_q) and 𝔾₂ (𝔽_{q²}) curves, and provides the wire
// (de)serialization §6 requires: affine points as 2·n8q (𝔾₁) or 4·n8q (𝔾₂)
// little-endian canonical-field-element byte strings.
package bn254

import (
	"fmt"
	"math/big"

	"github.com/nume-crypto/zk-prover/internal/curve"
	"github.com/nume-crypto/zk-prover/internal/fq"
	"github.com/nume-crypto/zk-prover/internal/fq2"
)

// G1Jac / G1Affine are 𝔾₁ points: y² = x³ + 3 over 𝔽_q, generator (1, 2).
type G1Jac = curve.Point[fq.Element, *fq.Element]
type G1Affine = curve.Affine[fq.Element, *fq.Element]

// G2Jac / G2Affine are 𝔾₂ points over the twisted curve in 𝔽_{q²}.
type G2Jac = curve.Point[fq2.Element, *fq2.Element]
type G2Affine = curve.Affine[fq2.Element, *fq2.Element]

// G1Generator returns BN254's 𝔾₁ generator (1, 2).
func G1Generator() G1Affine {
	return G1Affine{X: fq.GeneratorX(), Y: fq.GeneratorY()}
}

var (
	g2GenX0, _ = new(big.Int).SetString("10857046999023057135944570762232829481370756359578518086990519993285655852781", 10)
	g2GenX1, _ = new(big.Int).SetString("11559732032986387107991004021392285783925812861821192530917403151452391805634", 10)
	g2GenY0, _ = new(big.Int).SetString("8495653923123431417604973247489272438418190587263600148770280649306958101930", 10)
	g2GenY1, _ = new(big.Int).SetString("4082367875863433681332203403145435568316851327593401208105741076214120093531", 10)
)

// G2Generator returns BN254's standard 𝔾₂ generator.
func G2Generator() G2Affine {
	var p G2Affine
	p.X.A0.SetBigInt(g2GenX0)
	p.X.A1.SetBigInt(g2GenX1)
	p.Y.A0.SetBigInt(g2GenY0)
	p.Y.A1.SetBigInt(g2GenY1)
	return p
}

// ScalarMulG1 computes k*p for an affine 𝔾₁ point, k given as little-endian
// canonical scalar bytes (§4.4).
func ScalarMulG1(p G1Affine, kLE []byte) G1Jac {
	return curve.ScalarMulAffine[fq.Element, *fq.Element](p, kLE)
}

// ScalarMulG2 computes k*p for an affine 𝔾₂ point.
func ScalarMulG2(p G2Affine, kLE []byte) G2Jac {
	return curve.ScalarMulAffine[fq2.Element, *fq2.Element](p, kLE)
}

// DecodeG1Affine parses a 2·n8q-byte little-endian (x, y) pair (§6). The
// all-zero encoding denotes the identity (§3.2).
func DecodeG1Affine(b []byte, n8q int) (G1Affine, error) {
	if len(b) != 2*n8q {
		return G1Affine{}, fmt.Errorf("bn254: G1 affine point: want %d bytes, got %d", 2*n8q, len(b))
	}
	var p G1Affine
	p.X.SetBytesLE(b[:n8q])
	p.Y.SetBytesLE(b[n8q:])
	return p, nil
}

// DecodeG2Affine parses a 4·n8q-byte little-endian (x0,x1,y0,y1) quadruple,
// laid out per gnark-crypto/rapidsnark's convention: x = x0 + x1·u packed as
// two n8q chunks, then y likewise.
func DecodeG2Affine(b []byte, n8q int) (G2Affine, error) {
	if len(b) != 4*n8q {
		return G2Affine{}, fmt.Errorf("bn254: G2 affine point: want %d bytes, got %d", 4*n8q, len(b))
	}
	var p G2Affine
	p.X.A0.SetBytesLE(b[0*n8q : 1*n8q])
	p.X.A1.SetBytesLE(b[1*n8q : 2*n8q])
	p.Y.A0.SetBytesLE(b[2*n8q : 3*n8q])
	p.Y.A1.SetBytesLE(b[3*n8q : 4*n8q])
	return p, nil
}
