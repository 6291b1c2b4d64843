// Package groth16 implements the Groth16 prover driver (spec §4.8,
// component C8): the orchestration of the MSM, NTT, and curve components
// into the nine-step proving algorithm. Grounded on the reference
// ingonyama-zk-celer-gnark bn254/prove.go (concurrent MSM dispatch,
// computeH pipeline shape) and the original rapidsnark groth16.cpp
// (exact coset-FFT / H-evaluation sequence, where the spec's abbreviated
// §4.8 step 4 is silent on detail).
package groth16

import (
	"context"
	"fmt"
	"io"

	"github.com/nume-crypto/zk-prover/internal/bn254"
	"github.com/nume-crypto/zk-prover/internal/container/zkey"
	"github.com/nume-crypto/zk-prover/internal/fft"
	"github.com/nume-crypto/zk-prover/internal/fq"
	"github.com/nume-crypto/zk-prover/internal/fq2"
	"github.com/nume-crypto/zk-prover/internal/fr"
	"github.com/nume-crypto/zk-prover/internal/msm"
	"github.com/nume-crypto/zk-prover/internal/parallel"
	"github.com/nume-crypto/zk-prover/internal/proverlog"
	"github.com/nume-crypto/zk-prover/internal/randsrc"
)

// Kind enumerates the error taxonomy of spec §7.
type Kind int

const (
	Internal Kind = iota
	WitnessMismatch
	DomainOverflow
	ArithmeticPrecondition
)

// Error reports a driver-level failure (spec §7). The groth16 driver never
// produces InvalidContainer/UnsupportedCurve itself — those are raised by
// the container parsers before the driver is invoked.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("groth16: %s: %v", e.Msg, e.Err)
	}
	return "groth16: " + e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Proof is the three-point Groth16 proof (spec §3.5), in affine form.
type Proof struct {
	A bn254.G1Affine
	B bn254.G2Affine
	C bn254.G1Affine
}

// Driver is a constructed, ready-to-prove Groth16 instance over a single
// zkey (spec §4.9: construction transitions Unconfigured -> Ready). It
// holds the proving key and a precomputed FFT domain for its lifetime;
// both are treated as shared-immutable across concurrent Prove calls
// (spec §5), each of which allocates its own scratch buffers.
type Driver struct {
	pk     *zkey.ProvingKey
	domain *fft.Domain
	tuning *msm.TuningCache
}

// New constructs a Driver from a parsed proving key, precomputing the FFT
// domain (spec §4.9 Ready transition). It returns a DomainOverflow error if
// domain_size isn't representable (not a power of two, or exceeds the
// field's 2-adicity bound, spec §7).
func New(pk *zkey.ProvingKey) (*Driver, error) {
	domainSize := uint64(pk.Header.DomainSize)
	if domainSize == 0 || domainSize&(domainSize-1) != 0 {
		return nil, &Error{Kind: DomainOverflow, Msg: fmt.Sprintf("domain_size %d is not a power of two", domainSize)}
	}

	var domain *fft.Domain
	if err := catchPanic(func() { domain = fft.NewDomain(domainSize) }); err != nil {
		return nil, &Error{Kind: DomainOverflow, Msg: "domain_size exceeds field 2-adicity", Err: err}
	}

	return &Driver{pk: pk, domain: domain, tuning: msm.NewTuningCache()}, nil
}

// Options bundles the per-call knobs spec §5 grants the caller (thread
// count override, RNG source for the blinding draw).
type Options struct {
	NbTasks      int
	RandomSource io.Reader
}

// Prove runs the nine-step algorithm of spec §4.8 against witness w,
// returning the three proof points. Each call uses its own scratch buffers
// (spec §4.9: "Proving is per-call and non-reentrant with respect to
// internal scratch buffers... this spec REQUIRES independent scratch per
// call").
func (d *Driver) Prove(w []fr.Element, opts Options) (proof *Proof, err error) {
	defer func() {
		if r := recover(); r != nil {
			proof = nil
			err = &Error{Kind: ArithmeticPrecondition, Msg: fmt.Sprintf("panic during prove: %v", r)}
		}
	}()

	log := proverlog.Logger().With().
		Int("nVars", int(d.pk.Header.NVars)).
		Int("domainSize", int(d.pk.Header.DomainSize)).
		Logger()

	// step 1: witness check
	if uint32(len(w)) != d.pk.Header.NVars {
		return nil, &Error{Kind: WitnessMismatch, Msg: fmt.Sprintf("witness has %d entries, want %d", len(w), d.pk.Header.NVars)}
	}
	var one fr.Element
	one.SetOne()
	if !w[0].Equal(one) {
		return nil, &Error{Kind: WitnessMismatch, Msg: "w[0] != 1"}
	}

	nbTasks := opts.NbTasks
	if nbTasks < 1 {
		nbTasks = parallel.NumCPU()
	}

	scalarBytes := make([][]byte, len(w))
	for i := range w {
		scalarBytes[i] = w[i].Bytes(fr.NBytes)
	}

	var piA, piB1, piC bn254.G1Jac
	var piB bn254.G2Jac

	// step 2: four concurrent MSMs
	msmErr := parallel.Run(context.Background(),
		parallel.Task{Name: "msm-A", Fn: func(context.Context) error {
			piA = msm.Run[fq.Element, *fq.Element](d.pk.A, scalarBytes, fr.BitLen, nbTasks, d.tuning)
			return nil
		}},
		parallel.Task{Name: "msm-B1", Fn: func(context.Context) error {
			piB1 = msm.Run[fq.Element, *fq.Element](d.pk.B1, scalarBytes, fr.BitLen, nbTasks, d.tuning)
			return nil
		}},
		parallel.Task{Name: "msm-B2", Fn: func(context.Context) error {
			piB = msm.Run[fq2.Element, *fq2.Element](d.pk.B2, scalarBytes, fr.BitLen, nbTasks, d.tuning)
			return nil
		}},
		parallel.Task{Name: "msm-C", Fn: func(context.Context) error {
			nPublic := int(d.pk.Header.NPublic)
			cScalars := scalarBytes[nPublic+1:]
			piC = msm.Run[fq.Element, *fq.Element](d.pk.C, cScalars, fr.BitLen, nbTasks, d.tuning)
			return nil
		}},
	)
	if msmErr != nil {
		return nil, &Error{Kind: ArithmeticPrecondition, Msg: "panic in concurrent MSM", Err: msmErr}
	}

	// step 3: QAP evaluation vectors
	domainSize := int(d.pk.Header.DomainSize)
	a := make([]fr.Element, domainSize)
	b := make([]fr.Element, domainSize)
	for _, coef := range d.pk.Coefs {
		target := a
		if coef.M != 0 {
			target = b
		}
		var aux fr.Element
		aux.Mul(w[coef.S], coef.Coef)
		target[coef.C].Add(target[coef.C], aux)
	}
	c := make([]fr.Element, domainSize)
	_ = parallel.Chunks(domainSize, nbTasks, func(start, end int) error {
		for i := start; i < end; i++ {
			c[i].Mul(a[i], b[i])
		}
		return nil
	})

	// step 4: coset evaluation of H(x)*Z(x)
	cosetEval(d.domain, a, nbTasks)
	cosetEval(d.domain, b, nbTasks)
	cosetEval(d.domain, c, nbTasks)

	_ = parallel.Chunks(domainSize, nbTasks, func(start, end int) error {
		for i := start; i < end; i++ {
			a[i].Mul(a[i], b[i])
			a[i].Sub(a[i], c[i])
		}
		return nil
	})

	// step 5: H MSM
	hScalarBytes := make([][]byte, domainSize)
	_ = parallel.Chunks(domainSize, nbTasks, func(start, end int) error {
		for i := start; i < end; i++ {
			hScalarBytes[i] = a[i].Bytes(fr.NBytes)
		}
		return nil
	})
	piH := msm.Run[fq.Element, *fq.Element](d.pk.H, hScalarBytes, fr.BitLen, nbTasks, d.tuning)

	// step 6 already enforced by parallel.Run's join above.

	// step 7: draw r, s
	rr, err := randsrc.DrawScalar(opts.RandomSource)
	if err != nil {
		return nil, &Error{Kind: Internal, Msg: "draw blinding scalar r", Err: err}
	}
	ss, err := randsrc.DrawScalar(opts.RandomSource)
	if err != nil {
		return nil, &Error{Kind: Internal, Msg: "draw blinding scalar s", Err: err}
	}
	rBytes := rr.Bytes(fr.NBytes)
	sBytes := ss.Bytes(fr.NBytes)

	// step 8: blind and finalize
	rDeltaA1 := bn254.ScalarMulG1(d.pk.Header.Delta1, rBytes)
	piA.Add(piA, rDeltaA1)
	var alpha1Jac bn254.G1Jac
	alpha1Jac.FromAffine(d.pk.Header.Alpha1)
	piA.Add(piA, alpha1Jac)

	sDeltaB2 := bn254.ScalarMulG2(d.pk.Header.Delta2, sBytes)
	piB.Add(piB, sDeltaB2)
	var beta2Jac bn254.G2Jac
	beta2Jac.FromAffine(d.pk.Header.Beta2)
	piB.Add(piB, beta2Jac)

	sDeltaB1 := bn254.ScalarMulG1(d.pk.Header.Delta1, sBytes)
	piB1.Add(piB1, sDeltaB1)
	var beta1Jac bn254.G1Jac
	beta1Jac.FromAffine(d.pk.Header.Beta1)
	piB1.Add(piB1, beta1Jac)

	// pi_c = pi_c_partial + pi_h + s*pi_a + r*pi_b1 - (r*s)*delta1
	piAAffine := piA.ToAffine()
	sPiA := bn254.ScalarMulG1(piAAffine, sBytes)
	piB1Affine := piB1.ToAffine()
	rPiB1 := bn254.ScalarMulG1(piB1Affine, rBytes)

	var rs fr.Element
	rs.Mul(rr, ss)
	rsBytes := rs.Bytes(fr.NBytes)
	rsDelta1 := bn254.ScalarMulG1(d.pk.Header.Delta1, rsBytes)
	var negRsDelta1 bn254.G1Jac
	negRsDelta1.Neg(rsDelta1)

	piC.Add(piC, piH)
	piC.Add(piC, sPiA)
	piC.Add(piC, rPiB1)
	piC.Add(piC, negRsDelta1)

	log.Debug().Msg("prove complete")

	return &Proof{
		A: piAAffine,
		B: piB.ToAffine(),
		C: piC.ToAffine(),
	}, nil
}

// cosetEval implements the ifft -> coset shift -> fft pass of spec §4.8
// step 4, in place.
func cosetEval(d *fft.Domain, a []fr.Element, nbTasks int) {
	d.FFTInverse(a)
	shift := d.CosetShift()
	_ = parallel.Chunks(len(a), nbTasks, func(start, end int) error {
		for i := start; i < end; i++ {
			a[i].Mul(a[i], shift[i])
		}
		return nil
	})
	d.FFT(a)
}

func catchPanic(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	fn()
	return nil
}
