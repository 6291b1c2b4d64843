// Package groth16 is the public entry point of the BN254 Groth16 prover
// (spec §6): parse a zkey, construct a Prover, parse a witness, and produce
// a proof. The curve is fixed at BN254 — any other field modulus in either
// container is rejected at construction or at Prove time (spec §7
// UnsupportedCurve).
package groth16

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/nume-crypto/zk-prover/internal/backend/bn254/groth16"
	"github.com/nume-crypto/zk-prover/internal/container/wtns"
	"github.com/nume-crypto/zk-prover/internal/container/zkey"
	"github.com/nume-crypto/zk-prover/internal/diag"
	"github.com/nume-crypto/zk-prover/internal/fr"
	"github.com/nume-crypto/zk-prover/internal/proverlog"
)

// ErrorKind enumerates the error taxonomy of spec §7.
type ErrorKind int

const (
	InvalidContainer ErrorKind = iota
	UnsupportedCurve
	WitnessMismatch
	DomainOverflow
	ArithmeticPrecondition
	Internal
)

func (k ErrorKind) String() string {
	switch k {
	case InvalidContainer:
		return "InvalidContainer"
	case UnsupportedCurve:
		return "UnsupportedCurve"
	case WitnessMismatch:
		return "WitnessMismatch"
	case DomainOverflow:
		return "DomainOverflow"
	case ArithmeticPrecondition:
		return "ArithmeticPrecondition"
	default:
		return "Internal"
	}
}

// ProverError is the public error type surfaced at the boundary of every
// exported function in this package (spec §7: "all errors are surfaced at
// the public boundary of prove").
type ProverError struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *ProverError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("groth16: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("groth16: %s: %s", e.Kind, e.Msg)
}

func (e *ProverError) Unwrap() error { return e.Err }

// ProverConfig bundles the per-call options spec §3.6/§5 grants the caller.
type ProverConfig struct {
	NbTasks      int
	RandomSource io.Reader
	Profile      bool
}

// ProverOption configures a Prove call (spec §3.6).
type ProverOption func(*ProverConfig) error

// WithNbTasks overrides the worker count used by MSM/FFT (default:
// runtime.NumCPU(), applied inside the internal driver).
func WithNbTasks(n int) ProverOption {
	return func(c *ProverConfig) error {
		if n < 1 {
			return &ProverError{Kind: Internal, Msg: fmt.Sprintf("WithNbTasks: n must be >= 1, got %d", n)}
		}
		c.NbTasks = n
		return nil
	}
}

// WithRandomSource overrides the CSPRNG used to draw the Groth16 blinding
// scalars (r, s). Test-only: a deterministic source lets P2 (determinism
// modulo randomness) be checked bit-for-bit.
func WithRandomSource(r io.Reader) ProverOption {
	return func(c *ProverConfig) error {
		c.RandomSource = r
		return nil
	}
}

// WithProfiling toggles a CPU profile captured around the Prove call and
// logged at Debug on completion (internal/diag).
func WithProfiling(enabled bool) ProverOption {
	return func(c *ProverConfig) error {
		c.Profile = enabled
		return nil
	}
}

func newConfig(opts []ProverOption) (ProverConfig, error) {
	var c ProverConfig
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return c, err
		}
	}
	return c, nil
}

// state is the §4.9 prover lifecycle: Unconfigured -> Ready -> Proving, with
// a terminal Error state reached by a poisoning panic. Ready is the only
// state a caller observes (NewProver either returns a Ready Prover or an
// error); Proving is a property of a single in-flight Prove call, not a
// field, since concurrent Prove calls on one Prover are supported (§4.9:
// independent scratch per call). stateMu guards both the Ready->Poisoned
// transition and every read of state, since concurrent Prove calls read and
// (on an ArithmeticPrecondition failure) write it without any other
// synchronization.
type state int

const (
	stateReady state = iota
	statePoisoned
)

// Prover holds a parsed BN254 Groth16 proving key, ready to produce proofs
// for any witness matching its circuit (spec §6).
type Prover struct {
	driver  *groth16.Driver
	nVars   uint32
	nPublic uint32
	stateMu sync.Mutex
	state   state
}

// NewProver parses zkeyBytes (spec §6 zkey v1 layout) and constructs a
// Prover in the Ready state, or returns a ProverError on any container or
// curve defect (spec §4.9 construction-time checks).
func NewProver(zkeyBytes []byte) (*Prover, error) {
	pk, err := zkey.Parse(zkeyBytes)
	if err != nil {
		return nil, wrapParseError(err)
	}

	drv, err := groth16.New(pk)
	if err != nil {
		return nil, wrapDriverError(err)
	}

	return &Prover{
		driver:  drv,
		nVars:   pk.Header.NVars,
		nPublic: pk.Header.NPublic,
		state:   stateReady,
	}, nil
}

// Prove parses wtnsBytes (spec §6 wtns v2 layout), runs the §4.8 algorithm,
// and returns the Proof/Public JSON encodings. A prior panic (poisoning the
// Prover per §4.9) causes every subsequent call to fail immediately with
// Internal.
func (p *Prover) Prove(wtnsBytes []byte, opts ...ProverOption) (proofJSON, publicJSON []byte, err error) {
	p.stateMu.Lock()
	poisoned := p.state == statePoisoned
	p.stateMu.Unlock()
	if poisoned {
		return nil, nil, &ProverError{Kind: Internal, Msg: "prover instance is poisoned by a prior failure"}
	}

	cfg, err := newConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	w, err := wtns.Parse(wtnsBytes)
	if err != nil {
		return nil, nil, wrapParseError(err)
	}
	if w.NVars != p.nVars {
		return nil, nil, &ProverError{Kind: WitnessMismatch, Msg: fmt.Sprintf("wtns.n_vars=%d != zkey.n_vars=%d", w.NVars, p.nVars)}
	}

	sess, err := diag.Start(cfg.Profile)
	if err != nil {
		return nil, nil, &ProverError{Kind: Internal, Msg: "start profiling session", Err: err}
	}

	proof, proveErr := p.driver.Prove(w.Values, groth16.Options{
		NbTasks:      cfg.NbTasks,
		RandomSource: cfg.RandomSource,
	})

	if profile, perr := sess.Stop(); perr == nil && profile != nil {
		proverlog.Logger().Debug().Int("samples", len(profile.Sample)).Msg("prove profiling complete")
	}

	if proveErr != nil {
		if derr, ok := proveErr.(*groth16.Error); ok && derr.Kind == groth16.ArithmeticPrecondition {
			p.stateMu.Lock()
			p.state = statePoisoned
			p.stateMu.Unlock()
		}
		return nil, nil, wrapDriverError(proveErr)
	}

	proofJSON, err = marshalProof(proof)
	if err != nil {
		return nil, nil, &ProverError{Kind: Internal, Msg: "marshal proof JSON", Err: err}
	}
	publicJSON, err = marshalPublic(w.Values[1 : p.nPublic+1])
	if err != nil {
		return nil, nil, &ProverError{Kind: Internal, Msg: "marshal public JSON", Err: err}
	}

	return proofJSON, publicJSON, nil
}

type proofJSONDoc struct {
	PiA      [3]string    `json:"pi_a"`
	PiB      [3][2]string `json:"pi_b"`
	PiC      [3]string    `json:"pi_c"`
	Protocol string       `json:"protocol"`
}

func marshalProof(proof *groth16.Proof) ([]byte, error) {
	doc := proofJSONDoc{
		PiA: [3]string{
			proof.A.X.String(),
			proof.A.Y.String(),
			"1",
		},
		PiB: [3][2]string{
			{proof.B.X.A0.String(), proof.B.X.A1.String()},
			{proof.B.Y.A0.String(), proof.B.Y.A1.String()},
			{"1", "0"},
		},
		PiC: [3]string{
			proof.C.X.String(),
			proof.C.Y.String(),
			"1",
		},
		Protocol: "groth16",
	}
	return json.Marshal(&doc)
}

func marshalPublic(values []fr.Element) ([]byte, error) {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = v.String()
	}
	return json.Marshal(out)
}

func wrapParseError(err error) *ProverError {
	switch e := err.(type) {
	case *zkey.ParseError:
		if isCurveError(e.Reason) {
			return &ProverError{Kind: UnsupportedCurve, Msg: e.Reason, Err: err}
		}
		return &ProverError{Kind: InvalidContainer, Msg: e.Reason, Err: err}
	case *wtns.ParseError:
		if isCurveError(e.Reason) {
			return &ProverError{Kind: UnsupportedCurve, Msg: e.Reason, Err: err}
		}
		return &ProverError{Kind: InvalidContainer, Msg: e.Reason, Err: err}
	default:
		return &ProverError{Kind: InvalidContainer, Msg: "container parse failed", Err: err}
	}
}

// isCurveError distinguishes §7's UnsupportedCurve ("zkey.r != BN254_r or
// wtns.prime != BN254_r") from the broader InvalidContainer bucket; both are
// raised by the container parsers as the same *ParseError type, so the
// public boundary reclassifies by message.
func isCurveError(reason string) bool {
	return strings.Contains(reason, "modulus does not match")
}

func wrapDriverError(err error) *ProverError {
	derr, ok := err.(*groth16.Error)
	if !ok {
		return &ProverError{Kind: Internal, Msg: "prover driver failed", Err: err}
	}
	var kind ErrorKind
	switch derr.Kind {
	case groth16.WitnessMismatch:
		kind = WitnessMismatch
	case groth16.DomainOverflow:
		kind = DomainOverflow
	case groth16.ArithmeticPrecondition:
		kind = ArithmeticPrecondition
	default:
		kind = Internal
	}
	return &ProverError{Kind: kind, Msg: derr.Msg, Err: derr.Err}
}
