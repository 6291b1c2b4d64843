// Package version expresses the zkey/wtns container format compatibility
// ranges the spec's §6 "accept 1"/"accept 2" literals encode, as
// blang/semver ranges, so a future container revision only needs a range
// edit rather than a scattered literal-equality check.
package version

import "github.com/blang/semver/v4"

// ZkeySupported is the range of zkey format versions this prover accepts
// (spec §6: "u32 LE version (accept 1)").
var ZkeySupported = mustRange(">=1.0.0 <2.0.0")

// WtnsSupported is the range of wtns format versions this prover accepts
// (spec §6: "u32 version (accept 2)").
var WtnsSupported = mustRange(">=2.0.0 <3.0.0")

func mustRange(s string) semver.Range {
	r, err := semver.ParseRange(s)
	if err != nil {
		panic("version: bad range " + s + ": " + err.Error())
	}
	return r
}

// FromUint32 turns a container's raw u32 version field into a semver.Version
// with that value as the major component, for range membership checks.
func FromUint32(v uint32) semver.Version {
	return semver.Version{Major: uint64(v)}
}
