// Package randsrc draws the Groth16 blinding scalars r, s (spec §4.7).
package randsrc

import (
	"crypto/rand"
	"io"

	"github.com/nume-crypto/zk-prover/internal/fr"
)

// DrawScalar draws a random scalar < r from src (the OS CSPRNG
// when src is nil). Bytes are placed into the low n8r-1 bytes of the
// little-endian limb array with the high byte cleared, guaranteeing the
// drawn value is < 2^(n8r*8-8) < r with no rejection loop needed (spec
// §4.7).
func DrawScalar(src io.Reader) (fr.Element, error) {
	if src == nil {
		src = rand.Reader
	}

	buf := make([]byte, fr.NBytes)
	if _, err := io.ReadFull(src, buf[:fr.NBytes-1]); err != nil {
		return fr.Element{}, err
	}
	buf[fr.NBytes-1] = 0

	var e fr.Element
	e.SetBytesLE(buf)
	return e, nil
}
