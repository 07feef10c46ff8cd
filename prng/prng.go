// Package prng implements the deterministic transcript PRNG used to derive
// the DLEQ challenge scalars for a batch proof: a SHAKE-256 XOF seeded from
// the hash of the accumulated commitment points, with a documented
// clip-then-shift (not reject) sampling bias against the curve order.
//
// Ported from original_source/src/random.rs.
package prng

import (
	"math/big"

	"golang.org/x/crypto/sha3"

	"github.com/wurp/go-privacypass/ec"
)

// PRNG wraps a seeded SHAKE-256 XOF. It is not safe for concurrent use: each
// Read call advances the shared sponge state, and scalar derivation depends
// on reading the stream in order.
type PRNG struct {
	xof sha3.ShakeHash
}

// InitPRNG seeds a PRNG from an arbitrary byte string — in this protocol,
// always the output of hash.HashPoints over the batch's ordered point list
// (G, Y, then each token's M and Z in turn).
func InitPRNG(seed []byte) *PRNG {
	xof := sha3.NewShake256()
	xof.Write(seed)
	return &PRNG{xof: xof}
}

// RandScalarFromPRNG draws ec.ModBytes bytes from the XOF stream, reads them
// as a non-negative big-endian integer and reduces it mod q into [0, q).
// Since 2^256 < 2q, the reduction amounts to at most one subtraction of q.
//
// This is NOT rejection sampling: random.rs never retries a draw that lands
// outside [0, q), it reduces mod q instead. That
// biases the low output range by a negligible factor (q / 2^256) and is
// intentionally reproduced rather than "fixed", since the client and server
// transcripts must derive byte-identical challenges from the same seed.
func (p *PRNG) RandScalarFromPRNG() *big.Int {
	buf := make([]byte, ec.ModBytes)
	if _, err := p.xof.Read(buf); err != nil {
		panic("prng: shake256 read failed: " + err.Error())
	}

	raw := new(big.Int).SetBytes(buf)
	return ec.NormalizeMod(raw, ec.Order())
}

// RandScalarFromRNG draws a fresh, independently-keyed scalar for blinding
// factors and nonces: it reseeds a new SHAKE-256 sponge from r and applies
// the same mod-q reduction as RandScalarFromPRNG. r must come
// from a cryptographically secure source (crypto/rand); this function
// performs no randomness generation of its own, only the derivation.
func RandScalarFromRNG(r []byte) *big.Int {
	return InitPRNG(r).RandScalarFromPRNG()
}
