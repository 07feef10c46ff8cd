// Package token implements the client-side token lifecycle: generating a
// fresh nonce and blinding it onto the curve, and later unblinding the
// issuer's signature once a batch proof has verified.
//
// Ported from original_source/src/client.rs's generate_and_blind_token and
// unblind_signature.
package token

import (
	"crypto/rand"
	"math/big"

	"github.com/wurp/go-privacypass/ec"
	"github.com/wurp/go-privacypass/hash"
	"github.com/wurp/go-privacypass/prng"
)

// nonceLen is the width of the random token preimage t, matching
// random.rs's new_rand_vec(1024, rng) call in generate_and_blind_token.
const nonceLen = 1024

// Token holds one ticket's full client-side state across the issue/redeem
// round trip: the nonce t, the blinding factor r, and the blinded point M
// sent to the issuer. N is populated once the batch proof verifies and the
// signature has been unblinded.
type Token struct {
	T []byte
	R *big.Int
	M *ec.Point
	N *ec.Point
}

// GenerateAndBlindToken draws a fresh random nonce t, maps it to a curve
// point T = H1(t), and blinds it by a freshly sampled scalar r to produce
// M = r*T. The caller sends M to the issuer and keeps t and r secret until
// redemption.
func GenerateAndBlindToken() (*Token, error) {
	t := make([]byte, nonceLen)
	if _, err := rand.Read(t); err != nil {
		return nil, err
	}

	tCurve, err := hash.HashToCurve(t)
	if err != nil {
		return nil, err
	}

	seed := make([]byte, 256)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	r := prng.RandScalarFromRNG(seed)

	m := tCurve.ScalarMult(r)

	return &Token{T: t, R: r, M: m}, nil
}

// Unblind removes the token's blinding factor from the issuer's signed
// point Z = x*M, recovering N = x*T = r^-1 * Z.
func Unblind(z *ec.Point, r *big.Int) *ec.Point {
	rInv := ec.ScalarInverse(r, ec.Order())
	return z.ScalarMult(rInv)
}
