// Package threshold adapts Shamir secret sharing, Lagrange interpolation,
// and Pedersen verifiable secret sharing onto the P-256 group this module
// otherwise runs on, for deployments that want to split an issuer's
// signing key across several custodians instead of holding it in one
// place.
//
// Adapted from the toprf/dkg packages bundled with this module's starting
// point, which implement the same constructions over ristretto255 scalars
// and elements. Every Scalar/Element operation below is the same algorithm
// rewritten against ec.ScalarAddMod/ScalarMulMod/ScalarSubMod and
// *ec.Point, since ristretto255's canonical encoding cannot represent a
// short-Weierstrass point (see DESIGN.md).
//
// Custodians can also jointly sign a blinded token without ever
// reconstructing x in one place: each calls Evaluate on its own share and
// the partial results are summed with Combine, reproducing the same Z =
// x*M a single signer would compute. What this package does not provide
// is a threshold-DLEQ proof that the combined signature is correct without
// trusting the custodians — that construction is a substantial undertaking
// of its own and is flagged as an open question rather than attempted
// half-built (see DESIGN.md and SPEC_FULL.md §10).
package threshold

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/wurp/go-privacypass/ec"
)

// ErrInvalidThreshold is returned when CreateShares or Start is asked for
// a threshold outside [1, n] (Start additionally requires threshold > 1).
var ErrInvalidThreshold = errors.New("threshold: invalid threshold parameters")

// ErrNoShares is returned when an interpolation or reconstruction is
// attempted with an empty share list.
var ErrNoShares = errors.New("threshold: no shares provided")

// ErrCommitmentMismatch is returned by VerifyCommitment when a received
// share does not match the sender's published polynomial commitments.
var ErrCommitmentMismatch = errors.New("threshold: commitment verification failed")

// Share is one participant's point on the secret-sharing polynomial.
// Index is 1-based, matching every participant-indexing convention in this
// package.
type Share struct {
	Index uint8
	Value *big.Int
}

func scalarFromIndex(i uint8) *big.Int {
	return big.NewInt(int64(i))
}

// lcoeff computes the Lagrange basis coefficient l_index(x) = prod_{j in
// peers, j != index} (x - j)/(index - j), reduced mod the curve order.
func lcoeff(index, x uint8, peers []uint8) *big.Int {
	q := ec.Order()
	xs := scalarFromIndex(x)
	is := scalarFromIndex(index)

	dividend := big.NewInt(1)
	divisor := big.NewInt(1)

	for _, peer := range peers {
		if peer == index {
			continue
		}
		ps := scalarFromIndex(peer)

		dividend = ec.ScalarMulMod(dividend, ec.ScalarSubMod(xs, ps, q), q)
		divisor = ec.ScalarMulMod(divisor, ec.ScalarSubMod(is, ps, q), q)
	}

	return ec.ScalarMulMod(dividend, ec.ScalarInverse(divisor, q), q)
}

// coeff is lcoeff evaluated at x=0, the coefficient used to reconstruct
// the secret term of the polynomial.
func coeff(index uint8, peers []uint8) *big.Int {
	return lcoeff(index, 0, peers)
}

// InterpolateScalar reconstructs f(x) via Lagrange interpolation given a
// set of (index, f(index)) pairs.
func InterpolateScalar(x uint8, shares []Share) (*big.Int, error) {
	if len(shares) == 0 {
		return nil, ErrNoShares
	}

	q := ec.Order()
	indexes := make([]uint8, len(shares))
	for i, s := range shares {
		indexes[i] = s.Index
	}

	result := big.NewInt(0)
	for _, s := range shares {
		l := lcoeff(s.Index, x, indexes)
		term := ec.ScalarMulMod(l, s.Value, q)
		result = ec.ScalarAddMod(result, term, q)
	}
	return result, nil
}

func randomScalar() (*big.Int, error) {
	buf := make([]byte, ec.ModBytes+8)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return ec.NormalizeMod(ec.ScalarFromBytes(buf), ec.Order()), nil
}

// CreateShares splits secret into n Shamir shares such that any threshold
// of them reconstruct it via InterpolateScalar(0, ...), and fewer reveal
// nothing about it.
func CreateShares(secret *big.Int, n, threshold uint8) ([]Share, error) {
	if threshold < 1 || n < threshold {
		return nil, ErrInvalidThreshold
	}

	q := ec.Order()
	coeffs := make([]*big.Int, threshold-1)
	for i := range coeffs {
		c, err := randomScalar()
		if err != nil {
			return nil, err
		}
		coeffs[i] = c
	}

	shares := make([]Share, n)
	for i := uint8(1); i <= n; i++ {
		x := scalarFromIndex(i)
		value := new(big.Int).Set(secret)

		xPow := new(big.Int).Set(x)
		for j := 0; j < int(threshold-1); j++ {
			term := ec.ScalarMulMod(coeffs[j], xPow, q)
			value = ec.ScalarAddMod(value, term, q)
			xPow = ec.ScalarMulMod(xPow, x, q)
		}

		shares[i-1] = Share{Index: i, Value: value}
	}

	return shares, nil
}

// Reconstruct recovers the shared secret from threshold or more shares.
func Reconstruct(shares []Share) (*big.Int, error) {
	return InterpolateScalar(0, shares)
}

// Evaluate computes one custodian's Lagrange-weighted partial signature
// over a blinded point m, given the set of peer indexes participating in
// this signing round. It never reconstructs the shared secret.
func Evaluate(share Share, peers []uint8, m *ec.Point) *ec.Point {
	c := coeff(share.Index, peers)
	exponent := ec.ScalarMulMod(c, share.Value, ec.Order())
	return m.ScalarMult(exponent)
}

// Combine sums a threshold-sized set of partial evaluations produced by
// Evaluate into the same point a single signer holding the full secret
// would have produced: Z = x*M.
func Combine(partials []*ec.Point) (*ec.Point, error) {
	if len(partials) == 0 {
		return nil, ErrNoShares
	}

	acc := ec.Identity()
	for _, p := range partials {
		acc = acc.Add(p)
	}
	return acc, nil
}
