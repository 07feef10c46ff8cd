package threshold

import (
	"crypto/subtle"
	"math/big"

	"github.com/wurp/go-privacypass/ec"
)

// Start runs one participant's half of a distributed key generation round:
// it draws a random degree-(threshold-1) polynomial, publishes Pedersen
// commitments to its coefficients against generator g, and produces one
// share per participant to hand out privately.
//
// Corresponds to dkg.Start, itself a port of liboprf's dkg_start().
func Start(g *ec.Point, n, threshold uint8) (commitments []*ec.Point, shares []Share, err error) {
	if threshold < 2 || threshold > n {
		return nil, nil, ErrInvalidThreshold
	}

	a := make([]*big.Int, threshold)
	for k := range a {
		a[k], err = randomScalar()
		if err != nil {
			return nil, nil, err
		}
	}

	commitments = make([]*ec.Point, threshold)
	for k, ak := range a {
		commitments[k] = g.ScalarMult(ak)
	}

	q := ec.Order()
	shares = make([]Share, n)
	for j := uint8(1); j <= n; j++ {
		x := scalarFromIndex(j)
		value := new(big.Int).Set(a[0])

		xPow := new(big.Int).Set(x)
		for k := 1; k < int(threshold); k++ {
			term := ec.ScalarMulMod(a[k], xPow, q)
			value = ec.ScalarAddMod(value, term, q)
			xPow = ec.ScalarMulMod(xPow, x, q)
		}

		shares[j-1] = Share{Index: j, Value: value}
	}

	return commitments, shares, nil
}

// VerifyCommitment checks that a share received from peer i is consistent
// with the polynomial commitments peer i published against generator g,
// without learning anything about the polynomial beyond that one point.
// self's own share is trivially accepted since a participant never needs
// to verify itself.
func VerifyCommitment(g *ec.Point, self, i uint8, commitments []*ec.Point, share Share) error {
	if i == self {
		return nil
	}

	v0 := g.ScalarMult(share.Value)

	q := ec.Order()
	j := scalarFromIndex(self)

	v1 := commitments[0]
	jPowK := big.NewInt(1)
	for k := 1; k < len(commitments); k++ {
		jPowK = ec.ScalarMulMod(jPowK, j, q)
		v1 = v1.Add(commitments[k].ScalarMult(jPowK))
	}

	if subtle.ConstantTimeCompare(v0.CompressedBytes(), v1.CompressedBytes()) != 1 {
		return ErrCommitmentMismatch
	}
	return nil
}

// VerifyCommitments checks every peer's share against its commitments and
// returns the indexes that failed.
func VerifyCommitments(g *ec.Point, self, n uint8, commitments [][]*ec.Point, shares []Share) []uint8 {
	var fails []uint8
	for i := uint8(1); i <= n; i++ {
		if i == self {
			continue
		}
		if err := VerifyCommitment(g, self, i, commitments[i-1], shares[i-1]); err != nil {
			fails = append(fails, i)
		}
	}
	return fails
}

// Finish sums the shares this participant received from every peer (one
// per peer, all addressed to self) into that participant's final secret
// share of the jointly generated key.
func Finish(shares []Share, self uint8) (Share, error) {
	q := ec.Order()
	result := new(big.Int)
	for _, s := range shares {
		if s.Index != self {
			return Share{}, ErrInvalidThreshold
		}
		result = ec.ScalarAddMod(result, s.Value, q)
	}
	return Share{Index: self, Value: result}, nil
}
