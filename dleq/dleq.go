// Package dleq implements the batched Chaum-Pedersen proof of discrete log
// equality the issuer uses to convince a client it signed every blinded
// token in a batch with the same secret key it committed to as Y = x*G,
// without revealing x.
//
// Ported from original_source/src/server.rs's dleq/batch_dleq and
// original_source/src/client.rs's verify_dleq_proof, cross-checked against
// other_examples/.../issuer.go.go's point-ordering and single-verify shape.
package dleq

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/wurp/go-privacypass/ec"
	"github.com/wurp/go-privacypass/hash"
	"github.com/wurp/go-privacypass/prng"
)

// ErrProofMismatch is wrapped by the error Verify returns when the
// recomputed challenge does not match the one embedded in the proof; that
// error's message also renders both c and c'.
var ErrProofMismatch = errors.New("dleq: c and c' are different")

// Proof is a single Chaum-Pedersen proof (c, s) that the same exponent x
// relates G to Y and M to Z.
type Proof struct {
	C *big.Int
	S *big.Int
}

// transcript returns the ordered point list G, Y, M, Z, A, B that the
// challenge hash is computed over. (The batch PRNG is seeded separately, in
// batchAccumulate.)
func transcript(g, y, m, z, a, b *ec.Point) []*ec.Point {
	return []*ec.Point{g, y, m, z, a, b}
}

// Prove constructs a DLEQ proof that Z = x*M and Y = x*G, for the secret
// scalar x known only to the issuer.
func Prove(x *big.Int, z, m, y, g *ec.Point) (*Proof, error) {
	seed := make([]byte, 256)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	k := prng.RandScalarFromRNG(seed)

	a := g.ScalarMult(k)
	b := m.ScalarMult(k)

	q := ec.Order()
	cHash := hash.HashPoints(transcript(g, y, m, z, a, b))
	c := ec.NormalizeMod(ec.ScalarFromBytes(cHash), q)

	cx := ec.ScalarMulMod(c, x, q)
	s := ec.ScalarSubMod(k, cx, q)

	return &Proof{C: c, S: s}, nil
}

// Verify checks a DLEQ proof against the public points it claims to relate.
// It recomputes A = s*G + c*Y and B = s*M + c*Z, then checks that hashing
// G, Y, M, Z, A, B reproduces the proof's challenge c.
func Verify(proof *Proof, z, m, y, g *ec.Point) error {
	a := g.ScalarMult(proof.S).Add(y.ScalarMult(proof.C))
	b := m.ScalarMult(proof.S).Add(z.ScalarMult(proof.C))

	cCalc := ec.NormalizeMod(ec.ScalarFromBytes(hash.HashPoints(transcript(g, y, m, z, a, b))), ec.Order())
	if proof.C.Cmp(cCalc) != 0 {
		return fmt.Errorf("%w: c=%x, c'=%x", ErrProofMismatch, proof.C, cCalc)
	}
	return nil
}

// batchAccumulate folds a list of per-token (M, Z) pairs into the single
// composite pair that a batch DLEQ proof actually certifies, weighting each
// pair by an independent challenge scalar drawn from a PRNG transcript
// seeded with G, Y and every (M, Z) pair in order.
func batchAccumulate(ms, zs []*ec.Point, y, g *ec.Point) (*ec.Point, *ec.Point) {
	points := make([]*ec.Point, 0, 2+2*len(ms))
	points = append(points, g, y)
	for i := range ms {
		points = append(points, ms[i], zs[i])
	}

	p := prng.InitPRNG(hash.HashPoints(points))

	m := ec.Identity()
	z := ec.Identity()
	for i := range ms {
		c := p.RandScalarFromPRNG()
		m = m.Add(ms[i].ScalarMult(c))
		z = z.Add(zs[i].ScalarMult(c))
	}
	return m, z
}

// BatchProve produces a single DLEQ proof certifying that every Zs[i] =
// x*Ms[i], by first folding the batch down to one composite (M, Z) pair via
// batchAccumulate and then proving that pair directly.
func BatchProve(x *big.Int, zs, ms []*ec.Point, y, g *ec.Point) (*Proof, error) {
	m, z := batchAccumulate(ms, zs, y, g)
	return Prove(x, z, m, y, g)
}

// BatchVerify checks a batch proof against the full list of (M, Z) pairs it
// claims to certify.
func BatchVerify(proof *Proof, zs, ms []*ec.Point, y, g *ec.Point) error {
	m, z := batchAccumulate(ms, zs, y, g)
	return Verify(proof, z, m, y, g)
}
