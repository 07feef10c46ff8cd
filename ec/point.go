// Package ec provides the prime-order group the VOPRF protocol runs over:
// NIST P-256, accessed through crypto/elliptic and math/big, plus the
// fixed-width scalar and point encodings the wire format depends on.
//
// Direct use of crypto/elliptic is deprecated by the standard library in
// favor of crypto/ecdh for key agreement, but this protocol needs raw
// scalar multiplication and point addition on arbitrary (non-ephemeral)
// points, which crypto/ecdh does not expose. crypto/elliptic remains the
// only standard way to do that.
package ec

import (
	"crypto/elliptic"
	"errors"
	"math/big"
)

// ModBytes is the fixed serialization width of a scalar or a point
// coordinate for P-256: ceil(256/8).
const ModBytes = 32

// ErrCantParseECP is returned when a byte string does not decode to a valid,
// non-identity point on the curve.
var ErrCantParseECP = errors.New("ec: can't parse ecp")

// Curve is the group every Point in this package belongs to.
func Curve() elliptic.Curve {
	return elliptic.P256()
}

// Order returns the curve's prime order q.
func Order() *big.Int {
	return Curve().Params().N
}

// Point is a point on Curve(), in affine coordinates. The zero value with
// X == Y == nil is not a valid point; use Identity() for the additive
// identity used to seed accumulators.
type Point struct {
	X, Y *big.Int
}

// Identity returns the conventional (0, 0) point at infinity. crypto/elliptic
// documents this pair as the additive identity for Add/ScalarMult/
// ScalarBaseMult, even though IsOnCurve reports false for it. It is never a
// value PointFromBytes can return, since Unmarshal/UnmarshalCompressed both
// refuse to decode the point at infinity.
func Identity() *Point {
	return &Point{X: big.NewInt(0), Y: big.NewInt(0)}
}

// IsIdentity reports whether p is the additive identity.
func (p *Point) IsIdentity() bool {
	return p.X.Sign() == 0 && p.Y.Sign() == 0
}

// PointFromBytes decodes a compressed (0x02/0x03 tag, 33 bytes) or
// uncompressed (0x04 tag, 65 bytes) point encoding. It rejects malformed
// input, off-curve points, and the point at infinity, matching the
// "can't parse ecp" contract of the original C/Rust implementation.
func PointFromBytes(b []byte) (*Point, error) {
	if len(b) == 0 {
		return nil, ErrCantParseECP
	}

	var x, y *big.Int
	switch b[0] {
	case 0x02, 0x03:
		x, y = elliptic.UnmarshalCompressed(Curve(), b)
	case 0x04:
		x, y = elliptic.Unmarshal(Curve(), b)
	default:
		return nil, ErrCantParseECP
	}
	if x == nil {
		return nil, ErrCantParseECP
	}

	return &Point{X: x, Y: y}, nil
}

// CompressedBytes encodes p as a 1+ModBytes byte SEC1 compressed point.
func (p *Point) CompressedBytes() []byte {
	return elliptic.MarshalCompressed(Curve(), p.X, p.Y)
}

// UncompressedBytes encodes p as a 1+2*ModBytes byte SEC1 uncompressed point.
func (p *Point) UncompressedBytes() []byte {
	return elliptic.Marshal(Curve(), p.X, p.Y)
}

// Add returns p + other.
func (p *Point) Add(other *Point) *Point {
	x, y := Curve().Add(p.X, p.Y, other.X, other.Y)
	return &Point{X: x, Y: y}
}

// ScalarMult returns k*p. k is reduced by the curve implementation's own
// scalar handling; it need not already be reduced mod q.
func (p *Point) ScalarMult(k *big.Int) *Point {
	x, y := Curve().ScalarMult(p.X, p.Y, k.Bytes())
	return &Point{X: x, Y: y}
}

// ScalarBaseMult returns k*G for the curve's standard base point.
func ScalarBaseMult(k *big.Int) *Point {
	x, y := Curve().ScalarBaseMult(k.Bytes())
	return &Point{X: x, Y: y}
}

// Equal reports whether p and other encode the same affine point.
func (p *Point) Equal(other *Point) bool {
	if p == nil || other == nil {
		return p == other
	}
	return p.X.Cmp(other.X) == 0 && p.Y.Cmp(other.Y) == 0
}
