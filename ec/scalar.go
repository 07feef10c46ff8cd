package ec

import "math/big"

// ScalarFromBytes decodes b as a big-endian integer, MSB first. It performs
// no modular reduction — callers reduce mod the curve order when that is
// actually required (e.g. before comparing challenges). This mirrors
// converters.rs:big_from_bytes, which folds bytes into an accumulator one at
// a time rather than validating a width.
func ScalarFromBytes(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// ScalarToBytes serializes s into exactly length bytes, big-endian. Unlike
// big.Int.FillBytes, which panics if s does not fit, this builds the digits
// little-endian by repeated mask-and-shift and then reverses them, silently
// dropping any bits beyond the low length*8 — the same truncation behavior
// as converters.rs:big_to_bytes. Callers must pass length large enough for
// the values they serialize; in this protocol that is always ModBytes.
func ScalarToBytes(s *big.Int, length int) []byte {
	n := new(big.Int).Abs(s)

	out := make([]byte, length)
	mask := big.NewInt(0xff)
	tmp := new(big.Int).Set(n)
	for i := 0; i < length; i++ {
		b := new(big.Int).And(tmp, mask)
		out[i] = byte(b.Uint64())
		tmp.Rsh(tmp, 8)
	}
	for i, j := 0, length-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// NormalizeMod reduces s into [0, q).
func NormalizeMod(s, q *big.Int) *big.Int {
	r := new(big.Int).Mod(s, q)
	if r.Sign() < 0 {
		r.Add(r, q)
	}
	return r
}

// ScalarMulMod returns a*b mod q.
func ScalarMulMod(a, b, q *big.Int) *big.Int {
	r := new(big.Int).Mul(a, b)
	return r.Mod(r, q)
}

// ScalarSubMod returns a-b mod q, normalized into [0, q).
func ScalarSubMod(a, b, q *big.Int) *big.Int {
	r := new(big.Int).Sub(a, b)
	return NormalizeMod(r, q)
}

// ScalarAddMod returns a+b mod q, normalized into [0, q).
func ScalarAddMod(a, b, q *big.Int) *big.Int {
	r := new(big.Int).Add(a, b)
	return NormalizeMod(r, q)
}

// ScalarInverse returns s^-1 mod q.
func ScalarInverse(s, q *big.Int) *big.Int {
	return new(big.Int).ModInverse(s, q)
}
