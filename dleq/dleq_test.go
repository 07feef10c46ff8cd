package dleq

import (
	"math/big"
	"testing"

	"github.com/wurp/go-privacypass/ec"
	"github.com/wurp/go-privacypass/hash"
)

func testGeneratorAndKey(t *testing.T) (g, y *ec.Point, x *big.Int) {
	t.Helper()
	g, err := hash.HashToCurve([]byte("test generator"))
	if err != nil {
		t.Fatalf("HashToCurve failed: %v", err)
	}
	x = big.NewInt(98765432123)
	y = g.ScalarMult(x)
	return g, y, x
}

func TestProveVerifyRoundTrip(t *testing.T) {
	g, y, x := testGeneratorAndKey(t)

	m, err := hash.HashToCurve([]byte("a blinded token"))
	if err != nil {
		t.Fatalf("HashToCurve failed: %v", err)
	}
	z := m.ScalarMult(x)

	proof, err := Prove(x, z, m, y, g)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}

	if err := Verify(proof, z, m, y, g); err != nil {
		t.Fatalf("Verify failed on a genuine proof: %v", err)
	}
}

func TestVerifyRejectsWrongKey(t *testing.T) {
	g, y, x := testGeneratorAndKey(t)

	m, err := hash.HashToCurve([]byte("a blinded token"))
	if err != nil {
		t.Fatalf("HashToCurve failed: %v", err)
	}

	wrongX := new(big.Int).Add(x, big.NewInt(1))
	z := m.ScalarMult(wrongX)

	proof, err := Prove(wrongX, z, m, y, g)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}

	// Proof is self-consistent for wrongX, but Z was computed with a key
	// that doesn't match the committed Y; verifying against the real Y
	// must fail.
	if err := Verify(proof, z, m, y, g); err == nil {
		t.Fatalf("expected Verify to reject a proof against a mismatched commitment")
	}
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	g, y, x := testGeneratorAndKey(t)

	m, err := hash.HashToCurve([]byte("a blinded token"))
	if err != nil {
		t.Fatalf("HashToCurve failed: %v", err)
	}
	z := m.ScalarMult(x)

	proof, err := Prove(x, z, m, y, g)
	if err != nil {
		t.Fatalf("Prove failed: %v", err)
	}

	tampered := &Proof{C: proof.C, S: new(big.Int).Add(proof.S, big.NewInt(1))}
	if err := Verify(tampered, z, m, y, g); err == nil {
		t.Fatalf("expected Verify to reject a tampered s")
	}
}

func TestBatchProveVerifyRoundTrip(t *testing.T) {
	g, y, x := testGeneratorAndKey(t)

	var ms, zs []*ec.Point
	for i := 0; i < 5; i++ {
		m, err := hash.HashToCurve([]byte{byte(i)})
		if err != nil {
			t.Fatalf("HashToCurve failed: %v", err)
		}
		ms = append(ms, m)
		zs = append(zs, m.ScalarMult(x))
	}

	proof, err := BatchProve(x, zs, ms, y, g)
	if err != nil {
		t.Fatalf("BatchProve failed: %v", err)
	}

	if err := BatchVerify(proof, zs, ms, y, g); err != nil {
		t.Fatalf("BatchVerify failed: %v", err)
	}
}

func TestBatchVerifyRejectsSwappedToken(t *testing.T) {
	g, y, x := testGeneratorAndKey(t)

	var ms, zs []*ec.Point
	for i := 0; i < 3; i++ {
		m, err := hash.HashToCurve([]byte{byte(i)})
		if err != nil {
			t.Fatalf("HashToCurve failed: %v", err)
		}
		ms = append(ms, m)
		zs = append(zs, m.ScalarMult(x))
	}

	proof, err := BatchProve(x, zs, ms, y, g)
	if err != nil {
		t.Fatalf("BatchProve failed: %v", err)
	}

	badMs := append([]*ec.Point{}, ms...)
	badMs[0], badMs[1] = badMs[1], badMs[0]

	if err := BatchVerify(proof, zs, badMs, y, g); err == nil {
		t.Fatalf("expected BatchVerify to reject a permuted token order")
	}
}
