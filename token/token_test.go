package token

import (
	"math/big"
	"testing"

	"github.com/wurp/go-privacypass/ec"
)

func TestGenerateAndBlindToken(t *testing.T) {
	tk, err := GenerateAndBlindToken()
	if err != nil {
		t.Fatalf("GenerateAndBlindToken failed: %v", err)
	}

	if len(tk.T) != nonceLen {
		t.Fatalf("nonce length = %d, want %d", len(tk.T), nonceLen)
	}
	if tk.R.Sign() <= 0 || tk.R.Cmp(ec.Order()) >= 0 {
		t.Fatalf("blinding factor out of range: %s", tk.R)
	}
	if tk.M == nil {
		t.Fatalf("blinded point is nil")
	}
}

func TestUnblindRecoversSignedPoint(t *testing.T) {
	tk, err := GenerateAndBlindToken()
	if err != nil {
		t.Fatalf("GenerateAndBlindToken failed: %v", err)
	}

	x := big.NewInt(424242)
	z := tk.M.ScalarMult(x)

	n := Unblind(z, tk.R)

	tCurve := tk.M.ScalarMult(ec.ScalarInverse(tk.R, ec.Order()))
	want := tCurve.ScalarMult(x)

	if !n.Equal(want) {
		t.Fatalf("unblinded point mismatch")
	}
}

func TestTwoTokensAreIndependent(t *testing.T) {
	tk1, err := GenerateAndBlindToken()
	if err != nil {
		t.Fatalf("GenerateAndBlindToken failed: %v", err)
	}
	tk2, err := GenerateAndBlindToken()
	if err != nil {
		t.Fatalf("GenerateAndBlindToken failed: %v", err)
	}

	if tk1.M.Equal(tk2.M) {
		t.Fatalf("two freshly generated tokens produced the same blinded point")
	}
}
