package server

import (
	"encoding/base64"
	"testing"

	"github.com/wurp/go-privacypass/hash"
	"github.com/wurp/go-privacypass/store"
	"github.com/wurp/go-privacypass/wire"
)

func base64Encode(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

func testKeyRing(t *testing.T, label string) KeyRing {
	t.Helper()

	g, err := hash.HashToCurve([]byte(label))
	if err != nil {
		t.Fatalf("HashToCurve failed: %v", err)
	}
	x, err := GenerateSecretKey()
	if err != nil {
		t.Fatalf("GenerateSecretKey failed: %v", err)
	}
	return KeyRing{X: x, G: g, Y: g.ScalarMult(x)}
}

func TestDispatchRejectsUnknownRequestType(t *testing.T) {
	kr := testKeyRing(t, "dispatch")
	p := NewProcessor(kr.X, kr.G, 10, store.New(store.NewMemoryBackend()))

	body := `{"type":"Bogus","contents":[]}`
	wrapper := &wire.ClientRequestWrapper{
		BlSigReq: base64Encode([]byte(body)),
	}

	if _, err := p.Dispatch(wrapper); err != wire.ErrUnknownRequestType {
		t.Fatalf("Dispatch error = %v, want ErrUnknownRequestType", err)
	}
}

func TestProcessRedeemFallsBackToRetiredKey(t *testing.T) {
	active := testKeyRing(t, "active key")
	retired := testKeyRing(t, "retired key")

	p := &Processor{
		Active:    active,
		Retired:   []KeyRing{retired},
		MaxTokens: 10,
		Store:     store.New(store.NewMemoryBackend()),
	}

	tNonce := []byte("a token nonce issued under the retired key")
	tCurve, err := hash.HashToCurve(tNonce)
	if err != nil {
		t.Fatalf("HashToCurve failed: %v", err)
	}
	n := tCurve.ScalarMult(retired.X)

	sharedInfo := hash.BuildSharedInfo("example.com", "/redeem")
	derivedKey := hash.HashForRedemption(tNonce, n)
	binding := hash.HashForRequestBinding(derivedKey, sharedInfo)

	req := &wire.ClientRequest{
		Type: "Redeem",
		Contents: []string{
			base64Encode(tNonce),
			base64Encode(binding),
		},
	}

	result, err := p.ProcessRedeem(req, "example.com", "/redeem")
	if err != nil {
		t.Fatalf("ProcessRedeem failed against a retired key: %v", err)
	}
	if result != "success" {
		t.Fatalf("result = %q, want success", result)
	}
}

func TestProcessRedeemRejectsWrongMAC(t *testing.T) {
	active := testKeyRing(t, "mismatch active key")
	p := &Processor{
		Active:    active,
		MaxTokens: 10,
		Store:     store.New(store.NewMemoryBackend()),
	}

	req := &wire.ClientRequest{
		Type: "Redeem",
		Contents: []string{
			base64Encode([]byte("some token")),
			base64Encode([]byte("not a valid binding")),
		},
	}

	if _, err := p.ProcessRedeem(req, "example.com", "/"); err != ErrMACMismatch {
		t.Fatalf("ProcessRedeem error = %v, want ErrMACMismatch", err)
	}
}
