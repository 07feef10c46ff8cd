package server_test

import (
	"testing"

	"github.com/wurp/go-privacypass/client"
	"github.com/wurp/go-privacypass/hash"
	"github.com/wurp/go-privacypass/server"
	"github.com/wurp/go-privacypass/store"
	"github.com/wurp/go-privacypass/token"
	"github.com/wurp/go-privacypass/wire"
)

// TestIssueRedeemRoundTrip drives the full client/server exchange
// in-process: a client prepares an Issue request, the server signs and
// proves a batch, the client verifies and unblinds, then redeems one
// token and the server accepts it exactly once.
func TestIssueRedeemRoundTrip(t *testing.T) {
	g, err := hash.HashToCurve([]byte("integration test generator"))
	if err != nil {
		t.Fatalf("HashToCurve failed: %v", err)
	}

	x, err := server.GenerateSecretKey()
	if err != nil {
		t.Fatalf("GenerateSecretKey failed: %v", err)
	}

	backend := store.NewMemoryBackend()
	tokenStore := store.New(backend)
	processor := server.NewProcessor(x, g, 10, tokenStore)

	prepared, err := client.PrepareIssueRequest(5)
	if err != nil {
		t.Fatalf("PrepareIssueRequest failed: %v", err)
	}

	issueReq, err := wire.DecodeRequest(prepared.Request)
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}

	respStr, err := processor.ProcessIssue(issueReq)
	if err != nil {
		t.Fatalf("ProcessIssue failed: %v", err)
	}

	resp, err := wire.DecodeIssueResponse(respStr)
	if err != nil {
		t.Fatalf("DecodeIssueResponse failed: %v", err)
	}

	unblinded, err := client.ProcessIssueResponse(prepared.Tokens, resp, g, processor.Active.Y)
	if err != nil {
		t.Fatalf("ProcessIssueResponse failed: %v", err)
	}
	if len(unblinded) != 5 {
		t.Fatalf("got %d unblinded tokens, want 5", len(unblinded))
	}

	for _, tk := range unblinded {
		if err := tokenStore.AddToken(tk.T, tk.N); err != nil {
			t.Fatalf("AddToken failed: %v", err)
		}
	}

	tNonce, n, err := tokenStore.PopNextToken()
	if err != nil {
		t.Fatalf("PopNextToken failed: %v", err)
	}

	redeemWrapper, err := client.PrepareRedeemRequest(&token.Token{T: tNonce, N: n}, "example.com", "/redeem")
	if err != nil {
		t.Fatalf("PrepareRedeemRequest failed: %v", err)
	}

	redeemReq, err := wire.DecodeRequest(redeemWrapper)
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}

	result, err := processor.ProcessRedeem(redeemReq, redeemWrapper.Host, redeemWrapper.Http)
	if err != nil {
		t.Fatalf("ProcessRedeem failed: %v", err)
	}
	if result != "success" {
		t.Fatalf("ProcessRedeem result = %q, want success", result)
	}

	if _, err := processor.ProcessRedeem(redeemReq, redeemWrapper.Host, redeemWrapper.Http); err == nil {
		t.Fatalf("expected a replayed redemption to fail")
	}
}

func TestProcessIssueRejectsOversizeBatch(t *testing.T) {
	g, err := hash.HashToCurve([]byte("oversize test generator"))
	if err != nil {
		t.Fatalf("HashToCurve failed: %v", err)
	}
	x, err := server.GenerateSecretKey()
	if err != nil {
		t.Fatalf("GenerateSecretKey failed: %v", err)
	}

	tokenStore := store.New(store.NewMemoryBackend())
	processor := server.NewProcessor(x, g, 2, tokenStore)

	prepared, err := client.PrepareIssueRequest(3)
	if err != nil {
		t.Fatalf("PrepareIssueRequest failed: %v", err)
	}
	issueReq, err := wire.DecodeRequest(prepared.Request)
	if err != nil {
		t.Fatalf("DecodeRequest failed: %v", err)
	}

	if _, err := processor.ProcessIssue(issueReq); err != server.ErrTooManyTokens {
		t.Fatalf("expected ErrTooManyTokens, got %v", err)
	}
}
