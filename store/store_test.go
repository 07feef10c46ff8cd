package store

import (
	"errors"
	"math/big"
	"testing"

	"github.com/wurp/go-privacypass/ec"
)

func TestAddAndPopFIFO(t *testing.T) {
	s := New(NewMemoryBackend())

	p1 := ec.ScalarBaseMult(big.NewInt(1))
	p2 := ec.ScalarBaseMult(big.NewInt(2))

	if err := s.AddToken([]byte("token-1"), p1); err != nil {
		t.Fatalf("AddToken failed: %v", err)
	}
	if err := s.AddToken([]byte("token-2"), p2); err != nil {
		t.Fatalf("AddToken failed: %v", err)
	}

	tok, p, err := s.PopNextToken()
	if err != nil {
		t.Fatalf("PopNextToken failed: %v", err)
	}
	if string(tok) != "token-1" || !p.Equal(p1) {
		t.Fatalf("expected token-1/p1 first, got %s", tok)
	}

	tok2, p2got, err := s.PopNextToken()
	if err != nil {
		t.Fatalf("PopNextToken failed: %v", err)
	}
	if string(tok2) != "token-2" || !p2got.Equal(p2) {
		t.Fatalf("expected token-2/p2 second, got %s", tok2)
	}

	if _, _, err := s.PopNextToken(); !errors.Is(err, ErrNotEnoughTokens) {
		t.Fatalf("expected ErrNotEnoughTokens, got %v", err)
	}
}

func TestListTokensDoesNotAdvanceCursor(t *testing.T) {
	s := New(NewMemoryBackend())
	p := ec.ScalarBaseMult(big.NewInt(1))

	if err := s.AddToken([]byte("token-1"), p); err != nil {
		t.Fatalf("AddToken failed: %v", err)
	}

	toks, pts, err := s.ListTokens()
	if err != nil {
		t.Fatalf("ListTokens failed: %v", err)
	}
	if len(toks) != 1 || len(pts) != 1 {
		t.Fatalf("expected 1 listed token, got %d", len(toks))
	}

	tok, _, err := s.PopNextToken()
	if err != nil {
		t.Fatalf("PopNextToken failed after ListTokens: %v", err)
	}
	if string(tok) != "token-1" {
		t.Fatalf("ListTokens should not have consumed the token")
	}
}

func TestStoreSpentRejectsReplay(t *testing.T) {
	s := New(NewMemoryBackend())
	token := []byte("a spendable nonce")

	if err := s.StoreSpent(token); err != nil {
		t.Fatalf("first StoreSpent failed: %v", err)
	}

	if err := s.StoreSpent(token); !errors.Is(err, ErrAlreadySpent) {
		t.Fatalf("expected ErrAlreadySpent on replay, got %v", err)
	}
}

func TestPopOnEmptyStoreFails(t *testing.T) {
	s := New(NewMemoryBackend())
	if _, _, err := s.PopNextToken(); !errors.Is(err, ErrNotEnoughTokens) {
		t.Fatalf("expected ErrNotEnoughTokens, got %v", err)
	}
}
