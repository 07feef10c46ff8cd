// Package server implements the issuer-facing dispatch logic: sign and
// batch-prove a fresh set of blinded tokens on Issue, check a redemption's
// MAC and consult the spent-token ledger on Redeem.
//
// Ported from original_source/src/server.rs's ServerProcessor plus
// other_examples/.../btd-issuer_test.go.go's multi-key redemption trial
// loop, adopted per SPEC_FULL.md §6.
package server

import (
	"crypto/rand"
	"errors"
	"math/big"

	"github.com/rs/zerolog/log"

	"github.com/wurp/go-privacypass/dleq"
	"github.com/wurp/go-privacypass/ec"
	"github.com/wurp/go-privacypass/hash"
	"github.com/wurp/go-privacypass/store"
	"github.com/wurp/go-privacypass/wire"
)

// ErrTooManyTokens is returned when an Issue request asks for more tokens
// than the processor's configured max.
var ErrTooManyTokens = errors.New("server: too many tokens requested")

// ErrMACMismatch is returned when a redemption's request-binding MAC does
// not match any configured signing key.
var ErrMACMismatch = errors.New("server: request_binding and request_binding_calc are different")

// KeyRing is one (secret key, public commitment) pair the server will
// accept redemptions against. Most deployments run a single active key;
// KeyRing slices exist so a deployment can still honor tokens issued under
// a key that has since rotated out of active issuance, the way
// btd.RedeemToken tries a request against every key on file before
// failing.
type KeyRing struct {
	X *big.Int
	G *ec.Point
	Y *ec.Point
}

// Processor holds the active signing key(s), the token store, and the
// batch size limit enforced on Issue.
type Processor struct {
	Active    KeyRing
	Retired   []KeyRing
	MaxTokens uint8
	Store     *store.Store
}

// NewProcessor builds a Processor whose public commitment Y = x*G is
// derived from the secret scalar x and a caller-supplied generator G.
func NewProcessor(x *big.Int, g *ec.Point, maxTokens uint8, st *store.Store) *Processor {
	return &Processor{
		Active:    KeyRing{X: x, G: g, Y: g.ScalarMult(x)},
		MaxTokens: maxTokens,
		Store:     st,
	}
}

// Dispatch decodes a wrapped request and routes it to ProcessIssue or
// ProcessRedeem based on its declared type.
func (p *Processor) Dispatch(wrapper *wire.ClientRequestWrapper) (string, error) {
	req, err := wire.DecodeRequest(wrapper)
	if err != nil {
		return "", err
	}

	switch req.Type {
	case "Issue":
		return p.ProcessIssue(req)
	case "Redeem":
		return p.ProcessRedeem(req, wrapper.Host, wrapper.Http)
	default:
		return "", wire.ErrUnknownRequestType
	}
}

// ProcessIssue signs every blinded point in req, proves the batch with a
// single DLEQ proof, and returns the assembled wire response.
func (p *Processor) ProcessIssue(req *wire.ClientRequest) (string, error) {
	if len(req.Contents) > int(p.MaxTokens) {
		return "", ErrTooManyTokens
	}

	ms := make([]*ec.Point, len(req.Contents))
	zs := make([]*ec.Point, len(req.Contents))
	for i, c := range req.Contents {
		m, err := decodePoint(c)
		if err != nil {
			return "", err
		}
		ms[i] = m
		zs[i] = m.ScalarMult(p.Active.X)
	}

	proof, err := dleq.BatchProve(p.Active.X, zs, ms, p.Active.Y, p.Active.G)
	if err != nil {
		return "", err
	}

	cBytes := ec.ScalarToBytes(proof.C, ec.ModBytes)
	sBytes := ec.ScalarToBytes(proof.S, ec.ModBytes)

	log.Debug().Int("num_tokens", len(ms)).Msg("signed and proved issue batch")
	return wire.BuildIssueResponse(zs, cBytes, sBytes)
}

// checkMAC verifies a redemption's binding MAC against one key ring.
func checkMAC(kr KeyRing, t, requestBinding, sharedInfo []byte) error {
	tCurve, err := hash.HashToCurve(t)
	if err != nil {
		return err
	}
	n := tCurve.ScalarMult(kr.X)
	derivedKey := hash.HashForRedemption(t, n)
	calc := hash.HashForRequestBinding(derivedKey, sharedInfo)

	if !constantTimeEqual(requestBinding, calc) {
		return ErrMACMismatch
	}
	return nil
}

// ProcessRedeem validates a Redeem request's MAC against the active key
// (falling back to retired keys, mirroring btd.RedeemToken's trial loop
// across a signing-key set) and records the token as spent.
func (p *Processor) ProcessRedeem(req *wire.ClientRequest, host, path string) (string, error) {
	if len(req.Contents) < 2 {
		return "", errors.New("server: redeem request missing fields")
	}

	tokenBytes, err := decodeBase64(req.Contents[0])
	if err != nil {
		return "", err
	}
	requestBinding, err := decodeBase64(req.Contents[1])
	if err != nil {
		return "", err
	}

	sharedInfo := hash.BuildSharedInfo(host, path)

	var macErr error
	if macErr = checkMAC(p.Active, tokenBytes, requestBinding, sharedInfo); macErr != nil {
		for _, kr := range p.Retired {
			if err := checkMAC(kr, tokenBytes, requestBinding, sharedInfo); err == nil {
				macErr = nil
				break
			}
		}
	}
	if macErr != nil {
		return "", macErr
	}

	if err := p.Store.StoreSpent(tokenBytes); err != nil {
		return "", err
	}

	log.Debug().Str("host", host).Str("path", path).Msg("redeemed token")
	return "success", nil
}

// GenerateSecretKey draws a fresh issuer scalar, used when bootstrapping a
// new signing epoch.
func GenerateSecretKey() (*big.Int, error) {
	buf := make([]byte, ec.ModBytes+8)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return ec.NormalizeMod(ec.ScalarFromBytes(buf), ec.Order()), nil
}
