// Package client implements the issuer-facing half of the protocol: build
// an Issue or Redeem request, and verify+unblind an issuer's batch
// response.
//
// Ported from original_source/src/client.rs's prepare_issue_request,
// process_issue_response, prepare_redeem_request and mac.
package client

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wurp/go-privacypass/dleq"
	"github.com/wurp/go-privacypass/ec"
	"github.com/wurp/go-privacypass/hash"
	"github.com/wurp/go-privacypass/token"
	"github.com/wurp/go-privacypass/wire"
)

// PreparedIssue pairs the wire-ready request with the client-side token
// state it must be reconciled against once a response arrives.
type PreparedIssue struct {
	Request *wire.ClientRequestWrapper
	Tokens  []*token.Token
}

// PrepareIssueRequest generates numTokens fresh blinded tokens and wraps
// them into an Issue request.
func PrepareIssueRequest(numTokens uint8) (*PreparedIssue, error) {
	tokens := make([]*token.Token, numTokens)
	points := make([]*ec.Point, numTokens)

	for i := range tokens {
		tk, err := token.GenerateAndBlindToken()
		if err != nil {
			return nil, err
		}
		tokens[i] = tk
		points[i] = tk.M
	}

	req, err := wire.EncodeIssueRequest(points)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("num_tokens", len(tokens)).Msg("prepared issue request")
	return &PreparedIssue{Request: req, Tokens: tokens}, nil
}

// ProcessIssueResponse verifies the issuer's batch DLEQ proof against the
// prepared tokens and the commitment (G, Y), then unblinds every signed
// point into a redeemable token.
func ProcessIssueResponse(tokens []*token.Token, resp *wire.IssueResponse, g, y *ec.Point) ([]*token.Token, error) {
	ms := make([]*ec.Point, len(tokens))
	for i, t := range tokens {
		ms[i] = t.M
	}

	proof := &dleq.Proof{
		C: ec.ScalarFromBytes(resp.C),
		S: ec.ScalarFromBytes(resp.S),
	}
	if err := dleq.BatchVerify(proof, resp.Signed, ms, y, g); err != nil {
		return nil, err
	}

	out := make([]*token.Token, len(tokens))
	for i, t := range tokens {
		out[i] = &token.Token{
			T: t.T,
			R: t.R,
			M: t.M,
			N: token.Unblind(resp.Signed[i], t.R),
		}
	}

	log.Debug().Int("num_tokens", len(out)).Msg("verified batch proof, unblinded tokens")
	return out, nil
}

// buildMAC computes the request-binding MAC for a redemption, per
// client.rs's mac function.
func buildMAC(sharedInfo, t []byte, n *ec.Point) []byte {
	derivedKey := hash.HashForRedemption(t, n)
	return hash.HashForRequestBinding(derivedKey, sharedInfo)
}

// PrepareRedeemRequest wraps a spent token's nonce and freshly computed
// request-binding MAC into a Redeem request bound to host and path.
func PrepareRedeemRequest(tk *token.Token, host, path string) (*wire.ClientRequestWrapper, error) {
	sharedInfo := hash.BuildSharedInfo(host, path)
	binding := buildMAC(sharedInfo, tk.T, tk.N)

	req, err := wire.EncodeRedeemRequest(tk.T, binding, host, path)
	if err != nil {
		return nil, err
	}

	if e := log.Debug(); e.Enabled() {
		e.Str("host", host).Str("path", path).Msg("prepared redeem request")
	}
	return req, nil
}

// SetLogLevel adjusts the package-wide default zerolog level, matching
// env_logger's role of gating client.rs's debug! output.
func SetLogLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}
