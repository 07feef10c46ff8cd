// Package wire implements the JSON/base64 envelope the client and server
// exchange over the transport: a ClientRequest wrapped in a
// ClientRequestWrapper for requests, and a base64-of-JSON array of
// base64-encoded points plus an embedded "batch-proof=" blob for issue
// responses.
//
// Ported from original_source/src/types.rs plus the inline wire assembly in
// client.rs's prepare_issue_request/prepare_redeem_request and server.rs's
// process_issue, cross-checked against other_examples/.../issuer.go.go's
// HandleIssue outer base64 wrap.
package wire

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wurp/go-privacypass/ec"
)

// ErrUnknownRequestType is returned when a ClientRequest's Type field is
// neither "Issue" nor "Redeem".
var ErrUnknownRequestType = errors.New("wire: unknown request type")

// batchProofPrefix is the literal marker byte string prepended to the
// serialized batch proof element before it is base64-encoded a second
// time. It is not a length prefix or a framing tag in the usual sense — it
// is simply baked into the string the way types.rs's counterpart client
// expects to find it, and must be reproduced byte for byte for interop.
const batchProofPrefix = "batch-proof="

// ClientRequest is the inner, doubly-wrapped request body: either an Issue
// request (Contents holding one base64 blinded point per token) or a
// Redeem request (Contents holding exactly [token, request_binding]).
type ClientRequest struct {
	Type     string   `json:"type"`
	Contents []string `json:"contents"`
}

// ClientRequestWrapper is the outer envelope sent on the wire. BlSigReq is
// the base64 encoding of ClientRequest's JSON serialization; Host and Http
// carry the redemption request-binding context (empty for Issue requests).
type ClientRequestWrapper struct {
	BlSigReq string `json:"bl_sig_req"`
	Host     string `json:"host"`
	Http     string `json:"http"`
}

// proofFields is the inner {R, C, P} JSON object carried inside the
// batch-proof element. R and C are the base64-encoded s and c scalars; P is
// itself the base64 of that object's own JSON serialization, nested one
// level deeper than R and C — a quirk of the original implementation this
// package reproduces rather than flattens.
type proofFields struct {
	R string `json:"R,omitempty"`
	C string `json:"C,omitempty"`
	P string `json:"P,omitempty"`
}

// EncodeIssueRequest serializes a batch of blinded points into the wrapped
// ClientRequest JSON the server's process_issue expects.
func EncodeIssueRequest(points []*ec.Point) (*ClientRequestWrapper, error) {
	contents := make([]string, len(points))
	for i, p := range points {
		contents[i] = base64.StdEncoding.EncodeToString(p.CompressedBytes())
	}

	req := ClientRequest{Type: "Issue", Contents: contents}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	return &ClientRequestWrapper{
		BlSigReq: base64.StdEncoding.EncodeToString(body),
	}, nil
}

// EncodeRedeemRequest serializes a spend of a single token into the
// wrapped ClientRequest JSON the server's process_redeem expects.
func EncodeRedeemRequest(token, requestBinding []byte, host, path string) (*ClientRequestWrapper, error) {
	req := ClientRequest{
		Type: "Redeem",
		Contents: []string{
			base64.StdEncoding.EncodeToString(token),
			base64.StdEncoding.EncodeToString(requestBinding),
		},
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	return &ClientRequestWrapper{
		BlSigReq: base64.StdEncoding.EncodeToString(body),
		Host:     host,
		Http:     path,
	}, nil
}

// DecodeRequest unwraps a ClientRequestWrapper and parses its inner
// ClientRequest.
func DecodeRequest(wrapper *ClientRequestWrapper) (*ClientRequest, error) {
	raw, err := base64.StdEncoding.DecodeString(wrapper.BlSigReq)
	if err != nil {
		return nil, err
	}

	var req ClientRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

// BuildIssueResponse assembles the issuer's reply: one base64-encoded
// compressed point per signed token, followed by the batch-proof element,
// the whole array then JSON-serialized and base64-encoded once more.
func BuildIssueResponse(signed []*ec.Point, c, s []byte) (string, error) {
	elems := make([]string, 0, len(signed)+1)
	for _, z := range signed {
		elems = append(elems, base64.StdEncoding.EncodeToString(z.CompressedBytes()))
	}

	proof := proofFields{
		R: base64.StdEncoding.EncodeToString(s),
		C: base64.StdEncoding.EncodeToString(c),
	}
	proofJSON, err := json.Marshal(proof)
	if err != nil {
		return "", err
	}

	batchProof := proofFields{P: base64.StdEncoding.EncodeToString(proofJSON)}
	batchProofJSON, err := json.Marshal(batchProof)
	if err != nil {
		return "", err
	}

	batchProofElem := base64.StdEncoding.EncodeToString(
		[]byte(fmt.Sprintf("%s%s", batchProofPrefix, batchProofJSON)))
	elems = append(elems, batchProofElem)

	arr, err := json.Marshal(elems)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(arr), nil
}

// IssueResponse is the decoded form of an issuer's reply: the signed
// points in order, and the batch proof's c and s scalars.
type IssueResponse struct {
	Signed []*ec.Point
	C      []byte
	S      []byte
}

// DecodeIssueResponse reverses BuildIssueResponse, peeling the
// batch-proof element off the end of the array and decoding the remaining
// elements as compressed points.
func DecodeIssueResponse(encoded string) (*IssueResponse, error) {
	arrJSON, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}

	var elems []string
	if err := json.Unmarshal(arrJSON, &elems); err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return nil, errors.New("wire: empty issue response")
	}

	proofElem := elems[len(elems)-1]
	pointElems := elems[:len(elems)-1]

	proofRaw, err := base64.StdEncoding.DecodeString(proofElem)
	if err != nil {
		return nil, err
	}
	prefixed := string(proofRaw)
	if len(prefixed) < len(batchProofPrefix) || prefixed[:len(batchProofPrefix)] != batchProofPrefix {
		return nil, errors.New("wire: missing batch-proof= prefix")
	}

	var batchProof proofFields
	if err := json.Unmarshal([]byte(prefixed[len(batchProofPrefix):]), &batchProof); err != nil {
		return nil, err
	}

	proofInner, err := base64.StdEncoding.DecodeString(batchProof.P)
	if err != nil {
		return nil, err
	}
	var proof proofFields
	if err := json.Unmarshal(proofInner, &proof); err != nil {
		return nil, err
	}

	c, err := base64.StdEncoding.DecodeString(proof.C)
	if err != nil {
		return nil, err
	}
	s, err := base64.StdEncoding.DecodeString(proof.R)
	if err != nil {
		return nil, err
	}

	points := make([]*ec.Point, len(pointElems))
	for i, e := range pointElems {
		raw, err := base64.StdEncoding.DecodeString(e)
		if err != nil {
			return nil, err
		}
		p, err := ec.PointFromBytes(raw)
		if err != nil {
			return nil, err
		}
		points[i] = p
	}

	return &IssueResponse{Signed: points, C: c, S: s}, nil
}
