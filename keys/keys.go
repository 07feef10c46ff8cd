// Package keys loads the PEM-encoded EC private key the issuer signs with
// and the JSON commitment file {"G", "H"} both client and server trust as
// the group generator and the issuer's public key.
//
// PEM loading is ported from other_examples/.../crypto-generate_commitments_
// and_key.go.go's crypto.ParseKeyFile; the commitment file shape matches
// that file's crypto.Commitment{G, H} JSON encoding.
package keys

import (
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"errors"
	"math/big"
	"os"

	"github.com/wurp/go-privacypass/ec"
)

// ErrNotECKey is returned when a PEM block decodes to something other than
// an EC private key on the expected curve.
var ErrNotECKey = errors.New("keys: not a P-256 EC private key")

// LoadPrivateKey reads a PEM file containing either a SEC1 "EC PRIVATE
// KEY" block or a PKCS#8 "PRIVATE KEY" block and returns its scalar.
func LoadPrivateKey(path string) (*big.Int, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return nil, errors.New("keys: no PEM block found")
	}

	var priv *ecdsa.PrivateKey
	switch block.Type {
	case "EC PRIVATE KEY":
		priv, err = x509.ParseECPrivateKey(block.Bytes)
	case "PRIVATE KEY":
		var k interface{}
		k, err = x509.ParsePKCS8PrivateKey(block.Bytes)
		if err == nil {
			var ok bool
			priv, ok = k.(*ecdsa.PrivateKey)
			if !ok {
				return nil, ErrNotECKey
			}
		}
	default:
		return nil, ErrNotECKey
	}
	if err != nil {
		return nil, err
	}

	if priv.Curve != ec.Curve() {
		return nil, ErrNotECKey
	}
	return priv.D, nil
}

// commitmentFile is the on-disk JSON shape: each point is the standard
// base64 of its SEC1 encoding. SaveCommitment writes compressed points, the
// same way every other wire value in this module is encoded; LoadCommitment
// accepts compressed or uncompressed.
type commitmentFile struct {
	G string `json:"G"`
	H string `json:"H"`
}

// Commitment is the loaded, decoded form of a commitment file: the group
// generator G and the issuer's public commitment H = x*G.
type Commitment struct {
	G *ec.Point
	H *ec.Point
}

// LoadCommitment reads and decodes a commitment file.
func LoadCommitment(path string) (*Commitment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cf commitmentFile
	if err := json.Unmarshal(raw, &cf); err != nil {
		return nil, err
	}

	g, err := decodeField(cf.G)
	if err != nil {
		return nil, err
	}
	h, err := decodeField(cf.H)
	if err != nil {
		return nil, err
	}
	return &Commitment{G: g, H: h}, nil
}

func decodeField(b64 string) (*ec.Point, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	return ec.PointFromBytes(raw)
}

// SaveCommitment writes a commitment file for a fresh epoch, given the
// generator G and the issuer's secret scalar x (H is computed as x*G).
func SaveCommitment(path string, g *ec.Point, x *big.Int) error {
	h := g.ScalarMult(x)

	cf := commitmentFile{
		G: base64.StdEncoding.EncodeToString(g.CompressedBytes()),
		H: base64.StdEncoding.EncodeToString(h.CompressedBytes()),
	}
	raw, err := json.MarshalIndent(cf, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}
