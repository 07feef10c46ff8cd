package server

import (
	"crypto/subtle"
	"encoding/base64"

	"github.com/wurp/go-privacypass/ec"
)

func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

func decodePoint(s string) (*ec.Point, error) {
	raw, err := decodeBase64(s)
	if err != nil {
		return nil, err
	}
	return ec.PointFromBytes(raw)
}

func constantTimeEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare(a, b) == 1
}
