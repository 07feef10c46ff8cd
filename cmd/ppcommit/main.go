// Command ppcommit generates a fresh commitment file for an issuer's
// secret key: a random generator G and the public commitment H = x*G.
//
// Ported from other_examples/.../crypto-generate_commitments_and_key.go.go.
package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"os"

	"github.com/wurp/go-privacypass/ec"
	"github.com/wurp/go-privacypass/hash"
	"github.com/wurp/go-privacypass/keys"
)

func main() {
	var keyFile, outFile string
	flag.StringVar(&keyFile, "key", "", "path to a PEM-encoded EC PRIVATE KEY")
	flag.StringVar(&outFile, "out", "commitment.json", "output path for the commitment")
	flag.Parse()

	if keyFile == "" {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(keyFile, outFile); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(keyFile, outFile string) error {
	x, err := keys.LoadPrivateKey(keyFile)
	if err != nil {
		return err
	}

	g, err := randomGenerator()
	if err != nil {
		return err
	}

	if err := keys.SaveCommitment(outFile, g, x); err != nil {
		return err
	}

	fmt.Printf("commitment file: %v\n", outFile)
	return nil
}

// randomGenerator picks a fresh generator point by hashing random bytes to
// the curve, the same way the commitment tool's NewRandomPoint draws one
// rather than always reusing the curve's standard base point.
func randomGenerator() (*ec.Point, error) {
	seed := make([]byte, 64)
	if _, err := rand.Read(seed); err != nil {
		return nil, err
	}
	return hash.HashToCurve(seed)
}
