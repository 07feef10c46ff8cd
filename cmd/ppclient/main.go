// Command ppclient drives the three client operations: acquire a fresh
// batch of tokens, show what's left in the local ledger, and redeem the
// next available token against a given host and path.
//
// Ported from original_source/src/bin/client/main.rs.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wurp/go-privacypass/client"
	"github.com/wurp/go-privacypass/config"
	"github.com/wurp/go-privacypass/ec"
	"github.com/wurp/go-privacypass/keys"
	"github.com/wurp/go-privacypass/store"
	"github.com/wurp/go-privacypass/token"
	"github.com/wurp/go-privacypass/transport"
	"github.com/wurp/go-privacypass/wire"
)

const settingsPath = "client_settings.yaml"

const dbPath = "tokens_client.db"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if len(os.Args) == 1 {
		printUsage()
		os.Exit(1)
	}

	backend, err := store.OpenLevelDBBackend(dbPath)
	if err != nil {
		fail(err)
	}
	defer backend.Close()
	tokenStore := store.New(backend)

	var runErr error
	switch os.Args[1] {
	case "acquire":
		runErr = runAcquire(tokenStore)
	case "show":
		runErr = runShow(tokenStore)
	case "redeem":
		if len(os.Args) < 4 {
			runErr = fmt.Errorf("not enough arguments")
		} else {
			runErr = runRedeem(tokenStore, os.Args[2], os.Args[3])
		}
	default:
		runErr = fmt.Errorf("unknown command: %s", os.Args[1])
	}

	if runErr != nil {
		fail(runErr)
	}
}

func fail(err error) {
	fmt.Printf("error: %v\n\n", err)
	printUsage()
	os.Exit(1)
}

func printUsage() {
	fmt.Println("commands:")
	fmt.Println("\tacquire: request tokens from the server.")
	fmt.Println("\tshow:    show available tokens.")
	fmt.Println("\tredeem <host> <path>:  redeem the next available token.")
}

func runAcquire(tokenStore *store.Store) error {
	settings, err := config.LoadClient(settingsPath)
	if err != nil {
		return err
	}

	prepared, err := client.PrepareIssueRequest(settings.NumTokens)
	if err != nil {
		return err
	}

	commitment, err := keys.LoadCommitment(settings.CommitmentPath)
	if err != nil {
		return err
	}

	raw, err := transport.SendRequest(settings.ServerAddress, prepared.Request)
	if err != nil {
		return err
	}

	resp, err := wire.DecodeIssueResponse(string(raw))
	if err != nil {
		return err
	}

	unblinded, err := client.ProcessIssueResponse(prepared.Tokens, resp, commitment.G, commitment.H)
	if err != nil {
		return err
	}

	for _, tk := range unblinded {
		if err := tokenStore.AddToken(tk.T, tk.N); err != nil {
			return err
		}
	}

	log.Info().Int("num_tokens", len(unblinded)).Msg("acquired tokens")
	return nil
}

func runShow(tokenStore *store.Store) error {
	tokens, points, err := tokenStore.ListTokens()
	if err != nil {
		return err
	}

	for i := range tokens {
		uncompressed := points[i].UncompressedBytes()
		x := uncompressed[1 : 1+ec.ModBytes]
		y := uncompressed[1+ec.ModBytes:]
		fmt.Printf("***\ntoken: %s, p: (x=%s, y=%s)\n***\n",
			hex.EncodeToString(tokens[i]), hex.EncodeToString(x), hex.EncodeToString(y))
	}
	return nil
}

func runRedeem(tokenStore *store.Store, host, path string) error {
	settings, err := config.LoadClient(settingsPath)
	if err != nil {
		return err
	}

	t, n, err := tokenStore.PopNextToken()
	if err != nil {
		return err
	}

	req, err := client.PrepareRedeemRequest(&token.Token{T: t, N: n}, host, path)
	if err != nil {
		return err
	}

	raw, err := transport.SendRequest(settings.ServerAddress, req)
	if err != nil {
		return err
	}

	log.Info().Str("response", string(raw)).Msg("redeem response")
	return nil
}
