// Command ppserver runs the issuer: it loads its secret key and generator
// commitment, opens its token ledger, and accepts redeem/issue requests
// over raw TCP.
//
// Ported from original_source/src/bin/server/main.rs.
package main

import (
	"encoding/json"
	"net"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wurp/go-privacypass/config"
	"github.com/wurp/go-privacypass/keys"
	"github.com/wurp/go-privacypass/server"
	"github.com/wurp/go-privacypass/store"
	"github.com/wurp/go-privacypass/transport"
	"github.com/wurp/go-privacypass/wire"
)

const settingsPath = "server_settings.yaml"

const dbPath = "tokens_server.db"

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := run(); err != nil {
		log.Error().Err(err).Msg("server exited with error")
		os.Exit(1)
	}
}

func run() error {
	settings, err := config.LoadServer(settingsPath)
	if err != nil {
		return err
	}

	x, err := keys.LoadPrivateKey(settings.SecretKeyPath)
	if err != nil {
		return err
	}

	commitment, err := keys.LoadCommitment(settings.CommitmentPath)
	if err != nil {
		return err
	}

	backend, err := store.OpenLevelDBBackend(dbPath)
	if err != nil {
		return err
	}
	defer backend.Close()
	tokenStore := store.New(backend)

	processor := server.NewProcessor(x, commitment.G, settings.MaxTokens, tokenStore)
	// The commitment file's H must equal processor.Active.Y, or every
	// client in the field was handed a stale public key.
	if !commitment.H.Equal(processor.Active.Y) {
		log.Warn().Msg("commitment file H does not match derived Y; clients will fail verification")
	}

	listener, err := net.Listen("tcp", settings.ListenAddress)
	if err != nil {
		return err
	}
	defer listener.Close()

	log.Info().Str("address", settings.ListenAddress).Msg("listening")

	return transport.Serve(listener, func(msg []byte) ([]byte, error) {
		var wrapper wire.ClientRequestWrapper
		if err := json.Unmarshal(msg, &wrapper); err != nil {
			return nil, err
		}

		resp, err := processor.Dispatch(&wrapper)
		if err != nil {
			log.Error().Err(err).Msg("request failed")
			return []byte(err.Error()), nil
		}
		return []byte(resp), nil
	})
}
