package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadClient(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "client_settings.yaml")
	contents := "server_address: 127.0.0.1:9000\ncommitment_path: commitment.json\nnum_tokens: 5\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	c, err := LoadClient(path)
	if err != nil {
		t.Fatalf("LoadClient failed: %v", err)
	}
	if c.ServerAddress != "127.0.0.1:9000" || c.CommitmentPath != "commitment.json" || c.NumTokens != 5 {
		t.Fatalf("unexpected client settings: %+v", c)
	}
}

func TestLoadServer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "server_settings.yaml")
	contents := "listen_address: 0.0.0.0:9000\nsecret_key_path: key.pem\ncommitment_path: commitment.json\nmax_tokens: 50\n"
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s, err := LoadServer(path)
	if err != nil {
		t.Fatalf("LoadServer failed: %v", err)
	}
	if s.ListenAddress != "0.0.0.0:9000" || s.SecretKeyPath != "key.pem" || s.MaxTokens != 50 {
		t.Fatalf("unexpected server settings: %+v", s)
	}
}

func TestLoadClientMissingFile(t *testing.T) {
	if _, err := LoadClient("/nonexistent/path/client_settings.yaml"); err == nil {
		t.Fatalf("expected error for a missing file")
	}
}
