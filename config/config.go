// Package config loads the YAML settings files the client and server
// binaries read at startup, ported from original_source/src/client.rs's
// ClientSettings and original_source/src/server.rs's ServerSettings (Rust's
// config::Config merging a single named file).
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Client mirrors client.rs's ClientSettings.
type Client struct {
	ServerAddress  string `yaml:"server_address"`
	CommitmentPath string `yaml:"commitment_path"`
	NumTokens      uint8  `yaml:"num_tokens"`
}

// Server mirrors server.rs's ServerSettings.
type Server struct {
	ListenAddress  string `yaml:"listen_address"`
	SecretKeyPath  string `yaml:"secret_key_path"`
	CommitmentPath string `yaml:"commitment_path"`
	MaxTokens      uint8  `yaml:"max_tokens"`
}

// LoadClient reads and parses a Client settings file.
func LoadClient(path string) (*Client, error) {
	var c Client
	if err := loadYAML(path, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadServer reads and parses a Server settings file.
func LoadServer(path string) (*Server, error) {
	var s Server
	if err := loadYAML(path, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, out)
}
