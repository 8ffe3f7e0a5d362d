// FILE: src/internal/config/tls.go
package config

import (
	"fmt"
	"os"
	"strings"
)

// TLSServerConfig serves the viewer over HTTPS
type TLSServerConfig struct {
	Enabled  bool   `toml:"enabled"`
	CertFile string `toml:"cert_file"`
	KeyFile  string `toml:"key_file"`

	// Client certificate authentication
	ClientAuth   bool   `toml:"client_auth"`
	ClientCAFile string `toml:"client_ca_file"`

	// TLS version constraints: "TLS1.2", "TLS1.3"
	MinVersion string `toml:"min_version"`
	MaxVersion string `toml:"max_version"`

	// Cipher suites (comma-separated list)
	CipherSuites string `toml:"cipher_suites"`
}

func validateTLS(cfg *TLSServerConfig) error {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return fmt.Errorf("TLS enabled but cert/key files not specified")
	}
	if _, err := os.Stat(cfg.CertFile); err != nil {
		return fmt.Errorf("cert_file is not accessible: %w", err)
	}
	if _, err := os.Stat(cfg.KeyFile); err != nil {
		return fmt.Errorf("key_file is not accessible: %w", err)
	}

	if cfg.ClientAuth {
		if cfg.ClientCAFile == "" {
			return fmt.Errorf("client auth enabled but client_ca_file not specified")
		}
		if _, err := os.Stat(cfg.ClientCAFile); err != nil {
			return fmt.Errorf("client_ca_file is not accessible: %w", err)
		}
	}

	for name, v := range map[string]string{"min_version": cfg.MinVersion, "max_version": cfg.MaxVersion} {
		switch strings.ToUpper(v) {
		case "", "TLS1.2", "TLS12", "TLS1.3", "TLS13":
		default:
			return fmt.Errorf("invalid %s: %s (must be TLS1.2 or TLS1.3)", name, v)
		}
	}

	return nil
}
