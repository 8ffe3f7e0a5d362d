// FILE: src/internal/tls/server.go
package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"os"

	"devconsole/src/internal/config"

	"github.com/lixenwraith/log"
)

// ServerManager holds the TLS configuration of the viewer server
type ServerManager struct {
	config    *config.TLSServerConfig
	tlsConfig *tls.Config
	logger    *log.Logger
}

// NewServerManager loads the certificate pair. It returns nil, nil when TLS is disabled.
func NewServerManager(cfg *config.TLSServerConfig, logger *log.Logger) (*ServerManager, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}
	if logger == nil {
		logger = log.NewLogger()
	}

	tlsConfig, err := buildServerConfig(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("msg", "TLS enabled for viewer",
		"component", "tls",
		"min_version", tlsVersionString(tlsConfig.MinVersion),
		"max_version", tlsVersionString(tlsConfig.MaxVersion),
		"client_auth", cfg.ClientAuth)
	return &ServerManager{config: cfg, tlsConfig: tlsConfig, logger: logger}, nil
}

func buildServerConfig(cfg *config.TLSServerConfig) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load server cert/key: %w", err)
	}

	tc := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   parseTLSVersion(cfg.MinVersion, tls.VersionTLS12),
		MaxVersion:   parseTLSVersion(cfg.MaxVersion, tls.VersionTLS13),
		// fasthttp speaks HTTP/1.1 only
		NextProtos: []string{"http/1.1"},
	}
	if tc.MinVersion > tc.MaxVersion {
		return nil, fmt.Errorf("min_version %s is above max_version %s",
			tlsVersionString(tc.MinVersion), tlsVersionString(tc.MaxVersion))
	}
	if cfg.CipherSuites != "" {
		tc.CipherSuites = parseCipherSuites(cfg.CipherSuites)
	}

	if cfg.ClientAuth {
		pool, err := loadCertPool(cfg.ClientCAFile)
		if err != nil {
			return nil, fmt.Errorf("client_auth: %w", err)
		}
		tc.ClientCAs = pool
		tc.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return tc, nil
}

func loadCertPool(path string) (*x509.CertPool, error) {
	if path == "" {
		return nil, fmt.Errorf("client_ca_file is not specified")
	}
	pem, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, fmt.Errorf("no certificates found in %s", path)
	}
	return pool, nil
}

// Listener wraps ln so accepted connections speak TLS. A nil manager returns ln.
func (m *ServerManager) Listener(ln net.Listener) net.Listener {
	if m == nil {
		return ln
	}
	return tls.NewListener(ln, m.tlsConfig.Clone())
}

// GetStats returns statistics about the current server TLS configuration.
func (m *ServerManager) GetStats() map[string]any {
	if m == nil {
		return map[string]any{"enabled": false}
	}
	return map[string]any{
		"enabled":       true,
		"min_version":   tlsVersionString(m.tlsConfig.MinVersion),
		"max_version":   tlsVersionString(m.tlsConfig.MaxVersion),
		"client_auth":   m.config.ClientAuth,
		"cipher_suites": len(m.tlsConfig.CipherSuites),
	}
}
