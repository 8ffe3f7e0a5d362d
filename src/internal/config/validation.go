// FILE: src/internal/config/validation.go
package config

import (
	"fmt"
	"net"
	"strings"

	"devconsole/src/internal/terminal"
)

// validateConfig is the centralized validator for the entire configuration
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if err := validateLogConfig(cfg.Logging); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	if err := validatePanel(cfg.Panel); err != nil {
		return fmt.Errorf("panel config: %w", err)
	}
	if err := validateTerminal(cfg.Terminal); err != nil {
		return fmt.Errorf("terminal config: %w", err)
	}
	if err := validateServer(cfg.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateFlow(cfg.Flow); err != nil {
		return fmt.Errorf("flow config: %w", err)
	}
	for i := range cfg.Filters {
		if err := validateFilter(i, &cfg.Filters[i]); err != nil {
			return err
		}
	}
	return nil
}

func validatePanel(cfg *PanelConfig) error {
	if cfg == nil {
		return fmt.Errorf("panel section missing")
	}
	for key, value := range cfg.Colors.Overrides() {
		if _, err := terminal.ParseColor(value); err != nil {
			return fmt.Errorf("color %s: %w", key, err)
		}
	}
	return nil
}

func validateTerminal(cfg *TerminalConfig) error {
	if cfg == nil {
		return nil
	}
	switch cfg.Target {
	case "", "stdout", "stderr":
	default:
		return fmt.Errorf("invalid target: %s", cfg.Target)
	}
	switch cfg.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode: %s", cfg.Color)
	}
	return nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg == nil || !cfg.Enabled {
		return nil
	}

	// 0 binds an ephemeral port
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d: must be 0-65535", cfg.Port)
	}

	if cfg.Host == "" {
		cfg.Host = "0.0.0.0"
	}
	if cfg.Host != "0.0.0.0" && cfg.Host != "localhost" {
		if net.ParseIP(cfg.Host) == nil {
			return fmt.Errorf("invalid host %q: must be an IP address or localhost", cfg.Host)
		}
	}

	if cfg.HeartbeatSeconds < 0 {
		return fmt.Errorf("heartbeat_seconds cannot be negative")
	}
	if cfg.BufferSize < 0 {
		return fmt.Errorf("buffer_size cannot be negative")
	}

	switch strings.ToLower(cfg.Format) {
	case "", "json", "text", "raw":
	default:
		return fmt.Errorf("invalid stream format: %s", cfg.Format)
	}

	if err := validateAuth(cfg.Auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := validateTLS(cfg.TLS); err != nil {
		return fmt.Errorf("tls: %w", err)
	}
	return validateNetLimit(cfg.RateLimit)
}

func validateNetLimit(cfg *NetLimitConfig) error {
	if cfg == nil {
		return nil
	}

	for _, entry := range cfg.IPWhitelist {
		if !validIPEntry(entry) {
			return fmt.Errorf("invalid IP whitelist entry: %s", entry)
		}
	}
	for _, entry := range cfg.IPBlacklist {
		if !validIPEntry(entry) {
			return fmt.Errorf("invalid IP blacklist entry: %s", entry)
		}
	}

	if !cfg.Enabled {
		return nil
	}
	if cfg.RequestsPerSecond <= 0 {
		return fmt.Errorf("requests_per_second must be positive")
	}
	if cfg.BurstSize <= 0 {
		return fmt.Errorf("burst_size must be positive")
	}
	if cfg.MaxConnectionsPerIP < 0 {
		return fmt.Errorf("max_connections_per_ip cannot be negative")
	}
	if cfg.ResponseCode != 0 && (cfg.ResponseCode < 400 || cfg.ResponseCode > 599) {
		return fmt.Errorf("response_code must be 4xx or 5xx: %d", cfg.ResponseCode)
	}
	return nil
}

func validateFlow(cfg *FlowConfig) error {
	if cfg == nil {
		return nil
	}
	if cfg.Rate < 0 {
		return fmt.Errorf("rate cannot be negative")
	}
	if cfg.Burst < 0 {
		return fmt.Errorf("burst cannot be negative")
	}
	return nil
}

func validIPEntry(entry string) bool {
	if strings.Contains(entry, "/") {
		_, _, err := net.ParseCIDR(entry)
		return err == nil
	}
	return net.ParseIP(entry) != nil
}
