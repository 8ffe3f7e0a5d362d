// FILE: src/internal/config/server.go
package config

// ServerConfig controls the HTTP viewer
type ServerConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int64  `toml:"port"`

	// Per-client line buffer for the SSE stream
	BufferSize int `toml:"buffer_size"`

	// Comment heartbeat interval on /stream, 0 = disabled
	HeartbeatSeconds int `toml:"heartbeat_seconds"`

	// SSE payload format: "json", "text" or "raw"
	Format string `toml:"format"`

	Auth      *AuthConfig      `toml:"auth"`
	RateLimit *NetLimitConfig  `toml:"rate_limit"`
	TLS       *TLSServerConfig `toml:"tls"`
}

// NetLimitConfig limits viewer requests per client IP
type NetLimitConfig struct {
	Enabled bool `toml:"enabled"`

	RequestsPerSecond float64 `toml:"requests_per_second"`
	BurstSize         int     `toml:"burst_size"`

	// Concurrent /stream clients per IP, 0 = unlimited
	MaxConnectionsPerIP int64 `toml:"max_connections_per_ip"`

	// Response when rate limited
	ResponseCode    int64  `toml:"response_code"`    // Default: 429
	ResponseMessage string `toml:"response_message"` // Default: "Rate limit exceeded"

	IPWhitelist []string `toml:"ip_whitelist"`
	IPBlacklist []string `toml:"ip_blacklist"`
}
