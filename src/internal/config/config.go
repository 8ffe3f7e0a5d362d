// FILE: src/internal/config/config.go
package config

import "devconsole/src/internal/core"

// Config is the root configuration of the devconsole binary
type Config struct {
	Logging  *LogConfig      `toml:"logging"`
	Panel    *PanelConfig    `toml:"panel"`
	Terminal *TerminalConfig `toml:"terminal"`
	Server   *ServerConfig   `toml:"server"`
	Flow     *FlowConfig     `toml:"flow"`

	// Applied in order before rate limiting; all must pass
	Filters []FilterConfig `toml:"filters"`
}

// PanelConfig controls the in-memory console panel
type PanelConfig struct {
	// Maximum retained lines, 0 or less = unbounded
	Capacity int `toml:"capacity"`

	Colors *ColorConfig `toml:"colors"`
}

// ColorConfig overrides palette entries. Empty values keep the defaults.
type ColorConfig struct {
	LogText     string `toml:"log_text"`
	LogBg       string `toml:"log_bg"`
	WarnText    string `toml:"warn_text"`
	WarnBg      string `toml:"warn_bg"`
	ErrorText   string `toml:"error_text"`
	ErrorBg     string `toml:"error_bg"`
	ConsoleText string `toml:"console_text"`
	ConsoleBg   string `toml:"console_bg"`
}

// Overrides returns the non-empty colors keyed by palette key
func (c *ColorConfig) Overrides() map[string]string {
	out := make(map[string]string)
	if c == nil {
		return out
	}
	for key, value := range map[string]string{
		"logText":     c.LogText,
		"logBg":       c.LogBg,
		"warnText":    c.WarnText,
		"warnBg":      c.WarnBg,
		"errorText":   c.ErrorText,
		"errorBg":     c.ErrorBg,
		"consoleText": c.ConsoleText,
		"consoleBg":   c.ConsoleBg,
	} {
		if value != "" {
			out[key] = value
		}
	}
	return out
}

// TerminalConfig controls mirroring of captured records to the process terminal
type TerminalConfig struct {
	Enabled bool `toml:"enabled"`

	// Target: "stdout" or "stderr"
	Target string `toml:"target"`

	// Color: "auto", "always" or "never"
	Color string `toml:"color"`
}

// FlowConfig rate-limits records before they reach the sinks
type FlowConfig struct {
	// Records per second, 0 = unlimited
	Rate float64 `toml:"rate"`

	// Burst size, defaults to Rate
	Burst float64 `toml:"burst"`
}

func defaults() *Config {
	return &Config{
		Logging: DefaultLogConfig(),
		Panel: &PanelConfig{
			Capacity: core.DefaultPanelCapacity,
			Colors:   &ColorConfig{},
		},
		Terminal: &TerminalConfig{
			Enabled: true,
			Target:  "stdout",
			Color:   "auto",
		},
		Server: &ServerConfig{
			Enabled:          false,
			Host:             "127.0.0.1",
			Port:             8080,
			BufferSize:       core.DefaultSubscriberBuffer,
			HeartbeatSeconds: 30,
			Format:           "json",
			Auth: &AuthConfig{
				Type: "none",
			},
			RateLimit: &NetLimitConfig{
				Enabled:           false,
				RequestsPerSecond: 10,
				BurstSize:         20,
			},
			TLS: &TLSServerConfig{
				Enabled:    false,
				MinVersion: "TLS1.2",
				MaxVersion: "TLS1.3",
			},
		},
		Flow: &FlowConfig{},
	}
}

// Defaults returns the built-in configuration
func Defaults() *Config {
	return defaults()
}
