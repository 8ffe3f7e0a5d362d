// FILE: src/internal/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

const envPrefix = "DEVCONSOLE_"

// LoadWithCLI merges CLI arguments, DEVCONSOLE_ environment variables, the
// config file and defaults, in that order of precedence, and validates the result.
func LoadWithCLI(cliArgs []string) (*Config, error) {
	return load(GetConfigPath(), cliArgs)
}

func load(configPath string, cliArgs []string) (*Config, error) {
	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix(envPrefix).
		WithFile(configPath).
		WithArgs(cliArgs).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	finalConfig := &Config{}
	if err := cfg.Scan(finalConfig); err != nil {
		return nil, fmt.Errorf("failed to scan config: %w", err)
	}

	return finalConfig, validateConfig(finalConfig)
}

func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ToUpper(env)
	env = envPrefix + env
	return env
}

// GetConfigPath resolves the config file from DEVCONSOLE_CONFIG_FILE and
// DEVCONSOLE_CONFIG_DIR, falling back to ~/.config/devconsole.toml.
func GetConfigPath() string {
	if configFile := os.Getenv("DEVCONSOLE_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("DEVCONSOLE_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("DEVCONSOLE_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "devconsole.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "devconsole.toml")
	}

	return "devconsole.toml"
}
