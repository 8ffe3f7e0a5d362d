// FILE: src/internal/config/saver.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lconfig "github.com/lixenwraith/config"
)

// SaveToFile validates the configuration and writes it as TOML to path,
// creating the parent directory when needed.
func (c *Config) SaveToFile(path string) error {
	if path == "" {
		return fmt.Errorf("cannot save config: path is empty")
	}
	if err := validateConfig(c); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	lcfg, err := lconfig.NewBuilder().
		WithFile(path).
		WithTarget(c).
		WithFileFormat("toml").
		Build()
	if err != nil && !strings.Contains(err.Error(), "not found") {
		return fmt.Errorf("failed to create config builder: %w", err)
	}

	if err := lcfg.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return nil
}
