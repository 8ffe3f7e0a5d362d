// FILE: src/cmd/devconsole/bootstrap.go
package main

import (
	"fmt"

	"devconsole/src/internal/config"

	"github.com/lixenwraith/log"
)

// initializeLogger creates the global diagnostics logger
func initializeLogger(cfg *config.Config, quiet bool) error {
	args, err := loggerArgs(cfg.Logging, quiet)
	if err != nil {
		return err
	}
	logger = log.NewLogger()
	if err := logger.ApplyConfigString(args...); err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}
	return logger.Start()
}

// loggerArgs translates [logging] into log.ApplyConfigString overrides
func loggerArgs(cfg *config.LogConfig, quiet bool) ([]string, error) {
	if quiet || cfg.Output == "none" {
		return []string{"disable_file=true", "enable_stdout=false", "level=255"}, nil
	}

	level, err := parseLogLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	args := []string{fmt.Sprintf("level=%d", level)}

	toFile := cfg.Output == "file" || cfg.Output == "both"
	toConsole := cfg.Output != "file"

	switch cfg.Output {
	case "stdout", "stderr":
		args = append(args, "stdout_target="+cfg.Output)
	case "both":
		args = append(args, consoleTargetArgs(cfg.Console)...)
	case "file":
	default:
		return nil, fmt.Errorf("invalid log output mode: %s", cfg.Output)
	}

	args = append(args,
		fmt.Sprintf("enable_stdout=%t", toConsole),
		fmt.Sprintf("disable_file=%t", !toFile))

	if toFile && cfg.File != nil {
		args = append(args,
			"directory="+cfg.File.Directory,
			"name="+cfg.File.Name,
			fmt.Sprintf("max_size_mb=%d", cfg.File.MaxSizeMB),
			fmt.Sprintf("max_total_size_mb=%d", cfg.File.MaxTotalSizeMB))
		if cfg.File.RetentionHours > 0 {
			args = append(args, fmt.Sprintf("retention_period_hrs=%.1f", cfg.File.RetentionHours))
		}
	}

	if cfg.Console != nil && cfg.Console.Format != "" {
		args = append(args, "format="+cfg.Console.Format)
	}
	return args, nil
}

// consoleTargetArgs routes console diagnostics; "split" sends errors to stderr
func consoleTargetArgs(console *config.LogConsoleConfig) []string {
	target := "stderr"
	if console != nil && console.Target != "" {
		target = console.Target
	}
	if target == "split" {
		return []string{"stdout_split_mode=true", "stdout_target=split"}
	}
	return []string{"stdout_target=" + target}
}
