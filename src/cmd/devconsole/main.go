// FILE: src/cmd/devconsole/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"devconsole/src/cmd/devconsole/commands"
	"devconsole/src/internal/config"
	"devconsole/src/internal/version"

	"github.com/lixenwraith/log"
	"golang.org/x/term"
)

var logger *log.Logger

func main() {
	// Subcommands run before any config or logger setup
	router := commands.NewCommandRouter()
	handled, err := router.Route(os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if handled {
		os.Exit(0)
	}

	flagCfg, err := ParseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	InitOutputHandler(flagCfg.Quiet)

	if flagCfg.ShowVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if flagCfg.ConfigFile != "" {
		os.Setenv("DEVCONSOLE_CONFIG_FILE", flagCfg.ConfigFile)
	}

	cfg, err := config.LoadWithCLI(flagCfg.ConfigArgs())
	if err != nil {
		if flagCfg.ConfigFile != "" && strings.Contains(err.Error(), "not found") {
			FatalError(2, "Config file not found: %s\n", flagCfg.ConfigFile)
		}
		FatalError(1, "Failed to load config: %v\n", err)
	}

	if flagCfg.SaveConfig != "" {
		if err := cfg.SaveToFile(flagCfg.SaveConfig); err != nil {
			FatalError(1, "Failed to save config: %v\n", err)
		}
		Print("Configuration written to %s\n", flagCfg.SaveConfig)
		os.Exit(0)
	}

	if err := initializeLogger(cfg, flagCfg.Quiet); err != nil {
		FatalError(1, "Failed to initialize logger: %v\n", err)
	}

	os.Exit(run(cfg, flagCfg))
}

// run owns the App lifecycle and returns the process exit code
func run(cfg *config.Config, flagCfg *FlagConfig) int {
	defer shutdownLogger()

	logger.Info("msg", "devconsole starting",
		"version", version.String(),
		"config_file", config.GetConfigPath(),
		"scripts", len(flagCfg.Scripts),
		"server", cfg.Server.Enabled)

	app, err := NewApp(cfg, appIO{stdout: os.Stdout, stderr: os.Stderr}, logger)
	if err != nil {
		Error("Failed to start: %v\n", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(); err != nil {
		Error("Failed to start viewer server: %v\n", err)
		app.Shutdown(ctx)
		return 1
	}

	exitCode := 0
	if err := runInputs(app, flagCfg.Scripts); err != nil {
		logger.Warn("msg", "Script failed", "error", err)
		exitCode = 1
	}

	if app.Serving() {
		go statusReporter(ctx, app, 30*time.Second)

		sh := NewSignalHandler(logger, app.LogStatus)
		sig := sh.Handle(ctx)
		sh.Stop()
		logger.Info("msg", "Shutdown signal received, starting graceful shutdown...",
			"signal", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error("msg", "Shutdown timeout exceeded", "error", err)
		return 1
	}
	logger.Info("msg", "Shutdown complete")
	return exitCode
}

// runInputs runs the given scripts, or stdin when none are given and stdin is piped
func runInputs(app *App, scripts []string) error {
	if len(scripts) > 0 {
		return app.RunScripts(scripts)
	}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	src, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	if len(src) == 0 {
		return nil
	}
	return app.RunSource("stdin", string(src))
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			Error("Logger shutdown error: %v\n", err)
		}
	}
}
