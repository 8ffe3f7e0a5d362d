// FILE: src/cmd/devconsole/flags.go
package main

import (
	"flag"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"

	"github.com/lixenwraith/log"
)

// FlagConfig holds the parsed command line
type FlagConfig struct {
	ConfigFile  string
	Listen      string
	Capacity    int
	ShowVersion bool
	Quiet       bool
	SaveConfig  string
	LogLevel    string
	LogOutput   string
	Color       string
	NoTerminal  bool

	// Positional arguments: scripts to run in order
	Scripts []string
}

// ParseFlags parses args (without the program name)
func ParseFlags(args []string) (*FlagConfig, error) {
	return parseFlags(args, os.Stderr)
}

func parseFlags(args []string, errOut io.Writer) (*FlagConfig, error) {
	fc := &FlagConfig{}

	fs := flag.NewFlagSet("devconsole", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() { customUsage(errOut) }

	fs.StringVar(&fc.ConfigFile, "config", "", "Config file path")
	fs.StringVar(&fc.Listen, "listen", "", "Serve the panel on host:port (enables the viewer server)")
	fs.IntVar(&fc.Capacity, "capacity", 0, "Maximum retained panel lines (overrides config)")
	fs.BoolVar(&fc.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&fc.Quiet, "quiet", false, "Suppress all diagnostic output")
	fs.StringVar(&fc.SaveConfig, "save-config", "", "Write the effective configuration to a TOML file and exit")
	fs.StringVar(&fc.LogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	fs.StringVar(&fc.LogOutput, "log-output", "", "Log output: file, stdout, stderr, both, none (overrides config)")
	fs.StringVar(&fc.Color, "color", "", "Terminal color: auto, always, never (overrides config)")
	fs.BoolVar(&fc.NoTerminal, "no-terminal", false, "Do not mirror captured records to the terminal")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fc.Scripts = fs.Args()

	if err := fc.validate(); err != nil {
		return nil, err
	}
	return fc, nil
}

func (fc *FlagConfig) validate() error {
	if fc.LogOutput != "" {
		validOutputs := map[string]bool{
			"file": true, "stdout": true, "stderr": true,
			"both": true, "none": true,
		}
		if !validOutputs[fc.LogOutput] {
			return fmt.Errorf("invalid log-output: %s (valid: file, stdout, stderr, both, none)", fc.LogOutput)
		}
	}

	if fc.LogLevel != "" {
		if _, err := parseLogLevel(fc.LogLevel); err != nil {
			return fmt.Errorf("invalid log-level: %s (valid: debug, info, warn, error)", fc.LogLevel)
		}
	}

	switch fc.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color: %s (valid: auto, always, never)", fc.Color)
	}

	if fc.Capacity < 0 {
		return fmt.Errorf("invalid capacity: %d", fc.Capacity)
	}

	if fc.Listen != "" {
		if _, _, err := splitListen(fc.Listen); err != nil {
			return err
		}
	}
	return nil
}

// ConfigArgs converts flag overrides into config CLI arguments
func (fc *FlagConfig) ConfigArgs() []string {
	var args []string
	set := func(key string, value any) {
		args = append(args, fmt.Sprintf("--%s=%v", key, value))
	}

	if fc.Listen != "" {
		host, port, _ := splitListen(fc.Listen)
		set("server.enabled", true)
		set("server.host", host)
		set("server.port", port)
	}
	if fc.Capacity > 0 {
		set("panel.capacity", fc.Capacity)
	}
	if fc.LogLevel != "" {
		set("logging.level", strings.ToLower(fc.LogLevel))
	}
	if fc.LogOutput != "" {
		set("logging.output", fc.LogOutput)
	}
	if fc.Color != "" {
		set("terminal.color", fc.Color)
	}
	if fc.NoTerminal {
		set("terminal.enabled", false)
	}
	return args
}

// splitListen accepts "host:port" or ":port"
func splitListen(listen string) (string, int64, error) {
	host, portStr, err := net.SplitHostPort(listen)
	if err != nil {
		return "", 0, fmt.Errorf("invalid listen address %q: %w", listen, err)
	}
	port, err := strconv.ParseInt(portStr, 10, 64)
	if err != nil || port < 0 || port > 65535 {
		return "", 0, fmt.Errorf("invalid listen port %q", portStr)
	}
	if host == "" {
		host = "0.0.0.0"
	}
	return host, port, nil
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}

func customUsage(w io.Writer) {
	fmt.Fprintf(w, "devconsole - capture console output into a styled panel\n\n")
	fmt.Fprintf(w, "Usage: devconsole [options] [script.js ...]\n")
	fmt.Fprintf(w, "       devconsole <command> [options]\n\n")

	fmt.Fprintf(w, "General:\n")
	fmt.Fprintf(w, "  -config string\n\tConfig file path\n")
	fmt.Fprintf(w, "  -listen string\n\tServe the panel on host:port (enables the viewer server)\n")
	fmt.Fprintf(w, "  -capacity int\n\tMaximum retained panel lines (overrides config)\n")
	fmt.Fprintf(w, "  -version\n\tShow version information\n")
	fmt.Fprintf(w, "  -quiet\n\tSuppress all diagnostic output\n")
	fmt.Fprintf(w, "  -save-config string\n\tWrite the effective configuration to a TOML file and exit\n")

	fmt.Fprintf(w, "\nTerminal:\n")
	fmt.Fprintf(w, "  -color string\n\tTerminal color: auto, always, never (overrides config)\n")
	fmt.Fprintf(w, "  -no-terminal\n\tDo not mirror captured records to the terminal\n")

	fmt.Fprintf(w, "\nLogging:\n")
	fmt.Fprintf(w, "  -log-output string\n\tLog output: file, stdout, stderr, both, none (overrides config)\n")
	fmt.Fprintf(w, "  -log-level string\n\tLog level: debug, info, warn, error (overrides config)\n")

	fmt.Fprintf(w, "\nExamples:\n")
	fmt.Fprintf(w, "  # Run a script and mirror its console to the terminal\n")
	fmt.Fprintf(w, "  devconsole app.js\n\n")
	fmt.Fprintf(w, "  # Keep the panel open in a browser at http://127.0.0.1:8080/\n")
	fmt.Fprintf(w, "  devconsole -listen 127.0.0.1:8080 app.js\n\n")
	fmt.Fprintf(w, "  # Pipe a script through stdin\n")
	fmt.Fprintf(w, "  echo 'console.warn(\"hot\")' | devconsole\n\n")

	fmt.Fprintf(w, "Environment Variables:\n")
	fmt.Fprintf(w, "  DEVCONSOLE_CONFIG_FILE   Config file path\n")
	fmt.Fprintf(w, "  DEVCONSOLE_CONFIG_DIR    Config directory\n")
	fmt.Fprintf(w, "  DEVCONSOLE_<SECTION>_<KEY>  Any config key, e.g. DEVCONSOLE_SERVER_PORT\n")
}
