// FILE: src/cmd/devconsole/commands/help.go
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// generalHelpTemplate takes the command list as its only verb
const generalHelpTemplate = `devconsole: capture console output into a styled, scrollable panel.

Usage:
  devconsole [command] [options]
  devconsole [options] [script.js ...]

Commands:
%s

Application Options:
  -config <path>        Path to configuration file (default: ~/.config/devconsole.toml)
  -listen <host:port>   Serve the panel to browsers
  -capacity <n>         Maximum retained panel lines
  -version              Display version information and exit
  -quiet                Suppress all diagnostic output
  -save-config <path>   Write the effective configuration and exit

For command-specific help:
  devconsole help <command>
  devconsole <command> --help

Configuration Sources (Precedence: CLI > Env > File > Defaults):
  - CLI flags override all other settings
  - DEVCONSOLE_ environment variables override file settings
  - TOML configuration file is the primary method

Examples:
  # Run a script with a custom config
  devconsole -config ./devconsole.toml app.js

  # Keep the panel available to browsers
  devconsole -listen :8080 app.js
`

// HelpCommand prints general or per-command help
type HelpCommand struct {
	router *CommandRouter
}

func NewHelpCommand(router *CommandRouter) *HelpCommand {
	return &HelpCommand{router: router}
}

// Execute prints help for args[0], or the general help without arguments
func (c *HelpCommand) Execute(args []string) error {
	if len(args) == 0 || args[0] == "" {
		fmt.Fprintf(c.router.out, generalHelpTemplate, c.commandList())
		return nil
	}

	handler, ok := c.router.GetCommand(args[0])
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	fmt.Fprint(c.router.out, handler.Help())
	return nil
}

func (c *HelpCommand) Description() string {
	return "Display help information"
}

func (c *HelpCommand) Help() string {
	return `Help Command - Display help information

Usage:
  devconsole help              Show general help
  devconsole help <command>    Show help for a specific command
`
}

// commandList renders "  name  description" rows, aligned
func (c *HelpCommand) commandList() string {
	var buf strings.Builder
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	for _, name := range c.router.CommandNames() {
		handler, _ := c.router.GetCommand(name)
		fmt.Fprintf(tw, "  %s\t%s\n", name, handler.Description())
	}
	tw.Flush()
	return strings.TrimRight(buf.String(), "\n")
}
