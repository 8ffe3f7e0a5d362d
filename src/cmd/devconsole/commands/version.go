// FILE: src/cmd/devconsole/commands/version.go
package commands

import (
	"fmt"
	"io"

	"devconsole/src/internal/version"
)

// VersionCommand handles version display
type VersionCommand struct {
	out io.Writer
}

// NewVersionCommand creates a new version command
func NewVersionCommand(out io.Writer) *VersionCommand {
	return &VersionCommand{out: out}
}

func (c *VersionCommand) Execute(args []string) error {
	if len(args) > 0 && (args[0] == "-s" || args[0] == "--short") {
		fmt.Fprintln(c.out, version.Short())
		return nil
	}
	fmt.Fprintln(c.out, version.String())
	info := version.Get()
	fmt.Fprintf(c.out, "go: %s\n", info.GoVersion)
	return nil
}

func (c *VersionCommand) Description() string {
	return "Show version information"
}

func (c *VersionCommand) Help() string {
	return `Version Command - Show devconsole version information

Usage:
  devconsole version
  devconsole version --short
  devconsole -version

Output includes:
  - Version number
  - Build date
  - Git commit hash (if available)
  - Go version used for compilation
`
}
