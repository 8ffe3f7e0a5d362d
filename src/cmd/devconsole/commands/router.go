// FILE: src/cmd/devconsole/commands/router.go
package commands

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
)

// Handler is implemented by every subcommand
type Handler interface {
	Execute(args []string) error
	Description() string
	Help() string
}

// CommandRouter dispatches os.Args to subcommands. Anything that is not a
// registered name (flags, script paths) is left for the main app.
type CommandRouter struct {
	commands map[string]Handler
	out      io.Writer
}

func NewCommandRouter() *CommandRouter {
	r := &CommandRouter{out: os.Stdout}
	r.commands = map[string]Handler{
		"auth":    NewAuthCommand(),
		"tls":     NewTLSCommand(),
		"version": NewVersionCommand(r.out),
		"help":    NewHelpCommand(r),
	}
	return r
}

// Route runs the subcommand named by args[1], if any.
// handled is false when the invocation belongs to the main app.
func (r *CommandRouter) Route(args []string) (handled bool, err error) {
	if len(args) < 2 {
		return false, nil
	}

	name := args[1]
	handler, known := r.commands[name]

	if slices.ContainsFunc(args[1:], isHelpFlag) {
		if known && name != "help" {
			fmt.Fprint(r.out, handler.Help())
			return true, nil
		}
		return true, r.commands["help"].Execute(nil)
	}

	if !known {
		return false, nil
	}
	return true, handler.Execute(args[2:])
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "-help" || arg == "--help"
}

// GetCommand looks up a handler by name
func (r *CommandRouter) GetCommand(name string) (Handler, bool) {
	h, ok := r.commands[name]
	return h, ok
}

// CommandNames returns registered names in sorted order
func (r *CommandRouter) CommandNames() []string {
	return slices.Sorted(maps.Keys(r.commands))
}
