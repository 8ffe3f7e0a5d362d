// FILE: src/internal/intercept/console.go
package intercept

import (
	"fmt"
	"io"
	"os"
	"sync"

	"devconsole/src/internal/core"
)

// EntryFunc is one console logging entry point
type EntryFunc func(args ...any)

type channel int

const (
	chanLog channel = iota
	chanWarn
	chanError
	numChannels
)

func (c channel) category() core.Category {
	switch c {
	case chanWarn:
		return core.CategoryWarn
	case chanError:
		return core.CategoryError
	default:
		return core.CategoryLog
	}
}

// Console holds the three replaceable logging entry points of a host.
// Calls are dispatched through whatever entry point is currently installed.
type Console struct {
	mu      sync.RWMutex
	entries [numChannels]EntryFunc
	active  *Interceptor
}

// NewConsole creates a console whose native entry points print their
// arguments, log to stdout and warn/error to stderr.
func NewConsole(stdout, stderr io.Writer) *Console {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}

	c := &Console{}
	c.entries[chanLog] = printer(stdout)
	c.entries[chanWarn] = printer(stderr)
	c.entries[chanError] = printer(stderr)
	return c
}

// NewConsoleFuncs creates a console from explicit entry points; nil entries are no-ops
func NewConsoleFuncs(logFn, warnFn, errorFn EntryFunc) *Console {
	c := &Console{}
	c.entries[chanLog] = logFn
	c.entries[chanWarn] = warnFn
	c.entries[chanError] = errorFn
	return c
}

// Default is the process-wide console used by the package-level Log, Warn and Error
var Default = NewConsole(os.Stdout, os.Stderr)

// Log calls the informational entry point
func (c *Console) Log(args ...any) { c.call(chanLog, args) }

// Warn calls the warning entry point
func (c *Console) Warn(args ...any) { c.call(chanWarn, args) }

// Error calls the error entry point
func (c *Console) Error(args ...any) { c.call(chanError, args) }

// Installed reports whether an interceptor is currently active on c
func (c *Console) Installed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active != nil
}

func (c *Console) call(ch channel, args []any) {
	c.mu.RLock()
	fn := c.entries[ch]
	c.mu.RUnlock()

	if fn != nil {
		fn(args...)
	}
}

func printer(w io.Writer) EntryFunc {
	var mu sync.Mutex
	return func(args ...any) {
		line := fmt.Sprintln(args...)
		mu.Lock()
		io.WriteString(w, line)
		mu.Unlock()
	}
}

// Log calls Default.Log
func Log(args ...any) { Default.Log(args...) }

// Warn calls Default.Warn
func Warn(args ...any) { Default.Warn(args...) }

// Error calls Default.Error
func Error(args ...any) { Default.Error(args...) }
