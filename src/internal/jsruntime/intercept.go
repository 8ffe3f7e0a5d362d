// FILE: src/internal/jsruntime/intercept.go
package jsruntime

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"devconsole/src/internal/core"
	"devconsole/src/internal/format"

	"github.com/dop251/goja"
	"github.com/lixenwraith/log"
)

// ErrAlreadyInstalled is returned when the page already carries an interceptor
var ErrAlreadyInstalled = errors.New("console interceptor already installed on page")

var consoleMethods = []struct {
	name     string
	category core.Category
}{
	{"log", core.CategoryLog},
	{"warn", core.CategoryWarn},
	{"error", core.CategoryError},
}

// Option configures a page interceptor
type Option func(*Interceptor)

// WithClock sets the clock used to stamp records
func WithClock(clock core.Clock) Option {
	return func(i *Interceptor) {
		i.clock = clock
	}
}

// WithLogger overrides the page's logger for interceptor diagnostics
func WithLogger(logger *log.Logger) Option {
	return func(i *Interceptor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// Interceptor wraps a page's console methods and receives its uncaught
// exceptions and unhandled rejections.
type Interceptor struct {
	page      *Page
	sink      core.Sink
	clock     core.Clock
	logger    *log.Logger
	originals map[string]goja.Value

	installed   atomic.Bool
	sinkFailure sync.Once
}

// Install wraps console.log, console.warn and console.error on the page.
// It must not be called from inside a running script.
func Install(page *Page, sink core.Sink, opts ...Option) (*Interceptor, error) {
	if page == nil {
		return nil, fmt.Errorf("install: page is nil")
	}
	if sink == nil {
		return nil, fmt.Errorf("install: sink is nil")
	}

	i := &Interceptor{
		page:      page,
		sink:      sink,
		logger:    page.logger,
		originals: make(map[string]goja.Value, len(consoleMethods)),
	}
	for _, opt := range opts {
		opt(i)
	}

	page.mu.Lock()
	defer page.mu.Unlock()

	if page.hooks != nil {
		return nil, ErrAlreadyInstalled
	}

	wrapped := make(map[string]func(goja.FunctionCall) goja.Value, len(consoleMethods))
	for _, m := range consoleMethods {
		orig := page.console.Get(m.name)
		fn, ok := goja.AssertFunction(orig)
		if !ok {
			return nil, fmt.Errorf("install: console.%s is not a function", m.name)
		}
		i.originals[m.name] = orig
		wrapped[m.name] = i.wrap(m.category, fn)
	}
	for name, fn := range wrapped {
		if err := page.console.Set(name, fn); err != nil {
			i.restore()
			return nil, fmt.Errorf("install: replace console.%s: %w", name, err)
		}
	}

	page.hooks = i
	i.installed.Store(true)

	i.logger.Debug("msg", "Page console interceptor installed", "component", "jsruntime")
	return i, nil
}

// Uninstall restores the original console methods and detaches error reporting.
// It must not be called from inside a running script.
func (i *Interceptor) Uninstall() {
	if !i.installed.CompareAndSwap(true, false) {
		return
	}

	i.page.mu.Lock()
	defer i.page.mu.Unlock()

	i.restore()
	if i.page.hooks == i {
		i.page.hooks = nil
	}
	i.logger.Debug("msg", "Page console interceptor uninstalled", "component", "jsruntime")
}

// Installed reports whether the interceptor is still active
func (i *Interceptor) Installed() bool {
	return i.installed.Load()
}

// ReportException reports an uncaught script exception with its throw position
func (i *Interceptor) ReportException(script string, ex *goja.Exception) {
	file, line, col := script, 0, 0
	for _, frame := range ex.Stack() {
		pos := frame.Position()
		if pos.Line == 0 {
			continue
		}
		if pos.Filename != "" {
			file = pos.Filename
		}
		line, col = pos.Line, pos.Column
		break
	}
	i.deliver(core.CategoryError, format.UncaughtError(exceptionMessage(ex), file, line, col))
}

// ReportRejection reports an unhandled promise rejection reason
func (i *Interceptor) ReportRejection(reason string) {
	i.deliver(core.CategoryError, format.UnhandledRejection(reason))
}

func (i *Interceptor) restore() {
	for name, orig := range i.originals {
		if err := i.page.console.Set(name, orig); err != nil {
			i.logger.Error("msg", "Failed to restore console method",
				"component", "jsruntime",
				"method", name,
				"error", err)
		}
	}
}

func (i *Interceptor) wrap(category core.Category, original goja.Callable) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for n, arg := range call.Arguments {
			parts[n] = i.page.argText(arg)
		}
		i.deliver(category, strings.Join(parts, " "))

		res, err := original(call.This, call.Arguments...)
		if err != nil {
			var ex *goja.Exception
			if errors.As(err, &ex) {
				panic(ex)
			}
			panic(i.page.vm.NewGoError(err))
		}
		return res
	}
}

func (i *Interceptor) deliver(category core.Category, text string) {
	if !i.installed.Load() {
		return
	}

	ts := core.Now(i.clock)
	defer func() {
		if r := recover(); r != nil {
			i.sinkFailure.Do(func() {
				i.logger.Warn("msg", "Page console sink failed, dropping records",
					"component", "jsruntime",
					"panic", fmt.Sprint(r))
			})
		}
	}()
	i.sink(ts, category, text)
}

func exceptionMessage(ex *goja.Exception) string {
	v := ex.Value()
	if v == nil {
		return ex.Error()
	}
	if obj, ok := v.(*goja.Object); ok {
		if m := obj.Get("message"); m != nil && !goja.IsUndefined(m) {
			return m.String()
		}
	}
	return v.String()
}
