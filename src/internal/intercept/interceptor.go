// FILE: src/internal/intercept/interceptor.go
package intercept

import (
	"fmt"
	"sync"
	"sync/atomic"

	"devconsole/src/internal/core"
	"devconsole/src/internal/format"

	"github.com/lixenwraith/log"
)

// Option configures an Interceptor at install time
type Option func(*Interceptor)

// WithClock sets the clock used to stamp records
func WithClock(clock core.Clock) Option {
	return func(i *Interceptor) {
		i.clock = clock
	}
}

// WithLogger sets the logger used for internal diagnostics
func WithLogger(logger *log.Logger) Option {
	return func(i *Interceptor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithStdLog also captures output written through the stdlib log package
func WithStdLog() Option {
	return func(i *Interceptor) {
		i.captureStdLog = true
	}
}

// WithSwallowPanics stops Recover from re-raising the panic after reporting it
func WithSwallowPanics() Option {
	return func(i *Interceptor) {
		i.swallowPanics = true
	}
}

// Interceptor is the handle returned by Install. It holds the original entry
// points and restores them on Uninstall.
type Interceptor struct {
	console   *Console
	sink      core.Sink
	clock     core.Clock
	logger    *log.Logger
	originals [numChannels]EntryFunc

	captureStdLog bool
	stdLog        *stdLogWriter
	swallowPanics bool

	installed   atomic.Bool
	sinkFailure sync.Once
	wg          sync.WaitGroup

	// Statistics
	delivered atomic.Uint64
	dropped   atomic.Uint64
}

// Stats counts records delivered to and dropped by the sink
type Stats struct {
	Installed bool
	Delivered uint64
	Dropped   uint64
}

// Install wraps the console's entry points so every call is reported to sink
// before being forwarded unchanged to the original entry point. The sink
// must be safe for concurrent use when the console is shared across goroutines.
func Install(c *Console, sink core.Sink, opts ...Option) (*Interceptor, error) {
	if c == nil {
		return nil, fmt.Errorf("install: console is nil")
	}
	if sink == nil {
		return nil, fmt.Errorf("install: sink is nil")
	}

	i := &Interceptor{
		console: c,
		sink:    sink,
		logger:  log.NewLogger(),
	}
	for _, opt := range opts {
		opt(i)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.active != nil {
		return nil, ErrAlreadyInstalled
	}

	if i.captureStdLog {
		if err := i.hookStdLog(); err != nil {
			return nil, err
		}
	}

	for ch := chanLog; ch < numChannels; ch++ {
		i.originals[ch] = c.entries[ch]
		c.entries[ch] = i.wrap(ch.category(), i.originals[ch])
	}

	c.active = i
	i.installed.Store(true)

	i.logger.Debug("msg", "Console interceptor installed",
		"component", "intercept",
		"stdlog", i.captureStdLog)
	return i, nil
}

// Reinstall uninstalls any active interceptor on c and installs a new one
func Reinstall(c *Console, sink core.Sink, opts ...Option) (*Interceptor, error) {
	if c == nil {
		return nil, fmt.Errorf("reinstall: console is nil")
	}

	c.mu.RLock()
	active := c.active
	c.mu.RUnlock()

	if active != nil {
		active.Uninstall()
	}
	return Install(c, sink, opts...)
}

// Uninstall restores the original entry points and stops all reporting.
// Calling it more than once is a no-op.
func (i *Interceptor) Uninstall() {
	if !i.installed.CompareAndSwap(true, false) {
		return
	}

	c := i.console
	c.mu.Lock()
	c.entries = i.originals
	if c.active == i {
		c.active = nil
	}
	c.mu.Unlock()

	if i.stdLog != nil {
		i.unhookStdLog()
	}

	i.logger.Debug("msg", "Console interceptor uninstalled",
		"component", "intercept",
		"delivered", i.delivered.Load(),
		"dropped", i.dropped.Load())
}

// Installed reports whether the interceptor is still active
func (i *Interceptor) Installed() bool {
	return i.installed.Load()
}

// Stats returns delivery statistics
func (i *Interceptor) Stats() Stats {
	return Stats{
		Installed: i.installed.Load(),
		Delivered: i.delivered.Load(),
		Dropped:   i.dropped.Load(),
	}
}

// ReportError reports a synchronous uncaught error under the error category
func (i *Interceptor) ReportError(ev ErrorEvent) {
	i.deliver(core.CategoryError, format.UncaughtError(ev.Message, ev.File, ev.Line, ev.Col))
}

// ReportRejection reports an asynchronous failure nobody handled
func (i *Interceptor) ReportRejection(reason any) {
	i.deliver(core.CategoryError, format.UnhandledRejection(reason))
}

// Recover reports a panic as an uncaught error. It must be deferred directly:
//
//	defer interceptor.Recover()
//
// The panic is re-raised afterwards unless WithSwallowPanics was given.
func (i *Interceptor) Recover() {
	r := recover()
	if r == nil {
		return
	}
	i.ReportError(panicEvent(r))
	if !i.swallowPanics {
		panic(r)
	}
}

// Guard runs fn and converts a panic into a reported uncaught error and a *PanicError
func (i *Interceptor) Guard(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ev := panicEvent(r)
			i.ReportError(ev)
			err = &PanicError{Value: r, Event: ev}
		}
	}()
	fn()
	return nil
}

// Go runs fn on a new goroutine. A returned error or a panic that nothing
// else observes is reported as an unhandled rejection.
func (i *Interceptor) Go(fn func() error) {
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				i.ReportRejection(r)
			}
		}()
		if err := fn(); err != nil {
			i.ReportRejection(err)
		}
	}()
}

// Wait blocks until every goroutine started with Go has returned
func (i *Interceptor) Wait() {
	i.wg.Wait()
}

func (i *Interceptor) wrap(category core.Category, original EntryFunc) EntryFunc {
	return func(args ...any) {
		i.deliver(category, format.Args(args...))
		if original != nil {
			original(args...)
		}
	}
}

// deliver hands a record to the sink. A panicking sink drops the record and
// is reported once through the internal logger.
func (i *Interceptor) deliver(category core.Category, text string) {
	if !i.installed.Load() {
		return
	}

	ts := core.Now(i.clock)
	defer func() {
		if r := recover(); r != nil {
			i.dropped.Add(1)
			i.sinkFailure.Do(func() {
				i.logger.Warn("msg", "Console sink failed, dropping records",
					"component", "intercept",
					"panic", fmt.Sprint(r))
			})
		}
	}()

	i.sink(ts, category, text)
	i.delivered.Add(1)
}
