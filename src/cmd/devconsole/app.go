// FILE: src/cmd/devconsole/app.go
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"devconsole/src/internal/config"
	"devconsole/src/internal/core"
	"devconsole/src/internal/filter"
	"devconsole/src/internal/intercept"
	"devconsole/src/internal/jsruntime"
	"devconsole/src/internal/limit"
	"devconsole/src/internal/panel"
	"devconsole/src/internal/server"
	"devconsole/src/internal/terminal"

	"github.com/lixenwraith/log"
)

// App wires capture, panel, terminal mirror and viewer server together
type App struct {
	cfg    *config.Config
	logger *log.Logger

	root    *panel.Element
	console *panel.Console
	mirror  *terminal.Writer
	filters *filter.Chain
	limiter *limit.SinkLimiter

	// Host-side capture: stdlib log output and Go panics
	host  *intercept.Console
	hooks *intercept.Interceptor

	page      *jsruntime.Page
	pageHooks *jsruntime.Interceptor

	server *server.Server
}

// Streams the App writes to. Tests substitute buffers.
type appIO struct {
	stdout io.Writer
	stderr io.Writer
}

// NewApp builds every component from cfg. Nothing is served until Start.
func NewApp(cfg *config.Config, streams appIO, logger *log.Logger) (*App, error) {
	if logger == nil {
		logger = log.NewLogger()
	}
	a := &App{
		cfg:    cfg,
		logger: logger,
		root:   panel.NewElement("body"),
	}

	console, err := panel.New(a.root, cfg.Panel.Colors.Overrides(),
		panel.WithCapacity(cfg.Panel.Capacity),
		panel.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create panel: %w", err)
	}
	a.console = console

	sinks := []core.Sink{console.Sink()}
	if cfg.Terminal != nil && cfg.Terminal.Enabled {
		out := streams.stdout
		if cfg.Terminal.Target == "stderr" {
			out = streams.stderr
		}
		a.mirror = terminal.New(out, console.Palette(),
			terminal.WithColor(terminal.ColorMode(cfg.Terminal.Color)),
			terminal.WithLogger(logger))
		sinks = append(sinks, a.mirror.Sink())
	}

	sink := core.Tee(sinks...)
	if cfg.Flow != nil {
		sink, a.limiter = limit.NewSink(sink, cfg.Flow.Rate, cfg.Flow.Burst, logger)
	}

	a.filters, err = filter.NewChain(cfg.Filters, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create filter chain: %w", err)
	}
	sink = a.filters.Sink(sink)

	// The mirror already prints every record; native output would duplicate it
	nativeOut, nativeErr := streams.stdout, streams.stderr
	if a.mirror != nil {
		nativeOut, nativeErr = io.Discard, io.Discard
	}

	a.host = intercept.NewConsole(nativeOut, nativeErr)
	a.hooks, err = intercept.Install(a.host, sink,
		intercept.WithStdLog(),
		intercept.WithSwallowPanics(),
		intercept.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to install host interceptor: %w", err)
	}

	a.page, err = jsruntime.NewPage(jsruntime.Options{
		Stdout: nativeOut,
		Stderr: nativeErr,
		Logger: logger,
	})
	if err != nil {
		a.hooks.Uninstall()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	a.pageHooks, err = jsruntime.Install(a.page, sink, jsruntime.WithLogger(logger))
	if err != nil {
		a.hooks.Uninstall()
		return nil, fmt.Errorf("failed to install page interceptor: %w", err)
	}

	if cfg.Server != nil && cfg.Server.Enabled {
		a.server, err = server.New(cfg.Server, console, logger)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("failed to create server: %w", err)
		}
	}

	return a, nil
}

// Start starts the viewer server when configured
func (a *App) Start() error {
	if a.server == nil {
		return nil
	}
	if err := a.server.Start(); err != nil {
		return err
	}
	a.host.Log("devconsole viewer listening on " + a.server.URL())
	return nil
}

// Serving reports whether the viewer server is configured
func (a *App) Serving() bool {
	return a.server != nil
}

// RunScripts runs each script file in order and returns the joined failures.
// A failing script does not stop the ones after it.
func (a *App) RunScripts(paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := a.runGuarded(func() error {
			_, err := a.page.RunFile(path)
			return err
		}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunSource runs an in-memory script under name
func (a *App) RunSource(name, src string) error {
	return a.runGuarded(func() error {
		_, err := a.page.Run(name, src)
		return err
	})
}

// runGuarded reports a host panic during fn as an uncaught error
func (a *App) runGuarded(fn func() error) error {
	var runErr error
	if err := a.hooks.Guard(func() { runErr = fn() }); err != nil {
		return err
	}
	return runErr
}

// Console returns the panel
func (a *App) Console() *panel.Console {
	return a.console
}

// LogStatus logs a one-shot status report
func (a *App) LogStatus() {
	ps := a.console.Stats()
	hs := a.hooks.Stats()

	fields := []any{
		"msg", "Status report",
		"component", "status_reporter",
		"panel_lines", ps.Lines,
		"panel_appended", ps.Appended,
		"panel_evicted", ps.Evicted,
		"subscribers", ps.Subscribers,
		"host_delivered", hs.Delivered,
		"host_dropped", hs.Dropped,
	}
	if a.mirror != nil {
		written, failed := a.mirror.Stats()
		fields = append(fields, "terminal_written", written, "terminal_failed", failed)
	}
	if a.limiter != nil {
		fields = append(fields, "flow", a.limiter.GetStats())
	}
	if a.server != nil {
		fields = append(fields, "viewers", a.server.ActiveClients())
	}
	a.logger.Info(fields...)
}

// Shutdown stops the server and restores the intercepted entry points
func (a *App) Shutdown(ctx context.Context) error {
	var err error
	if a.server != nil {
		err = a.server.Stop(ctx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if a.pageHooks != nil {
		a.pageHooks.Uninstall()
	}
	if a.hooks != nil {
		a.hooks.Wait()
		a.hooks.Uninstall()
	}
}

// statusReporter periodically logs App status until ctx is done
func statusReporter(ctx context.Context, a *App, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						a.logger.Error("msg", "Panic in status reporter",
							"component", "status_reporter",
							"panic", r)
					}
				}()
				a.LogStatus()
			}()
		}
	}
}
