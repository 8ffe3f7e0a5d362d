// FILE: src/internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"devconsole/src/internal/auth"
	"devconsole/src/internal/config"
	"devconsole/src/internal/format"
	"devconsole/src/internal/limit"
	"devconsole/src/internal/panel"
	ltls "devconsole/src/internal/tls"
	"devconsole/src/internal/version"

	"github.com/lixenwraith/log"
	"github.com/lixenwraith/log/compat"
	"github.com/valyala/fasthttp"
)

const (
	pathPage   = "/"
	pathStream = "/stream"
	pathLines  = "/lines"
	pathStatus = "/status"
)

// Server is the HTTP viewer for a console panel: it serves the rendered
// page, streams new lines over SSE and exposes snapshot and status endpoints.
type Server struct {
	config    *config.ServerConfig
	console   *panel.Console
	formatter format.Formatter
	logger    *log.Logger

	server   *fasthttp.Server
	listener net.Listener

	authenticator *auth.Authenticator
	netLimiter    *limit.NetLimiter
	tlsManager    *ltls.ServerManager

	startTime     time.Time
	done          chan struct{}
	stopOnce      sync.Once
	wg            sync.WaitGroup
	activeClients atomic.Int64

	// Statistics
	totalStreamed atomic.Uint64
	authFailures  atomic.Uint64
	authSuccesses atomic.Uint64
}

// New creates a viewer for console. It does not listen until Start.
func New(cfg *config.ServerConfig, console *panel.Console, logger *log.Logger) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("server config cannot be nil")
	}
	if console == nil {
		return nil, fmt.Errorf("console cannot be nil")
	}
	if logger == nil {
		logger = log.NewLogger()
	}

	formatName := cfg.Format
	if formatName == "" {
		formatName = "json"
	}
	formatter, err := format.New(formatName, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter: %w", err)
	}

	s := &Server{
		config:    cfg,
		console:   console,
		formatter: formatter,
		logger:    logger,
		startTime: time.Now(),
		done:      make(chan struct{}),
	}

	if cfg.RateLimit != nil {
		s.netLimiter = limit.NewNetLimiter(*cfg.RateLimit, logger)
	}

	authenticator, err := auth.New(cfg.Auth, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticator: %w", err)
	}
	s.authenticator = authenticator

	tlsManager, err := ltls.NewServerManager(cfg.TLS, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create TLS manager: %w", err)
	}
	s.tlsManager = tlsManager

	s.server = &fasthttp.Server{
		Name:              fmt.Sprintf("devconsole/%s", version.Short()),
		Handler:           s.requestHandler,
		DisableKeepalive:  false,
		StreamRequestBody: true,
		Logger:            compat.NewFastHTTPAdapter(logger),
	}

	return s, nil
}

// Start binds the configured address and serves in the background
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.config.Host, strconv.FormatInt(s.config.Port, 10))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.serve(ln)
}

func (s *Server) serve(ln net.Listener) error {
	ln = s.tlsManager.Listener(ln)
	s.listener = ln

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("msg", "Viewer server started",
			"component", "server",
			"addr", ln.Addr().String(),
			"auth", s.authenticator != nil,
			"tls", s.tlsManager != nil,
			"net_limit", s.netLimiter != nil)

		if err := s.server.Serve(ln); err != nil {
			errChan <- err
		}
	}()

	// Check if server started successfully
	select {
	case err := <-errChan:
		return err
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Addr returns the bound address, or the configured one before Start
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return net.JoinHostPort(s.config.Host, strconv.FormatInt(s.config.Port, 10))
}

// URL returns the page address including the scheme
func (s *Server) URL() string {
	scheme := "http"
	if s.tlsManager != nil {
		scheme = "https"
	}
	return scheme + "://" + s.Addr() + pathPage
}

// Stop ends open streams and shuts the server down within ctx
func (s *Server) Stop(ctx context.Context) error {
	var err error
	s.stopOnce.Do(func() {
		s.logger.Info("msg", "Stopping viewer server", "component", "server")

		close(s.done)

		if s.listener != nil {
			if shutdownErr := s.server.ShutdownWithContext(ctx); shutdownErr != nil {
				err = fmt.Errorf("server shutdown: %w", shutdownErr)
			}
		}

		waited := make(chan struct{})
		go func() {
			s.wg.Wait()
			close(waited)
		}()
		select {
		case <-waited:
		case <-ctx.Done():
			err = errors.Join(err, fmt.Errorf("waiting for streams: %w", ctx.Err()))
		}

		s.netLimiter.Shutdown()
		s.logger.Info("msg", "Viewer server stopped", "component", "server")
	})
	return err
}

// ActiveClients returns the number of open streams
func (s *Server) ActiveClients() int64 {
	return s.activeClients.Load()
}
