// FILE: src/internal/server/handler.go
package server

import (
	"time"

	"devconsole/src/internal/version"

	"github.com/segmentio/encoding/json"
	"github.com/valyala/fasthttp"
)

func (s *Server) requestHandler(ctx *fasthttp.RequestCtx) {
	remoteAddr := ctx.RemoteAddr().String()

	if allowed, statusCode, message := s.netLimiter.CheckHTTP(remoteAddr); !allowed {
		s.logger.Warn("msg", "Net limited",
			"component", "server",
			"remote_addr", remoteAddr,
			"status_code", statusCode,
			"error", message)
		writeJSON(ctx, statusCode, map[string]any{"error": message})
		return
	}

	if !ctx.IsGet() && !ctx.IsHead() {
		writeJSON(ctx, fasthttp.StatusMethodNotAllowed, map[string]any{"error": "Method Not Allowed"})
		return
	}

	path := string(ctx.Path())

	// Status endpoint doesn't require auth
	if path == pathStatus {
		s.handleStatus(ctx)
		return
	}

	switch path {
	case pathPage, pathStream, pathLines:
	default:
		writeJSON(ctx, fasthttp.StatusNotFound, map[string]any{"error": "Not Found"})
		return
	}

	authHeader := string(ctx.Request.Header.Peek("Authorization"))
	queryToken := string(ctx.QueryArgs().Peek("token"))
	session, err := s.authenticator.Authenticate(authHeader, queryToken, remoteAddr)
	if err != nil {
		s.authFailures.Add(1)
		s.logger.Warn("msg", "Authentication failed",
			"component", "server",
			"remote_addr", remoteAddr,
			"error", err)

		if challenge := s.authenticator.Challenge(); challenge != "" {
			ctx.Response.Header.Set("WWW-Authenticate", challenge)
		}
		writeJSON(ctx, fasthttp.StatusUnauthorized, map[string]any{"error": "Unauthorized"})
		return
	}
	if s.authenticator != nil {
		s.authSuccesses.Add(1)
	}

	switch path {
	case pathPage:
		s.handlePage(ctx, queryToken)
	case pathStream:
		s.handleStream(ctx, session)
	case pathLines:
		s.handleLines(ctx)
	}
}

func (s *Server) handleLines(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, s.console.Lines())
}

func (s *Server) handleStatus(ctx *fasthttp.RequestCtx) {
	panelStats := s.console.Stats()

	status := map[string]any{
		"service": "devconsole",
		"version": version.Get(),
		"server": map[string]any{
			"addr":           s.Addr(),
			"active_clients": s.activeClients.Load(),
			"buffer_size":    s.config.BufferSize,
			"format":         s.formatter.Name(),
			"uptime_seconds": int(time.Since(s.startTime).Seconds()),
		},
		"endpoints": map[string]string{
			"page":   pathPage,
			"stream": pathStream,
			"lines":  pathLines,
			"status": pathStatus,
		},
		"panel": map[string]any{
			"lines":       panelStats.Lines,
			"capacity":    panelStats.Capacity,
			"appended":    panelStats.Appended,
			"evicted":     panelStats.Evicted,
			"dropped":     panelStats.Dropped,
			"subscribers": panelStats.Subscribers,
		},
		"features": map[string]any{
			"heartbeat_seconds": s.config.HeartbeatSeconds,
			"auth":              s.authenticator.GetStats(),
			"net_limit":         s.netLimiter.GetStats(),
			"tls":               s.tlsManager.GetStats(),
		},
		"statistics": map[string]any{
			"total_streamed": s.totalStreamed.Load(),
			"auth_failures":  s.authFailures.Load(),
			"auth_successes": s.authSuccesses.Load(),
		},
	}

	writeJSON(ctx, fasthttp.StatusOK, status)
}

func writeJSON(ctx *fasthttp.RequestCtx, statusCode int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		ctx.Error(`{"error":"Internal Server Error"}`, fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(statusCode)
	ctx.SetContentType("application/json")
	ctx.SetBody(data)
}
