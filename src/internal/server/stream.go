// FILE: src/internal/server/stream.go
package server

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"time"

	"devconsole/src/internal/auth"
	"devconsole/src/internal/core"
	"devconsole/src/internal/panel"

	"github.com/segmentio/encoding/json"
	"github.com/valyala/fasthttp"
)

func (s *Server) handleStream(ctx *fasthttp.RequestCtx, session *auth.Session) {
	remoteAddr := ctx.RemoteAddr().String()

	// Lines with a sequence number at or below since are already on the page
	var since uint64
	if v := ctx.QueryArgs().Peek("since"); len(v) > 0 {
		since, _ = strconv.ParseUint(string(v), 10, 64)
	}
	if id := ctx.Request.Header.Peek("Last-Event-ID"); len(id) > 0 {
		if n, err := strconv.ParseUint(string(id), 10, 64); err == nil {
			since = n
		}
	}

	ctx.Response.Header.Set("Content-Type", "text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")
	ctx.Response.Header.Set("X-Accel-Buffering", "no")

	if ctx.IsHead() {
		return
	}

	// Subscribe before taking the backlog so no line falls between the two
	lines, cancel := s.console.Subscribe(s.config.BufferSize)
	backlog := s.console.Lines()

	s.netLimiter.AddConnection(remoteAddr)
	s.wg.Add(1)

	streamFunc := func(w *bufio.Writer) {
		connectCount := s.activeClients.Add(1)
		s.logger.Debug("msg", "Viewer client connected",
			"component", "server",
			"remote_addr", remoteAddr,
			"username", session.Username,
			"auth_method", session.Method,
			"active_clients", connectCount)

		defer func() {
			cancel()
			s.netLimiter.RemoveConnection(remoteAddr)
			disconnectCount := s.activeClients.Add(-1)
			s.logger.Debug("msg", "Viewer client disconnected",
				"component", "server",
				"remote_addr", remoteAddr,
				"active_clients", disconnectCount)
			s.wg.Done()
		}()

		data, _ := json.Marshal(map[string]any{
			"format":      s.formatter.Name(),
			"buffer_size": s.config.BufferSize,
			"since":       since,
			"auth_method": session.Method,
			"username":    session.Username,
		})
		fmt.Fprintf(w, "event: connected\ndata: %s\n\n", data)
		if err := w.Flush(); err != nil {
			return
		}

		last := since
		for _, line := range backlog {
			if line.Seq <= last {
				continue
			}
			if err := s.writeLine(w, line); err != nil {
				return
			}
			last = line.Seq
		}
		if err := w.Flush(); err != nil {
			return
		}

		var tickerChan <-chan time.Time
		if s.config.HeartbeatSeconds > 0 {
			ticker := time.NewTicker(time.Duration(s.config.HeartbeatSeconds) * time.Second)
			defer ticker.Stop()
			tickerChan = ticker.C
		}

		for {
			select {
			case line, ok := <-lines:
				if !ok {
					return
				}
				if line.Seq <= last {
					continue
				}
				last = line.Seq
				if err := s.writeLine(w, line); err != nil {
					return
				}
				if err := w.Flush(); err != nil {
					// Client disconnected
					return
				}

			case t := <-tickerChan:
				fmt.Fprintf(w, ": heartbeat %s\n\n", t.UTC().Format(time.RFC3339))
				if err := w.Flush(); err != nil {
					return
				}

			case <-s.done:
				fmt.Fprintf(w, "event: disconnect\ndata: {\"reason\":\"server_shutdown\"}\n\n")
				w.Flush()
				return
			}
		}
	}

	ctx.SetBodyStreamWriter(streamFunc)
}

// writeLine writes one SSE event. Multi-line payloads get one data field per line.
func (s *Server) writeLine(w *bufio.Writer, line panel.Line) error {
	formatted, err := s.formatter.Format(core.LogRecord{
		Timestamp: line.Timestamp,
		Category:  line.Category,
		Text:      line.Text,
	})
	if err != nil {
		s.logger.Error("msg", "Failed to format line",
			"component", "server",
			"seq", line.Seq,
			"error", err)
		return nil
	}

	formatted = bytes.TrimSuffix(formatted, []byte{'\n'})

	fmt.Fprintf(w, "id: %d\n", line.Seq)
	for _, part := range bytes.Split(formatted, []byte{'\n'}) {
		fmt.Fprintf(w, "data: %s\n", part)
	}
	_, err = w.WriteString("\n")
	s.totalStreamed.Add(1)
	return err
}
