package server

import (
	"bufio"
	"context"
	"crypto/tls"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"devconsole/src/internal/config"
	"devconsole/src/internal/panel"
	ltls "devconsole/src/internal/tls"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

var testAddr = &net.TCPAddr{IP: net.ParseIP("127.0.0.1"), Port: 50000}

func newTestServer(t *testing.T, mutate func(*config.ServerConfig)) (*Server, *panel.Console) {
	t.Helper()
	console, err := panel.New(panel.NewElement("body"), map[string]string{"errorText": "#f00"})
	require.NoError(t, err)

	cfg := config.Defaults().Server
	cfg.Enabled = true
	cfg.HeartbeatSeconds = 0
	if mutate != nil {
		mutate(cfg)
	}

	s, err := New(cfg, console, nil)
	require.NoError(t, err)
	return s, console
}

func do(s *Server, method, uri string, headers map[string]string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(uri)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, testAddr, nil)
	s.requestHandler(ctx)
	return ctx
}

func TestNew_Validation(t *testing.T) {
	console, err := panel.New(panel.NewElement("body"), nil)
	require.NoError(t, err)

	_, err = New(nil, console, nil)
	assert.Error(t, err)
	_, err = New(config.Defaults().Server, nil, nil)
	assert.Error(t, err)

	cfg := config.Defaults().Server
	cfg.Format = "xml"
	_, err = New(cfg, console, nil)
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	s, console := newTestServer(t, nil)
	console.AppendFull("09:00", "log", "one")

	ctx := do(s, "GET", "/status", nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))

	var status map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &status))
	assert.Equal(t, "devconsole", status["service"])
	assert.EqualValues(t, 1, status["panel"].(map[string]any)["lines"])
	assert.Equal(t, "json", status["server"].(map[string]any)["format"])
}

func TestLines(t *testing.T) {
	s, console := newTestServer(t, nil)
	console.AppendFull("09:00", "error", "boom")
	console.AppendPlain("plain")

	ctx := do(s, "GET", "/lines", nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var lines []panel.Line
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &lines))
	require.Len(t, lines, 2)
	assert.Equal(t, "09:00 ERROR boom", lines[0].Content)
	assert.Equal(t, "#f00", lines[0].Color)
	assert.Equal(t, uint64(2), lines[1].Seq)
}

func TestPage(t *testing.T) {
	s, console := newTestServer(t, nil)
	console.AppendFull("09:00", "warn", "<careful>")

	ctx := do(s, "GET", "/?token=abc", nil)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "text/html; charset=utf-8", string(ctx.Response.Header.ContentType()))

	body := string(ctx.Response.Body())
	assert.Contains(t, body, `id="devconsole-panel"`)
	assert.Contains(t, body, "09:00 WARN &lt;careful&gt;")
	assert.Contains(t, body, `"since":1`)
	assert.Contains(t, body, `"token":"abc"`)
	assert.Contains(t, body, `"errorText":"#f00"`)
	assert.Contains(t, body, "new EventSource(")
}

func TestNotFoundAndMethod(t *testing.T) {
	s, _ := newTestServer(t, nil)

	ctx := do(s, "GET", "/nope", nil)
	assert.Equal(t, fasthttp.StatusNotFound, ctx.Response.StatusCode())
	assert.JSONEq(t, `{"error":"Not Found"}`, string(ctx.Response.Body()))

	ctx = do(s, "POST", "/lines", nil)
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, ctx.Response.StatusCode())
}

func TestBearerAuth(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *config.ServerConfig) {
		cfg.Auth = &config.AuthConfig{
			Type:       "bearer",
			BearerAuth: &config.BearerAuthConfig{Tokens: []string{"letmein"}},
		}
	})

	ctx := do(s, "GET", "/lines", nil)
	assert.Equal(t, fasthttp.StatusUnauthorized, ctx.Response.StatusCode())
	assert.Equal(t, "Bearer", string(ctx.Response.Header.Peek("WWW-Authenticate")))

	ctx = do(s, "GET", "/lines?token=letmein", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = do(s, "GET", "/lines", map[string]string{"Authorization": "Bearer letmein"})
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = do(s, "GET", "/status", nil)
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), "status is public")

	assert.Equal(t, uint64(1), s.authFailures.Load())
	assert.Equal(t, uint64(2), s.authSuccesses.Load())
}

func TestNetLimit(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *config.ServerConfig) {
		cfg.RateLimit = &config.NetLimitConfig{IPBlacklist: []string{"127.0.0.1"}}
	})
	defer s.netLimiter.Shutdown()

	ctx := do(s, "GET", "/status", nil)
	assert.Equal(t, 403, ctx.Response.StatusCode())
	assert.Contains(t, string(ctx.Response.Body()), "blacklist")
}

// readUntil reads lines until one contains want
func readUntil(t *testing.T, conn net.Conn, br *bufio.Reader, want string) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		line, err := br.ReadString('\n')
		require.NoError(t, err, "waiting for %q", want)
		if strings.Contains(line, want) {
			return strings.TrimSpace(line)
		}
	}
}

func TestStream(t *testing.T) {
	s, console := newTestServer(t, nil)
	console.AppendFull("09:00", "log", "before")

	ln := fasthttputil.NewInmemoryListener()
	require.NoError(t, s.serve(ln))

	conn, err := ln.Dial()
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("GET /stream?since=0 HTTP/1.1\r\nHost: test\r\n\r\n"))
	require.NoError(t, err)
	br := bufio.NewReader(conn)

	assert.Contains(t, readUntil(t, conn, br, "HTTP/1.1"), "200")
	readUntil(t, conn, br, "text/event-stream")
	readUntil(t, conn, br, "event: connected")

	assert.Equal(t, "id: 1", readUntil(t, conn, br, "id: "))
	assert.Equal(t, `data: {"timestamp":"09:00","category":"log","text":"before"}`, readUntil(t, conn, br, "data: "))

	require.Eventually(t, func() bool { return s.ActiveClients() == 1 }, 2*time.Second, 10*time.Millisecond)

	console.AppendFull("09:01", "error", "live")
	assert.Equal(t, "id: 2", readUntil(t, conn, br, "id: "))
	assert.Equal(t, `data: {"timestamp":"09:01","category":"error","text":"live"}`, readUntil(t, conn, br, "data: "))

	stopCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	go s.Stop(stopCtx)

	readUntil(t, conn, br, "event: disconnect")
	require.Eventually(t, func() bool { return s.ActiveClients() == 0 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, uint64(2), s.totalStreamed.Load())
}

func TestStream_SkipsSeenLines(t *testing.T) {
	s, console := newTestServer(t, func(cfg *config.ServerConfig) {
		cfg.Format = "text"
	})
	console.AppendFull("09:00", "log", "old")
	console.AppendFull("09:00", "log", "new")

	ln := fasthttputil.NewInmemoryListener()
	require.NoError(t, s.serve(ln))
	defer s.Stop(context.Background())

	conn, err := ln.Dial()
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("GET /stream HTTP/1.1\r\nHost: test\r\nLast-Event-ID: 1\r\n\r\n"))
	require.NoError(t, err)
	br := bufio.NewReader(conn)

	readUntil(t, conn, br, "event: connected")
	assert.Equal(t, "id: 2", readUntil(t, conn, br, "id: "))
	assert.Equal(t, "data: 09:00 LOG new", readUntil(t, conn, br, "data: "))
}

func TestServeTLS(t *testing.T) {
	certPEM, keyPEM, err := ltls.GenerateSelfSigned(ltls.CertOptions{CommonName: "localhost", Hosts: "127.0.0.1", Bits: 1024})
	require.NoError(t, err)
	dir := t.TempDir()
	certFile, keyFile := filepath.Join(dir, "s.crt"), filepath.Join(dir, "s.key")
	require.NoError(t, os.WriteFile(certFile, certPEM, 0644))
	require.NoError(t, os.WriteFile(keyFile, keyPEM, 0600))

	s, console := newTestServer(t, func(c *config.ServerConfig) {
		c.Host = "127.0.0.1"
		c.Port = 0
		c.TLS = &config.TLSServerConfig{Enabled: true, CertFile: certFile, KeyFile: keyFile}
	})
	console.AppendFull("09:00", "warn", "secure")

	require.NoError(t, s.Start())
	defer s.Stop(context.Background())
	assert.True(t, strings.HasPrefix(s.URL(), "https://127.0.0.1:"))

	client := &fasthttp.Client{TLSConfig: &tls.Config{InsecureSkipVerify: true}}
	statusCode, body, err := client.Get(nil, "https://"+s.Addr()+"/lines")
	require.NoError(t, err)
	assert.Equal(t, fasthttp.StatusOK, statusCode)
	assert.Contains(t, string(body), "secure")
}
