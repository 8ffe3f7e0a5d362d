// FILE: src/internal/limit/net.go
package limit

import (
	"context"
	"net"
	"net/netip"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"devconsole/src/internal/config"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

// DenialReason is the response message for a refused viewer request
type DenialReason string

const (
	ReasonAllowed           DenialReason = ""
	ReasonBlacklisted       DenialReason = "IP denied by blacklist"
	ReasonNotWhitelisted    DenialReason = "IP not in whitelist"
	ReasonRateLimited       DenialReason = "Rate limit exceeded"
	ReasonConnectionLimited DenialReason = "Connection limit exceeded"
	ReasonInvalidIP         DenialReason = "Invalid IP address"
)

const (
	staleTimeout    = 5 * time.Minute
	cleanupInterval = 1 * time.Minute
)

// NetLimiter guards the viewer endpoints per client IP: access lists,
// a token bucket per IP, and a cap on concurrent /stream connections.
type NetLimiter struct {
	config config.NetLimitConfig
	logger *log.Logger

	allow []netip.Prefix
	deny  []netip.Prefix

	mu    sync.Mutex
	peers map[netip.Addr]*peer

	requests atomic.Uint64
	blocked  struct {
		blacklist, whitelist, rate, conns, invalid atomic.Uint64
	}

	cancel context.CancelFunc
	done   chan struct{}
}

// peer is the per-IP state; it is dropped once idle for staleTimeout
type peer struct {
	bucket   *rate.Limiter
	conns    int64
	lastSeen time.Time
}

// NewNetLimiter returns nil when neither access lists nor rate limiting are configured
func NewNetLimiter(cfg config.NetLimitConfig, logger *log.Logger) *NetLimiter {
	hasACL := len(cfg.IPWhitelist) > 0 || len(cfg.IPBlacklist) > 0
	if !hasACL && !cfg.Enabled {
		return nil
	}
	if logger == nil {
		logger = log.NewLogger()
	}

	l := &NetLimiter{
		config: cfg,
		logger: logger,
		peers:  make(map[netip.Addr]*peer),
		done:   make(chan struct{}),
	}
	l.allow = l.prefixes(cfg.IPWhitelist, "whitelist")
	l.deny = l.prefixes(cfg.IPBlacklist, "blacklist")

	if cfg.Enabled {
		var ctx context.Context
		ctx, l.cancel = context.WithCancel(context.Background())
		go l.cleanupLoop(ctx)
	} else {
		l.cancel = func() {}
		close(l.done)
	}

	logger.Info("msg", "Net limiter initialized",
		"component", "netlimit",
		"rate_limiting", cfg.Enabled,
		"whitelist_rules", len(l.allow),
		"blacklist_rules", len(l.deny),
		"requests_per_second", cfg.RequestsPerSecond,
		"burst_size", cfg.BurstSize)
	return l
}

// prefixes parses IPs and CIDRs, logging and skipping invalid entries
func (l *NetLimiter) prefixes(entries []string, list string) []netip.Prefix {
	out := make([]netip.Prefix, 0, len(entries))
	for _, entry := range entries {
		p, ok := parsePrefix(entry)
		if !ok {
			l.logger.Warn("msg", "Skipping invalid IP entry",
				"component", "netlimit",
				"list", list,
				"entry", entry)
			continue
		}
		out = append(out, p)
	}
	return out
}

func parsePrefix(entry string) (netip.Prefix, bool) {
	entry = strings.TrimSpace(entry)
	if strings.Contains(entry, "/") {
		p, err := netip.ParsePrefix(entry)
		if err != nil {
			return netip.Prefix{}, false
		}
		return p.Masked(), true
	}
	addr, err := netip.ParseAddr(entry)
	if err != nil {
		return netip.Prefix{}, false
	}
	addr = addr.Unmap()
	return netip.PrefixFrom(addr, addr.BitLen()), true
}

// remoteIP extracts the client address from "host:port" or a bare host
func remoteIP(remoteAddr string) (netip.Addr, bool) {
	host := strings.Trim(remoteAddr, "[]")
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap().WithZone(""), true
}

func containsAddr(prefixes []netip.Prefix, addr netip.Addr) bool {
	for _, p := range prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// CheckHTTP reports whether a request from remoteAddr may proceed, and
// otherwise the status code and message to answer with.
func (l *NetLimiter) CheckHTTP(remoteAddr string) (allowed bool, statusCode int, message string) {
	if l == nil {
		return true, 0, ""
	}
	l.requests.Add(1)

	addr, ok := remoteIP(remoteAddr)
	if !ok {
		l.blocked.invalid.Add(1)
		l.logger.Warn("msg", "Failed to parse remote IP",
			"component", "netlimit",
			"remote_addr", remoteAddr)
		return false, 403, string(ReasonInvalidIP)
	}

	if containsAddr(l.deny, addr) {
		l.blocked.blacklist.Add(1)
		l.logger.Debug("msg", "Blacklisted IP denied", "component", "netlimit", "ip", addr)
		return false, 403, string(ReasonBlacklisted)
	}
	if len(l.allow) > 0 && !containsAddr(l.allow, addr) {
		l.blocked.whitelist.Add(1)
		l.logger.Debug("msg", "IP not in whitelist", "component", "netlimit", "ip", addr)
		return false, 403, string(ReasonNotWhitelisted)
	}

	if !l.config.Enabled {
		return true, 0, ""
	}

	now := time.Now()
	l.mu.Lock()
	p := l.peerLocked(addr, now)
	overConns := l.config.MaxConnectionsPerIP > 0 && p.conns >= l.config.MaxConnectionsPerIP
	l.mu.Unlock()

	if overConns {
		l.blocked.conns.Add(1)
		return false, l.limitedCode(), string(ReasonConnectionLimited)
	}
	if !p.bucket.AllowN(now, 1) {
		l.blocked.rate.Add(1)
		message = l.config.ResponseMessage
		if message == "" {
			message = string(ReasonRateLimited)
		}
		return false, l.limitedCode(), message
	}
	return true, 0, ""
}

// peerLocked returns the state for addr, creating it on first sight
func (l *NetLimiter) peerLocked(addr netip.Addr, now time.Time) *peer {
	p, ok := l.peers[addr]
	if !ok {
		p = &peer{bucket: rate.NewLimiter(rate.Limit(l.config.RequestsPerSecond), l.config.BurstSize)}
		l.peers[addr] = p
		l.logger.Debug("msg", "Tracking new client IP",
			"component", "netlimit",
			"ip", addr,
			"tracked", len(l.peers))
	}
	p.lastSeen = now
	return p
}

func (l *NetLimiter) limitedCode() int {
	if l.config.ResponseCode == 0 {
		return 429
	}
	return int(l.config.ResponseCode)
}

// AddConnection records an open stream connection from remoteAddr
func (l *NetLimiter) AddConnection(remoteAddr string) {
	l.adjustConns(remoteAddr, 1)
}

// RemoveConnection records a closed stream connection from remoteAddr
func (l *NetLimiter) RemoveConnection(remoteAddr string) {
	l.adjustConns(remoteAddr, -1)
}

func (l *NetLimiter) adjustConns(remoteAddr string, delta int64) {
	if l == nil {
		return
	}
	addr, ok := remoteIP(remoteAddr)
	if !ok {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	p := l.peerLocked(addr, time.Now())
	p.conns = max(p.conns+delta, 0)
}

// cleanup forgets idle peers not seen since now-staleTimeout
func (l *NetLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	cleaned := 0
	for addr, p := range l.peers {
		if p.conns <= 0 && now.Sub(p.lastSeen) > staleTimeout {
			delete(l.peers, addr)
			cleaned++
		}
	}
	remaining := len(l.peers)
	l.mu.Unlock()

	if cleaned > 0 {
		l.logger.Debug("msg", "Cleaned up stale client IPs",
			"component", "netlimit",
			"cleaned", cleaned,
			"remaining", remaining)
	}
}

func (l *NetLimiter) cleanupLoop(ctx context.Context) {
	defer close(l.done)

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.cleanup(now)
		}
	}
}

// Shutdown stops the cleanup goroutine
func (l *NetLimiter) Shutdown() {
	if l == nil {
		return
	}
	l.cancel()

	select {
	case <-l.done:
	case <-time.After(2 * time.Second):
		l.logger.Warn("msg", "Cleanup goroutine shutdown timeout", "component", "netlimit")
	}
}

// GetStats returns limiter statistics
func (l *NetLimiter) GetStats() map[string]any {
	if l == nil {
		return map[string]any{"enabled": false}
	}

	l.mu.Lock()
	tracked := len(l.peers)
	var active int64
	for _, p := range l.peers {
		active += p.conns
	}
	l.mu.Unlock()

	return map[string]any{
		"enabled":            true,
		"total_requests":     l.requests.Load(),
		"active_connections": active,
		"tracked_ips":        tracked,
		"blocked": map[string]uint64{
			"blacklist":  l.blocked.blacklist.Load(),
			"whitelist":  l.blocked.whitelist.Load(),
			"rate_limit": l.blocked.rate.Load(),
			"conn_limit": l.blocked.conns.Load(),
			"invalid_ip": l.blocked.invalid.Load(),
		},
		"rules": map[string]any{
			"requests_per_second": l.config.RequestsPerSecond,
			"burst_size":          l.config.BurstSize,
			"whitelist":           len(l.allow),
			"blacklist":           len(l.deny),
		},
	}
}
