// FILE: src/internal/auth/guard.go
package auth

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

const (
	// guardMaxIPs bounds the tracked client map
	guardMaxIPs = 10000
	// each IP gets 5 attempts per minute with a burst of 3
	guardEvery = 12 * time.Second
	guardBurst = 3
	// maximum block is 2^guardMaxShift minutes
	guardMaxShift = 6
)

// attemptGuard throttles credential attempts per client IP and blocks an
// IP for exponentially growing periods once it exhausts its bucket.
type attemptGuard struct {
	mu      sync.Mutex
	clients map[string]*attempts
	logger  *log.Logger
}

type attempts struct {
	bucket       *rate.Limiter
	failures     int
	lastAttempt  time.Time
	blockedUntil time.Time
}

func newAttemptGuard(logger *log.Logger) *attemptGuard {
	return &attemptGuard{clients: make(map[string]*attempts), logger: logger}
}

func clientIP(remoteAddr string) string {
	if ip, _, err := net.SplitHostPort(remoteAddr); err == nil {
		return ip
	}
	return remoteAddr
}

// admit reports an error when remoteAddr is blocked or over its bucket
func (g *attemptGuard) admit(remoteAddr string, now time.Time) error {
	ip := clientIP(remoteAddr)

	g.mu.Lock()
	defer g.mu.Unlock()

	st, ok := g.clients[ip]
	if !ok {
		if len(g.clients) >= guardMaxIPs {
			g.evictLocked()
		}
		st = &attempts{bucket: rate.NewLimiter(rate.Every(guardEvery), guardBurst)}
		g.clients[ip] = st
	}
	st.lastAttempt = now

	if now.Before(st.blockedUntil) {
		return fmt.Errorf("temporarily blocked, try again in %v", st.blockedUntil.Sub(now).Round(time.Second))
	}
	if st.bucket.AllowN(now, 1) {
		return nil
	}

	st.failures++
	block := time.Duration(1<<min(st.failures, guardMaxShift)) * time.Minute
	st.blockedUntil = now.Add(block)
	g.logger.Warn("msg", "Auth rate limit exceeded, blocking IP",
		"component", "auth",
		"ip", ip,
		"fail_count", st.failures,
		"block_duration", block)
	return fmt.Errorf("rate limit exceeded")
}

// evictLocked drops the stalest entry among a small sample
func (g *attemptGuard) evictLocked() {
	const sample = 20
	var victim string
	var oldest time.Time
	n := 0
	for ip, st := range g.clients {
		if victim == "" || st.lastAttempt.Before(oldest) {
			victim, oldest = ip, st.lastAttempt
		}
		if n++; n >= sample {
			break
		}
	}
	delete(g.clients, victim)
}

// result records the outcome of an admitted attempt
func (g *attemptGuard) result(remoteAddr string, ok bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	st, tracked := g.clients[clientIP(remoteAddr)]
	if !tracked {
		return
	}
	if ok {
		st.failures = 0
		st.blockedUntil = time.Time{}
		return
	}
	st.failures++
}

func (g *attemptGuard) tracked() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.clients)
}
