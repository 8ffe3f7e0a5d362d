// FILE: src/internal/limit/sink.go
package limit

import (
	"fmt"
	"sync"
	"sync/atomic"

	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

// SinkLimiter drops records above a steady rate. Once tokens are available
// again, a single summary record reports how many were suppressed.
type SinkLimiter struct {
	next    core.Sink
	limiter *rate.Limiter
	logger  *log.Logger

	mu         sync.Mutex
	suppressed uint64

	// Statistics
	passed  atomic.Uint64
	dropped atomic.Uint64
}

// NewSink wraps next with a limiter of perSecond records and the given burst.
// A non-positive perSecond disables limiting and returns next unchanged;
// a non-positive burst defaults to perSecond.
func NewSink(next core.Sink, perSecond, burst float64, logger *log.Logger) (core.Sink, *SinkLimiter) {
	if perSecond <= 0 {
		return next, nil
	}
	if burst <= 0 {
		burst = perSecond
	}
	if logger == nil {
		logger = log.NewLogger()
	}

	l := &SinkLimiter{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), max(int(burst), 1)),
		logger:  logger,
	}

	logger.Info("msg", "Sink rate limiter initialized",
		"component", "limit",
		"rate", perSecond,
		"burst", burst)

	return l.deliver, l
}

func (l *SinkLimiter) deliver(timestamp string, category core.Category, text string) {
	l.mu.Lock()
	if !l.limiter.Allow() {
		l.suppressed++
		l.mu.Unlock()
		l.dropped.Add(1)
		return
	}
	suppressed := l.suppressed
	l.suppressed = 0
	l.mu.Unlock()

	if suppressed > 0 {
		l.logger.Debug("msg", "Records suppressed by rate limit",
			"component", "limit",
			"count", suppressed)
		l.next(timestamp, core.CategoryWarn, fmt.Sprintf("%d messages suppressed", suppressed))
	}

	l.passed.Add(1)
	l.next(timestamp, category, text)
}

// GetStats returns statistics for the limiter
func (l *SinkLimiter) GetStats() map[string]any {
	if l == nil {
		return map[string]any{"enabled": false}
	}

	l.mu.Lock()
	pending := l.suppressed
	l.mu.Unlock()

	return map[string]any{
		"enabled":       true,
		"passed_total":  l.passed.Load(),
		"dropped_total": l.dropped.Load(),
		"pending":       pending,
		"rate":          float64(l.limiter.Limit()),
		"burst":         l.limiter.Burst(),
	}
}
