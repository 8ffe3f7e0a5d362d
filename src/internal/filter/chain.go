// FILE: src/internal/filter/chain.go
package filter

import (
	"fmt"
	"sync/atomic"

	"devconsole/src/internal/config"
	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
)

// Chain applies filters in order; a record must pass every one.
type Chain struct {
	filters []*Filter
	logger  *log.Logger

	processed atomic.Uint64
	passed    atomic.Uint64
}

// NewChain builds one Filter per [[filters]] entry
func NewChain(configs []config.FilterConfig, logger *log.Logger) (*Chain, error) {
	if logger == nil {
		logger = log.NewLogger()
	}

	filters := make([]*Filter, 0, len(configs))
	for i, cfg := range configs {
		f, err := NewFilter(cfg, logger)
		if err != nil {
			return nil, fmt.Errorf("filter[%d]: %w", i, err)
		}
		filters = append(filters, f)
	}

	logger.Info("msg", "Filter chain created",
		"component", "filter_chain",
		"filter_count", len(filters))
	return &Chain{filters: filters, logger: logger}, nil
}

// Apply runs rec through the chain, stopping at the first rejection
func (c *Chain) Apply(rec core.LogRecord) bool {
	c.processed.Add(1)
	for i, f := range c.filters {
		if f.Apply(rec) {
			continue
		}
		c.logger.Debug("msg", "Record filtered out",
			"component", "filter_chain",
			"filter_index", i,
			"filter_type", f.config.Type)
		return false
	}
	c.passed.Add(1)
	return true
}

// Sink wraps next so only passing records reach it.
// A nil or empty chain returns next unchanged.
func (c *Chain) Sink(next core.Sink) core.Sink {
	if c == nil || len(c.filters) == 0 {
		return next
	}
	return func(timestamp string, category core.Category, text string) {
		if c.Apply(core.LogRecord{Timestamp: timestamp, Category: category, Text: text}) {
			next(timestamp, category, text)
		}
	}
}

// GetStats returns chain totals and per-filter statistics
func (c *Chain) GetStats() map[string]any {
	if c == nil {
		return map[string]any{"filter_count": 0}
	}
	per := make([]map[string]any, 0, len(c.filters))
	for _, f := range c.filters {
		per = append(per, f.GetStats())
	}
	return map[string]any{
		"filter_count":    len(c.filters),
		"total_processed": c.processed.Load(),
		"total_passed":    c.passed.Load(),
		"filters":         per,
	}
}
