// FILE: src/internal/filter/filter.go
package filter

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"

	"devconsole/src/internal/config"
	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
)

// Filter keeps or drops captured records by matching regexes against
// the record subject (see Subject).
type Filter struct {
	config   config.FilterConfig
	patterns []*regexp.Regexp
	mu       sync.RWMutex
	logger   *log.Logger

	processed atomic.Uint64
	matched   atomic.Uint64
	dropped   atomic.Uint64
}

// NewFilter creates a filter, defaulting to include/or
func NewFilter(cfg config.FilterConfig, logger *log.Logger) (*Filter, error) {
	if logger == nil {
		logger = log.NewLogger()
	}
	if cfg.Type == "" {
		cfg.Type = config.FilterTypeInclude
	}
	if cfg.Logic == "" {
		cfg.Logic = config.FilterLogicOr
	}

	patterns, err := compile(cfg.Patterns)
	if err != nil {
		return nil, err
	}

	logger.Debug("msg", "Filter created",
		"component", "filter",
		"type", cfg.Type,
		"logic", cfg.Logic,
		"pattern_count", len(patterns))

	return &Filter{config: cfg, patterns: patterns, logger: logger}, nil
}

func compile(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern[%d] '%s': %w", i, p, err)
		}
		out[i] = re
	}
	return out, nil
}

// Subject is the string patterns are matched against: the upper-cased
// category and the text, e.g. "WARN disk low". Plain lines have no prefix.
func Subject(rec core.LogRecord) string {
	if rec.Category == "" {
		return rec.Text
	}
	return strings.ToUpper(string(rec.Category)) + " " + rec.Text
}

// Apply reports whether rec passes. An empty pattern set passes everything.
func (f *Filter) Apply(rec core.LogRecord) bool {
	f.processed.Add(1)

	f.mu.RLock()
	patterns := f.patterns
	f.mu.RUnlock()
	if len(patterns) == 0 {
		return true
	}

	hit := f.match(patterns, Subject(rec))
	if hit {
		f.matched.Add(1)
	}

	pass := hit == (f.config.Type == config.FilterTypeInclude)
	if !pass {
		f.dropped.Add(1)
	}
	return pass
}

// match applies the or/and logic over patterns
func (f *Filter) match(patterns []*regexp.Regexp, subject string) bool {
	all := f.config.Logic == config.FilterLogicAnd
	for _, re := range patterns {
		if re.MatchString(subject) != all {
			// first hit decides "or", first miss decides "and"
			return !all
		}
	}
	return all
}

// GetStats returns filter statistics
func (f *Filter) GetStats() map[string]any {
	f.mu.RLock()
	count := len(f.patterns)
	f.mu.RUnlock()

	return map[string]any{
		"type":            f.config.Type,
		"logic":           f.config.Logic,
		"pattern_count":   count,
		"total_processed": f.processed.Load(),
		"total_matched":   f.matched.Load(),
		"total_dropped":   f.dropped.Load(),
	}
}

// UpdatePatterns swaps the pattern set; on error the old set is kept
func (f *Filter) UpdatePatterns(patterns []string) error {
	compiled, err := compile(patterns)
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.patterns = compiled
	f.config.Patterns = patterns
	f.mu.Unlock()

	f.logger.Info("msg", "Filter patterns updated",
		"component", "filter",
		"pattern_count", len(compiled))
	return nil
}
