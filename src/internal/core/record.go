// FILE: src/internal/core/record.go
package core

import "time"

// Category names one of the three console channels a record was captured from.
// Renderers accept arbitrary categories and fall back to default styling.
type Category string

const (
	CategoryLog   Category = "log"
	CategoryWarn  Category = "warn"
	CategoryError Category = "error"
)

// Categories lists the fixed capture channels in display order
var Categories = []Category{CategoryLog, CategoryWarn, CategoryError}

// LogRecord is one captured console event on its way from capture to sink
type LogRecord struct {
	Timestamp string   `json:"timestamp"`
	Category  Category `json:"category"`
	Text      string   `json:"text"`
}

// Clock returns the wall-clock time used to stamp captured records
type Clock func() time.Time

// Timestamp formats t as zero-padded HH:MM
func Timestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// Now stamps the current time with the given clock, falling back to time.Now
func Now(clock Clock) string {
	if clock == nil {
		clock = time.Now
	}
	return Timestamp(clock())
}
