// FILE: src/internal/format/raw.go
package format

import (
	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
)

// Outputs the record text as-is with a newline
type RawFormatter struct {
	logger *log.Logger
}

// Creates a new raw formatter
func NewRawFormatter(logger *log.Logger) (*RawFormatter, error) {
	return &RawFormatter{logger: logger}, nil
}

// Returns the text with a newline appended
func (f *RawFormatter) Format(rec core.LogRecord) ([]byte, error) {
	return append([]byte(rec.Text), '\n'), nil
}

// Returns the formatter name
func (f *RawFormatter) Name() string {
	return "raw"
}
