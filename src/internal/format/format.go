// FILE: src/internal/format/format.go
package format

import (
	"fmt"

	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter transforms a LogRecord into a byte slice.
type Formatter interface {
	// Format takes a LogRecord and returns the formatted record.
	Format(rec core.LogRecord) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// New creates a Formatter by name. An empty name selects the text formatter.
func New(name string, logger *log.Logger) (Formatter, error) {
	if logger == nil {
		logger = log.NewLogger()
	}

	switch name {
	case "", "text":
		return NewTextFormatter("", logger)
	case "json":
		return NewJSONFormatter(false, logger)
	case "raw":
		return NewRawFormatter(logger)
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", name)
	}
}
