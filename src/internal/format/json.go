// FILE: src/internal/format/json.go
package format

import (
	"fmt"

	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
	"github.com/segmentio/encoding/json"
)

// JSONFormatter encodes records as JSON objects, one per line.
type JSONFormatter struct {
	pretty bool
	logger *log.Logger
}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter(pretty bool, logger *log.Logger) (*JSONFormatter, error) {
	return &JSONFormatter{pretty: pretty, logger: logger}, nil
}

// Format encodes a single record followed by a newline
func (f *JSONFormatter) Format(rec core.LogRecord) ([]byte, error) {
	var (
		result []byte
		err    error
	)
	if f.pretty {
		result, err = json.MarshalIndent(rec, "", "  ")
	} else {
		result, err = json.Marshal(rec)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(result, '\n'), nil
}

// Name returns the formatter's type name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// FormatBatch encodes records as a single JSON array
func (f *JSONFormatter) FormatBatch(recs []core.LogRecord) ([]byte, error) {
	if recs == nil {
		recs = []core.LogRecord{}
	}
	if f.pretty {
		return json.MarshalIndent(recs, "", "  ")
	}
	return json.Marshal(recs)
}
