// FILE: src/internal/format/text.go
package format

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"devconsole/src/internal/core"

	"github.com/lixenwraith/log"
)

// Line renders the visible text of one panel line.
// An empty category renders as "<timestamp> <text>", with one space.
func Line(timestamp, category, text string) string {
	if category == "" {
		return timestamp + " " + text
	}
	return timestamp + " " + strings.ToUpper(category) + " " + text
}

// UncaughtError renders the text reported for a synchronous uncaught error
func UncaughtError(message, file string, line, col int) string {
	return fmt.Sprintf("Uncaught Error: %s at %s:%d:%d", message, file, line, col)
}

// UnhandledRejection renders the text reported for an unobserved async failure
func UnhandledRejection(reason any) string {
	return "Unhandled Promise Rejection: " + Native(reason)
}

// Produces human-readable panel lines, optionally through a template
type TextFormatter struct {
	template *template.Template
	logger   *log.Logger
}

// Creates a new text formatter; an empty tmpl uses the panel line layout
func NewTextFormatter(tmpl string, logger *log.Logger) (*TextFormatter, error) {
	f := &TextFormatter{logger: logger}
	if tmpl == "" {
		return f, nil
	}

	funcMap := template.FuncMap{
		"ToUpper":   strings.ToUpper,
		"ToLower":   strings.ToLower,
		"TrimSpace": strings.TrimSpace,
	}

	t, err := template.New("line").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}
	f.template = t
	return f, nil
}

// Formats the record as a single newline-terminated line
func (f *TextFormatter) Format(rec core.LogRecord) ([]byte, error) {
	if f.template == nil {
		return []byte(Line(rec.Timestamp, string(rec.Category), rec.Text) + "\n"), nil
	}

	data := map[string]any{
		"Timestamp": rec.Timestamp,
		"Category":  string(rec.Category),
		"Text":      rec.Text,
	}

	var buf bytes.Buffer
	if err := f.template.Execute(&buf, data); err != nil {
		f.logger.Debug("msg", "Template execution failed, using fallback",
			"component", "text_formatter",
			"error", err)
		return []byte(Line(rec.Timestamp, string(rec.Category), rec.Text) + "\n"), nil
	}

	result := buf.Bytes()
	if len(result) == 0 || result[len(result)-1] != '\n' {
		result = append(result, '\n')
	}
	return result, nil
}

// Returns the formatter name
func (f *TextFormatter) Name() string {
	return "text"
}
