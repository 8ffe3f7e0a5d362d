// FILE: src/internal/terminal/terminal.go
package terminal

import (
	"io"
	"sync"
	"sync/atomic"

	"devconsole/src/internal/core"
	"devconsole/src/internal/format"
	"devconsole/src/internal/panel"

	"github.com/lixenwraith/log"
	"golang.org/x/term"
)

// ColorMode selects when ANSI colors are written
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// Option configures a Writer
type Option func(*Writer)

// WithColor sets the color mode; the default is ColorAuto
func WithColor(mode ColorMode) Option {
	return func(w *Writer) {
		w.mode = mode
	}
}

// WithLogger sets the logger used for internal diagnostics
func WithLogger(logger *log.Logger) Option {
	return func(w *Writer) {
		if logger != nil {
			w.logger = logger
		}
	}
}

type style struct {
	prefix string
	suffix string
}

// Writer mirrors console records to a terminal or any io.Writer
type Writer struct {
	mu      sync.Mutex
	out     io.Writer
	palette panel.Palette
	mode    ColorMode
	color   bool
	logger  *log.Logger
	styles  map[string]style

	written   atomic.Uint64
	failed    atomic.Uint64
	errLogged atomic.Bool
}

// New creates a Writer. In ColorAuto mode colors are used only when out is a terminal.
func New(out io.Writer, palette panel.Palette, opts ...Option) *Writer {
	if palette == nil {
		palette = panel.DefaultPalette()
	}
	w := &Writer{
		out:     out,
		palette: palette,
		mode:    ColorAuto,
		logger:  log.NewLogger(),
		styles:  make(map[string]style),
	}
	for _, opt := range opts {
		opt(w)
	}

	switch w.mode {
	case ColorAlways:
		w.color = true
	case ColorNever:
		w.color = false
	default:
		w.color = IsTerminal(out)
	}
	return w
}

// IsTerminal reports whether out is backed by a terminal file descriptor
func IsTerminal(out io.Writer) bool {
	f, ok := out.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd()))
}

// Colored reports whether ANSI colors are written
func (w *Writer) Colored() bool {
	return w.color
}

// Sink adapts the writer to a record sink. Write errors are counted and
// logged once.
func (w *Writer) Sink() core.Sink {
	return func(timestamp string, category core.Category, text string) {
		if err := w.Write(timestamp, string(category), text); err != nil && w.errLogged.CompareAndSwap(false, true) {
			w.logger.Warn("msg", "Terminal write failed",
				"component", "terminal",
				"error", err)
		}
	}
}

// Write writes one formatted line
func (w *Writer) Write(timestamp, category, text string) error {
	line := format.Line(timestamp, category, text)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.color {
		st := w.styleFor(category)
		line = st.prefix + line + st.suffix
	}
	if _, err := io.WriteString(w.out, line+"\n"); err != nil {
		w.failed.Add(1)
		return err
	}
	w.written.Add(1)
	return nil
}

// Stats returns the number of written and failed lines
func (w *Writer) Stats() (written, failed uint64) {
	return w.written.Load(), w.failed.Load()
}

// styleFor resolves and caches the escape sequences for a category.
// Caller holds w.mu.
func (w *Writer) styleFor(category string) style {
	if st, ok := w.styles[category]; ok {
		return st
	}

	textColor, bgColor := w.palette.Colors(category)

	base, err := ParseColor(w.palette[panel.KeyConsoleBg])
	if err != nil {
		base = RGBA{A: 1}
	}
	base.A = 1

	var st style
	if fg, err := ParseColor(textColor); err == nil {
		st.prefix += fg.Over(base).foreground()
	} else {
		w.logger.Debug("msg", "Unparseable text color",
			"component", "terminal",
			"category", category,
			"color", textColor)
	}
	if bg, err := ParseColor(bgColor); err == nil {
		st.prefix += bg.Over(base).background()
	}
	if st.prefix != "" {
		st.suffix = resetColor
	}

	w.styles[category] = st
	return st
}
