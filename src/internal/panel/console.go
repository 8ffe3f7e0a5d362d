// FILE: src/internal/panel/console.go
package panel

import (
	"errors"
	"sync"
	"sync/atomic"

	"devconsole/src/internal/core"
	"devconsole/src/internal/format"

	"github.com/lixenwraith/log"
)

// ErrNoContainer is returned by New when no container element is given
var ErrNoContainer = errors.New("panel: container is nil")

const (
	// LineHeight is the rendered height of one console line in pixels
	LineHeight = 24
	// PanelID is the id attribute of the panel element
	PanelID = "devconsole-panel"
)

const panelCSS = "display: flex; flex-direction: column; height: 300px; overflow-y: auto; " +
	"font-family: monospace; padding: 8px; border: 1px solid #555"

// Line is one rendered console line
type Line struct {
	Seq        uint64        `json:"seq"`
	Timestamp  string        `json:"timestamp"`
	Category   core.Category `json:"category,omitempty"`
	Text       string        `json:"text"`
	Content    string        `json:"content"`
	Color      string        `json:"color"`
	Background string        `json:"background"`
}

// Option configures a Console
type Option func(*Console)

// WithCapacity bounds the number of retained lines; n <= 0 means unbounded
func WithCapacity(n int) Option {
	return func(c *Console) {
		c.capacity = n
	}
}

// WithClock sets the clock used by AppendTyped and AppendPlain
func WithClock(clock core.Clock) Option {
	return func(c *Console) {
		c.clock = clock
	}
}

// WithLogger sets the logger used for internal diagnostics
func WithLogger(logger *log.Logger) Option {
	return func(c *Console) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Console renders console records as styled lines inside a scrollable panel.
// All methods are safe for concurrent use.
type Console struct {
	mu       sync.Mutex
	panel    *Element
	palette  Palette
	capacity int
	clock    core.Clock
	logger   *log.Logger

	lines []Line
	seq   uint64

	subs    map[uint64]chan Line
	nextSub uint64

	// Statistics
	appended     atomic.Uint64
	evicted      atomic.Uint64
	droppedLines atomic.Uint64
}

// Stats reports panel counters
type Stats struct {
	Lines       int
	Appended    uint64
	Evicted     uint64
	Dropped     uint64
	Subscribers int
	Capacity    int
}

// New resolves the palette, creates the panel element and appends it to container
func New(container *Element, overrides map[string]string, opts ...Option) (*Console, error) {
	if container == nil {
		return nil, ErrNoContainer
	}

	c := &Console{
		palette:  ResolvePalette(overrides),
		capacity: core.DefaultPanelCapacity,
		logger:   log.NewLogger(),
		subs:     make(map[uint64]chan Line),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.panel = NewElement("div")
	c.panel.SetAttr("id", PanelID)
	c.panel.SetCSSText(panelCSS)
	c.panel.SetStyle("background-color", c.palette[KeyConsoleBg])
	c.panel.SetStyle("color", c.palette[KeyConsoleText])
	container.AppendChild(c.panel)

	c.logger.Debug("msg", "Console panel created",
		"component", "panel",
		"capacity", c.capacity)
	return c, nil
}

// AppendFull appends a line with an explicit timestamp and category and
// scrolls the panel to the bottom.
func (c *Console) AppendFull(timestamp, category, text string) {
	color, bg := c.palette.Colors(category)
	line := Line{
		Timestamp:  timestamp,
		Category:   core.Category(category),
		Text:       text,
		Content:    format.Line(timestamp, category, text),
		Color:      color,
		Background: bg,
	}

	el := NewElement("div")
	el.SetStyle("margin", "2px 0")
	el.SetStyle("padding", "2px 4px")
	el.SetStyle("border-radius", "3px")
	el.SetStyle("color", color)
	el.SetStyle("background-color", bg)
	el.SetText(line.Content)
	el.SetHeight(LineHeight)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	line.Seq = c.seq

	c.panel.AppendChild(el)
	c.lines = append(c.lines, line)
	c.appended.Add(1)

	for c.capacity > 0 && len(c.lines) > c.capacity {
		c.panel.RemoveChild(c.panel.FirstChild())
		c.lines[0] = Line{}
		c.lines = c.lines[1:]
		c.evicted.Add(1)
	}

	c.panel.SetScrollTop(c.panel.ScrollHeight())

	for _, ch := range c.subs {
		select {
		case ch <- line:
		default:
			c.droppedLines.Add(1)
		}
	}
}

// AppendTyped appends a line stamped with the current time
func (c *Console) AppendTyped(category, text string) {
	c.AppendFull(core.Now(c.clock), category, text)
}

// AppendPlain appends an uncategorized line in the console colors.
// It renders "HH:MM text" with a single space; no empty category slot is kept.
func (c *Console) AppendPlain(text string) {
	c.AppendFull(core.Now(c.clock), "", text)
}

// Sink adapts the console to a record sink
func (c *Console) Sink() core.Sink {
	return func(timestamp string, category core.Category, text string) {
		c.AppendFull(timestamp, string(category), text)
	}
}

// Lines returns a snapshot of the retained lines, oldest first
func (c *Console) Lines() []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of retained lines
func (c *Console) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines)
}

// Palette returns a copy of the resolved palette
func (c *Console) Palette() Palette {
	return c.palette.Clone()
}

// Panel returns the panel element. Callers must not mutate it while
// other goroutines append.
func (c *Console) Panel() *Element {
	return c.panel
}

// HTML renders the panel under the console lock
func (c *Console) HTML() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panel.HTML()
}

// HTMLSnapshot renders the panel together with the sequence number of
// the newest line it contains.
func (c *Console) HTMLSnapshot() (string, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.panel.HTML(), c.seq
}

// Subscribe returns a channel receiving every line appended after the call
// and a cancel function that closes it. A subscriber that falls behind by
// more than buffer lines misses lines instead of blocking appends.
func (c *Console) Subscribe(buffer int) (<-chan Line, func()) {
	if buffer <= 0 {
		buffer = core.DefaultSubscriberBuffer
	}
	ch := make(chan Line, buffer)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Stats returns a snapshot of the panel counters
func (c *Console) Stats() Stats {
	c.mu.Lock()
	n, subs := len(c.lines), len(c.subs)
	c.mu.Unlock()
	return Stats{
		Lines:       n,
		Appended:    c.appended.Load(),
		Evicted:     c.evicted.Load(),
		Dropped:     c.droppedLines.Load(),
		Subscribers: subs,
		Capacity:    c.capacity,
	}
}
