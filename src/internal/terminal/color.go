// FILE: src/internal/terminal/color.go
package terminal

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGBA is a parsed CSS color with alpha in [0,1]
type RGBA struct {
	R, G, B uint8
	A       float64
}

// ParseColor parses the CSS color forms used by palettes:
// #rgb, #rrggbb, rgb(r, g, b) and rgba(r, g, b, a).
func ParseColor(s string) (RGBA, error) {
	s = strings.TrimSpace(strings.ToLower(s))

	switch {
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgba(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgba("):len(s)-1], 4)
	case strings.HasPrefix(s, "rgb(") && strings.HasSuffix(s, ")"):
		return parseFunc(s[len("rgb("):len(s)-1], 3)
	}
	return RGBA{}, fmt.Errorf("unsupported color %q", s)
}

func parseHex(h string) (RGBA, error) {
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6:
	default:
		return RGBA{}, fmt.Errorf("invalid hex color #%s", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return RGBA{}, fmt.Errorf("invalid hex color #%s: %w", h, err)
	}
	return RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 1}, nil
}

func parseFunc(body string, want int) (RGBA, error) {
	parts := strings.Split(body, ",")
	if len(parts) != want {
		return RGBA{}, fmt.Errorf("expected %d components, got %d", want, len(parts))
	}

	var ch [3]uint8
	for i := range 3 {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil || n < 0 || n > 255 {
			return RGBA{}, fmt.Errorf("invalid color component %q", parts[i])
		}
		ch[i] = uint8(n)
	}

	alpha := 1.0
	if want == 4 {
		a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64)
		if err != nil || a < 0 || a > 1 {
			return RGBA{}, fmt.Errorf("invalid alpha %q", parts[3])
		}
		alpha = a
	}
	return RGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, nil
}

// Over composites c onto an opaque base color
func (c RGBA) Over(base RGBA) RGBA {
	if c.A >= 1 {
		return c
	}
	mix := func(fg, bg uint8) uint8 {
		return uint8(math.Round(float64(fg)*c.A + float64(bg)*(1-c.A)))
	}
	return RGBA{R: mix(c.R, base.R), G: mix(c.G, base.G), B: mix(c.B, base.B), A: 1}
}

func (c RGBA) foreground() string {
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm", c.R, c.G, c.B)
}

func (c RGBA) background() string {
	return fmt.Sprintf("\x1b[48;2;%d;%d;%dm", c.R, c.G, c.B)
}

const resetColor = "\x1b[0m"
