// FILE: src/internal/panel/palette.go
package panel

import "maps"

// Palette keys are "<category>Text" and "<category>Bg" plus the console
// defaults "consoleText" and "consoleBg".
type Palette map[string]string

const (
	KeyConsoleText = "consoleText"
	KeyConsoleBg   = "consoleBg"
)

// DefaultPalette returns a fresh copy of the built-in colors
func DefaultPalette() Palette {
	return Palette{
		"logText":      "#87cefa",
		"logBg":        "rgba(135, 206, 250, 0.1)",
		"warnText":     "#ffcc00",
		"warnBg":       "rgba(255, 204, 0, 0.1)",
		"errorText":    "#ff5f5f",
		"errorBg":      "rgba(255, 95, 95, 0.1)",
		KeyConsoleText: "#d4d4d4",
		KeyConsoleBg:   "#1e1e1e",
	}
}

// ResolvePalette overlays overrides onto the defaults.
// Keys outside the default set are kept so custom categories can be colored.
func ResolvePalette(overrides map[string]string) Palette {
	p := DefaultPalette()
	for k, v := range overrides {
		if v != "" {
			p[k] = v
		}
	}
	return p
}

// Colors returns the text and background colors for category. Each falls
// back independently to the console defaults.
func (p Palette) Colors(category string) (text, bg string) {
	text, ok := p[category+"Text"]
	if !ok || category == "" {
		text = p[KeyConsoleText]
	}
	bg, ok = p[category+"Bg"]
	if !ok || category == "" {
		bg = p[KeyConsoleBg]
	}
	return text, bg
}

// Clone returns a copy of the palette
func (p Palette) Clone() Palette {
	return maps.Clone(p)
}
