package annotation

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// DefaultColor is used for labels missing from a ColorMap.
const DefaultColor = "#FFFFFF"

// ColorMap maps a label to a display colour string.
type ColorMap map[string]string

// Lookup returns the colour configured for label or DefaultColor.
func (m ColorMap) Lookup(label string) string {
	if c, ok := m[label]; ok && c != "" {
		return c
	}
	return DefaultColor
}

// WithDefaults returns a copy of m in which every label without a colour is
// assigned one from GenerateColorMap.
func (m ColorMap) WithDefaults(labels []string) ColorMap {
	out := make(ColorMap, len(m)+len(labels))
	generated := GenerateColorMap(labels)
	for _, l := range labels {
		out[l] = generated[l]
	}
	for k, v := range m {
		if v != "" {
			out[k] = v
		}
	}
	return out
}

// GenerateColorMap spreads labels evenly over a red to magenta hue sweep.
func GenerateColorMap(labels []string) ColorMap {
	out := make(ColorMap, len(labels))
	n := len(labels)
	for i, l := range labels {
		hue := 0.0
		if n > 1 {
			hue = 300 * float64(i) / float64(n-1)
		}
		out[l] = strings.ToUpper(colorful.Hsv(hue, 1, 1).Hex())
	}
	return out
}

// ParseColor parses #RRGGBB, #RRGGBBAA or a CSS colour name.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		if c, ok := colornames.Map[strings.ToLower(s)]; ok {
			return c, nil
		}
		return color.RGBA{}, fmt.Errorf("color must start with # or be a known name: %q", s)
	}
	hex := strings.TrimPrefix(s, "#")
	switch len(hex) {
	case 6:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{R: uint8(val >> 16), G: uint8(val >> 8), B: uint8(val), A: 255}, nil
	case 8:
		val, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, err
		}
		return color.RGBA{R: uint8(val >> 24), G: uint8(val >> 16), B: uint8(val >> 8), A: uint8(val)}, nil
	}
	return color.RGBA{}, fmt.Errorf("invalid hex length")
}

// FormatColor renders c as #RRGGBB, or #RRGGBBAA when it is not opaque.
func FormatColor(c color.RGBA) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", c.R, c.G, c.B, c.A)
}
