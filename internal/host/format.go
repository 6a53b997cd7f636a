package host

import (
	"fmt"
	"strings"
)

// BoxFormat names a bounding box layout.
type BoxFormat string

const (
	FormatXYWH     BoxFormat = "XYWH"
	FormatXYXY     BoxFormat = "XYXY"
	FormatCXYWH    BoxFormat = "CXYWH"
	FormatRelXYWH  BoxFormat = "REL_XYWH"
	FormatRelXYXY  BoxFormat = "REL_XYXY"
	FormatRelCXYWH BoxFormat = "REL_CXYWH"
)

// Formats lists every supported BoxFormat.
var Formats = []BoxFormat{FormatXYWH, FormatXYXY, FormatCXYWH, FormatRelXYWH, FormatRelXYXY, FormatRelCXYWH}

// ParseBoxFormat accepts a format name in any case.
func ParseBoxFormat(s string) (BoxFormat, error) {
	f := BoxFormat(strings.ToUpper(strings.TrimSpace(s)))
	if f == "" {
		return FormatXYWH, nil
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown bbox format %q", s)
}

// Relative reports whether coordinates are fractions of the image size.
func (f BoxFormat) Relative() bool { return strings.HasPrefix(string(f), "REL_") }

func (f BoxFormat) base() BoxFormat { return BoxFormat(strings.TrimPrefix(string(f), "REL_")) }

// ToFormat converts an absolute [x, y, w, h] box into format f.
func ToFormat(b [4]float64, f BoxFormat, imageW, imageH float64) [4]float64 {
	x, y, w, h := b[0], b[1], b[2], b[3]
	var out [4]float64
	switch f.base() {
	case FormatXYXY:
		out = [4]float64{x, y, x + w, y + h}
	case FormatCXYWH:
		out = [4]float64{x + w/2, y + h/2, w, h}
	default:
		out = b
	}
	if f.Relative() && imageW > 0 && imageH > 0 {
		out[0] /= imageW
		out[1] /= imageH
		out[2] /= imageW
		out[3] /= imageH
	}
	return out
}

// FromFormat converts a box in format f into absolute [x, y, w, h].
func FromFormat(b [4]float64, f BoxFormat, imageW, imageH float64) [4]float64 {
	if f.Relative() {
		b[0] *= imageW
		b[1] *= imageH
		b[2] *= imageW
		b[3] *= imageH
	}
	switch f.base() {
	case FormatXYXY:
		return [4]float64{b[0], b[1], b[2] - b[0], b[3] - b[1]}
	case FormatCXYWH:
		return [4]float64{b[0] - b[2]/2, b[1] - b[3]/2, b[2], b[3]}
	}
	return b
}
