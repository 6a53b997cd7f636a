// Package brush rasterizes brush dabs into occupancy grids.
//
// A stroke is painted one dab per pointer sample. Consecutive samples are not
// joined, so fast pointer motion leaves gaps between dabs.
package brush

import (
	"fmt"
	"image"
	"strings"

	"github.com/example/labelkit/internal/annotation"
)

const (
	MinSize     = 1
	MaxSize     = 50
	DefaultSize = 10
)

type Shape int

const (
	Circle Shape = iota
	Square
)

func (s Shape) String() string {
	if s == Square {
		return "square"
	}
	return "circle"
}

// ParseShape accepts "circle" or "square".
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "circle", "":
		return Circle, nil
	case "square":
		return Square, nil
	}
	return Circle, fmt.Errorf("unknown brush shape %q", s)
}

// Mode selects whether a dab sets or clears cells.
type Mode int

const (
	Pen Mode = iota
	Erase
)

func (m Mode) String() string {
	if m == Erase {
		return "erase"
	}
	return "pen"
}

// Value is the cell value written by the mode.
func (m Mode) Value() bool { return m == Pen }

// ParseMode accepts "pen" or "erase".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pen", "":
		return Pen, nil
	case "erase", "eraser":
		return Erase, nil
	}
	return Pen, fmt.Errorf("unknown brush mode %q", s)
}

// ClampSize limits n to [MinSize, MaxSize].
func ClampSize(n int) int {
	return max(MinSize, min(MaxSize, n))
}

// Covers reports whether the dab offset (dy, dx) is part of a brush of the
// given size and shape.
func Covers(dy, dx, size int, shape Shape) bool {
	if size <= 1 {
		return dy == 0 && dx == 0
	}
	r := size / 2
	if dy < -r || dy > r || dx < -r || dx > r {
		return false
	}
	if shape == Square {
		return true
	}
	return dy*dy+dx*dx < r*r+r
}

// Footprint lists the offsets covered by one dab, row by row.
func Footprint(size int, shape Shape) []image.Point {
	if size <= 1 {
		return []image.Point{{}}
	}
	r := size / 2
	var pts []image.Point
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if Covers(dy, dx, size, shape) {
				pts = append(pts, image.Pt(dx, dy))
			}
		}
	}
	return pts
}

// Paint writes value into every cell covered by a dab centred on
// (centerX, centerY). Cells outside the grid are skipped. It returns the
// number of cells written.
func Paint(g *annotation.Grid, centerY, centerX, size int, shape Shape, value bool) int {
	if g == nil {
		return 0
	}
	if size <= 1 {
		if !g.In(centerX, centerY) {
			return 0
		}
		g.Set(centerX, centerY, value)
		return 1
	}
	r := size / 2
	n := 0
	for dy := -r; dy <= r; dy++ {
		y := centerY + dy
		if y < 0 || y >= g.Height() {
			continue
		}
		for dx := -r; dx <= r; dx++ {
			x := centerX + dx
			if x < 0 || x >= g.Width() {
				continue
			}
			if shape == Circle && dy*dy+dx*dx >= r*r+r {
				continue
			}
			g.Set(x, y, value)
			n++
		}
	}
	return n
}
