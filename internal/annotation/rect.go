package annotation

import (
	"maps"
	"math"
	"slices"
)

// MinBoxSize is the smallest extent, in image pixels, a box may have on
// either axis.
const MinBoxSize = 5

// Rectangle is one labelled bounding box in image pixel coordinates.
type Rectangle struct {
	ID             string
	Label          string
	X, Y           float64
	Width, Height  float64
	Meta           []string
	AdditionalData map[string]any
}

func (r *Rectangle) Clone() *Rectangle {
	out := *r
	out.Meta = slices.Clone(r.Meta)
	out.AdditionalData = maps.Clone(r.AdditionalData)
	return &out
}

// Contains reports whether the image point lies inside the box.
func (r *Rectangle) Contains(x, y float64) bool {
	return x >= r.X && y >= r.Y && x <= r.X+r.Width && y <= r.Y+r.Height
}

// Normalize flips negative extents, clips the box to the image and enforces
// MinBoxSize on each axis. Image dimensions of zero or less disable the
// image clamp. Normalize is idempotent.
func (r *Rectangle) Normalize(imageW, imageH float64) {
	r.NormalizeMin(imageW, imageH, MinBoxSize)
}

// NormalizeMin is Normalize with a caller supplied minimum extent. Values
// below MinBoxSize are raised to it.
func (r *Rectangle) NormalizeMin(imageW, imageH, minSize float64) {
	minSize = math.Max(minSize, MinBoxSize)
	r.X, r.Width = normalizeAxis(r.X, r.Width, imageW, minSize)
	r.Y, r.Height = normalizeAxis(r.Y, r.Height, imageH, minSize)
}

func normalizeAxis(pos, extent, limit, floor float64) (float64, float64) {
	if extent < 0 {
		extent = -extent
		pos -= extent
	}
	if pos < 0 {
		extent += pos
		pos = 0
	}
	if limit > 0 {
		if pos+extent > limit {
			extent = limit - pos
		}
		floor = math.Min(floor, limit)
	}
	if extent < floor {
		extent = floor
	}
	if limit > 0 && pos+extent > limit {
		pos = limit - extent
	}
	return pos, extent
}
