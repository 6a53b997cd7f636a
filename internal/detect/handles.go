package detect

import (
	"image"
	"math"

	"github.com/example/labelkit/internal/annotation"
)

// HandleSize is the side of a resize handle in display pixels.
const HandleSize = 8

// Handle identifies what part of a box a drag grabbed.
type Handle int

const (
	HandleNone Handle = iota
	HandleMove
	HandleTL
	HandleT
	HandleTR
	HandleR
	HandleBR
	HandleB
	HandleBL
	HandleL
)

var handleOrder = [...]Handle{HandleTL, HandleT, HandleTR, HandleR, HandleBR, HandleB, HandleBL, HandleL}

// DisplayRect converts an image space box into display pixels.
func DisplayRect(r *annotation.Rectangle, scale float64) image.Rectangle {
	return image.Rect(
		int(r.X*scale),
		int(r.Y*scale),
		int((r.X+r.Width)*scale),
		int((r.Y+r.Height)*scale),
	)
}

// HandleRects returns the eight resize handles around rect, clockwise from
// the top left corner.
func HandleRects(rect image.Rectangle) []image.Rectangle {
	hs := HandleSize / 2
	cx := (rect.Min.X + rect.Max.X) / 2
	cy := (rect.Min.Y + rect.Max.Y) / 2
	return []image.Rectangle{
		image.Rect(rect.Min.X-hs, rect.Min.Y-hs, rect.Min.X+hs, rect.Min.Y+hs), // tl
		image.Rect(cx-hs, rect.Min.Y-hs, cx+hs, rect.Min.Y+hs),                 // t
		image.Rect(rect.Max.X-hs, rect.Min.Y-hs, rect.Max.X+hs, rect.Min.Y+hs), // tr
		image.Rect(rect.Max.X-hs, cy-hs, rect.Max.X+hs, cy+hs),                 // r
		image.Rect(rect.Max.X-hs, rect.Max.Y-hs, rect.Max.X+hs, rect.Max.Y+hs), // br
		image.Rect(cx-hs, rect.Max.Y-hs, cx+hs, rect.Max.Y+hs),                 // b
		image.Rect(rect.Min.X-hs, rect.Max.Y-hs, rect.Min.X+hs, rect.Max.Y+hs), // bl
		image.Rect(rect.Min.X-hs, cy-hs, rect.Min.X+hs, cy+hs),                 // l
	}
}

// handleAt returns the resize handle of r under the display point.
func handleAt(r *annotation.Rectangle, scale, x, y float64) Handle {
	p := image.Pt(int(x), int(y))
	for i, hr := range HandleRects(DisplayRect(r, scale)) {
		if p.In(hr) {
			return handleOrder[i]
		}
	}
	return HandleNone
}

// resize applies an image space drag delta to start for handle h. An axis
// that would become narrower than minSize keeps its previous extent.
func resize(start, prev annotation.Rectangle, h Handle, dx, dy, minSize float64) annotation.Rectangle {
	x0, y0 := start.X, start.Y
	x1, y1 := start.X+start.Width, start.Y+start.Height
	switch h {
	case HandleTL:
		x0 += dx
		y0 += dy
	case HandleT:
		y0 += dy
	case HandleTR:
		y0 += dy
		x1 += dx
	case HandleR:
		x1 += dx
	case HandleBR:
		x1 += dx
		y1 += dy
	case HandleB:
		y1 += dy
	case HandleBL:
		x0 += dx
		y1 += dy
	case HandleL:
		x0 += dx
	}
	minSize = math.Max(minSize, annotation.MinBoxSize)
	out := prev
	if x1-x0 >= minSize {
		out.X, out.Width = x0, x1-x0
	}
	if y1-y0 >= minSize {
		out.Y, out.Height = y0, y1-y0
	}
	return out
}
