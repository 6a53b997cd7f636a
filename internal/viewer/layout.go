package viewer

import (
	"image"
	"math"
)

const (
	headerHeight = 24
	statusHeight = 24
	buttonHeight = 24
)

// minScale keeps the canvas non-empty in very small windows.
const minScale = 0.05

// layout places the toolbar, header, status bar and canvas in a window.
type layout struct {
	width, height int
	toolbar       int
	canvas        image.Rectangle
	scale         float64
}

func newLayout(imgW, imgH, winW, winH, toolbar int) layout {
	availW := winW - toolbar
	availH := winH - headerHeight - statusHeight
	sc := fitScale(imgW, imgH, availW, availH)
	w := int(math.Round(float64(imgW) * sc))
	h := int(math.Round(float64(imgH) * sc))
	return layout{
		width:   winW,
		height:  winH,
		toolbar: toolbar,
		canvas:  image.Rect(toolbar, headerHeight, toolbar+w, headerHeight+h),
		scale:   sc,
	}
}

// fitScale returns the largest scale at which an image fits the available
// area. Images smaller than the area are not enlarged.
func fitScale(imgW, imgH, availW, availH int) float64 {
	if imgW <= 0 || imgH <= 0 {
		return 1
	}
	zx := float64(availW) / float64(imgW)
	zy := float64(availH) / float64(imgH)
	sc := math.Min(1, math.Min(zx, zy))
	if sc < minScale {
		return minScale
	}
	return sc
}

// local converts a window position to canvas display coordinates.
func (l layout) local(x, y float32) (float64, float64, bool) {
	p := image.Pt(int(x), int(y))
	return float64(x) - float64(l.canvas.Min.X), float64(y) - float64(l.canvas.Min.Y), p.In(l.canvas)
}

func (l layout) inToolbar(x, y float32) bool {
	return int(x) < l.toolbar && int(y) >= headerHeight && int(y) < l.height-statusHeight
}

func (l layout) statusRect() image.Rectangle {
	return image.Rect(0, l.height-statusHeight, l.width, l.height)
}
