// Package render draws an annotated image: the base picture, the mask overlay
// and box outlines with their handles and labels. The viewer uses it for
// every frame and the CLI for offline previews.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/labelkit/internal/annotation"
	"github.com/example/labelkit/internal/brush"
	"github.com/example/labelkit/internal/detect"
	"github.com/example/labelkit/internal/theme"
)

// CheckerSize is the side of a backdrop checker square in pixels.
const CheckerSize = 8

// Scene is everything needed to draw one annotated view.
type Scene struct {
	Image     image.Image  // Base picture; nil leaves the checkerboard visible
	Overlay   *image.NRGBA // Mask overlay at image resolution
	Boxes     []*annotation.Rectangle
	Selected  string
	Candidate *annotation.Rectangle
	Colors    annotation.ColorMap
	Scale     float64
	LineWidth float64
	Labels    bool // Draw label tags above boxes
	Handles   bool   // Draw resize handles on the selected box
	Caption   string // Tag drawn in the top left corner of the image
	Theme     *theme.Theme
}

func (s *Scene) scale() float64 {
	if s.Scale <= 0 {
		return 1
	}
	return s.Scale
}

func (s *Scene) theme() *theme.Theme {
	if s.Theme == nil {
		return theme.Default()
	}
	return s.Theme
}

// Preview renders the scene into a new image of width*scale by height*scale.
func Preview(s Scene, width, height int) *image.RGBA {
	sc := s.scale()
	rect := image.Rect(0, 0, int(math.Round(float64(width)*sc)), int(math.Round(float64(height)*sc)))
	dst := image.NewRGBA(rect)
	Draw(dst, rect, s)
	return dst
}

// Draw renders the scene into rect of dst. rect must have the scaled image
// size; its origin is the image origin.
func Draw(dst *image.RGBA, rect image.Rectangle, s Scene) {
	th := s.theme()
	Checkerboard(dst, rect, CheckerSize, th.CheckerLight, th.CheckerDark)
	if s.Image != nil {
		xdraw.NearestNeighbor.Scale(dst, rect, s.Image, s.Image.Bounds(), draw.Over, nil)
	}
	if s.Overlay != nil {
		xdraw.NearestNeighbor.Scale(dst, rect, s.Overlay, s.Overlay.Bounds(), draw.Over, nil)
	}
	if len(s.Boxes) > 0 || s.Candidate != nil {
		Boxes(dst, rect, s)
	}
	if s.Caption != "" {
		h := basicfont.Face7x13.Metrics().Height.Ceil()
		Tag(dst, image.Pt(rect.Min.X+2, rect.Min.Y+h+4), s.Caption, th)
	}
}

// Checkerboard fills rect of dst with a checkerboard pattern of the given
// colors. size controls the checker square size.
func Checkerboard(dst *image.RGBA, rect image.Rectangle, size int, light, dark color.Color) {
	rect = rect.Intersect(dst.Bounds())
	l := image.NewUniform(light)
	d := image.NewUniform(dark)
	for y := rect.Min.Y; y < rect.Max.Y; y += size {
		for x := rect.Min.X; x < rect.Max.X; x += size {
			src := l
			if (((x-rect.Min.X)/size)+((y-rect.Min.Y)/size))%2 != 0 {
				src = d
			}
			cell := image.Rect(x, y, x+size, y+size).Intersect(rect)
			draw.Draw(dst, cell, src, image.Point{}, draw.Src)
		}
	}
}

// Boxes strokes every box of the scene into rect of dst. The selected box is
// dashed and, when requested, gets its eight resize handles.
func Boxes(dst *image.RGBA, rect image.Rectangle, s Scene) {
	th := s.theme()
	sc := s.scale()
	lw := s.LineWidth
	if lw <= 0 {
		lw = 1
	}
	dc := gg.NewContext(rect.Dx(), rect.Dy())
	defer dc.Close()
	dc.SetLineWidth(lw)

	var selected *annotation.Rectangle
	for _, b := range s.Boxes {
		if b == nil {
			continue
		}
		if b.ID == s.Selected {
			selected = b
			continue
		}
		dc.SetColor(labelColor(s.Colors, b.Label, th))
		strokeBox(dc, b, sc)
	}
	if selected != nil {
		dc.SetColor(labelColor(s.Colors, selected.Label, th))
		dc.SetLineWidth(lw + 1)
		dc.SetDash(6, 4)
		strokeBox(dc, selected, sc)
		dc.SetDash()
		dc.SetLineWidth(lw)
	}
	if s.Candidate != nil {
		dc.SetColor(th.BoxCandidate)
		dc.SetDash(4, 4)
		strokeBox(dc, s.Candidate, sc)
		dc.SetDash()
	}
	if selected != nil && s.Handles {
		for _, hr := range detect.HandleRects(detect.DisplayRect(selected, sc)) {
			dc.DrawRectangle(float64(hr.Min.X), float64(hr.Min.Y), float64(hr.Dx()), float64(hr.Dy()))
			dc.SetColor(th.Handle)
			_ = dc.FillPreserve()
			dc.SetColor(th.HandleBorder)
			dc.SetLineWidth(1)
			_ = dc.Stroke()
		}
	}
	_ = dc.FlushGPU()
	draw.Draw(dst, rect, dc.Image(), image.Point{}, draw.Over)

	if s.Labels {
		for _, b := range s.Boxes {
			if b != nil && b.Label != "" {
				r := detect.DisplayRect(b, sc).Add(rect.Min)
				Tag(dst, r.Min, b.Label, th)
			}
		}
	}
}

func strokeBox(dc *gg.Context, b *annotation.Rectangle, sc float64) {
	dc.DrawRectangle(b.X*sc, b.Y*sc, b.Width*sc, b.Height*sc)
	_ = dc.Stroke()
}

func labelColor(colors annotation.ColorMap, label string, th *theme.Theme) color.Color {
	if _, ok := colors[label]; !ok {
		return th.BoxStroke
	}
	c, err := annotation.ParseColor(colors.Lookup(label))
	if err != nil {
		return th.BoxStroke
	}
	return c
}

// Tag draws a small label with its bottom left corner at p, moving it below p
// when there is no room above.
func Tag(dst *image.RGBA, p image.Point, text string, th *theme.Theme) {
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.LabelText), Face: face}
	w := d.MeasureString(text).Ceil()
	h := face.Metrics().Height.Ceil()
	top := p.Y - h - 2
	if top < dst.Bounds().Min.Y {
		top = p.Y
	}
	bg := image.Rect(p.X, top, p.X+w+4, top+h+2)
	draw.Draw(dst, bg, image.NewUniform(th.LabelBackground), image.Point{}, draw.Over)
	d.Dot = fixed.P(bg.Min.X+2, bg.Min.Y+face.Metrics().Ascent.Ceil()+1)
	d.DrawString(text)
}

// Cursor outlines the brush footprint centred on the display point p. Each
// footprint cell is scale display pixels wide and the outline follows the
// cell edges, so the cursor shows exactly the cells a dab paints.
func Cursor(dst *image.RGBA, p image.Point, size int, shape brush.Shape, scale float64, col color.Color) {
	if scale <= 0 {
		scale = 1
	}
	cells := brush.Footprint(size, shape)
	covered := make(map[image.Point]bool, len(cells))
	reach := 0
	for _, c := range cells {
		covered[c] = true
		reach = max(reach, abs(c.X), abs(c.Y))
	}
	r := int(math.Ceil((float64(reach) + 0.5) * scale))
	b := image.Rect(p.X-r-2, p.Y-r-2, p.X+r+3, p.Y+r+3).Intersect(dst.Bounds())
	if b.Empty() {
		return
	}
	dc := gg.NewContext(b.Dx(), b.Dy())
	defer dc.Close()
	cx, cy := float64(p.X-b.Min.X), float64(p.Y-b.Min.Y)
	edge := func(x0, y0, x1, y1 float64) {
		dc.MoveTo(cx+x0*scale, cy+y0*scale)
		dc.LineTo(cx+x1*scale, cy+y1*scale)
	}
	for _, c := range cells {
		left, top := float64(c.X)-0.5, float64(c.Y)-0.5
		right, bottom := left+1, top+1
		if !covered[c.Add(image.Pt(0, -1))] {
			edge(left, top, right, top)
		}
		if !covered[c.Add(image.Pt(0, 1))] {
			edge(left, bottom, right, bottom)
		}
		if !covered[c.Add(image.Pt(-1, 0))] {
			edge(left, top, left, bottom)
		}
		if !covered[c.Add(image.Pt(1, 0))] {
			edge(right, top, right, bottom)
		}
	}
	dc.SetColor(col)
	dc.SetLineWidth(1)
	_ = dc.Stroke()
	_ = dc.FlushGPU()
	draw.Draw(dst, b, dc.Image(), image.Point{}, draw.Over)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
