package viewer

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/labelkit/internal/theme"
)

// ButtonState describes the visual state of a button.
type ButtonState int

const (
	StateDefault ButtonState = iota
	StateHover
	StatePressed
)

// Button is a toolbar entry. Pressed and Activate run on the event goroutine.
type Button struct {
	Label    string
	Pressed  func() bool
	Activate func()

	rect image.Rectangle
}

// Rect returns where the button was last laid out.
func (b *Button) Rect() image.Rectangle { return b.rect }

// buttonFrame is the part of a button the paint goroutine needs.
type buttonFrame struct {
	label string
	rect  image.Rectangle
	state ButtonState
}

type buttonFace struct {
	label string
	size  image.Point
	state ButtonState
}

// buttonCache keeps rendered button faces. It is owned by the paint goroutine.
type buttonCache struct {
	theme *theme.Theme
	faces map[buttonFace]*image.RGBA
}

func newButtonCache(th *theme.Theme) *buttonCache {
	return &buttonCache{theme: th, faces: map[buttonFace]*image.RGBA{}}
}

func (c *buttonCache) draw(dst *image.RGBA, b buttonFrame) {
	key := buttonFace{label: b.label, size: b.rect.Size(), state: b.state}
	face, ok := c.faces[key]
	if !ok {
		face = image.NewRGBA(image.Rectangle{Max: key.size})
		drawButton(face, face.Bounds(), b.label, b.state, c.theme)
		c.faces[key] = face
	}
	draw.Draw(dst, b.rect, face, image.Point{}, draw.Src)
}

func drawButton(dst *image.RGBA, r image.Rectangle, label string, state ButtonState, th *theme.Theme) {
	bg := th.ButtonBackground
	switch state {
	case StateHover:
		bg = th.ButtonBackgroundHover
	case StatePressed:
		bg = th.ButtonBackgroundPress
	}
	draw.Draw(dst, r, image.NewUniform(bg), image.Point{}, draw.Src)
	outline(dst, r, th.ButtonBorder)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(th.ButtonText), Face: basicfont.Face7x13,
		Dot: fixed.P(r.Min.X+4, r.Min.Y+16)}
	d.DrawString(label)
}

func outline(dst *image.RGBA, r image.Rectangle, c color.Color) {
	u := image.NewUniform(c)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), u, image.Point{}, draw.Src)
	draw.Draw(dst, image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), u, image.Point{}, draw.Src)
}

// toolbarWidth returns the width needed to fit every label and the title.
func toolbarWidth(title string, buttons []*Button) int {
	d := &font.Drawer{Face: basicfont.Face7x13}
	w := d.MeasureString(title).Ceil() + 8
	for _, b := range buttons {
		if bw := d.MeasureString(b.Label).Ceil() + 8; bw > w {
			w = bw
		}
	}
	return w
}

// layoutButtons stacks buttons below the header.
func layoutButtons(buttons []*Button, width int) {
	y := headerHeight
	for _, b := range buttons {
		b.rect = image.Rect(0, y, width, y+buttonHeight)
		y += buttonHeight
	}
}

func buttonAt(buttons []*Button, p image.Point) int {
	for i, b := range buttons {
		if p.In(b.rect) {
			return i
		}
	}
	return -1
}

func frames(buttons []*Button, hover int) []buttonFrame {
	out := make([]buttonFrame, len(buttons))
	for i, b := range buttons {
		state := StateDefault
		if b.Pressed != nil && b.Pressed() {
			state = StatePressed
		} else if i == hover {
			state = StateHover
		}
		out[i] = buttonFrame{label: b.Label, rect: b.rect, state: state}
	}
	return out
}
