// Package composite paints mask collections into a non-premultiplied RGBA
// overlay.
package composite

import (
	"image"
	"image/color"

	"github.com/example/labelkit/internal/annotation"
)

// Mode selects the opacity pair used for the overlay.
type Mode int

const (
	ModeDisplay Mode = iota
	ModeEdit
	ModeNew
)

func (m Mode) String() string {
	switch m {
	case ModeEdit:
		return "edit"
	case ModeNew:
		return "new"
	default:
		return "display"
	}
}

// Editing reports whether a mask is open for brush strokes.
func (m Mode) Editing() bool { return m == ModeEdit || m == ModeNew }

// Opacity is the alpha applied to unselected and selected masks.
type Opacity struct {
	Default  uint8
	Selected uint8
}

// Options configures a Compositor.
type Options struct {
	Display      Opacity
	Editing      Opacity
	DefaultColor string
}

// DefaultOptions dims masks while editing so the brush cursor stays visible.
func DefaultOptions() Options {
	return Options{
		Display:      Opacity{Default: 127, Selected: 180},
		Editing:      Opacity{Default: 64, Selected: 127},
		DefaultColor: annotation.DefaultColor,
	}
}

// Compositor owns the overlay buffer and reuses it while the image size is
// unchanged. It is not safe for concurrent use.
type Compositor struct {
	opts     Options
	buf      *image.NRGBA
	colors   map[string]color.NRGBA
	fallback color.NRGBA
}

// Option modifies a Compositor during creation.
type Option func(*Compositor)

// WithOptions replaces the opacity and colour defaults.
func WithOptions(o Options) Option { return func(c *Compositor) { c.opts = o } }

// New returns a compositor with an overlay buffer of the given size.
func New(width, height int, opts ...Option) *Compositor {
	c := &Compositor{opts: DefaultOptions(), colors: map[string]color.NRGBA{}}
	for _, o := range opts {
		o(c)
	}
	c.fallback = color.NRGBA{255, 255, 255, 255}
	if col, err := annotation.ParseColor(c.opts.DefaultColor); err == nil {
		c.fallback = color.NRGBA{col.R, col.G, col.B, 255}
	}
	c.Resize(width, height)
	return c
}

// Resize reallocates the buffer only when the dimensions change.
func (c *Compositor) Resize(width, height int) {
	width = max(width, 0)
	height = max(height, 0)
	if c.buf != nil && c.buf.Rect.Dx() == width && c.buf.Rect.Dy() == height {
		return
	}
	c.buf = image.NewNRGBA(image.Rect(0, 0, width, height))
}

// Image returns the current overlay buffer.
func (c *Compositor) Image() *image.NRGBA { return c.buf }

// At returns the overlay pixel at (x, y).
func (c *Compositor) At(x, y int) color.NRGBA { return c.buf.NRGBAAt(x, y) }

func (c *Compositor) opacity(mode Mode) Opacity {
	if mode.Editing() {
		return c.opts.Editing
	}
	return c.opts.Display
}

func (c *Compositor) color(hex string) color.NRGBA {
	if col, ok := c.colors[hex]; ok {
		return col
	}
	col := c.fallback
	if parsed, err := annotation.ParseColor(hex); err == nil {
		col = color.NRGBA{parsed.R, parsed.G, parsed.B, 255}
	}
	c.colors[hex] = col
	return col
}

// Composite repaints the overlay. Where masks overlap the last one in the
// slice wins. Pixels take the selected opacity when their winning mask has
// selectedID. The returned buffer is owned by the compositor and is
// overwritten by the next call.
func (c *Compositor) Composite(masks []*annotation.Mask, colors annotation.ColorMap, selectedID string, mode Mode) *image.NRGBA {
	pix := c.buf.Pix
	clear(pix)
	if len(masks) == 0 {
		return c.buf
	}

	w, h := c.buf.Rect.Dx(), c.buf.Rect.Dy()
	op := c.opacity(mode)
	type paint struct {
		grid *annotation.Grid
		col  color.NRGBA
	}
	layers := make([]paint, 0, len(masks))
	for _, m := range masks {
		if m == nil || m.Grid == nil {
			continue
		}
		col := c.color(colors.Lookup(m.Label))
		col.A = op.Default
		if selectedID != "" && m.ID == selectedID {
			col.A = op.Selected
		}
		layers = append(layers, paint{grid: m.Grid, col: col})
	}

	for y := 0; y < h; y++ {
		row := y * c.buf.Stride
		for x := 0; x < w; x++ {
			for i := len(layers) - 1; i >= 0; i-- {
				if !layers[i].grid.At(x, y) {
					continue
				}
				col := layers[i].col
				o := row + x*4
				pix[o+0] = col.R
				pix[o+1] = col.G
				pix[o+2] = col.B
				pix[o+3] = col.A
				break
			}
		}
	}
	return c.buf
}
