package viewer

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/example/labelkit/internal/brush"
	"github.com/example/labelkit/internal/render"
	"github.com/example/labelkit/internal/theme"
)

// frameDropThreshold specifies how many consecutive frames can be canceled
// before a draw is allowed to complete to keep the UI responsive.
const frameDropThreshold = 10

var messageFace font.Face = basicfont.Face7x13

func init() {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return
	}
	if face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: 32, DPI: 72, Hinting: font.HintingFull}); err == nil {
		messageFace = face
	}
}

// paintState is an immutable snapshot handed to the paint goroutine.
type paintState struct {
	layout       layout
	title        string
	status       string
	scene        render.Scene
	buttons      []buttonFrame
	cursor       image.Point
	cursorSize   int
	cursorShape  brush.Shape
	showCursor   bool
	message      string
	messageUntil time.Time
}

// painter renders frames. All of its fields belong to the paint goroutine.
type painter struct {
	theme    *theme.Theme
	buttons  *buttonCache
	backdrop *image.RGBA
	logger   *zap.Logger
}

func newPainter(th *theme.Theme, logger *zap.Logger) *painter {
	return &painter{theme: th, buttons: newButtonCache(th), logger: logger}
}

// drawBackdrop fills dst with the cached window background.
func (p *painter) drawBackdrop(dst *image.RGBA) {
	b := dst.Bounds()
	if p.backdrop == nil || p.backdrop.Bounds() != b {
		p.backdrop = image.NewRGBA(b)
		draw.Draw(p.backdrop, b, image.NewUniform(p.theme.Background), image.Point{}, draw.Src)
	}
	draw.Draw(dst, b, p.backdrop, image.Point{}, draw.Src)
}

func (p *painter) drawFrame(ctx context.Context, s screen.Screen, w screen.Window, st paintState) {
	b, err := s.NewBuffer(image.Point{st.layout.width, st.layout.height})
	if err != nil {
		p.logger.Error("new buffer", zap.Error(err))
		return
	}
	defer b.Release()
	dst := b.RGBA()

	p.drawBackdrop(dst)
	if ctx.Err() != nil {
		return
	}

	scene := st.scene
	scene.Theme = p.theme
	render.Draw(dst, st.layout.canvas, scene)
	if ctx.Err() != nil {
		return
	}

	if st.showCursor && st.cursor.In(st.layout.canvas) {
		render.Cursor(dst, st.cursor, st.cursorSize, st.cursorShape, scene.Scale, p.theme.Cursor)
	}

	p.drawHeader(dst, st)
	for _, bf := range st.buttons {
		p.buttons.draw(dst, bf)
	}
	p.drawStatus(dst, st)
	if ctx.Err() != nil {
		return
	}

	if st.message != "" && time.Now().Before(st.messageUntil) {
		p.drawMessage(dst, st)
	}
	if ctx.Err() != nil {
		return
	}

	w.Upload(image.Point{}, b, b.Bounds())
	w.Publish()
}

func (p *painter) drawHeader(dst *image.RGBA, st paintState) {
	r := image.Rect(0, 0, st.layout.width, headerHeight)
	draw.Draw(dst, r, image.NewUniform(p.theme.ToolbarBackground), image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(p.theme.Foreground), Face: basicfont.Face7x13,
		Dot: fixed.P(4, 16)}
	d.DrawString(st.title)
	tb := image.Rect(0, headerHeight, st.layout.toolbar, st.layout.height-statusHeight)
	draw.Draw(dst, tb, image.NewUniform(p.theme.ToolbarBackground), image.Point{}, draw.Src)
}

func (p *painter) drawStatus(dst *image.RGBA, st paintState) {
	r := st.layout.statusRect()
	draw.Draw(dst, r, image.NewUniform(p.theme.ToolbarBackground), image.Point{}, draw.Src)
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(p.theme.Foreground), Face: basicfont.Face7x13,
		Dot: fixed.P(r.Min.X+4, r.Min.Y+16)}
	d.DrawString(st.status + "    ^S:save  ^C:copy  R:reload  Q:quit")
}

func (p *painter) drawMessage(dst *image.RGBA, st paintState) {
	d := &font.Drawer{Dst: dst, Src: image.Black, Face: messageFace}
	wmsg := d.MeasureString(st.message).Ceil()
	ascent := messageFace.Metrics().Ascent.Ceil()
	descent := messageFace.Metrics().Descent.Ceil()
	px := (st.layout.width - wmsg) / 2
	py := (st.layout.height-ascent-descent)/2 + ascent
	rect := image.Rect(px-8, py-ascent-8, px+wmsg+8, py+descent+8)
	draw.Draw(dst, rect, image.NewUniform(color.RGBA{255, 255, 255, 230}), image.Point{}, draw.Over)
	outline(dst, rect, color.Black)
	d.Dot = fixed.P(px, py)
	d.DrawString(st.message)
}
