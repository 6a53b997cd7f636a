// Package viewer is the interactive desktop surface of labelkit. It shows an
// image in a shiny window and turns mouse and keyboard input into editor
// events.
package viewer

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/mouse"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/example/labelkit/internal/annotation"
	"github.com/example/labelkit/internal/brush"
	"github.com/example/labelkit/internal/clipboard"
	"github.com/example/labelkit/internal/event"
	"github.com/example/labelkit/internal/notify"
	"github.com/example/labelkit/internal/render"
	"github.com/example/labelkit/internal/theme"
)

const messageDuration = 2 * time.Second

// Viewer shows one target in a window.
type Viewer struct {
	target   Target
	image    image.Image
	title    string
	output   string
	theme    *theme.Theme
	colors   annotation.ColorMap
	notifier *notify.Notifier
	logger   *zap.Logger
	session  string
	ctl      controls
	onClose  func()
	reload   func() (event.Event, error)
	lineW    float64

	buttons []*Button
	hover   int
	lay     layout
	pointer image.Point
	inside  bool

	message      string
	messageUntil time.Time
	quit         bool
}

// Option modifies a Viewer during creation.
type Option func(*Viewer)

// WithImage sets the picture shown under the annotations.
func WithImage(img image.Image) Option { return func(v *Viewer) { v.image = img } }

// WithTitle sets the header text.
func WithTitle(title string) Option { return func(v *Viewer) { v.title = title } }

// WithOutput sets the file ^S writes the current value to.
func WithOutput(path string) Option { return func(v *Viewer) { v.output = path } }

func WithTheme(th *theme.Theme) Option { return func(v *Viewer) { v.theme = th } }

func WithColors(c annotation.ColorMap) Option { return func(v *Viewer) { v.colors = c } }

func WithNotifier(n *notify.Notifier) Option { return func(v *Viewer) { v.notifier = n } }

func WithLogger(l *zap.Logger) Option { return func(v *Viewer) { v.logger = l } }

// WithBrush sets the brush the keyboard shortcuts start from. It should match
// the brush the target was created with.
func WithBrush(size int, shape brush.Shape, mode brush.Mode) Option {
	return func(v *Viewer) {
		v.ctl.size = brush.ClampSize(size)
		v.ctl.shape = shape
		v.ctl.mode = mode
	}
}

// WithLineWidth sets the box outline width.
func WithLineWidth(w float64) Option { return func(v *Viewer) { v.lineW = w } }

// WithReload registers the source of the R shortcut, which re-reads the host
// parameters and returns the matching load event.
func WithReload(fn func() (event.Event, error)) Option { return func(v *Viewer) { v.reload = fn } }

// WithOnClose registers a callback invoked when the window closes.
func WithOnClose(fn func()) Option { return func(v *Viewer) { v.onClose = fn } }

// New creates a viewer for target.
func New(target Target, opts ...Option) *Viewer {
	v := &Viewer{
		target:  target,
		title:   "labelkit",
		session: uuid.NewString(),
		hover:   -1,
		ctl:     controls{size: brush.DefaultSize},
	}
	for _, o := range opts {
		o(v)
	}
	if v.theme == nil {
		v.theme = theme.Default()
	}
	if v.logger == nil {
		v.logger = zap.NewNop()
	}
	v.logger = v.logger.With(zap.String("session", v.session))
	v.ctl.labels = target.Labels()
	v.buttons = v.toolbar()
	return v
}

// Session returns the id tagging this viewer's log lines.
func (v *Viewer) Session() string { return v.session }

func (v *Viewer) toolbar() []*Button {
	send := func(ev event.Event) func() { return func() { v.target.Handle(ev) } }
	var out []*Button
	switch t := v.target.(type) {
	case SegmentTarget:
		out = append(out,
			&Button{Label: "E:Edit", Activate: send(event.Toggle{}), Pressed: func() bool { return t.Mode().Editing() }},
			&Button{Label: "P:Pen", Activate: func() { t.Handle(v.ctl.setMode(brush.Pen)) }, Pressed: func() bool { return v.ctl.mode == brush.Pen }},
			&Button{Label: "X:Erase", Activate: func() { t.Handle(v.ctl.setMode(brush.Erase)) }, Pressed: func() bool { return v.ctl.mode == brush.Erase }},
			&Button{Label: "C:Circle", Activate: func() { t.Handle(v.ctl.setShape(brush.Circle)) }, Pressed: func() bool { return v.ctl.shape == brush.Circle }},
			&Button{Label: "S:Square", Activate: func() { t.Handle(v.ctl.setShape(brush.Square)) }, Pressed: func() bool { return v.ctl.shape == brush.Square }},
			&Button{Label: "[:Size-", Activate: func() { t.Handle(v.ctl.setSize(v.ctl.size - 1)) }},
			&Button{Label: "]:Size+", Activate: func() { t.Handle(v.ctl.setSize(v.ctl.size + 1)) }},
		)
	case DetectTarget:
		out = append(out,
			&Button{Label: "D:Delete", Activate: func() { t.Handle(v.ctl.toggleBoxMode()) }, Pressed: func() bool { return v.ctl.boxDelete }},
		)
	}
	picker, _ := v.target.(ClassifyTarget)
	for i, l := range v.ctl.labels {
		if i >= 9 {
			break
		}
		b := &Button{Label: fmt.Sprintf("%d:%s", i+1, l), Activate: send(event.SetLabel{Label: l})}
		if picker.Editor != nil {
			b.Pressed = func() bool { return picker.Has(l) }
		}
		out = append(out, b)
	}
	return out
}

// Run executes the UI loop using shiny's driver.
func (v *Viewer) Run() { driver.Main(v.Main) }

func (v *Viewer) Main(s screen.Screen) {
	defer func() {
		if v.onClose != nil {
			v.onClose()
		}
	}()
	imgW, imgH := v.target.Size()
	tw := toolbarWidth(v.title, v.buttons)
	layoutButtons(v.buttons, tw)
	width := max(imgW+tw, 320)
	height := max(imgH+headerHeight+statusHeight, headerHeight+statusHeight+len(v.buttons)*buttonHeight)
	w, err := s.NewWindow(&screen.NewWindowOptions{Width: width, Height: height, Title: v.title})
	if err != nil {
		v.logger.Error("new window", zap.Error(err))
		return
	}
	defer w.Release()
	v.resize(imgW, imgH, width, height, tw)
	v.target.Handle(event.SetBrush{Size: v.ctl.size, Shape: v.ctl.shape, Mode: v.ctl.mode})
	v.logger.Info("viewer started", zap.Int("width", imgW), zap.Int("height", imgH))

	var paintMu sync.Mutex
	var paintCancel context.CancelFunc
	var dropCount int
	paintCh := make(chan paintState, 1)
	p := newPainter(v.theme, v.logger)
	go func() {
		for st := range paintCh {
			ctx, cancel := context.WithCancel(context.Background())
			paintMu.Lock()
			paintCancel = cancel
			paintMu.Unlock()
			p.drawFrame(ctx, s, w, st)
			paintMu.Lock()
			paintCancel = nil
			if ctx.Err() == nil {
				dropCount = 0
			}
			paintMu.Unlock()
			cancel()
		}
	}()
	defer close(paintCh)

	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				paintMu.Lock()
				if paintCancel != nil {
					paintCancel()
				}
				paintMu.Unlock()
				return
			}
		case size.Event:
			v.resize(imgW, imgH, e.WidthPx, e.HeightPx, tw)
			w.Send(paint.Event{})
		case paint.Event:
			paintMu.Lock()
			if paintCancel != nil && dropCount < frameDropThreshold {
				paintCancel()
				dropCount++
			}
			paintMu.Unlock()
			st := v.snapshot()
			select {
			case paintCh <- st:
			default:
				select {
				case <-paintCh:
				default:
				}
				paintCh <- st
			}
		case mouse.Event:
			if v.handleMouse(e) {
				w.Send(paint.Event{})
			}
		case key.Event:
			if v.handleKey(e) {
				w.Send(paint.Event{})
			}
		}
		if v.quit {
			return
		}
	}
}

func (v *Viewer) resize(imgW, imgH, winW, winH, tw int) {
	v.lay = newLayout(imgW, imgH, winW, winH, tw)
	v.target.Handle(event.SetScale{Scale: v.lay.scale})
}

func (v *Viewer) snapshot() paintState {
	scene := withColors(v.target.Scene(), v.colors)
	scene.Image = v.image
	scene.LineWidth = v.lineW
	st := paintState{
		layout:       v.lay,
		title:        v.title,
		status:       v.target.Status(),
		scene:        scene,
		buttons:      frames(v.buttons, v.hover),
		cursor:       v.pointer,
		message:      v.message,
		messageUntil: v.messageUntil,
	}
	if sz, shape, ok := v.target.Cursor(); ok && v.inside {
		st.cursorSize, st.cursorShape, st.showCursor = sz, shape, true
	}
	return st
}

// handleMouse reports whether the window needs a repaint.
func (v *Viewer) handleMouse(e mouse.Event) bool {
	v.pointer = image.Pt(int(e.X), int(e.Y))
	if v.message != "" && time.Now().Before(v.messageUntil) && e.Direction == mouse.DirPress {
		v.messageUntil = time.Time{}
		return true
	}
	if v.lay.inToolbar(e.X, e.Y) {
		changed := v.leaveCanvas()
		idx := buttonAt(v.buttons, v.pointer)
		if idx != v.hover {
			v.hover = idx
			changed = true
		}
		if idx >= 0 && e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress {
			v.buttons[idx].Activate()
			changed = true
		}
		return changed
	}
	changed := v.hover != -1
	v.hover = -1
	x, y, in := v.lay.local(e.X, e.Y)
	if !in {
		return v.leaveCanvas() || changed
	}
	v.inside = true
	var dir event.Direction
	switch {
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirPress:
		dir = event.DirPress
	case e.Button == mouse.ButtonLeft && e.Direction == mouse.DirRelease:
		dir = event.DirRelease
	case e.Direction == mouse.DirNone:
		dir = event.DirMove
	default:
		return true
	}
	v.target.Handle(event.Pointer{Dir: dir, X: x, Y: y})
	return true
}

func (v *Viewer) leaveCanvas() bool {
	if !v.inside {
		return false
	}
	v.inside = false
	v.target.Handle(event.Pointer{Dir: event.DirLeave})
	return true
}

// handleKey reports whether the window needs a repaint.
func (v *Viewer) handleKey(e key.Event) bool {
	evs, act := v.ctl.translateKey(e)
	for _, ev := range evs {
		v.target.Handle(ev)
	}
	switch act {
	case actionSave:
		v.save()
	case actionCopy:
		v.copyValue()
	case actionCopyPreview:
		v.copyPreview()
	case actionReload:
		v.reloadParams()
	case actionQuit:
		v.quit = true
	}
	return len(evs) > 0 || act != actionNone
}

func (v *Viewer) reloadParams() {
	if v.reload == nil {
		return
	}
	ev, err := v.reload()
	if err != nil {
		v.logger.Warn("reload", zap.Error(err))
		v.flash("reload failed")
		return
	}
	v.target.Handle(ev)
	v.flash("reloaded")
}

func (v *Viewer) flash(msg string) {
	v.message = msg
	v.messageUntil = time.Now().Add(messageDuration)
}

func (v *Viewer) save() {
	if v.output == "" {
		v.flash("no output file")
		return
	}
	data, err := json.MarshalIndent(v.target.Value(), "", "  ")
	if err != nil {
		v.logger.Error("save", zap.Error(err))
		return
	}
	if err := os.WriteFile(v.output, append(data, '\n'), 0o644); err != nil {
		v.logger.Error("save", zap.String("path", v.output), zap.Error(err))
		v.flash("save failed")
		return
	}
	v.logger.Info("saved", zap.String("path", v.output))
	v.flash("saved " + v.output)
	v.notifier.Save(v.output)
}

func (v *Viewer) copyValue() {
	text, err := clipboard.EncodeValue(v.target.Value())
	if err == nil {
		err = clipboard.WriteText(text)
	}
	if err != nil {
		v.logger.Warn("copy", zap.Error(err))
		v.flash("copy failed")
		return
	}
	v.flash("annotations copied")
	v.notifier.Copy("annotations")
}

func (v *Viewer) copyPreview() {
	img := Preview(v.target, v.image, v.colors, v.theme, v.lineW)
	if err := clipboard.WriteImage(img); err != nil {
		v.logger.Warn("copy preview", zap.Error(err))
		v.flash("copy failed")
		return
	}
	v.flash("preview copied")
	v.notifier.Copy("preview image")
}

// Preview renders the current state of t over img at image resolution.
func Preview(t Target, img image.Image, colors annotation.ColorMap, th *theme.Theme, lineWidth float64) *image.RGBA {
	w, h := t.Size()
	scene := withColors(t.Scene(), colors)
	scene.Image = img
	scene.Theme = th
	scene.LineWidth = lineWidth
	scene.Scale = 1
	return render.Preview(scene, w, h)
}
