// Package detect implements the bounding box editor.
package detect

import (
	"slices"

	"go.uber.org/zap"

	"github.com/example/labelkit/internal/annotation"
	"github.com/example/labelkit/internal/event"
	"github.com/example/labelkit/internal/host"
)

// Mode selects what a press on a box does.
type Mode int

const (
	ModeTransform Mode = iota
	ModeDelete
)

// MoveStep is the arrow key step in display pixels.
const MoveStep = 5

type action int

const (
	actionNone action = iota
	actionAdd
	actionMove
	actionResize
)

// Editor owns a box collection and mutates it in response to events. Every
// committed change is emitted before Handle returns. Editor is not safe for
// concurrent use.
type Editor struct {
	width, height float64
	boxes         []*annotation.Rectangle
	labels        []string
	label         string
	selected      string
	scale         float64
	mode          Mode
	readOnly      bool
	format        host.BoxFormat
	minSize       float64
	moveStep      float64

	emitter host.Emitter
	keys    *host.KeySource
	lastKey string
	logger  *zap.Logger

	keyDown map[event.KeyCode]bool

	active    action
	handle    Handle
	anchorX   float64
	anchorY   float64
	start     annotation.Rectangle
	candidate annotation.Rectangle
	changed   bool
}

// Option modifies an Editor during creation.
type Option func(*Editor)

// WithBoxes sets the initial collection. Boxes are normalized on load.
func WithBoxes(boxes []*annotation.Rectangle) Option {
	return func(e *Editor) { e.boxes = boxes }
}

// WithLabels sets the label list used for label ids. The first label is the
// initial current label.
func WithLabels(labels []string) Option { return func(e *Editor) { e.labels = labels } }

// WithLabel sets the label given to new boxes.
func WithLabel(label string) Option { return func(e *Editor) { e.label = label } }

// WithReadOnly turns every mutating event into a no-op.
func WithReadOnly(ro bool) Option { return func(e *Editor) { e.readOnly = ro } }

// WithFormat sets the bbox layout of emitted records.
func WithFormat(f host.BoxFormat) Option { return func(e *Editor) { e.format = f } }

// WithScale sets the initial display scale.
func WithScale(s float64) Option { return func(e *Editor) { e.scale = s } }

// WithMoveStep sets the arrow key step in display pixels.
func WithMoveStep(step float64) Option { return func(e *Editor) { e.moveStep = step } }

// WithMinSize sets the smallest box extent in image pixels. It is the drag
// threshold for new boxes, the resize floor and the floor applied when boxes
// are normalized. Values below annotation.MinBoxSize still normalize to
// annotation.MinBoxSize.
func WithMinSize(n float64) Option { return func(e *Editor) { e.minSize = n } }

// WithKeySource shares a change key source with another editor.
func WithKeySource(k *host.KeySource) Option { return func(e *Editor) { e.keys = k } }

// WithLogger sets the logger used for transitions and emit failures.
func WithLogger(l *zap.Logger) Option { return func(e *Editor) { e.logger = l } }

// New returns a box editor for an image of the given size.
func New(width, height int, emitter host.Emitter, opts ...Option) *Editor {
	e := &Editor{
		width:    float64(width),
		height:   float64(height),
		scale:    1,
		format:   host.FormatXYWH,
		minSize:  annotation.MinBoxSize,
		moveStep: MoveStep,
		emitter:  emitter,
		keyDown:  map[event.KeyCode]bool{},
	}
	for _, o := range opts {
		o(e)
	}
	if e.emitter == nil {
		e.emitter = host.Discard
	}
	if e.keys == nil {
		e.keys = host.NewKeySource()
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.scale <= 0 {
		e.scale = 1
	}
	if e.label == "" && len(e.labels) > 0 {
		e.label = e.labels[0]
	}
	e.boxes = e.load(e.boxes)
	return e
}

func (e *Editor) load(in []*annotation.Rectangle) []*annotation.Rectangle {
	out := make([]*annotation.Rectangle, 0, len(in))
	for _, b := range in {
		if b == nil {
			continue
		}
		b = b.Clone()
		e.normalize(b)
		out = append(out, b)
	}
	return out
}

// Boxes returns copies of the boxes in drawing order.
func (e *Editor) Boxes() []*annotation.Rectangle {
	out := make([]*annotation.Rectangle, len(e.boxes))
	for i, b := range e.boxes {
		out[i] = b.Clone()
	}
	return out
}

func (e *Editor) Len() int         { return len(e.boxes) }
func (e *Editor) Selected() string { return e.selected }
func (e *Editor) Label() string    { return e.label }
func (e *Editor) Scale() float64   { return e.scale }
func (e *Editor) Mode() Mode       { return e.mode }
func (e *Editor) ReadOnly() bool   { return e.readOnly }
func (e *Editor) Labels() []string { return e.labels }
func (e *Editor) LastKey() string  { return e.lastKey }
func (e *Editor) Active() bool     { return e.active != actionNone }
func (e *Editor) Size() (w, h int) { return int(e.width), int(e.height) }

// Candidate returns the box being drawn, normalized, while a draw is active.
func (e *Editor) Candidate() (annotation.Rectangle, bool) {
	if e.active != actionAdd {
		return annotation.Rectangle{}, false
	}
	c := e.candidate
	e.normalize(&c)
	return c, true
}

func (e *Editor) normalize(b *annotation.Rectangle) {
	b.NormalizeMin(e.width, e.height, e.minSize)
}

// Value returns the current collection together with the key of the last
// emission.
func (e *Editor) Value() host.DetectionValue {
	return host.DetectionValue{
		BBox: host.BoxRecords(e.boxes, e.labels, e.format, e.width, e.height),
		Key:  e.lastKey,
	}
}

// Records returns the boxes as records without emitting.
func (e *Editor) Records() []host.BoxRecord {
	return host.BoxRecords(e.boxes, e.labels, e.format, e.width, e.height)
}

// Clear removes every box without emitting.
func (e *Editor) Clear() {
	e.boxes = e.boxes[:0]
	e.setSelected("")
	e.active = actionNone
}

func (e *Editor) emit() {
	v := host.DetectionValue{
		BBox: host.BoxRecords(e.boxes, e.labels, e.format, e.width, e.height),
		Key:  e.keys.Next(),
	}
	e.lastKey = v.Key
	if err := e.emitter.Emit(v); err != nil {
		e.logger.Warn("emit detection value", zap.Error(err))
	}
}

func (e *Editor) index(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(e.boxes, func(b *annotation.Rectangle) bool { return b.ID == id })
}

func (e *Editor) selectedBox() *annotation.Rectangle {
	if i := e.index(e.selected); i >= 0 {
		return e.boxes[i]
	}
	return nil
}

// boxAt returns the topmost box containing the image point.
func (e *Editor) boxAt(x, y float64) *annotation.Rectangle {
	for i := len(e.boxes) - 1; i >= 0; i-- {
		if e.boxes[i].Contains(x, y) {
			return e.boxes[i]
		}
	}
	return nil
}

func (e *Editor) setSelected(id string) {
	if id == e.selected {
		return
	}
	e.selected = id
	clear(e.keyDown)
}

// Handle applies one event.
func (e *Editor) Handle(ev event.Event) {
	switch ev := ev.(type) {
	case event.Pointer:
		e.handlePointer(ev)
	case event.Key:
		e.handleKey(ev)
	case event.SetScale:
		if ev.Scale > 0 {
			e.scale = ev.Scale
		}
	case event.SetBoxMode:
		m := ModeTransform
		if ev.Delete {
			m = ModeDelete
		}
		if m != e.mode {
			e.mode = m
			e.active = actionNone
			clear(e.keyDown)
		}
	case event.SetLabel:
		e.label = ev.Label
		if b := e.selectedBox(); b != nil && !e.readOnly && b.Label != ev.Label {
			b.Label = ev.Label
			e.emit()
		}
	case event.Select:
		if ev.ID == "" || e.index(ev.ID) >= 0 {
			e.setSelected(ev.ID)
			if b := e.selectedBox(); b != nil {
				e.label = b.Label
			}
		}
	case event.Delete:
		id := ev.ID
		if id == "" {
			id = e.selected
		}
		e.remove(id)
	case event.UpdateItem:
		e.updateItem(ev)
	case event.LoadBoxes:
		e.boxes = e.load(ev.Boxes)
		e.active = actionNone
		if e.index(e.selected) < 0 {
			e.setSelected("")
		}
	}
}

func (e *Editor) remove(id string) {
	if e.readOnly {
		return
	}
	i := e.index(id)
	if i < 0 {
		return
	}
	e.boxes = slices.Delete(e.boxes, i, i+1)
	if id == e.selected {
		e.setSelected("")
	}
	e.logger.Debug("box deleted", zap.String("id", id))
	e.emit()
}

func (e *Editor) updateItem(ev event.UpdateItem) {
	if e.readOnly {
		return
	}
	i := e.index(ev.ID)
	if i < 0 {
		return
	}
	b := e.boxes[i]
	if ev.NewID != "" && ev.NewID != b.ID {
		if e.index(ev.NewID) >= 0 {
			return
		}
		if e.selected == b.ID {
			e.selected = ev.NewID
		}
		b.ID = ev.NewID
	}
	if ev.Meta != nil {
		b.Meta = slices.Clone(ev.Meta)
	}
	e.emit()
}

func (e *Editor) handlePointer(ev event.Pointer) {
	ix, iy := ev.X/e.scale, ev.Y/e.scale
	switch ev.Dir {
	case event.DirPress:
		e.press(ev.X, ev.Y, ix, iy)
	case event.DirMove:
		e.drag(ix, iy)
	case event.DirRelease:
		e.drag(ix, iy)
		e.finish()
	case event.DirLeave:
		if e.active == actionAdd {
			e.active = actionNone
			return
		}
		e.finish()
	}
}

func (e *Editor) press(dx, dy, ix, iy float64) {
	if e.readOnly {
		if b := e.boxAt(ix, iy); b != nil {
			e.setSelected(b.ID)
		} else {
			e.setSelected("")
		}
		return
	}
	if e.mode == ModeDelete {
		if b := e.boxAt(ix, iy); b != nil {
			e.remove(b.ID)
		}
		return
	}
	e.anchorX, e.anchorY = ix, iy
	e.changed = false
	if b := e.selectedBox(); b != nil {
		if h := handleAt(b, e.scale, dx, dy); h != HandleNone {
			e.active = actionResize
			e.handle = h
			e.start = *b
			return
		}
	}
	if b := e.boxAt(ix, iy); b != nil {
		e.setSelected(b.ID)
		e.label = b.Label
		e.active = actionMove
		e.handle = HandleMove
		e.start = *b
		return
	}
	e.setSelected("")
	e.active = actionAdd
	e.candidate = annotation.Rectangle{X: ix, Y: iy}
}

func (e *Editor) drag(ix, iy float64) {
	dx, dy := ix-e.anchorX, iy-e.anchorY
	switch e.active {
	case actionAdd:
		e.candidate.Width = dx
		e.candidate.Height = dy
	case actionMove:
		b := e.selectedBox()
		if b == nil {
			e.active = actionNone
			return
		}
		x := clampPos(e.start.X+dx, b.Width, e.width)
		y := clampPos(e.start.Y+dy, b.Height, e.height)
		if x != b.X || y != b.Y {
			b.X, b.Y = x, y
			e.normalize(b)
			e.changed = true
		}
	case actionResize:
		b := e.selectedBox()
		if b == nil {
			e.active = actionNone
			return
		}
		next := resize(e.start, *b, e.handle, dx, dy, e.minSize)
		e.normalize(&next)
		if next.X != b.X || next.Y != b.Y || next.Width != b.Width || next.Height != b.Height {
			b.X, b.Y, b.Width, b.Height = next.X, next.Y, next.Width, next.Height
			e.changed = true
		}
	}
}

func (e *Editor) finish() {
	switch e.active {
	case actionAdd:
		c := e.candidate
		e.active = actionNone
		if abs(c.Width) < e.minSize || abs(c.Height) < e.minSize {
			return
		}
		c.ID = annotation.NewBoxID()
		c.Label = e.label
		e.normalize(&c)
		e.boxes = append(e.boxes, &c)
		e.setSelected(c.ID)
		e.logger.Debug("box added", zap.String("id", c.ID), zap.Float64("width", c.Width), zap.Float64("height", c.Height))
		e.emit()
	case actionMove, actionResize:
		e.active = actionNone
		if e.changed {
			e.changed = false
			e.emit()
		}
	}
}

func (e *Editor) handleKey(ev event.Key) {
	if ev.Dir == event.DirRelease {
		delete(e.keyDown, ev.Code)
		return
	}
	if ev.Dir != event.DirPress || e.keyDown[ev.Code] {
		return
	}
	e.keyDown[ev.Code] = true
	b := e.selectedBox()
	if b == nil {
		return
	}
	if ev.Code == event.KeyEscape {
		e.setSelected("")
		return
	}
	if e.readOnly || e.mode != ModeTransform {
		return
	}
	step := e.moveStep / e.scale
	switch ev.Code {
	case event.KeyDelete, event.KeyBackspace:
		e.remove(b.ID)
		return
	case event.KeyLeft:
		e.nudge(b, -step, 0)
	case event.KeyRight:
		e.nudge(b, step, 0)
	case event.KeyUp:
		e.nudge(b, 0, -step)
	case event.KeyDown:
		e.nudge(b, 0, step)
	}
}

func (e *Editor) nudge(b *annotation.Rectangle, dx, dy float64) {
	x := clampPos(b.X+dx, b.Width, e.width)
	y := clampPos(b.Y+dy, b.Height, e.height)
	if x == b.X && y == b.Y {
		return
	}
	b.X, b.Y = x, y
	e.normalize(b)
	e.emit()
}

func clampPos(pos, extent, limit float64) float64 {
	if limit > 0 && pos+extent > limit {
		pos = limit - extent
	}
	if pos < 0 {
		pos = 0
	}
	return pos
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
