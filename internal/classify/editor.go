// Package classify implements the whole image class picker. A single select
// picker holds at most one class; a multi select picker toggles membership.
package classify

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/example/labelkit/internal/event"
	"github.com/example/labelkit/internal/host"
)

// Editor owns the chosen classes of one image and emits a
// host.ClassificationValue after every change. It is not safe for concurrent
// use.
type Editor struct {
	width, height int
	labels        []string
	selected      []string
	meta          []string
	multi         bool
	readOnly      bool
	scale         float64

	emitter host.Emitter
	keys    *host.KeySource
	lastKey string
	logger  *zap.Logger
}

// Option modifies an Editor during creation.
type Option func(*Editor)

// WithLabels sets the classes that may be chosen.
func WithLabels(labels []string) Option { return func(e *Editor) { e.labels = labels } }

// WithSelected sets the initially chosen classes. A single select editor
// keeps only the first.
func WithSelected(labels []string) Option { return func(e *Editor) { e.selected = labels } }

func WithMultiSelect(on bool) Option { return func(e *Editor) { e.multi = on } }

// WithMeta sets the meta strings carried in every emitted value.
func WithMeta(meta []string) Option { return func(e *Editor) { e.meta = meta } }

func WithReadOnly(ro bool) Option { return func(e *Editor) { e.readOnly = ro } }

// WithKeySource shares a change key source with another editor.
func WithKeySource(k *host.KeySource) Option { return func(e *Editor) { e.keys = k } }

func WithLogger(l *zap.Logger) Option { return func(e *Editor) { e.logger = l } }

// New returns a class picker for an image of the given size.
func New(width, height int, emitter host.Emitter, opts ...Option) *Editor {
	e := &Editor{
		width:   max(width, 0),
		height:  max(height, 0),
		scale:   1,
		emitter: emitter,
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
	e.selected = e.load(e.selected)
	e.meta = slices.Clone(e.meta)
	return e
}

// load drops unknown and repeated classes and trims a single select
// choice to one class.
func (e *Editor) load(in []string) []string {
	out := make([]string, 0, len(in))
	for _, l := range in {
		if !e.known(l) || slices.Contains(out, l) {
			continue
		}
		out = append(out, l)
	}
	if !e.multi && len(out) > 1 {
		out = out[:1]
	}
	return out
}

// known reports whether label may be chosen. Without a label list any
// non-empty label is accepted.
func (e *Editor) known(label string) bool {
	if label == "" {
		return false
	}
	return len(e.labels) == 0 || slices.Contains(e.labels, label)
}

func (e *Editor) Labels() []string { return e.labels }
func (e *Editor) Multi() bool      { return e.multi }
func (e *Editor) Scale() float64   { return e.scale }
func (e *Editor) Size() (w, h int) { return e.width, e.height }

// Selected returns the chosen classes in the order they were chosen.
func (e *Editor) Selected() []string { return slices.Clone(e.selected) }

// Has reports whether label is currently chosen.
func (e *Editor) Has(label string) bool { return slices.Contains(e.selected, label) }

// Summary joins the chosen classes for display.
func (e *Editor) Summary() string { return strings.Join(e.selected, ", ") }

// Value returns the current choice together with the key of the last
// emission.
func (e *Editor) Value() host.ClassificationValue {
	return e.value(e.lastKey)
}

func (e *Editor) value(key string) host.ClassificationValue {
	return host.ClassificationValue{
		Label: slices.Clone(e.selected),
		Multi: e.multi,
		Meta:  slices.Clone(e.meta),
		Key:   key,
	}
}

func (e *Editor) emit() {
	v := e.value(e.keys.Next())
	e.lastKey = v.Key
	if err := e.emitter.Emit(v); err != nil {
		e.logger.Warn("emit classification value", zap.Error(err))
	}
}

// Handle applies one event. Events that only make sense for the image
// editors are ignored.
func (e *Editor) Handle(ev event.Event) {
	switch ev := ev.(type) {
	case event.SetLabel:
		e.choose(ev.Label)
	case event.UpdateItem:
		if e.readOnly || ev.Meta == nil {
			return
		}
		e.meta = slices.Clone(ev.Meta)
		e.emit()
	case event.SetScale:
		if ev.Scale > 0 {
			e.scale = ev.Scale
		}
	case event.LoadLabels:
		e.selected = e.load(ev.Labels)
		if ev.Meta != nil {
			e.meta = slices.Clone(ev.Meta)
		}
	}
}

func (e *Editor) choose(label string) {
	if e.readOnly {
		return
	}
	if !e.known(label) {
		e.logger.Debug("unknown class ignored", zap.String("label", label))
		return
	}
	if !e.multi {
		if len(e.selected) == 1 && e.selected[0] == label {
			return
		}
		e.selected = []string{label}
		e.emit()
		return
	}
	if i := slices.Index(e.selected, label); i >= 0 {
		e.selected = slices.Delete(e.selected, i, i+1)
	} else {
		e.selected = append(e.selected, label)
	}
	e.logger.Debug("class toggled", zap.String("label", label), zap.Bool("chosen", e.Has(label)))
	e.emit()
}
