// Package notify sends desktop notifications after values are saved, copied
// or exported.
package notify

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"github.com/example/labelkit/internal/platform"
)

// Event identifies a notification trigger.
type Event string

const (
	// EventSave emits a notification when a value file is written.
	EventSave Event = "save"
	// EventCopy emits a notification when data is copied to the clipboard.
	EventCopy Event = "copy"
	// EventExport emits a notification when a preview image is rendered.
	EventExport Event = "export"
)

// EventPreference describes formatting for a notification event.
type EventPreference struct {
	Template string
}

// Preferences describes notification behaviour loaded from configuration.
type Preferences struct {
	Title  string
	Events map[Event]EventPreference
}

// DefaultPreferences returns the default notification settings.
func DefaultPreferences() Preferences {
	return Preferences{
		Title: "labelkit",
		Events: map[Event]EventPreference{
			EventSave:   {Template: "Saved %s"},
			EventCopy:   {Template: "Copied %s to clipboard"},
			EventExport: {Template: "Exported %s"},
		},
	}
}

type envPreferences struct {
	Title      string `envconfig:"TITLE"`
	SaveText   string `envconfig:"SAVE_TEXT"`
	CopyText   string `envconfig:"COPY_TEXT"`
	ExportText string `envconfig:"EXPORT_TEXT"`
}

// LoadPreferences reads LABELKIT_NOTIFY_* overrides from the environment.
func LoadPreferences() (Preferences, error) {
	prefs := DefaultPreferences()
	var env envPreferences
	if err := envconfig.Process("labelkit_notify", &env); err != nil {
		return prefs, fmt.Errorf("notify environment: %w", err)
	}
	if v := strings.TrimSpace(env.Title); v != "" {
		prefs.Title = v
	}
	apply := func(v string, event Event) {
		if v = strings.TrimSpace(v); v != "" {
			prefs.Events[event] = EventPreference{Template: v}
		}
	}
	apply(env.SaveText, EventSave)
	apply(env.CopyText, EventCopy)
	apply(env.ExportText, EventExport)
	return prefs, nil
}

// Notifier sends OS-level notifications based on the configured preferences.
type Notifier struct {
	prefs   Preferences
	enabled map[Event]bool
	logger  *zap.Logger
	send    func(title, body string, opts platform.Options) error
}

// New creates a new Notifier using the provided preferences.
func New(prefs Preferences, logger *zap.Logger) *Notifier {
	cloned := Preferences{Title: prefs.Title, Events: make(map[Event]EventPreference, len(prefs.Events))}
	for k, v := range prefs.Events {
		cloned.Events[k] = v
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{prefs: cloned, enabled: make(map[Event]bool), logger: logger, send: platform.Notify}
}

// Enable toggles the notifier for the provided event.
func (n *Notifier) Enable(event Event, enabled bool) {
	if n == nil {
		return
	}
	if n.enabled == nil {
		n.enabled = make(map[Event]bool)
	}
	n.enabled[event] = enabled
}

// Save sends a save notification including the written filename when available.
func (n *Notifier) Save(path string) {
	if !n.enabledFor(EventSave) {
		return
	}
	detail := strings.TrimSpace(path)
	if abs, err := filepath.Abs(path); err == nil {
		detail = abs
	}
	n.dispatch(EventSave, detail, platform.Options{})
}

// Copy sends a clipboard notification.
func (n *Notifier) Copy(detail string) {
	if !n.enabledFor(EventCopy) {
		return
	}
	if strings.TrimSpace(detail) == "" {
		detail = "annotations"
	}
	n.dispatch(EventCopy, detail, platform.Options{})
}

// Export sends an export notification with the rendered preview as its icon.
func (n *Notifier) Export(detail string, img image.Image) {
	if !n.enabledFor(EventExport) {
		return
	}
	opts := platform.Options{}
	if img != nil {
		if path, cleanup, err := createPreview(img); err != nil {
			n.logger.Warn("notification preview", zap.Error(err))
		} else {
			defer cleanup()
			opts.IconPath = path
		}
	}
	n.dispatch(EventExport, detail, opts)
}

func (n *Notifier) enabledFor(event Event) bool {
	if n == nil || n.enabled == nil {
		return false
	}
	return n.enabled[event]
}

func (n *Notifier) dispatch(event Event, detail string, opts platform.Options) {
	body := n.body(event, detail)
	if body == "" {
		return
	}
	if err := n.send(n.prefs.Title, body, opts); err != nil {
		n.logger.Warn("notification failed", zap.String("event", string(event)), zap.Error(err))
	}
}

func (n *Notifier) body(event Event, detail string) string {
	pref, ok := n.prefs.Events[event]
	if !ok {
		return ""
	}
	template := strings.TrimSpace(pref.Template)
	if template == "" {
		return ""
	}
	if !strings.Contains(template, "%") {
		return template
	}
	return strings.TrimSpace(fmt.Sprintf(template, strings.TrimSpace(detail)))
}

func createPreview(img image.Image) (string, func(), error) {
	f, err := os.CreateTemp("", "labelkit-preview-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", nil, err
	}
	return path, func() { _ = os.Remove(path) }, nil
}
