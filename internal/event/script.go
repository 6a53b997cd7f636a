package event

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/example/labelkit/internal/brush"
)

// Step is one entry of a replay script. Only the fields relevant to Type are
// read.
type Step struct {
	Type   string   `json:"type"`
	X      float64  `json:"x,omitempty"`
	Y      float64  `json:"y,omitempty"`
	Key    string   `json:"key,omitempty"`
	Up     bool     `json:"up,omitempty"`
	Label  string   `json:"label,omitempty"`
	Size   int      `json:"size,omitempty"`
	Shape  string   `json:"shape,omitempty"`
	Mode   string   `json:"mode,omitempty"`
	ID     string   `json:"id,omitempty"`
	NewID  string   `json:"new_id,omitempty"`
	Meta   []string `json:"meta,omitempty"`
	Scale  float64  `json:"scale,omitempty"`
	Delete bool     `json:"delete,omitempty"`
}

var keyNames = map[string]KeyCode{
	"escape":    KeyEscape,
	"esc":       KeyEscape,
	"delete":    KeyDelete,
	"backspace": KeyBackspace,
	"left":      KeyLeft,
	"right":     KeyRight,
	"up":        KeyUp,
	"down":      KeyDown,
}

// ParseKey maps a key name such as "escape" or "left" to a KeyCode.
func ParseKey(name string) (KeyCode, error) {
	k, ok := keyNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return KeyUnknown, fmt.Errorf("unknown key %q", name)
	}
	return k, nil
}

// Event converts the step into an editor event.
func (s Step) Event() (Event, error) {
	switch strings.ToLower(s.Type) {
	case "press", "down":
		return Pointer{Dir: DirPress, X: s.X, Y: s.Y}, nil
	case "move":
		return Pointer{Dir: DirMove, X: s.X, Y: s.Y}, nil
	case "release", "up":
		return Pointer{Dir: DirRelease, X: s.X, Y: s.Y}, nil
	case "leave":
		return Pointer{Dir: DirLeave, X: s.X, Y: s.Y}, nil
	case "key":
		k, err := ParseKey(s.Key)
		if err != nil {
			return nil, err
		}
		dir := DirPress
		if s.Up {
			dir = DirRelease
		}
		return Key{Code: k, Dir: dir}, nil
	case "toggle", "save":
		return Toggle{}, nil
	case "label":
		return SetLabel{Label: s.Label}, nil
	case "brush":
		shape, err := brush.ParseShape(s.Shape)
		if err != nil {
			return nil, err
		}
		mode, err := brush.ParseMode(s.Mode)
		if err != nil {
			return nil, err
		}
		size := s.Size
		if size == 0 {
			size = brush.DefaultSize
		}
		return SetBrush{Size: size, Shape: shape, Mode: mode}, nil
	case "select":
		return Select{ID: s.ID}, nil
	case "delete":
		return Delete{ID: s.ID}, nil
	case "update":
		return UpdateItem{ID: s.ID, NewID: s.NewID, Meta: s.Meta}, nil
	case "scale":
		return SetScale{Scale: s.Scale}, nil
	case "box_mode":
		return SetBoxMode{Delete: s.Delete}, nil
	}
	return nil, fmt.Errorf("unknown step type %q", s.Type)
}

// DecodeScript reads a JSON array of steps and converts it into events.
func DecodeScript(r io.Reader) ([]Event, error) {
	var steps []Step
	if err := json.NewDecoder(r).Decode(&steps); err != nil {
		return nil, fmt.Errorf("decode event script: %w", err)
	}
	out := make([]Event, 0, len(steps))
	for i, s := range steps {
		ev, err := s.Event()
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
		out = append(out, ev)
	}
	return out, nil
}
