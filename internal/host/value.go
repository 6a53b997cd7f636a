package host

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/example/labelkit/internal/annotation"
)

// MaskRecord is one mask in an emitted segmentation value.
type MaskRecord struct {
	Data           [][]bool       `json:"data"`
	Width          int            `json:"width"`
	Height         int            `json:"height"`
	LabelID        int            `json:"label_id"`
	Label          string         `json:"label"`
	ID             string         `json:"id"`
	Meta           []string       `json:"meta"`
	AdditionalData map[string]any `json:"additional_data"`
}

// BoxRecord is one box in an emitted value.
type BoxRecord struct {
	BBox           [4]float64     `json:"bbox"`
	LabelID        int            `json:"label_id"`
	Label          string         `json:"label"`
	ID             string         `json:"id"`
	Meta           []string       `json:"meta"`
	AdditionalData map[string]any `json:"additional_data"`
}

// Value is a payload sent to the host after a committed change.
type Value interface {
	ChangeKey() string
}

// SegmentationValue is emitted by the mask editor. New carries prompt boxes
// drawn in auto segmentation mode.
type SegmentationValue struct {
	New  []BoxRecord  `json:"new"`
	Mask []MaskRecord `json:"mask"`
	Key  string       `json:"key"`
}

func (v SegmentationValue) ChangeKey() string { return v.Key }

// DetectionValue is emitted by the box editor.
type DetectionValue struct {
	BBox []BoxRecord `json:"bbox"`
	Key  string      `json:"key"`
}

func (v DetectionValue) ChangeKey() string { return v.Key }

// ClassificationValue is emitted by the class picker. Label marshals as a
// single string, or as a list when Multi is set.
type ClassificationValue struct {
	Label []string
	Multi bool
	Meta  []string
	Key   string
}

func (v ClassificationValue) ChangeKey() string { return v.Key }

func (v ClassificationValue) MarshalJSON() ([]byte, error) {
	var label any = ""
	if v.Multi {
		label = cloneMeta(v.Label)
	} else if len(v.Label) > 0 {
		label = v.Label[0]
	}
	return json.Marshal(struct {
		Label any      `json:"label"`
		Meta  []string `json:"meta"`
		Key   string   `json:"key"`
	}{label, cloneMeta(v.Meta), v.Key})
}

// MaskRecords converts masks into records. The result is never nil.
func MaskRecords(masks []*annotation.Mask, labels []string) []MaskRecord {
	out := make([]MaskRecord, 0, len(masks))
	for _, m := range masks {
		if m == nil || m.Grid == nil {
			continue
		}
		out = append(out, MaskRecord{
			Data:           m.Grid.Rows(),
			Width:          m.Grid.Width(),
			Height:         m.Grid.Height(),
			LabelID:        annotation.LabelID(labels, m.Label),
			Label:          m.Label,
			ID:             m.ID,
			Meta:           cloneMeta(m.Meta),
			AdditionalData: cloneData(m.AdditionalData),
		})
	}
	return out
}

// BoxRecords converts rectangles into records in the given format. The
// result is never nil.
func BoxRecords(rects []*annotation.Rectangle, labels []string, f BoxFormat, imageW, imageH float64) []BoxRecord {
	out := make([]BoxRecord, 0, len(rects))
	for _, r := range rects {
		if r == nil {
			continue
		}
		out = append(out, BoxRecord{
			BBox:           ToFormat([4]float64{r.X, r.Y, r.Width, r.Height}, f, imageW, imageH),
			LabelID:        annotation.LabelID(labels, r.Label),
			Label:          r.Label,
			ID:             r.ID,
			Meta:           cloneMeta(r.Meta),
			AdditionalData: cloneData(r.AdditionalData),
		})
	}
	return out
}

func cloneMeta(m []string) []string {
	if m == nil {
		return []string{}
	}
	return slices.Clone(m)
}

func cloneData(d map[string]any) map[string]any {
	if d == nil {
		return map[string]any{}
	}
	return maps.Clone(d)
}

const keyModulus = 100_000_000

// KeySource produces change keys: the last eight decimal digits of the
// millisecond clock, bumped when it would repeat the previous key.
type KeySource struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
	used bool
}

// NewKeySource returns a KeySource reading the wall clock.
func NewKeySource() *KeySource { return &KeySource{now: time.Now} }

// NewKeySourceWithClock returns a KeySource reading now.
func NewKeySourceWithClock(now func() time.Time) *KeySource { return &KeySource{now: now} }

// Next returns a key different from the one returned before it.
func (k *KeySource) Next() string {
	k.mu.Lock()
	defer k.mu.Unlock()
	v := k.now().UnixMilli() % keyModulus
	if k.used && v == k.last {
		v = (v + 1) % keyModulus
	}
	k.last = v
	k.used = true
	return fmt.Sprintf("%08d", v)
}
