package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"

	"go.uber.org/zap"

	"github.com/example/labelkit/internal/annotation"
	"github.com/example/labelkit/internal/brush"
	"github.com/example/labelkit/internal/classify"
	"github.com/example/labelkit/internal/composite"
	"github.com/example/labelkit/internal/detect"
	"github.com/example/labelkit/internal/event"
	"github.com/example/labelkit/internal/host"
	"github.com/example/labelkit/internal/logging"
	"github.com/example/labelkit/internal/segment"
	"github.com/example/labelkit/internal/viewer"
)

var errNoSize = errors.New("image size unknown: set image_size in the parameters or pass -image")

// sessionFlags are the inputs shared by every command that opens an editor.
type sessionFlags struct {
	params    string
	image     string
	baseURL   string
	labelType string
	readOnly  bool
}

func (f *sessionFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.params, "params", "", "JSON parameter file")
	fs.StringVar(&f.image, "image", "", "image file or URL, overrides image_url")
	fs.StringVar(&f.baseURL, "base-url", "", "base URL that relative image_url values resolve against")
	fs.StringVar(&f.labelType, "type", "", "editor to use: segmentation, detection or classification")
	fs.BoolVar(&f.readOnly, "read-only", false, "open the editor read only")
}

// session is one loaded annotation job.
type session struct {
	params    *host.Params
	image     image.Image
	colors    annotation.ColorMap
	target    viewer.Target
	lineWidth float64
	size      int
	shape     brush.Shape
	mode      brush.Mode
	logger    *zap.Logger
}

func (r *root) openSession(ctx context.Context, f sessionFlags, emitter host.Emitter) (*session, error) {
	p, err := host.LoadParams(f.params)
	if err != nil {
		return nil, err
	}
	if f.labelType != "" {
		p.LabelType = host.LabelType(f.labelType).Canonical()
	}
	s := &session{params: p, logger: logging.Named("session")}

	src := f.image
	if src == "" && p.ImageURL != "" {
		src = p.ResolveImageURL(f.baseURL)
	}
	if src != "" {
		img, err := host.LoadImage(ctx, src)
		if err != nil {
			return nil, fmt.Errorf("failed to load image: %w", err)
		}
		s.image = img
		if p.Width() == 0 || p.Height() == 0 {
			b := img.Bounds()
			p.ImageSize = [2]int{b.Dx(), b.Dy()}
		}
	}
	// A class picker can run without a picture, carrying only its meta.
	if (p.Width() == 0 || p.Height() == 0) && p.LabelType != host.LabelClassification {
		return nil, errNoSize
	}
	if s.image == nil {
		s.image = host.Blank(p.Width(), p.Height())
	}
	if f.readOnly {
		p.ReadOnly = true
	}
	s.colors = p.Colors()

	s.lineWidth = r.config.Detection.LineWidth
	if p.LineWidth > 0 {
		s.lineWidth = p.LineWidth
	}
	if err := s.resolveBrush(r); err != nil {
		return nil, err
	}

	boxOpts := []detect.Option{
		detect.WithMoveStep(r.config.Detection.MoveStep),
		detect.WithMinSize(r.config.Detection.MinSize),
	}
	switch p.LabelType {
	case host.LabelSegmentation:
		s.target = viewer.SegmentTarget{Editor: segment.New(p.Width(), p.Height(), emitter,
			segment.WithMasks(p.Masks()),
			segment.WithLabels(p.LabelList),
			segment.WithColors(s.colors),
			segment.WithReadOnly(p.ReadOnly),
			segment.WithAutoSeg(p.AutoSegMode),
			segment.WithFormat(p.BBoxFormat),
			segment.WithBrush(s.size, s.shape, s.mode),
			segment.WithLogger(logging.Named("segment")),
			segment.WithCompositor(composite.WithOptions(r.config.CompositeOptions())),
			segment.WithBoxOptions(boxOpts...),
		)}
	case host.LabelDetection:
		opts := append(boxOpts,
			detect.WithBoxes(p.Boxes()),
			detect.WithLabels(p.LabelList),
			detect.WithReadOnly(p.ReadOnly),
			detect.WithFormat(p.BBoxFormat),
			detect.WithLogger(logging.Named("detect")),
		)
		s.target = viewer.DetectTarget{Editor: detect.New(p.Width(), p.Height(), emitter, opts...)}
	case host.LabelClassification:
		s.target = viewer.ClassifyTarget{Editor: classify.New(p.Width(), p.Height(), emitter,
			classify.WithLabels(p.LabelList),
			classify.WithMultiSelect(p.MultiSelect),
			classify.WithSelected(p.Selection()),
			classify.WithMeta(p.MetaInfo),
			classify.WithReadOnly(p.ReadOnly),
			classify.WithLogger(logging.Named("classify")),
		)}
	default:
		return nil, fmt.Errorf("unknown label type %q", p.LabelType)
	}
	s.logger.Debug("session opened",
		zap.String("params", f.params),
		zap.String("type", string(p.LabelType)),
		zap.Int("width", p.Width()),
		zap.Int("height", p.Height()))
	return s, nil
}

// resolveBrush picks the initial brush. Parameters win over the config file.
func (s *session) resolveBrush(r *root) error {
	s.size, s.shape, s.mode = r.config.Brush.Size, r.config.Brush.Shape, r.config.Brush.Mode
	p := s.params
	if p.StrokeSize > 0 {
		s.size = p.StrokeSize
	}
	if p.PenShape != "" {
		shape, err := brush.ParseShape(p.PenShape)
		if err != nil {
			return err
		}
		s.shape = shape
	}
	if p.EditMode != "" {
		mode, err := brush.ParseMode(p.EditMode)
		if err != nil {
			return err
		}
		s.mode = mode
	}
	s.size = brush.ClampSize(s.size)
	return nil
}

// reload re-reads the parameter file and returns the event replacing the
// editor's collection.
func (s *session) reload(path string) (event.Event, error) {
	p, err := host.LoadParams(path)
	if err != nil {
		return nil, err
	}
	p.ImageSize = s.params.ImageSize
	p.BBoxFormat = s.params.BBoxFormat
	switch s.target.(type) {
	case viewer.DetectTarget:
		return event.LoadBoxes{Boxes: p.Boxes()}, nil
	case viewer.ClassifyTarget:
		return event.LoadLabels{Labels: p.Selection(), Meta: p.MetaInfo}, nil
	}
	return event.LoadMasks{Masks: p.Masks()}, nil
}

// preview renders the current annotations at image resolution.
func (s *session) preview(r *root) *image.RGBA {
	return viewer.Preview(s.target, s.image, s.colors, r.activeTheme, s.lineWidth)
}
