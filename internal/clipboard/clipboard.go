// Package clipboard publishes annotation values and rendered previews to the
// system clipboard. Linux and the BSDs use golang.design/x/clipboard when cgo
// is available and talk to the X server directly otherwise.
package clipboard

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"

	"go.uber.org/zap"

	"github.com/example/labelkit/internal/host"
)

var errNoDisplay = errors.New("clipboard initialization requires DISPLAY or WAYLAND_DISPLAY")

func hasDisplay() bool {
	return os.Getenv("DISPLAY") != "" || os.Getenv("WAYLAND_DISPLAY") != ""
}

// WriteImage encodes the provided image as PNG and publishes it to the clipboard.
func WriteImage(img image.Image) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode clipboard image: %w", err)
	}
	return writePNG(buf.Bytes())
}

// ReadImage retrieves PNG image data from the clipboard and decodes it.
func ReadImage() (image.Image, error) {
	data, err := readPNG()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("clipboard does not contain image data")
	}
	return png.Decode(bytes.NewReader(data))
}

// WriteText writes text data to the clipboard.
func WriteText(text string) error { return writeText([]byte(text)) }

// ReadText returns UTF-8 text data from the clipboard.
func ReadText() (string, error) {
	data, err := readText()
	if err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", fmt.Errorf("clipboard does not contain text data")
	}
	return string(data), nil
}

// EncodeValue formats a value payload the way it is placed on the clipboard.
func EncodeValue(v host.Value) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}
	return string(data), nil
}

// Emitter copies every emitted value to the clipboard as indented JSON.
type Emitter struct {
	Logger *zap.Logger
}

// Emit implements host.Emitter.
func (e *Emitter) Emit(v host.Value) error {
	text, err := EncodeValue(v)
	if err != nil {
		return err
	}
	if err := WriteText(text); err != nil {
		return fmt.Errorf("copy value: %w", err)
	}
	if e.Logger != nil {
		e.Logger.Debug("value copied", zap.String("key", v.ChangeKey()), zap.Int("bytes", len(text)))
	}
	return nil
}
