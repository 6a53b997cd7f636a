package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/example/labelkit/internal/clipboard"
	"github.com/example/labelkit/internal/host"
)

type renderCmd struct {
	*root
	fs          *flag.FlagSet
	session     sessionFlags
	output      string
	toClipboard bool
}

func (c *renderCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseRenderCmd(args []string, r *root) (*renderCmd, error) {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	c := &renderCmd{root: r.subcommand("render"), fs: fs}
	fs.Usage = usageFunc(c)
	c.session.register(fs)
	fs.StringVar(&c.output, "o", "-", "PNG output file, - for stdout")
	fs.BoolVar(&c.toClipboard, "to-clipboard", false, "copy the rendered image to the clipboard instead of writing a file")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.session.params == "" {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *renderCmd) Run() error {
	s, err := c.openSession(context.Background(), c.session, host.Discard)
	if err != nil {
		return err
	}
	img := s.preview(c.root)
	if c.toClipboard {
		if err := clipboard.WriteImage(img); err != nil {
			return fmt.Errorf("failed to copy image: %w", err)
		}
		c.notifyCopy("preview image")
		return nil
	}
	if err := writePNG(c.output, img, c.stdout); err != nil {
		return err
	}
	if c.output != "-" {
		c.notifyExport(c.output, img)
	}
	return nil
}

// writePNG encodes img to path, or to stdout when path is "-".
func writePNG(path string, img image.Image, stdout io.Writer) error {
	w, closeOut, err := openOutput(path, stdout)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		closeOut()
		return fmt.Errorf("failed to encode png: %w", err)
	}
	if err := closeOut(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
