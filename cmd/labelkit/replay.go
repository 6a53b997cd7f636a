package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/example/labelkit/internal/event"
	"github.com/example/labelkit/internal/host"
)

type replayCmd struct {
	*root
	fs      *flag.FlagSet
	session sessionFlags
	script  string
	output  string
	emits   string
	preview string
}

func (c *replayCmd) FlagSet() *flag.FlagSet {
	return c.fs
}

func parseReplayCmd(args []string, r *root) (*replayCmd, error) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	c := &replayCmd{root: r.subcommand("replay"), fs: fs}
	fs.Usage = usageFunc(c)
	c.session.register(fs)
	fs.StringVar(&c.script, "script", "", "JSON event script, - for stdin")
	fs.StringVar(&c.output, "output", "-", "file receiving the final value, - for stdout")
	fs.StringVar(&c.emits, "emits", "", "optional file receiving every emitted value as JSON lines")
	fs.StringVar(&c.preview, "preview", "", "optional PNG file rendered after the replay")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.session.params == "" || c.script == "" {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

func (c *replayCmd) readScript() ([]event.Event, error) {
	if c.script == "-" {
		return event.DecodeScript(c.stdin)
	}
	f, err := os.Open(c.script)
	if err != nil {
		return nil, fmt.Errorf("failed to open script: %w", err)
	}
	defer f.Close()
	return event.DecodeScript(f)
}

func (c *replayCmd) Run() error {
	events, err := c.readScript()
	if err != nil {
		return err
	}
	rec := &host.Recorder{}
	emitter := host.MultiEmitter{rec}
	if c.emits != "" {
		w, closeEmits, err := openOutput(c.emits, c.stdout)
		if err != nil {
			return err
		}
		defer closeEmits()
		emitter = append(emitter, host.NewJSONEmitter(w))
	}
	s, err := c.openSession(context.Background(), c.session, emitter)
	if err != nil {
		return err
	}
	for _, ev := range events {
		s.target.Handle(ev)
	}
	c.logger.Debug("replayed", zap.Int("events", len(events)), zap.Int("emitted", rec.Len()))

	value := s.target.Value()
	if rec.Len() > 0 {
		value = rec.Last()
	}
	if err := c.writeValue(value); err != nil {
		return err
	}
	if c.preview != "" {
		img := s.preview(c.root)
		if err := writePNG(c.preview, img, c.stdout); err != nil {
			return err
		}
		c.notifyExport(c.preview, img)
	}
	return nil
}

func (c *replayCmd) writeValue(v host.Value) error {
	w, closeOut, err := openOutput(c.output, c.stdout)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		closeOut()
		return fmt.Errorf("failed to encode value: %w", err)
	}
	if _, err := w.Write(append(data, '\n')); err != nil {
		closeOut()
		return fmt.Errorf("failed to write value: %w", err)
	}
	return closeOut()
}
