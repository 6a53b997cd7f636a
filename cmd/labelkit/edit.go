package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/example/labelkit/internal/event"
	"github.com/example/labelkit/internal/host"
	"github.com/example/labelkit/internal/logging"
	"github.com/example/labelkit/internal/viewer"
)

type editCmd struct {
	*root
	fs      *flag.FlagSet
	session sessionFlags
	output  string
	save    string
	title   string
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	c := &editCmd{root: r.subcommand("edit"), fs: fs}
	fs.Usage = usageFunc(c)
	c.session.register(fs)
	fs.StringVar(&c.output, "output", "-", "file receiving every emitted value as JSON lines, - for stdout")
	fs.StringVar(&c.save, "save", "", "file written by Ctrl+S (default derived from -params and save_dir)")
	fs.StringVar(&c.title, "title", "", "window title")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if c.session.params == "" {
		return nil, &UsageError{of: c}
	}
	return c, nil
}

// savePath returns where Ctrl+S writes the value.
func (e *editCmd) savePath() string {
	if e.save != "" {
		return e.save
	}
	base := strings.TrimSuffix(filepath.Base(e.session.params), filepath.Ext(e.session.params))
	dir := e.config.SaveDir
	if dir == "" {
		dir = filepath.Dir(e.session.params)
	}
	return filepath.Join(dir, base+".labels.json")
}

func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, f.Close, nil
}

func (e *editCmd) Run() error {
	w, closeOut, err := openOutput(e.output, e.stdout)
	if err != nil {
		return err
	}
	defer closeOut()
	s, err := e.openSession(context.Background(), e.session, host.NewJSONEmitter(w))
	if err != nil {
		return err
	}
	title := e.title
	if title == "" {
		title = "labelkit - " + filepath.Base(e.session.params)
	}
	v := viewer.New(s.target,
		viewer.WithImage(s.image),
		viewer.WithTitle(title),
		viewer.WithOutput(e.savePath()),
		viewer.WithTheme(e.activeTheme),
		viewer.WithColors(s.colors),
		viewer.WithNotifier(e.notifier),
		viewer.WithLogger(logging.Named("viewer")),
		viewer.WithBrush(s.size, s.shape, s.mode),
		viewer.WithLineWidth(s.lineWidth),
		viewer.WithReload(func() (event.Event, error) { return s.reload(e.session.params) }),
	)
	e.logger.Info("editor opened", zap.String("session", v.Session()), zap.String("params", e.session.params))
	v.Run()
	return nil
}
