package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/example/labelkit/internal/config"
	"github.com/example/labelkit/internal/logging"
	"github.com/example/labelkit/internal/notify"
	"github.com/example/labelkit/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs           *flag.FlagSet
	program      string
	notifier     *notify.Notifier
	prefs        notify.Preferences
	config       *config.Config
	logger       *zap.Logger
	saveAlerts   bool
	copyAlerts   bool
	exportAlerts bool
	themeName    string
	logMode      string
	activeTheme  *theme.Theme
	stdin        io.Reader
	stdout       io.Writer
	stderr       io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	r := &root{
		fs:      flag.NewFlagSet("labelkit", flag.ExitOnError),
		program: "labelkit",
		logger:  zap.NewNop(),
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(r.stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	r.config = cfg
	prefs, err := notify.LoadPreferences()
	if err != nil {
		fmt.Fprintf(r.stderr, "warning: %v\n", err)
		prefs = notify.DefaultPreferences()
	}
	r.prefs = prefs

	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving annotations")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying to the clipboard")
	r.fs.BoolVar(&r.exportAlerts, "notify-export", cfg.Notify.Export, "show a desktop notification after rendering a preview")

	// Precedence: CLI > Env > Config > Default. The loader has already merged
	// the environment into the config, so empty flags fall back to it.
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use ("+strings.Join(theme.Names(), ", ")+")")
	r.fs.StringVar(&r.logMode, "log-mode", "", "logging mode: debug, release or off")
	r.fs.Usage = usageFunc(r)
	return r
}

// subcommand returns a copy of r for a nested program name.
func (r *root) subcommand(name string) *root {
	c := *r
	c.program = strings.TrimSpace(r.program + " " + name)
	return &c
}

func (r *root) setup() error {
	mode := r.logMode
	if mode == "" {
		mode = r.config.LogMode
	}
	if mode == "" {
		mode = logging.ModeDebug
	}
	if err := logging.InitLogger(mode); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	r.logger = logging.Named("cli")
	r.notifier = notify.New(r.prefs, logging.Named("notify"))
	r.notifier.Enable(notify.EventSave, r.saveAlerts)
	r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	r.notifier.Enable(notify.EventExport, r.exportAlerts)

	name := r.themeName
	if name == "" {
		name = r.config.Theme
	}
	t, err := r.config.ThemeLoader().Load(name)
	if err != nil {
		fmt.Fprintf(r.stderr, "warning: failed to load theme '%s': %v. using default.\n", name, err)
		t = theme.Default()
	}
	r.activeTheme = t
	return nil
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if err := r.setup(); err != nil {
		return err
	}
	defer logging.Sync()
	return r.dispatch(r.fs.Arg(0), r.fs.Args()[1:])
}

func (r *root) dispatch(cmdName string, subArgs []string) error {
	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit":
		cmd, err = parseEditCmd(subArgs, r)
	case "replay":
		cmd, err = parseReplayCmd(subArgs, r)
	case "render":
		cmd, err = parseRenderCmd(subArgs, r)
	case "colors":
		cmd, err = parseColorsCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (r *root) notifySave(path string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Save(path)
}

func (r *root) notifyCopy(detail string) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Copy(detail)
}

func (r *root) notifyExport(detail string, img image.Image) {
	if r == nil || r.notifier == nil {
		return
	}
	r.notifier.Export(detail, img)
}
