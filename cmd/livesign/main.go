package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/livesign/internal/appstate"
	"github.com/example/livesign/internal/config"
	"github.com/example/livesign/internal/editor"
	"github.com/example/livesign/internal/notify"
	"github.com/example/livesign/internal/pdfdoc"
	"github.com/example/livesign/internal/theme"
	"github.com/example/livesign/internal/typeface"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

// document is an open PDF as used by the subcommands.
type document interface {
	appstate.Document
	Text(page int) (string, error)
}

// openDocument is replaced in tests.
var openDocument = func(path string) (document, error) {
	doc, err := pdfdoc.Open(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func openForWindow(path string) (appstate.Document, error) {
	doc, err := openDocument(path)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

type runnable interface{ Run() error }

type root struct {
	fs          *flag.FlagSet
	program     string
	stdout      io.Writer
	stderr      io.Writer
	notifier    *notify.Notifier
	config      *config.Config
	openAlerts  bool
	saveAlerts  bool
	copyAlerts  bool
	themeName   string
	activeTheme *theme.Theme
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	prefs := notify.LoadPreferences()
	loader := config.NewLoader(version, configPathOverride)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}

	r := &root{
		fs:       newFlagSet("livesign"),
		program:  "livesign",
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		notifier: notify.New(prefs),
		config:   cfg,
	}
	r.fs.BoolVar(&r.openAlerts, "notify-open", cfg.Notify.Open, "show a desktop notification after opening a document")
	r.fs.BoolVar(&r.saveAlerts, "notify-save", cfg.Notify.Save, "show a desktop notification after saving a signed copy")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", cfg.Notify.Copy, "show a desktop notification after copying annotation text")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use (default, dark, high_contrast)")
	return r
}

// resolveTheme picks the theme named on the command line, in
// LIVESIGN_THEME or in the config, falling back to the default.
func (r *root) resolveTheme() *theme.Theme {
	name := r.themeName
	if name == "" {
		name = os.Getenv("LIVESIGN_THEME")
	}
	if name == "" {
		name = r.config.Theme
	}
	loader := theme.NewLoader()
	loader.Inline = r.config.Themes
	t, err := loader.Load(name)
	if err != nil {
		fmt.Fprintf(r.stderr, "warning: failed to load theme '%s': %v. using default.\n", name, err)
		t = theme.Default()
	}
	return t
}

// theme returns the resolved theme, or the default before Run.
func (r *root) theme() *theme.Theme {
	if r.activeTheme == nil {
		return theme.Default()
	}
	return r.activeTheme
}

// newSession creates a Session configured from the loaded config. tweaks
// adjust the settings before the session is built.
func (r *root) newSession(tweaks ...func(*editor.Settings) error) (*editor.Session, error) {
	cfg := r.config
	if cfg == nil {
		cfg = config.New()
	}
	st, err := cfg.Settings()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	for _, t := range tweaks {
		if err := t(&st); err != nil {
			return nil, err
		}
	}
	return editor.New(editor.WithSettings(st), editor.WithMeasurer(typeface.Measurer{})), nil
}

// loadSession opens path into a new Session.
func (r *root) loadSession(path string, tweaks ...func(*editor.Settings) error) (*editor.Session, document, error) {
	s, err := r.newSession(tweaks...)
	if err != nil {
		return nil, nil, err
	}
	doc, err := openDocument(path)
	if err != nil {
		return nil, nil, err
	}
	if err := s.Load(doc, path); err != nil {
		_ = doc.Close()
		return nil, nil, err
	}
	return s, doc, nil
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return &UsageError{of: r}
		}
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventOpen, r.openAlerts)
		r.notifier.Enable(notify.EventSave, r.saveAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.activeTheme = r.resolveTheme()

	cmdName := strings.ToLower(r.fs.Arg(0))
	subArgs := r.fs.Args()[1:]

	var (
		cmd runnable
		err error
	)
	switch cmdName {
	case "edit", "open":
		cmd, err = parseEditCmd(subArgs, r)
	case "stamp":
		cmd, err = parseStampCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "info":
		cmd, err = parseInfoCmd(subArgs, r)
	case "render":
		cmd, err = parseRenderCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
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

func (r *root) saveDir() string {
	if r.config == nil {
		return ""
	}
	return r.config.SaveDir
}
