package main

import (
	"flag"

	"github.com/example/livesign/internal/appstate"
	"github.com/example/livesign/internal/editor"
)

// editCmd opens the editing window.
type editCmd struct {
	file   string
	output string
	adds   placementList
	*root
	fs *flag.FlagSet
}

func (e *editCmd) FlagSet() *flag.FlagSet {
	return e.fs
}

func (e *editCmd) Program() string {
	return e.root.Program() + " edit"
}

func parseEditCmd(args []string, r *root) (*editCmd, error) {
	fs := newFlagSet("edit")
	e := &editCmd{root: r, fs: fs}
	fs.StringVar(&e.output, "output", "", "output file path (default <name>_signed.pdf)")
	fs.Var(&e.adds, "a", "annotation to add before the window opens, KIND:TEXT[@X,Y[,PAGE]] (repeatable)")
	if err := parseFlags(fs, args, e); err != nil {
		return nil, err
	}
	if fs.NArg() > 1 {
		return nil, &UsageError{of: e}
	}
	e.file = fs.Arg(0)
	if e.file == "" && len(e.adds) > 0 {
		return nil, &UsageError{of: e}
	}
	return e, nil
}

func (e *editCmd) Run() error {
	opts := []appstate.Option{
		appstate.WithOpener(openForWindow),
		appstate.WithOutput(e.output),
		appstate.WithSaveDir(e.saveDir()),
		appstate.WithTheme(e.theme()),
		appstate.WithNotifier(e.notifier),
	}
	var (
		s   *editor.Session
		err error
	)
	if e.file == "" {
		s, err = e.newSession()
		if err != nil {
			return err
		}
	} else {
		var doc document
		s, doc, err = e.loadSession(e.file)
		if err != nil {
			return err
		}
		if err := e.adds.applyAll(s); err != nil {
			_ = s.Close()
			return err
		}
		e.notifier.Open(e.file, doc.NumPages())
		opts = append(opts, appstate.WithDocument(doc))
	}
	defer s.Close()
	appstate.New(append(opts, appstate.WithSession(s))...).Run()
	return nil
}
