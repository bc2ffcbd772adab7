package main

import (
	"flag"
	"fmt"
	"path/filepath"

	"github.com/example/livesign/internal/editor"
)

// stampCmd adds annotations and saves without opening a window.
type stampCmd struct {
	file   string
	output string
	adds   placementList
	*root
	fs *flag.FlagSet
}

func (s *stampCmd) FlagSet() *flag.FlagSet {
	return s.fs
}

func (s *stampCmd) Program() string {
	return s.root.Program() + " stamp"
}

func parseStampCmd(args []string, r *root) (*stampCmd, error) {
	fs := newFlagSet("stamp")
	c := &stampCmd{root: r, fs: fs}
	fs.StringVar(&c.output, "output", "", "output file path (default <name>_signed.pdf)")
	fs.Var(&c.adds, "a", "annotation to add, KIND:TEXT[@X,Y[,PAGE]] (repeatable)")
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 || len(c.adds) == 0 {
		return nil, &UsageError{of: c}
	}
	c.file = fs.Arg(0)
	return c, nil
}

// outputPath is the -output flag, or the default name in the configured
// save directory.
func (s *stampCmd) outputPath() string {
	if s.output != "" {
		return s.output
	}
	path := editor.OutputPath(s.file)
	if dir := s.saveDir(); dir != "" {
		path = filepath.Join(dir, filepath.Base(path))
	}
	return path
}

func (s *stampCmd) Run() error {
	sess, _, err := s.loadSession(s.file)
	if err != nil {
		return err
	}
	defer sess.Close()
	if err := s.adds.applyAll(sess); err != nil {
		return err
	}
	out := s.outputPath()
	if err := sess.Save(out); err != nil {
		return fmt.Errorf("save %s: %w", out, err)
	}
	s.notifier.Save(out)
	fmt.Fprintf(s.stdout, "saved %s (%d annotations)\n", out, len(sess.Annotations()))
	return nil
}
