package main

import (
	"flag"
	"fmt"
	"strings"
)

// infoCmd prints the page count and page sizes of a document.
type infoCmd struct {
	file string
	text bool
	*root
	fs *flag.FlagSet
}

func (i *infoCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func (i *infoCmd) Program() string {
	return i.root.Program() + " info"
}

func parseInfoCmd(args []string, r *root) (*infoCmd, error) {
	fs := newFlagSet("info")
	c := &infoCmd{root: r, fs: fs}
	fs.BoolVar(&c.text, "text", false, "also print the text of each page")
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	c.file = fs.Arg(0)
	return c, nil
}

func (i *infoCmd) Run() error {
	doc, err := openDocument(i.file)
	if err != nil {
		return err
	}
	defer doc.Close()

	n := doc.NumPages()
	fmt.Fprintf(i.stdout, "%s: %d pages\n", i.file, n)
	for p := 0; p < n; p++ {
		size, err := doc.PageSize(p)
		if err != nil {
			return err
		}
		fmt.Fprintf(i.stdout, "page %d: %g x %g pt\n", p+1, size.X, size.Y)
		if !i.text {
			continue
		}
		text, err := doc.Text(p)
		if err != nil {
			return err
		}
		for _, line := range strings.Split(strings.TrimRight(text, "\n"), "\n") {
			fmt.Fprintf(i.stdout, "  | %s\n", line)
		}
	}
	return nil
}
