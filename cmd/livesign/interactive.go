package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/example/livesign/internal/annotation"
	"github.com/example/livesign/internal/editor"
	"github.com/golang/geo/r2"
)

type commandList []string

func (c *commandList) String() string {
	return strings.Join(*c, ";")
}

func (c *commandList) Set(value string) error {
	*c = append(*c, value)
	return nil
}

// interactiveCmd drives a Session from typed commands.
type interactiveCmd struct {
	r        *root
	fs       *flag.FlagSet
	execs    commandList
	file     string
	session  *editor.Session
	document document
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

func (i *interactiveCmd) FlagSet() *flag.FlagSet {
	return i.fs
}

func (i *interactiveCmd) Program() string {
	return i.r.Program() + " interactive"
}

func parseInteractiveCmd(args []string, r *root) (*interactiveCmd, error) {
	fs := newFlagSet("interactive")
	c := &interactiveCmd{r: r, fs: fs, stdin: os.Stdin, stdout: r.stdout, stderr: r.stderr}
	fs.Var(&c.execs, "e", "execute a command in immediate mode (may be specified multiple times)")
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	if fs.NArg() > 1 {
		return nil, &UsageError{of: c}
	}
	c.file = fs.Arg(0)
	return c, nil
}

func (i *interactiveCmd) Run() error {
	s, err := i.r.newSession()
	if err != nil {
		return err
	}
	i.session = s
	defer i.session.Close()
	if i.file != "" {
		if err := i.open(i.file); err != nil {
			return err
		}
	}

	if len(i.execs) > 0 {
		for _, cmd := range i.execs {
			done, err := i.executeLine(cmd)
			if err != nil {
				return err
			}
			if done {
				break
			}
		}
		return nil
	}

	fmt.Fprintln(i.stdout, "Enter commands (type 'help' for a list, 'exit' to quit)")
	scanner := bufio.NewScanner(i.stdin)
	for {
		fmt.Fprint(i.stdout, "> ")
		if !scanner.Scan() {
			break
		}
		done, err := i.executeLine(scanner.Text())
		if err != nil {
			fmt.Fprintln(i.stderr, err)
		}
		if done {
			break
		}
	}
	return scanner.Err()
}

const interactiveHelp = `Commands:
  open FILE                 open a PDF
  page [N]                  show or change the current page
  add KIND TEXT...          add a signature, text or date annotation
  date                      add today's date
  list                      list annotations on the current page
  all                       list every annotation
  select ROW                select the annotation in a list row
  edit TEXT...              replace the text of the selection
  move X Y                  place the selection at X,Y points
  drag X0 Y0 X1 Y1          drag with the pointer in screen pixels
  delete                    remove the selection
  deselect                  clear the selection
  text                      print the text of the current page
  save [FILE]               save the signed copy
  exit                      quit`

// executeLine runs one command. done reports that the session should end.
func (i *interactiveCmd) executeLine(line string) (done bool, err error) {
	args := strings.Fields(strings.TrimSpace(line))
	if len(args) == 0 {
		return false, nil
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]
	s := i.session
	switch cmd {
	case "exit", "quit":
		return true, nil
	case "help", "?":
		fmt.Fprintln(i.stdout, interactiveHelp)
	case "open":
		if len(rest) == 0 {
			return false, errors.New("usage: open FILE")
		}
		return false, i.open(strings.Join(rest, " "))
	case "page":
		if len(rest) > 0 {
			n, err := strconv.Atoi(rest[0])
			if err != nil {
				return false, fmt.Errorf("page: %w", err)
			}
			if err := s.SetPage(n - 1); err != nil {
				return false, err
			}
		}
		if !s.HasDocument() {
			return false, editor.ErrNoDocument
		}
		size := s.PageSize()
		fmt.Fprintf(i.stdout, "page %d/%d (%g x %g pt)\n", s.Page()+1, s.NumPages(), size.X, size.Y)
	case "add":
		if len(rest) < 2 {
			return false, errors.New("usage: add KIND TEXT")
		}
		kind, err := annotation.ParseKind(rest[0])
		if err != nil {
			return false, err
		}
		id, err := s.Add(strings.Join(rest[1:], " "), kind)
		if err != nil {
			return false, err
		}
		return false, i.selectAndShow(id)
	case "date":
		id, err := s.AddDate()
		if err != nil {
			return false, err
		}
		return false, i.selectAndShow(id)
	case "list":
		rows := s.Rows()
		if len(rows) == 0 {
			fmt.Fprintln(i.stdout, "no annotations on this page")
		}
		for n, row := range rows {
			mark := " "
			if row.Selected {
				mark = "*"
			}
			fmt.Fprintf(i.stdout, "%s%d %s\n", mark, n, row.Label)
		}
	case "all":
		for _, a := range s.Annotations() {
			fmt.Fprintf(i.stdout, "%d page %d (%g, %g) %s\n", a.ID, a.Page+1, a.X, a.Y, a.Label())
		}
	case "select":
		if len(rest) != 1 {
			return false, errors.New("usage: select ROW")
		}
		row, err := strconv.Atoi(rest[0])
		if err != nil {
			return false, fmt.Errorf("select: %w", err)
		}
		id, err := s.IDAtRow(row)
		if err != nil {
			return false, err
		}
		return false, i.selectAndShow(id)
	case "edit":
		id, err := i.selected()
		if err != nil {
			return false, err
		}
		if err := s.Edit(id, strings.Join(rest, " ")); err != nil {
			return false, err
		}
		i.show(id)
	case "move":
		id, err := i.selected()
		if err != nil {
			return false, err
		}
		p, err := parsePoints(rest, 2)
		if err != nil {
			return false, fmt.Errorf("move: %w", err)
		}
		if err := s.Place(id, p[0]); err != nil {
			return false, err
		}
		i.show(id)
	case "drag":
		p, err := parsePoints(rest, 4)
		if err != nil {
			return false, fmt.Errorf("drag: %w", err)
		}
		id, ok := s.PointerDown(p[0])
		if !ok {
			return false, errors.New("drag: nothing under the pointer")
		}
		s.PointerUp(p[1])
		i.show(id)
	case "delete":
		id, err := i.selected()
		if err != nil {
			return false, err
		}
		a, err := s.Delete(id)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(i.stdout, "removed %s\n", a.Label())
	case "deselect":
		s.ClearSelection()
	case "text":
		if i.document == nil || !s.HasDocument() {
			return false, editor.ErrNoDocument
		}
		text, err := i.document.Text(s.Page())
		if err != nil {
			return false, err
		}
		fmt.Fprint(i.stdout, text)
	case "save":
		path := ""
		if len(rest) > 0 {
			path = strings.Join(rest, " ")
		} else if s.HasDocument() {
			path = editor.OutputPath(s.Path())
			if dir := i.r.saveDir(); dir != "" {
				path = filepath.Join(dir, filepath.Base(path))
			}
		}
		if err := s.Save(path); err != nil {
			return false, err
		}
		i.r.notifier.Save(path)
		fmt.Fprintf(i.stdout, "saved %s\n", path)
	default:
		return false, fmt.Errorf("unknown command %q (try 'help')", cmd)
	}
	return false, nil
}

func (i *interactiveCmd) open(path string) error {
	doc, err := openDocument(path)
	if err != nil {
		return err
	}
	if err := i.session.Load(doc, path); err != nil {
		_ = doc.Close()
		return err
	}
	i.document = doc
	i.r.notifier.Open(path, doc.NumPages())
	fmt.Fprintf(i.stdout, "opened %s (%d pages)\n", path, doc.NumPages())
	return nil
}

func (i *interactiveCmd) selected() (annotation.ID, error) {
	id, ok := i.session.Selection()
	if !ok {
		return 0, errors.New("nothing selected")
	}
	return id, nil
}

func (i *interactiveCmd) selectAndShow(id annotation.ID) error {
	if err := i.session.Select(id); err != nil {
		return err
	}
	i.show(id)
	return nil
}

func (i *interactiveCmd) show(id annotation.ID) {
	a, ok := i.session.Get(id)
	if !ok {
		return
	}
	fmt.Fprintf(i.stdout, "%s %s at (%g, %g)\n", editor.DisplayTag(id), a.Label(), a.X, a.Y)
}

// parsePoints reads n numbers as n/2 points.
func parsePoints(args []string, n int) ([]r2.Point, error) {
	if len(args) != n {
		return nil, fmt.Errorf("want %d numbers, got %d", n, len(args))
	}
	v := make([]float64, n)
	for k, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, err
		}
		v[k] = f
	}
	out := make([]r2.Point, 0, n/2)
	for k := 0; k < n; k += 2 {
		out = append(out, r2.Point{X: v[k], Y: v[k+1]})
	}
	return out, nil
}
