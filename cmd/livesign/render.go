package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/example/livesign/internal/appstate"
	"github.com/example/livesign/internal/editor"
	"github.com/example/livesign/internal/render"
	"github.com/example/livesign/internal/viewport"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// renderCmd exports annotated pages as PNG images.
type renderCmd struct {
	file   string
	dir    string
	zoom   float64
	grid   bool
	shadow bool
	pages  string
	adds   placementList
	*root
	fs *flag.FlagSet
}

func (r *renderCmd) FlagSet() *flag.FlagSet {
	return r.fs
}

func (r *renderCmd) Program() string {
	return r.root.Program() + " render"
}

func parseRenderCmd(args []string, rt *root) (*renderCmd, error) {
	fs := newFlagSet("render")
	c := &renderCmd{root: rt, fs: fs}
	zoom := 1.0
	if rt != nil && rt.config != nil {
		zoom = rt.config.Editor.Zoom
	}
	fs.StringVar(&c.dir, "dir", ".", "directory to write page images into")
	fs.Float64Var(&c.zoom, "zoom", zoom, "pixels per point")
	fs.BoolVar(&c.grid, "grid", false, "draw the editor background and page frame around each page")
	fs.BoolVar(&c.shadow, "shadow", false, "add a drop shadow to each exported image")
	fs.StringVar(&c.pages, "pages", "", "comma separated one-based pages to export (default all)")
	fs.Var(&c.adds, "a", "annotation to add before rendering, KIND:TEXT[@X,Y[,PAGE]] (repeatable)")
	if err := parseFlags(fs, args, c); err != nil {
		return nil, err
	}
	if fs.NArg() != 1 {
		return nil, &UsageError{of: c}
	}
	if !(c.zoom > 0) {
		return nil, fmt.Errorf("render: -zoom must be positive")
	}
	c.file = fs.Arg(0)
	return c, nil
}

// selectPages parses the -pages flag against a document of n pages.
func selectPages(list string, n int) ([]int, error) {
	if strings.TrimSpace(list) == "" {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	var out []int
	for _, f := range strings.Split(list, ",") {
		var p int
		if _, err := fmt.Sscanf(strings.TrimSpace(f), "%d", &p); err != nil || p < 1 || p > n {
			return nil, fmt.Errorf("invalid page %q (document has %d pages)", f, n)
		}
		out = append(out, p-1)
	}
	return out, nil
}

func (r *renderCmd) outputName(page int) string {
	base := strings.TrimSuffix(filepath.Base(r.file), filepath.Ext(r.file))
	return filepath.Join(r.dir, fmt.Sprintf("%s_p%d.png", base, page+1))
}

func (r *renderCmd) Run() error {
	s, doc, err := r.loadSession(r.file, func(st *editor.Settings) error {
		m, err := viewport.New(st.Mapper.Offset.X, r.zoom)
		st.Mapper = m
		return err
	})
	if err != nil {
		return err
	}
	defer s.Close()
	if err := r.adds.applyAll(s); err != nil {
		return err
	}
	pages, err := selectPages(r.pages, s.NumPages())
	if err != nil {
		return err
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return err
	}

	// Rasterise every page concurrently, then compose on this goroutine
	// since the session is not safe for concurrent use.
	rasters := make([]*image.RGBA, len(pages))
	g, ctx := errgroup.WithContext(context.Background())
	sem := semaphore.NewWeighted(int64(runtime.NumCPU()))
	for i, p := range pages {
		i, p := i, p
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			img, err := doc.Render(p, r.zoom)
			if err != nil {
				return err
			}
			rasters[i] = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	composed := make([]*image.RGBA, len(pages))
	for i, p := range pages {
		if err := s.SetPage(p); err != nil {
			return err
		}
		composed[i] = r.compose(s, rasters[i])
	}

	g, _ = errgroup.WithContext(context.Background())
	for i, p := range pages {
		img, path := composed[i], r.outputName(p)
		g.Go(func() error { return writePNG(path, img) })
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, p := range pages {
		fmt.Fprintln(r.stdout, r.outputName(p))
	}
	return nil
}

func (r *renderCmd) compose(s *editor.Session, page *image.RGBA) *image.RGBA {
	img := appstate.RenderPage(s, page, r.theme(), r.grid)
	if r.shadow {
		img = render.ApplyShadow(img, render.DefaultShadowOptions()).Image
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
