package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/pyhub-apps/pdfextract-golang"
	"github.com/pyhub-apps/pdfextract-golang/internal/config"
	"github.com/pyhub-apps/pdfextract-golang/pkg/pdf"
	"github.com/pyhub-apps/pdfextract-golang/pkg/render"
	"github.com/pyhub-apps/pdfextract-golang/pkg/spatial"
)

var convertFlags struct {
	to      string
	types   []string
	backend string
	all     bool
	alter   string
	outDir  string
	watch   bool
}

var convertCmd = &cobra.Command{
	Use:   "convert [flags] file.pdf...",
	Short: "Convert PDF files into spatial objects",
	Long: `Convert extracts the requested types from each file and renders them as
xml, html, text, json or yaml.

A single file is written to stdout unless --out-dir is set. Several files
are converted concurrently, each into <out-dir>/<name>.<format>.`,
	Example: `  pdfextract convert paper.pdf
  pdfextract convert --types references --to json paper.pdf
  pdfextract convert --alter alter.yaml --out-dir out/ *.pdf
  pdfextract convert --watch --out-dir out/ paper.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	f := convertCmd.Flags()
	f.StringVarP(&convertFlags.to, "to", "t", "", "output format: xml, html, text, json or yaml (default from config)")
	f.StringSliceVar(&convertFlags.types, "types", nil, "types to extract (default from config)")
	f.StringVarP(&convertFlags.backend, "backend", "b", "", "PDF backend: ledongthuc, dslipak or pdfcpu (default: try each)")
	f.BoolVar(&convertFlags.all, "all", false, "also output the dependency types")
	f.StringVar(&convertFlags.alter, "alter", "", "YAML file mapping type names to alter schemas")
	f.StringVarP(&convertFlags.outDir, "out-dir", "o", "", "directory for output files")
	f.BoolVarP(&convertFlags.watch, "watch", "w", false, "convert again when an input file or the config changes")
}

// converter holds everything derived from the configuration and flags
type converter struct {
	ex       *pdfextract.Extractor
	renderer render.Renderer
	format   render.Format
	types    []string
	alters   map[string]spatial.Schema
	logger   *slog.Logger
}

func newConverter(cfg *config.Config, logger *slog.Logger) (*converter, error) {
	reg, err := pdfextract.NewRegistry(cfg.LayoutSettings(), cfg.ReferenceSettings())
	if err != nil {
		return nil, err
	}

	opts := []pdfextract.Option{pdfextract.WithRegistry(reg), pdfextract.WithLogger(logger)}
	if name := firstNonEmpty(convertFlags.backend, cfg.Backend); name != "" {
		b, err := pdf.ParseBackend(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, pdfextract.WithBackend(b))
	}
	ex, err := pdfextract.New(opts...)
	if err != nil {
		return nil, err
	}

	format := render.Format(cfg.Format)
	if convertFlags.to != "" {
		format = render.Format(strings.ToLower(convertFlags.to))
	}
	r, err := render.New(format, render.WithAll(convertFlags.all))
	if err != nil {
		return nil, err
	}

	types := cfg.Types
	if len(convertFlags.types) > 0 {
		types = convertFlags.types
	}

	c := &converter{ex: ex, renderer: r, format: format, types: types, logger: logger}
	if convertFlags.alter != "" {
		if c.alters, err = loadAlters(convertFlags.alter); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// loadAlters reads a YAML document mapping type names to alter schemas
func loadAlters(path string) (map[string]spatial.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alter file: %w", err)
	}
	var doc map[string]yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse alter file: %w", err)
	}

	alters := make(map[string]spatial.Schema, len(doc))
	for name, node := range doc {
		schema, err := spatial.ParseSchema(&node)
		if err != nil {
			return nil, fmt.Errorf("alter %s: %w", name, err)
		}
		alters[name] = schema
	}
	return alters, nil
}

// convert parses one file, applies the alter schemas and renders it to w
func (c *converter) convert(ctx context.Context, path string, w io.Writer) error {
	start := time.Now()
	res, err := c.ex.Parse(ctx, path, c.types...)
	if err != nil {
		return err
	}
	for name, schema := range c.alters {
		if err := res.Alter(name, schema); err != nil {
			if errors.Is(err, spatial.ErrUnknownType) {
				return fmt.Errorf("failed to alter %s: %w", name, err)
			}
			// Failing objects keep their attributes; the rest are altered
			c.logger.Warn("alter failed", "file", path, "type", name, "error", err)
		}
	}
	if err := c.renderer.Render(w, res); err != nil {
		return fmt.Errorf("failed to render %s: %w", path, err)
	}
	c.logger.Debug("converted", "file", path, "format", string(c.format), "duration", time.Since(start))
	return nil
}

// outputPath maps an input file to its file under dir
func (c *converter) outputPath(dir, path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(dir, base+"."+string(c.format))
}

func (c *converter) convertFile(ctx context.Context, dir, path string) error {
	out := c.outputPath(dir, path)
	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := c.convert(ctx, path, f); err != nil {
		f.Close()
		os.Remove(out)
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}
	c.logger.Info("wrote", "file", out)
	return nil
}

// convertAll converts files into dir, at most workers at a time
func (c *converter) convertAll(ctx context.Context, dir string, files []string, workers int) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, path := range files {
		path := path
		g.Go(func() error {
			return c.convertFile(gCtx, dir, path)
		})
	}
	return g.Wait()
}

func runConvert(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	mgr, err := loadConfig()
	if err != nil {
		return err
	}
	if f := mgr.File(); f != "" {
		logger.Debug("using config", "file", f)
	}

	cfg := mgr.Get()
	conv, err := newConverter(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	dir := convertFlags.outDir
	if dir == "" && (len(args) > 1 || convertFlags.watch) {
		dir = "."
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	run := func(conv *converter) error {
		if dir == "" {
			return conv.convert(ctx, args[0], cmd.OutOrStdout())
		}
		return conv.convertAll(ctx, dir, args, mgr.Get().Workers)
	}
	if err := run(conv); err != nil && !convertFlags.watch {
		return err
	} else if err != nil {
		logger.Error("conversion failed", "error", err)
	}

	if !convertFlags.watch {
		return nil
	}
	return watch(ctx, mgr, conv, dir, args, logger)
}

// watch converts an input file again whenever it is written. A config
// change rebuilds the converter and converts every file.
func watch(ctx context.Context, mgr *config.Manager, conv *converter, dir string, files []string, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	w := &watchLoop{
		conv:    conv,
		dir:     dir,
		files:   files,
		inputs:  make(map[string]bool, len(files)),
		workers: mgr.Get().Workers,
		logger:  logger,
		reload: func() (*converter, int, error) {
			cfg := mgr.Get()
			next, err := newConverter(cfg, logger)
			return next, cfg.Workers, err
		},
	}
	for _, path := range files {
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		w.inputs[abs] = true
		// Editors replace files on save, so watch the directory
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
	}

	reloads := make(chan struct{}, 1)
	if mgr.File() != "" {
		mgr.OnChange(func(*config.Config) {
			select {
			case reloads <- struct{}{}:
			default: // a reload is already pending
			}
		})
		mgr.WatchConfig()
	}

	logger.Info("watching for changes", "files", len(files))
	return w.run(ctx, watcher.Events, watcher.Errors, reloads)
}

// watchLoop runs every conversion of watch mode on one goroutine, so a
// config reload and a file write never write the same output at once
type watchLoop struct {
	conv    *converter
	dir     string
	files   []string
	inputs  map[string]bool
	workers int
	reload  func() (*converter, int, error)
	logger  *slog.Logger
}

func (w *watchLoop) run(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, reloads <-chan struct{}) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reloads:
			next, workers, err := w.reload()
			if err != nil {
				w.logger.Error("config reload rejected", "error", err)
				continue
			}
			w.conv, w.workers = next, workers
			w.logger.Info("config reloaded")
			if err := w.conv.convertAll(ctx, w.dir, w.files, w.workers); err != nil {
				w.logger.Error("conversion failed", "error", err)
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !w.inputs[ev.Name] || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if err := w.conv.convertFile(ctx, w.dir, ev.Name); err != nil {
				w.logger.Error("conversion failed", "file", ev.Name, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}
