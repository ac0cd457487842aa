package symbolexporter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/browser"
	"golang.org/x/sync/errgroup"

	"github.com/kataras/symbol-exporter/pkg/catalog"
	"github.com/kataras/symbol-exporter/pkg/document"
	"github.com/kataras/symbol-exporter/pkg/exporter"
	"github.com/kataras/symbol-exporter/pkg/figma"
	"github.com/kataras/symbol-exporter/pkg/formatter"
	"github.com/kataras/symbol-exporter/pkg/presenter"
)

// DoneMessage is the notification shown after a complete export pass.
const DoneMessage = "Symbols exported"

// DefaultListen is the address of the web view server.
const DefaultListen = "localhost:8080"

// openURL opens the web view. Tests replace it.
var openURL = browser.OpenURL

// Options configures a plugin invocation.
type Options struct {
	AccessToken string
	FileURL     string // Figma file URL
	APIBaseURL  string // default https://api.figma.com/v1

	// Document and Rasterizer replace the Figma file and render API when
	// both are set.
	Document   document.Document
	Rasterizer exporter.Rasterizer

	PluginDir  string // holds app/webview; default "."
	OutputDir  string // default <PluginDir>/export
	Listen     string // default DefaultListen
	ReportFile string // markdown catalog report, empty = none
	Headless   bool   // export right away instead of waiting for the web view
	// OpenBrowser shows the web view in the default browser once it is served.
	OpenBrowser bool

	Logger   Logger   // nil = no logging
	Notifier Notifier // nil = no notification
	// Ready, if not nil, receives the web view address once it is served.
	Ready func(url string)
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Notifier shows a transient message to the user.
type Notifier interface {
	Notify(message string)
}

// Result contains the outcome of an invocation.
type Result struct {
	FileName string
	DataFile string // path of the generated symbolData.js
	Records  []catalog.SymbolRecord
	Assets   []exporter.ExportedAsset
	Exported bool
}

// WebviewDir returns the directory holding the web view assets.
func (o *Options) WebviewDir() string {
	return filepath.Join(o.PluginDir, "app", "webview")
}

// DataFile returns the path of the generated symbol data script.
func (o *Options) DataFile() string {
	return filepath.Join(o.WebviewDir(), "symbolData.js")
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

func (o *Options) logError(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Errorf(f, a...)
	}
}

func (o *Options) notify(msg string) {
	if o.Notifier != nil {
		o.Notifier.Notify(msg)
	}
}

func (o *Options) applyDefaults() {
	if o.PluginDir == "" {
		o.PluginDir = "."
	}
	if o.OutputDir == "" {
		o.OutputDir = filepath.Join(o.PluginDir, "export")
	}
	if o.Listen == "" {
		o.Listen = DefaultListen
	}
}

// Plugin is one invocation: the catalog captured at startup and the
// means to export it.
type Plugin struct {
	opts       Options
	fileName   string
	catalog    catalog.Catalog
	rasterizer exporter.Rasterizer
	assets     []exporter.ExportedAsset
	exported   bool
}

// New opens the document, builds the catalog and writes symbolData.js.
// The catalog is not re-derived afterwards.
func New(ctx context.Context, opts Options) (*Plugin, error) {
	opts.applyDefaults()
	p := &Plugin{opts: opts}

	doc, err := p.open(ctx)
	if err != nil {
		return nil, err
	}

	opts.logInfo("Collecting symbols...")
	p.catalog = catalog.Build(doc)
	opts.logInfo("Found %d symbol(s)", len(p.catalog))

	dataFile := opts.DataFile()
	if err := catalog.WriteFile(dataFile, p.catalog.Records()); err != nil {
		return nil, err
	}
	opts.logInfo("Wrote %s", dataFile)

	return p, nil
}

func (p *Plugin) open(ctx context.Context) (document.Document, error) {
	opts := &p.opts

	if opts.Document != nil {
		if opts.Rasterizer == nil {
			return nil, errors.New("a Document option requires a Rasterizer")
		}
		p.rasterizer = opts.Rasterizer
		if named, ok := opts.Document.(interface{ Name() string }); ok {
			p.fileName = named.Name()
		}
		return opts.Document, nil
	}

	opts.logInfo("Extracting file key from URL...")
	fileKey, err := figma.ExtractFileKey(opts.FileURL)
	if err != nil {
		return nil, fmt.Errorf("extract file key: %w", err)
	}
	opts.logInfo("File key: %s", fileKey)

	opts.logInfo("Fetching file data from Figma...")
	client := figma.NewClient(opts.AccessToken)
	if opts.APIBaseURL != "" {
		client.SetBaseURL(opts.APIBaseURL)
	}
	fileResp, err := client.GetFile(ctx, fileKey)
	if err != nil {
		return nil, fmt.Errorf("fetch file: %w", err)
	}
	opts.logInfo("File: %s", fileResp.Name)

	p.fileName = fileResp.Name
	p.rasterizer = exporter.NewFigmaRasterizer(client, fileKey)
	return document.NewFigmaDocument(fileKey, fileResp), nil
}

// FileName is the name of the opened document.
func (p *Plugin) FileName() string { return p.fileName }

// Catalog returns the catalog captured by New.
func (p *Plugin) Catalog() catalog.Catalog { return p.catalog }

// Export writes one PNG per symbol into the output directory and, when
// configured, the markdown report. It stops at the first failure.
func (p *Plugin) Export(ctx context.Context) error {
	opts := &p.opts

	opts.logInfo("Exporting %d symbol(s) to %s...", len(p.catalog), opts.OutputDir)
	seq := exporter.New(p.rasterizer)
	seq.Progress = func(done, total int, asset exporter.ExportedAsset) {
		opts.logInfo("[%d/%d] %s -> %s", done, total, asset.Name, asset.FileName)
	}

	assets, err := seq.ExportAll(ctx, p.catalog, opts.OutputDir)
	p.assets = assets
	if err != nil {
		opts.logError("Export aborted after %d image(s): %v", len(assets), err)
		return err
	}
	p.exported = true

	return p.writeReport()
}

func (p *Plugin) writeReport() error {
	opts := &p.opts
	if opts.ReportFile == "" {
		return nil
	}

	imageDir, err := filepath.Rel(filepath.Dir(opts.ReportFile), opts.OutputDir)
	if err != nil {
		imageDir = opts.OutputDir
	}

	opts.logInfo("Writing report to %s...", opts.ReportFile)
	md := formatter.ToMarkdown(p.catalog.Records(), p.fileName, p.assets, filepath.ToSlash(imageDir))
	if err := os.WriteFile(opts.ReportFile, []byte(md), 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Present serves the web view and waits for it to request the export.
// The export runs once, inside the request that asked for it; the view is
// then closed. Present returns when the view is closed or ctx is done.
func (p *Plugin) Present(ctx context.Context) error {
	opts := &p.opts

	if _, err := os.Stat(filepath.Join(opts.WebviewDir(), "index.html")); err != nil {
		opts.logWarn("No index.html in %s: %v", opts.WebviewDir(), err)
	}

	trigger := presenter.NewTrigger(p.Export)
	srv := presenter.NewServer(opts.WebviewDir(), opts.Listen, trigger)
	srv.Logf = opts.logInfo
	if err := srv.Open(ctx); err != nil {
		return err
	}

	opts.logInfo("Web view ready at %s", srv.URL())
	if opts.OpenBrowser {
		if err := openURL(srv.URL()); err != nil {
			opts.logWarn("Could not open a browser, visit %s: %v", srv.URL(), err)
		}
	}
	if opts.Ready != nil {
		opts.Ready(srv.URL())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Serve)
	g.Go(func() error {
		select {
		case <-trigger.Done():
		case <-gctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Close(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	select {
	case <-trigger.Done():
		return trigger.Err()
	default:
		return ctx.Err()
	}
}

// Assets returns the images written by the last export.
func (p *Plugin) Assets() []exporter.ExportedAsset { return p.assets }

// Run executes a whole invocation: catalog, web view, export on request
// and the completion notification. With Headless set the web view is
// skipped and the export starts immediately.
func Run(ctx context.Context, opts Options) (*Result, error) {
	p, err := New(ctx, opts)
	if err != nil {
		return nil, err
	}

	if p.opts.Headless {
		err = p.Export(ctx)
	} else {
		err = p.Present(ctx)
	}

	result := &Result{
		FileName: p.fileName,
		DataFile: p.opts.DataFile(),
		Records:  p.catalog.Records(),
		Assets:   p.assets,
	}
	if err != nil {
		return result, err
	}

	result.Exported = p.exported
	if result.Exported {
		p.opts.notify(DoneMessage)
	}
	return result, nil
}
