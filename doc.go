// Package symbolexporter collects the symbol masters (Figma components) of
// a design file, shows them in a local web view and exports every one of
// them as a PNG image when the view asks for it.
//
// The CLI lives in cmd/symbol-exporter; this root package exposes the same
// pipeline as a Go API.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named symbolexporter:
//
//	import "github.com/kataras/symbol-exporter" // package symbolexporter
//
// # Quick start
//
//	result, err := symbolexporter.Run(ctx, symbolexporter.Options{
//	    AccessToken: os.Getenv("FIGMA_TOKEN"),
//	    FileURL:     "https://www.figma.com/design/ABC123/Icons",
//	    PluginDir:   ".",
//	})
//
// Run writes <PluginDir>/app/webview/symbolData.js, serves
// <PluginDir>/app/webview on localhost:8080 and waits. The page starts the
// export by posting a navigation event whose target is
// [presenter.SentinelURL] to /navigate. Images are written to
// <PluginDir>/export/<symbolId>.png, the view is closed and
// [Options.Notifier] receives [DoneMessage].
//
// # Headless export
//
// Set [Options.Headless] to skip the web view and export immediately.
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output.
//
// # Other documents
//
// Any [document.Document] can be cataloged. Set [Options.Document] together
// with an [exporter.Rasterizer] that knows how to render its layers.
package symbolexporter
