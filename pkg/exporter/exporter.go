// Package exporter rasterizes every symbol of a catalog to a PNG file.
package exporter

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/kataras/symbol-exporter/pkg/catalog"
	"github.com/kataras/symbol-exporter/pkg/document"
)

// FormatPNG is the only format the sequencer asks for.
const FormatPNG = "png"

// Descriptor describes how a single symbol is rasterized.
type Descriptor struct {
	SymbolID string
	Format   string
	Scale    float64
	Trim     bool // crop the image to the symbol's bounds
}

// Rasterizer is the document host's export subsystem.
type Rasterizer interface {
	// Descriptor builds the export request for symbol.
	Descriptor(symbol document.Layer) (Descriptor, error)
	// Save renders d and writes the image to path, replacing any existing file.
	Save(ctx context.Context, d Descriptor, path string) error
}

// ExportedAsset represents a single written image.
type ExportedAsset struct {
	SymbolID string
	Name     string
	FileName string
}

// Sequencer exports a catalog one symbol at a time, in catalog order.
type Sequencer struct {
	Rasterizer Rasterizer
	// Progress, if not nil, is called after each written file.
	Progress func(done, total int, asset ExportedAsset)
}

// New returns a Sequencer backed by r.
func New(r Rasterizer) *Sequencer {
	return &Sequencer{Rasterizer: r}
}

// ExportAll writes <outputDir>/<symbolId>.png for every entry of c.
// The first failure aborts the batch and is returned; files written before
// it are left in place. The returned assets are those written.
func (s *Sequencer) ExportAll(ctx context.Context, c catalog.Catalog, outputDir string) ([]ExportedAsset, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %q: %w", outputDir, err)
	}

	assets := make([]ExportedAsset, 0, len(c))
	for _, e := range c {
		if err := ctx.Err(); err != nil {
			return assets, err
		}

		d, err := s.Rasterizer.Descriptor(e.Layer)
		if err != nil {
			return assets, fmt.Errorf("export descriptor for symbol %s: %w", e.SymbolID, err)
		}

		fileName := FileName(e.SymbolID)
		if err := s.Rasterizer.Save(ctx, d, filepath.Join(outputDir, fileName)); err != nil {
			return assets, fmt.Errorf("save symbol %s: %w", e.SymbolID, err)
		}

		asset := ExportedAsset{SymbolID: e.SymbolID, Name: e.Name, FileName: fileName}
		assets = append(assets, asset)
		if s.Progress != nil {
			s.Progress(len(assets), len(c), asset)
		}
	}

	return assets, nil
}

// FileName returns the image file name of a symbol: its ID with a .png
// extension. The ID is path-escaped, so distinct IDs never share a file
// and the file stays in the output directory. Figma IDs like "12:34" are
// kept as they are.
func FileName(symbolID string) string {
	name := url.PathEscape(symbolID)
	switch name {
	case "":
		name = "%"
	case ".", "..":
		name = strings.ReplaceAll(name, ".", "%2E")
	}
	return name + "." + FormatPNG
}
