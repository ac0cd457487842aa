package exporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kataras/symbol-exporter/pkg/document"
	"github.com/kataras/symbol-exporter/pkg/figma"
)

// FigmaRasterizer renders symbols through the Figma render API.
type FigmaRasterizer struct {
	Client  *figma.Client
	FileKey string
}

// NewFigmaRasterizer returns a rasterizer for the nodes of the file fileKey.
func NewFigmaRasterizer(client *figma.Client, fileKey string) *FigmaRasterizer {
	return &FigmaRasterizer{Client: client, FileKey: fileKey}
}

// Descriptor requests a trimmed PNG at 1x. The render API crops to the
// node's bounds by default.
func (r *FigmaRasterizer) Descriptor(symbol document.Layer) (Descriptor, error) {
	if _, ok := symbol.(*document.FigmaLayer); !ok {
		return Descriptor{}, fmt.Errorf("layer %q does not belong to a Figma document", symbol.SymbolID())
	}

	return Descriptor{
		SymbolID: symbol.SymbolID(),
		Format:   FormatPNG,
		Scale:    1,
		Trim:     true,
	}, nil
}

func (r *FigmaRasterizer) Save(ctx context.Context, d Descriptor, path string) error {
	imgResp, err := r.Client.GetImages(ctx, r.FileKey, []string{d.SymbolID}, d.Format, d.Scale)
	if err != nil {
		return fmt.Errorf("failed to get image from Figma API: %w", err)
	}

	imageURL := imgResp.Images[d.SymbolID]
	if imageURL == "" {
		return fmt.Errorf("no image URL returned for node %s", d.SymbolID)
	}

	return r.download(ctx, imageURL, path)
}

// download writes to a temporary file first so that a failed transfer
// never leaves a truncated image behind.
func (r *FigmaRasterizer) download(ctx context.Context, imageURL, destPath string) error {
	f, err := os.CreateTemp(filepath.Dir(destPath), ".symbol-*.png")
	if err != nil {
		return fmt.Errorf("failed to create file in %q: %w", filepath.Dir(destPath), err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := r.Client.Download(ctx, imageURL, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write file %q: %w", tmp, err)
	}

	if err := os.Rename(tmp, destPath); err != nil {
		return fmt.Errorf("failed to write file %q: %w", destPath, err)
	}
	return nil
}
