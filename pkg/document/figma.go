package document

import "github.com/kataras/symbol-exporter/pkg/figma"

// FigmaDocument adapts a fetched Figma file to Document.
// Pages are the CANVAS children of the document root; layers are the direct
// children of each page. COMPONENT nodes are symbol masters.
type FigmaDocument struct {
	FileKey string
	File    *figma.FileResponse
}

// NewFigmaDocument wraps file, fetched from the file identified by fileKey.
func NewFigmaDocument(fileKey string, file *figma.FileResponse) *FigmaDocument {
	return &FigmaDocument{FileKey: fileKey, File: file}
}

// Name returns the file name.
func (d *FigmaDocument) Name() string {
	if d.File == nil {
		return ""
	}
	return d.File.Name
}

func (d *FigmaDocument) Pages() []Page {
	if d.File == nil {
		return nil
	}

	pages := make([]Page, 0, len(d.File.Document.Children))
	for i := range d.File.Document.Children {
		node := &d.File.Document.Children[i]
		if node.Type != figma.NodeTypeCanvas {
			continue
		}
		pages = append(pages, &figmaPage{node: node})
	}
	return pages
}

type figmaPage struct {
	node *figma.Node
}

func (p *figmaPage) Name() string { return p.node.Name }

func (p *figmaPage) Layers() []Layer {
	layers := make([]Layer, len(p.node.Children))
	for i := range p.node.Children {
		layers[i] = &FigmaLayer{Node: &p.node.Children[i]}
	}
	return layers
}

// FigmaLayer is a layer backed by a Figma node. The exporter's Figma
// rasterizer type-asserts to it to recover the node ID.
type FigmaLayer struct {
	Node *figma.Node
}

func (l *FigmaLayer) Name() string     { return l.Node.Name }
func (l *FigmaLayer) SymbolID() string { return l.Node.ID }

func (l *FigmaLayer) IsSymbolMaster() bool {
	return l.Node.Type == figma.NodeTypeComponent
}
