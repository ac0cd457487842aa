// Package document describes a design document as a set of read-only
// capabilities: a document has pages, a page has layers and a layer can
// tell whether it is a symbol master. The catalog and exporter packages only
// depend on these interfaces.
package document

// Document is an open design document.
type Document interface {
	// Pages returns the pages in document order.
	Pages() []Page
}

// Page is a top-level container of a document.
type Page interface {
	Name() string
	// Layers returns the page's layers, one level deep, in layer order.
	Layers() []Layer
}

// Layer is a node directly contained by a page.
type Layer interface {
	Name() string
	// SymbolID is the stable identifier the document assigned to the layer.
	SymbolID() string
	IsSymbolMaster() bool
}
