// Package catalog enumerates the symbol masters of a document into a flat,
// ordered list and serializes that list as a script the web view loads.
package catalog

import "github.com/kataras/symbol-exporter/pkg/document"

// SymbolRecord is the metadata the web view sees for one symbol master.
type SymbolRecord struct {
	Name        string `json:"name"`
	SymbolID    string `json:"symbolId"`
	SymbolIndex int    `json:"symbolIndex"`
}

// Entry pairs a record with the layer it was read from, so that exports
// work on the same handles the catalog was built from.
type Entry struct {
	SymbolRecord
	Layer document.Layer
}

// Catalog is the ordered list of symbol masters of one document.
// It is built once and never modified afterwards.
type Catalog []Entry

// Build walks every page in order and every layer of a page in order,
// keeping symbol masters only. SymbolIndex is the running count of kept
// layers. A document without pages or symbols yields an empty catalog.
func Build(doc document.Document) Catalog {
	c := Catalog{}
	for _, page := range doc.Pages() {
		for _, layer := range page.Layers() {
			if !layer.IsSymbolMaster() {
				continue
			}
			c = append(c, Entry{
				SymbolRecord: SymbolRecord{
					Name:        layer.Name(),
					SymbolID:    layer.SymbolID(),
					SymbolIndex: len(c),
				},
				Layer: layer,
			})
		}
	}
	return c
}

// Records returns the catalog's records without the layer handles.
// The result is never nil.
func (c Catalog) Records() []SymbolRecord {
	records := make([]SymbolRecord, len(c))
	for i, e := range c {
		records[i] = e.SymbolRecord
	}
	return records
}
