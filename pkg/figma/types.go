package figma

// Node types the exporter cares about.
const (
	NodeTypeDocument     = "DOCUMENT"
	NodeTypeCanvas       = "CANVAS"
	NodeTypeComponent    = "COMPONENT"
	NodeTypeComponentSet = "COMPONENT_SET"
	NodeTypeInstance     = "INSTANCE"
)

// FileResponse represents the response from the Figma file API endpoint.
// It contains the file metadata and the document tree.
type FileResponse struct {
	Name          string `json:"name"`
	LastModified  string `json:"lastModified"`
	ThumbnailURL  string `json:"thumbnailUrl"`
	Version       string `json:"version"`
	Document      Node   `json:"document"`
	SchemaVersion int    `json:"schemaVersion"`
}

// ImagesResponse is returned by the render API.
// Images maps node IDs to temporary download URLs.
type ImagesResponse struct {
	Err    string            `json:"err,omitempty"`
	Images map[string]string `json:"images"`
}

// Node represents a single element in the Figma document tree hierarchy.
// The document's children are pages (CANVAS), whose children are the top-level layers.
type Node struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Children []Node `json:"children,omitempty"`
}
