// Package dam normalizes the heterogeneous payload shapes returned by the
// remote DAM repository into one canonical asset model, and provides the
// authenticated API client that fetches them.
package dam

import "fmt"

// RootPath is the canonical repository root every display path is rooted
// under.
const RootPath = "/content/dam"

// Asset is the canonical in-memory record for one remote asset. Source
// retains the original payload at full fidelity for any field not modeled
// here.
type Asset struct {
	ID           string                 `json:"id"`
	Name         string                 `json:"name"`
	Path         string                 `json:"path"`
	MimeType     string                 `json:"mimeType,omitempty"`
	Size         int64                  `json:"size"`
	Width        int64                  `json:"width,omitempty"`
	Height       int64                  `json:"height,omitempty"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description,omitempty"`
	ThumbnailURL string                 `json:"thumbnailUrl,omitempty"`
	ContentURL   string                 `json:"contentUrl,omitempty"`
	Source       map[string]interface{} `json:"-"`
}

// AssetList is the normalized result of one listing response. Raw is set
// only for unrecognized payload shapes so callers can log what the remote
// actually sent.
type AssetList struct {
	Assets []Asset                `json:"assets"`
	Total  int                    `json:"total"`
	Raw    map[string]interface{} `json:"-"`
}

// MetadataSchema groups every surviving metadata property both flat and by
// namespace. Every key in Properties appears in exactly one namespace
// bucket, and vice versa.
type MetadataSchema struct {
	Properties map[string]interface{}            `json:"allProperties"`
	Namespaces map[string]map[string]interface{} `json:"byNamespace"`
}

// ShapeError reports a payload that is not an object at all. Partial or
// malformed objects never produce this; they normalize with defaults.
type ShapeError struct {
	Got string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("payload is %s, not an object; expected an entity-collection, children, or node-properties shape", e.Got)
}
