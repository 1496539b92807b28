package loader

import (
	"github.com/Carmen-Shannon/oxy-gltf/engine/document"
)

// loaderBackend defines the generic interface for turning fetched document bytes into a linked document.
// Concrete implementations (e.g., gltfLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Parse decodes and links a document.
	//
	// Parameters:
	//   - data: the raw document bytes
	//
	// Returns:
	//   - *document.Document: the linked document, buffers not yet resolved
	//   - error: error if decoding or linking fails
	Parse(data []byte) (*document.Document, error)
}
