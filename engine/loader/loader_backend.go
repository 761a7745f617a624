package loader

import "io"

// loaderBackend defines the generic interface for parsing descriptors.
// Concrete implementations (e.g., yamlLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Parse decodes one descriptor from the stream.
	//
	// Parameters:
	//   - r: the reader providing descriptor data
	//
	// Returns:
	//   - *Descriptor: the decoded descriptor, not yet normalized
	//   - error: error if the data is not a valid descriptor
	Parse(r io.Reader) (*Descriptor, error)

	// Extensions lists the lower-case file extensions, with the leading dot, the backend handles.
	Extensions() []string
}
