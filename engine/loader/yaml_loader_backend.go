package loader

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// yamlLoaderBackend parses YAML descriptors. Unknown fields are rejected so typos surface as
// malformed descriptors instead of silently using defaults.
type yamlLoaderBackend struct{}

var _ loaderBackend = yamlLoaderBackend{}

func newYAMLLoaderBackend() loaderBackend {
	return yamlLoaderBackend{}
}

func (yamlLoaderBackend) Parse(r io.Reader) (*Descriptor, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var d Descriptor
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty descriptor")
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return &d, nil
}

func (yamlLoaderBackend) Extensions() []string {
	return []string{".yaml", ".yml"}
}
