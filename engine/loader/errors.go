package loader

import (
	"errors"
	"fmt"
)

// Status classifies why a descriptor failed to load.
type Status int

const (
	// StatusOK is the zero status; it never appears on an Error.
	StatusOK Status = iota
	// StatusUnreadable means the descriptor file could not be read.
	StatusUnreadable
	// StatusUnsupported means no backend handles the descriptor's file extension.
	StatusUnsupported
	// StatusMalformed means the descriptor could not be parsed or describes invalid geometry.
	StatusMalformed
	// StatusUnknownShader means the descriptor names a shader key that is not registered.
	StatusUnknownShader
	// StatusTextureFailed means the texture could not be decoded or uploaded.
	StatusTextureFailed
)

// String returns the name of the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUnreadable:
		return "unreadable"
	case StatusUnsupported:
		return "unsupported"
	case StatusMalformed:
		return "malformed"
	case StatusUnknownShader:
		return "unknown shader"
	case StatusTextureFailed:
		return "texture failed"
	default:
		return "unknown"
	}
}

var (
	// ErrUnknownShader is wrapped by errors with StatusUnknownShader.
	ErrUnknownShader = errors.New("shader not registered")
	// ErrUnsupportedFormat is wrapped by errors with StatusUnsupported.
	ErrUnsupportedFormat = errors.New("unsupported descriptor format")
)

// Error is returned by every failed load. It wraps the underlying cause.
type Error struct {
	Path   string
	Status Status
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("loader: %s: %s: %v", e.Path, e.Status, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(path string, status Status, err error) *Error {
	return &Error{Path: path, Status: status, Err: err}
}

// StatusOf returns the status of the first *Error in err's chain, or StatusOK if there is none.
//
// Parameters:
//   - err: an error returned by the loader
//
// Returns:
//   - Status: the failure classification
func StatusOf(err error) Status {
	var le *Error
	if errors.As(err, &le) {
		return le.Status
	}
	return StatusOK
}
