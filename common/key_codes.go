package common

// Virtual key codes delivered to window key callbacks.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeyR     = 82  // R key (ASCII)
	KeySpace = 32  // Space bar (ASCII)
	KeyEsc   = 256 // Escape key
	KeyUp    = 265 // Up arrow
	KeyDown  = 264 // Down arrow
)
