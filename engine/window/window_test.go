package window

import "testing"

func TestSizeLimits(t *testing.T) {
	tests := []struct {
		name                   string
		w                      engineWindow
		minW, minH, maxW, maxH int
	}{
		{name: "unset", w: engineWindow{}, minW: -1, minH: -1, maxW: -1, maxH: -1},
		{name: "min only", w: engineWindow{minWidth: 320, minHeight: 240}, minW: 320, minH: 240, maxW: -1, maxH: -1},
		{name: "both", w: engineWindow{minWidth: 320, minHeight: 240, maxWidth: 1920, maxHeight: 1080}, minW: 320, minH: 240, maxW: 1920, maxH: 1080},
		{name: "max below min", w: engineWindow{minWidth: 800, minHeight: 600, maxWidth: 640, maxHeight: 480}, minW: 800, minH: 600, maxW: 800, maxH: 600},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minW, minH, maxW, maxH := tt.w.sizeLimits()
			if minW != tt.minW || minH != tt.minH || maxW != tt.maxW || maxH != tt.maxH {
				t.Errorf("sizeLimits() = %d, %d, %d, %d, want %d, %d, %d, %d",
					minW, minH, maxW, maxH, tt.minW, tt.minH, tt.maxW, tt.maxH)
			}
		})
	}
}

func TestUnopenedWindow(t *testing.T) {
	w := &engineWindow{}
	if w.IsRunning() {
		t.Error("IsRunning() = true before the platform window exists")
	}
	if w.SurfaceDescriptor() != nil {
		t.Error("SurfaceDescriptor() should be nil before the platform window exists")
	}
	if err := w.Close(); err == nil {
		t.Error("Close() on an unopened window should fail")
	}
}
