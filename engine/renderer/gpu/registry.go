package gpu

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/model"
)

// LayoutRegistry maps each distinct BatchModel to its vertex layout on the device.
// Entries are created lazily on first use and live until Release.
type LayoutRegistry struct {
	mu       sync.RWMutex
	device   Device
	layouts  map[model.BatchModel]LayoutID
	released bool
}

// NewLayoutRegistry creates an empty registry bound to device.
//
// Parameters:
//   - device: the device layouts are created on
//
// Returns:
//   - *LayoutRegistry: the registry
func NewLayoutRegistry(device Device) *LayoutRegistry {
	return &LayoutRegistry{
		device:  device,
		layouts: make(map[model.BatchModel]LayoutID),
	}
}

// Ensure returns the layout for m, registering it on the device the first time m is seen.
//
// Parameters:
//   - m: a non-null batch model
//
// Returns:
//   - LayoutID: the layout handle
//   - error: error if m is null or the device rejects the layout
func (r *LayoutRegistry) Ensure(m model.BatchModel) (LayoutID, error) {
	r.mu.RLock()
	id, ok := r.layouts[m]
	released := r.released
	r.mu.RUnlock()
	if released {
		panic("gpu: layout registry used after Release")
	}
	if ok {
		return id, nil
	}
	if m.IsNull() {
		return 0, fmt.Errorf("gpu: cannot register a layout for the null model")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if id, ok := r.layouts[m]; ok {
		return id, nil
	}
	id, err := r.device.CreateVertexLayout(m)
	if err != nil {
		return 0, fmt.Errorf("gpu: failed to create vertex layout for model %#x: %w", m.Hash(), err)
	}
	r.layouts[m] = id
	common.Logger().Debug("registered vertex layout", "model", fmt.Sprintf("%#x", m.Hash()), "stride", m.Stride(), "layout", id)
	return id, nil
}

// Layout returns the layout registered for m, if any.
func (r *LayoutRegistry) Layout(m model.BatchModel) (LayoutID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.layouts[m]
	return id, ok
}

// Len returns the number of registered layouts.
func (r *LayoutRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.layouts)
}

// Release frees every registered layout. It is safe to call more than once.
func (r *LayoutRegistry) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	for _, id := range r.layouts {
		r.device.ReleaseVertexLayout(id)
	}
	r.layouts = nil
	r.released = true
}
