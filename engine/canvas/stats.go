package canvas

// FlushReason records why a batch was submitted.
type FlushReason int

const (
	// FlushModelChange: the next element has a different batch model.
	FlushModelChange FlushReason = iota
	// FlushPoolExhausted: the next element does not fit in the remaining vertex or index pool.
	FlushPoolExhausted
	// FlushTextureSlots: the next element needs a texture and every slot is taken.
	FlushTextureSlots
	// FlushEndOfFrame: the traversal finished.
	FlushEndOfFrame

	// NumFlushReasons is the number of flush reasons.
	NumFlushReasons
)

// String returns the name of the reason.
func (r FlushReason) String() string {
	switch r {
	case FlushModelChange:
		return "model_change"
	case FlushPoolExhausted:
		return "pool_exhausted"
	case FlushTextureSlots:
		return "texture_slots"
	case FlushEndOfFrame:
		return "end_of_frame"
	default:
		return "unknown"
	}
}

// Stats describes one Draw. Only batches that issued a draw call are counted as flushes.
type Stats struct {
	// Draws is the number of draw calls issued.
	Draws int
	// Flushes counts draw calls by the reason that triggered them.
	Flushes [NumFlushReasons]int
	// Primitives is the number of primitives copied into a batch.
	Primitives int
	// Vertices and Indices are the totals submitted to the device.
	Vertices int
	Indices  int
	// Hidden counts invisible primitives passed over.
	Hidden int
	// Skipped counts primitives that could not be drawn: null model, layout failure, or larger than a pool.
	Skipped int
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Draws += o.Draws
	for i := range s.Flushes {
		s.Flushes[i] += o.Flushes[i]
	}
	s.Primitives += o.Primitives
	s.Vertices += o.Vertices
	s.Indices += o.Indices
	s.Hidden += o.Hidden
	s.Skipped += o.Skipped
}
