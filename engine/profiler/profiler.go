package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy2d/common"
	"github.com/Carmen-Shannon/oxy2d/engine/canvas"
)

// Report is one interval of frame statistics.
type Report struct {
	// FPS is the frame rate over the interval.
	FPS float64
	// DrawsPerFrame and VerticesPerFrame average the batch statistics over the interval.
	DrawsPerFrame    float64
	VerticesPerFrame float64
	// Flushes totals draw calls by reason over the interval.
	Flushes [canvas.NumFlushReasons]int
	// Skipped totals primitives that could not be drawn.
	Skipped int
	// HeapMB is live heap memory; AllocRateMB is allocation churn per second.
	HeapMB      float64
	AllocRateMB float64
	// GCCount is the cumulative number of collections; MaxPauseUs is the longest pause in the interval.
	GCCount    uint32
	MaxPauseUs uint64
}

// Profiler tracks frame rate, batching and memory statistics for performance monitoring.
// Outputs a Report to the engine logger at a configurable interval.
type Profiler struct {
	frameCount     int
	totals         canvas.Stats
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time
	last           Report
}

// NewProfiler creates a new Profiler reporting every interval.
// Intervals of zero or less default to 1 second.
//
// Parameters:
//   - interval: how often a report is produced
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(interval time.Duration) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: interval,
		now:            time.Now,
	}
}

// Tick should be called once per frame with the frame's batch statistics.
// Logs a report when the update interval has elapsed.
//
// Parameters:
//   - stats: the statistics of the frame just drawn
//
// Returns:
//   - bool: true if a report was produced this tick, false otherwise
func (p *Profiler) Tick(stats canvas.Stats) bool {
	p.frameCount++
	p.totals.Add(stats)

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	frames := float64(p.frameCount)
	r := Report{
		FPS:              frames / elapsed.Seconds(),
		DrawsPerFrame:    float64(p.totals.Draws) / frames,
		VerticesPerFrame: float64(p.totals.Vertices) / frames,
		Flushes:          p.totals.Flushes,
		Skipped:          p.totals.Skipped,
	}

	runtime.ReadMemStats(&p.memStats)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	r.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	r.GCCount = gcCount
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	common.Logger().Info("profiler",
		"fps", r.FPS,
		"draws_per_frame", r.DrawsPerFrame,
		"vertices_per_frame", r.VerticesPerFrame,
		"flush_model", r.Flushes[canvas.FlushModelChange],
		"flush_pool", r.Flushes[canvas.FlushPoolExhausted],
		"flush_slots", r.Flushes[canvas.FlushTextureSlots],
		"flush_end", r.Flushes[canvas.FlushEndOfFrame],
		"skipped", r.Skipped,
		"heap_mb", r.HeapMB,
		"alloc_rate_mb", r.AllocRateMB,
		"gc", r.GCCount,
		"gc_max_pause_us", r.MaxPauseUs,
	)

	p.last = r
	p.frameCount = 0
	p.totals = canvas.Stats{}
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recent report, the zero Report before the first interval elapses.
func (p *Profiler) Last() Report {
	return p.last
}
