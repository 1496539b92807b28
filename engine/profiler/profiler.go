package profiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gltf/internal/log"
)

// Phase is the measured duration of one named compile phase.
type Phase struct {
	Name     string
	Duration time.Duration
}

// Profiler tracks compile phase durations and memory statistics for performance monitoring.
// Outputs a summary to the log when Report is called.
type Profiler struct {
	mu sync.Mutex

	logger  *log.Logger
	enabled bool

	start    time.Time
	phases   []Phase
	memStats runtime.MemStats

	startTotalAlloc uint64
	startGCCount    uint32
}

// NewProfiler creates a new Profiler. The clock starts immediately.
//
// Parameters:
//   - logger: the logger the report is written to, may be nil
//   - enabled: when false, phases are still recorded but Report only logs the total
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *log.Logger, enabled bool) *Profiler {
	if logger == nil {
		logger = log.NewNop()
	}
	p := &Profiler{
		logger:  logger,
		enabled: enabled,
		start:   time.Now(),
	}
	if enabled {
		runtime.ReadMemStats(&p.memStats)
		p.startTotalAlloc = p.memStats.TotalAlloc
		p.startGCCount = p.memStats.NumGC
	}
	return p
}

// Begin starts timing a phase.
//
// Parameters:
//   - name: the phase name
//
// Returns:
//   - func(): stops the phase and records its duration; call it exactly once
func (p *Profiler) Begin(name string) func() {
	started := time.Now()
	return func() {
		d := time.Since(started)
		p.mu.Lock()
		p.phases = append(p.phases, Phase{Name: name, Duration: d})
		p.mu.Unlock()
	}
}

// Phases returns the recorded phases in completion order.
//
// Returns:
//   - []Phase: a copy of the recorded phases
func (p *Profiler) Phases() []Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Phase, len(p.phases))
	copy(out, p.phases)
	return out
}

// Elapsed returns the time since the profiler was created.
func (p *Profiler) Elapsed() time.Duration {
	return time.Since(p.start)
}

// Report logs the total elapsed time and, when enabled, the phase breakdown and allocation statistics.
// The total is always logged at info level; the breakdown goes to debug level.
//
// Parameters:
//   - uri: the location of the compiled document
func (p *Profiler) Report(uri string) {
	elapsed := p.Elapsed()
	p.logger.Infof("GLTF-Plugin: Processed glTF in %.2f ms", float64(elapsed.Microseconds())/1000)
	if !p.enabled {
		return
	}

	for _, phase := range p.Phases() {
		p.logger.Debugw("[Profiler] phase", "uri", uri, "phase", phase.Name, "ms", float64(phase.Duration.Microseconds())/1000)
	}

	runtime.ReadMemStats(&p.memStats)
	// TotalAlloc grows forever, so the delta is what this compile allocated.
	allocMB := float64(p.memStats.TotalAlloc-p.startTotalAlloc) / 1024 / 1024
	heapMB := float64(p.memStats.Alloc) / 1024 / 1024
	gcCount := p.memStats.NumGC - p.startGCCount

	p.logger.Debugw("[Profiler] memory", "uri", uri, "allocatedMB", allocMB, "heapMB", heapMB, "gcCycles", gcCount)
}
