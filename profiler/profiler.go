// Package profiler - Per-stage timing statistics for the detection pipeline.
package profiler

import (
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// TimeTracker tracks operation timing statistics.
type TimeTracker struct {
	mu        sync.Mutex
	name      string
	totalTime time.Duration
	minTime   time.Duration
	maxTime   time.Duration
	count     int64
}

// Stats is a snapshot of a TimeTracker.
type Stats struct {
	Name  string        `json:"name"`
	Count int64         `json:"count"`
	Total time.Duration `json:"total"`
	Min   time.Duration `json:"min"`
	Max   time.Duration `json:"max"`
	Avg   time.Duration `json:"avg"`
}

// FPS returns the throughput implied by the average duration.
func (s Stats) FPS() float64 {
	if s.Avg <= 0 {
		return 0
	}
	return float64(time.Second) / float64(s.Avg)
}

// NewTimeTracker creates an empty tracker.
func NewTimeTracker(name string) *TimeTracker {
	return &TimeTracker{name: name}
}

// Record adds one duration sample.
func (t *TimeTracker) Record(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.count == 0 || d < t.minTime {
		t.minTime = d
	}
	if d > t.maxTime {
		t.maxTime = d
	}
	t.totalTime += d
	t.count++
}

// Since records the time elapsed since start.
//
// @example
//
//	defer tracker.Since(time.Now())
func (t *TimeTracker) Since(start time.Time) {
	t.Record(time.Since(start))
}

// Stats returns a snapshot of the collected samples.
func (t *TimeTracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Stats{
		Name:  t.name,
		Count: t.count,
		Total: t.totalTime,
		Min:   t.minTime,
		Max:   t.maxTime,
	}
	if t.count > 0 {
		s.Avg = t.totalTime / time.Duration(t.count)
	}
	return s
}

// Profiler is a named set of TimeTrackers.
type Profiler struct {
	mu       sync.RWMutex
	trackers map[string]*TimeTracker
}

// New creates an empty profiler.
func New() *Profiler {
	return &Profiler{trackers: make(map[string]*TimeTracker)}
}

// Tracker returns the tracker for name, creating it on first use.
func (p *Profiler) Tracker(name string) *TimeTracker {
	p.mu.RLock()
	t, ok := p.trackers[name]
	p.mu.RUnlock()
	if ok {
		return t
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.trackers[name]; ok {
		return t
	}
	t = NewTimeTracker(name)
	p.trackers[name] = t
	return t
}

// Snapshot returns the stats of every tracker sorted by name.
func (p *Profiler) Snapshot() []Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Stats, 0, len(p.trackers))
	for _, t := range p.trackers {
		out = append(out, t.Stats())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Report logs one line per tracker at info level.
func (p *Profiler) Report(log logrus.FieldLogger) {
	for _, s := range p.Snapshot() {
		log.WithFields(logrus.Fields{
			"stage": s.Name,
			"count": s.Count,
			"avg":   s.Avg,
			"min":   s.Min,
			"max":   s.Max,
			"fps":   s.FPS(),
		}).Info("timing")
	}
}
