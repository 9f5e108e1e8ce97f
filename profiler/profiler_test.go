package profiler

import (
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeTracker(t *testing.T) {
	tr := NewTimeTracker("inference")

	assert.Equal(t, Stats{Name: "inference"}, tr.Stats())
	assert.Equal(t, float64(0), tr.Stats().FPS())

	tr.Record(30 * time.Millisecond)
	tr.Record(10 * time.Millisecond)
	tr.Record(20 * time.Millisecond)

	s := tr.Stats()
	assert.Equal(t, int64(3), s.Count)
	assert.Equal(t, 10*time.Millisecond, s.Min)
	assert.Equal(t, 30*time.Millisecond, s.Max)
	assert.Equal(t, 20*time.Millisecond, s.Avg)
	assert.Equal(t, 60*time.Millisecond, s.Total)
	assert.InDelta(t, 50, s.FPS(), 1e-9)
}

func TestProfiler_Concurrent(t *testing.T) {
	p := New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Tracker("postprocess").Record(time.Millisecond)
		}()
	}
	wg.Wait()

	snap := p.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, int64(16), snap[0].Count)
}

func TestProfiler_Report(t *testing.T) {
	p := New()
	p.Tracker("b").Record(time.Millisecond)
	p.Tracker("a").Record(2 * time.Millisecond)

	log, hook := test.NewNullLogger()
	p.Report(log)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "a", entries[0].Data["stage"])
	assert.Equal(t, "b", entries[1].Data["stage"])
}
