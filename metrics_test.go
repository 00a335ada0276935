package dirt

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBasicMetricsCollector(t *testing.T) {
	b := &BasicMetricsCollector{}

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.RecordTarget(10, 1, 2*time.Millisecond, nil)
			b.RecordMemory(int64(i * 100))
		}()
	}
	wg.Wait()

	b.RecordTarget(0, 0, 2*time.Millisecond, errors.New("skipped"))
	b.RecordBlock(9, 80, 4*time.Millisecond)

	s := b.GetStats()
	assert.Equal(t, int64(9), s.TargetCount)
	assert.Equal(t, int64(1), s.TargetErrors)
	assert.Equal(t, int64(80), s.CandidateCount)
	assert.Equal(t, int64(8), s.DegenerateCount)
	assert.Equal(t, (2 * time.Millisecond).Nanoseconds(), s.TargetAvgNanos)
	assert.Equal(t, int64(1), s.BlockCount)
	assert.Equal(t, (4 * time.Millisecond).Nanoseconds(), s.BlockAvgNanos)
	assert.Equal(t, int64(700), s.MemoryPeak)
}

func TestEngineObserver(t *testing.T) {
	b := &BasicMetricsCollector{}
	o := engineObserver{c: b}

	o.OnTarget(time.Millisecond, 3, 1, nil)
	o.OnBlock(time.Millisecond, 1, 3, nil)
	o.OnMemory(42)
	assert.Equal(t, int64(3), b.GetStats().CandidateCount)
	assert.Equal(t, int64(42), b.GetStats().MemoryPeak)

	// Collectors without RecordMemory are fine.
	engineObserver{c: NoopMetricsCollector{}}.OnMemory(1)
}
