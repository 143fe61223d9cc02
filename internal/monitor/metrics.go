package monitor

import (
	"sync/atomic"
	"time"
)

// Counter is a thread-safe counter metric
type Counter struct {
	value atomic.Int64
	name  string
}

// NewCounter creates a new counter metric
func NewCounter(name string) *Counter {
	return &Counter{name: name}
}

// Inc increments the counter by 1
func (c *Counter) Inc() {
	c.value.Add(1)
}

// Get returns the current counter value
func (c *Counter) Get() int64 {
	return c.value.Load()
}

// Name returns the counter name
func (c *Counter) Name() string {
	return c.name
}

const noMin = int64(^uint64(0) >> 1)

// Timer is a thread-safe timer for measuring request durations
type Timer struct {
	count     atomic.Int64
	totalTime atomic.Int64
	minTime   atomic.Int64
	maxTime   atomic.Int64
	name      string
}

// NewTimer creates a new timer metric
func NewTimer(name string) *Timer {
	t := &Timer{name: name}
	t.minTime.Store(noMin)
	return t
}

// Record records a duration measurement
func (t *Timer) Record(duration time.Duration) {
	nanos := duration.Nanoseconds()

	t.count.Add(1)
	t.totalTime.Add(nanos)

	for {
		current := t.minTime.Load()
		if nanos >= current || t.minTime.CompareAndSwap(current, nanos) {
			break
		}
	}
	for {
		current := t.maxTime.Load()
		if nanos <= current || t.maxTime.CompareAndSwap(current, nanos) {
			break
		}
	}
}

// Count returns the number of recorded measurements
func (t *Timer) Count() int64 {
	return t.count.Load()
}

// MinTime returns the minimum recorded time
func (t *Timer) MinTime() time.Duration {
	if v := t.minTime.Load(); v != noMin {
		return time.Duration(v)
	}
	return 0
}

// MaxTime returns the maximum recorded time
func (t *Timer) MaxTime() time.Duration {
	return time.Duration(t.maxTime.Load())
}

// AvgTime returns the average time of all measurements
func (t *Timer) AvgTime() time.Duration {
	count := t.count.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(t.totalTime.Load() / count)
}
