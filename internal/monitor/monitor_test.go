package monitor

import (
	"sync"
	"testing"
	"time"

	"github.com/yildizm/ChatLens/internal/analysis"
)

func TestCounter(t *testing.T) {
	c := NewCounter("uploads")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Inc()
		}()
	}
	wg.Wait()

	if c.Get() != 50 {
		t.Errorf("Get() = %d, want 50", c.Get())
	}
	if c.Name() != "uploads" {
		t.Errorf("Name() = %q", c.Name())
	}
}

func TestTimer(t *testing.T) {
	timer := NewTimer("latency")
	if timer.MinTime() != 0 || timer.AvgTime() != 0 {
		t.Error("empty timer should report zero")
	}

	timer.Record(100 * time.Millisecond)
	timer.Record(300 * time.Millisecond)

	if timer.Count() != 2 {
		t.Errorf("Count() = %d", timer.Count())
	}
	if timer.MinTime() != 100*time.Millisecond {
		t.Errorf("MinTime() = %v", timer.MinTime())
	}
	if timer.MaxTime() != 300*time.Millisecond {
		t.Errorf("MaxTime() = %v", timer.MaxTime())
	}
	if timer.AvgTime() != 200*time.Millisecond {
		t.Errorf("AvgTime() = %v", timer.AvgTime())
	}
}

func TestSessionStats(t *testing.T) {
	stats := NewSessionStats()
	if got := stats.Summary(); got != "no chat files analyzed" {
		t.Errorf("empty Summary() = %q", got)
	}

	clock := time.Date(2024, 3, 7, 12, 0, 0, 0, time.UTC)
	stats.now = func() time.Time { return clock }

	stats.Observe(analysis.Pending{FileName: "a.txt"})
	clock = clock.Add(2 * time.Second)
	stats.Observe(analysis.Succeeded{FileName: "a.txt", TotalMessages: 120})

	stats.Observe(analysis.Pending{FileName: "b.txt"})
	clock = clock.Add(1 * time.Second)
	stats.Observe(analysis.Failed{FileName: "b.txt", Message: "boom"})

	// Reset notifications carry no timing
	stats.Observe(analysis.Idle{})

	want := "2 uploaded, 1 analyzed, 1 failed, avg 1.5s (min 1s, max 2s), 120 messages"
	if got := stats.Summary(); got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
}

func TestSessionStats_TerminalWithoutPending(t *testing.T) {
	stats := NewSessionStats()
	stats.Observe(analysis.Failed{Message: "late"})

	if stats.Latency.Count() != 0 {
		t.Error("a terminal state without a pending one must not be timed")
	}
	if stats.Failed.Get() != 1 {
		t.Errorf("Failed = %d", stats.Failed.Get())
	}
}
