package monitor

import (
	"fmt"
	"sync"
	"time"

	"github.com/yildizm/ChatLens/internal/analysis"
)

// SessionStats counts the uploads of one session. Register Observe with
// the controller's Subscribe.
type SessionStats struct {
	Started   *Counter
	Succeeded *Counter
	Failed    *Counter
	Latency   *Timer

	now func() time.Time

	mu        sync.Mutex
	startedAt time.Time
	messages  int64
}

// NewSessionStats creates empty session statistics
func NewSessionStats() *SessionStats {
	return &SessionStats{
		Started:   NewCounter("uploads_started"),
		Succeeded: NewCounter("uploads_succeeded"),
		Failed:    NewCounter("uploads_failed"),
		Latency:   NewTimer("upload_latency"),
		now:       time.Now,
	}
}

// Observe records one controller state transition
func (s *SessionStats) Observe(state analysis.RequestState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch state := state.(type) {
	case analysis.Pending:
		s.Started.Inc()
		s.startedAt = s.now()
	case analysis.Succeeded:
		s.Succeeded.Inc()
		s.messages += int64(state.TotalMessages)
		s.recordLatency()
	case analysis.Failed:
		s.Failed.Inc()
		s.recordLatency()
	}
}

// recordLatency closes the timing opened by the last Pending
func (s *SessionStats) recordLatency() {
	if s.startedAt.IsZero() {
		return
	}
	s.Latency.Record(s.now().Sub(s.startedAt))
	s.startedAt = time.Time{}
}

// Messages returns the total messages parsed across successful uploads
func (s *SessionStats) Messages() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.messages
}

// Summary is a one-line description of the session
func (s *SessionStats) Summary() string {
	started := s.Started.Get()
	if started == 0 {
		return "no chat files analyzed"
	}

	summary := fmt.Sprintf("%d uploaded, %d analyzed, %d failed", started, s.Succeeded.Get(), s.Failed.Get())
	if s.Latency.Count() > 0 {
		summary += fmt.Sprintf(", avg %s (min %s, max %s)",
			s.Latency.AvgTime().Round(time.Millisecond),
			s.Latency.MinTime().Round(time.Millisecond),
			s.Latency.MaxTime().Round(time.Millisecond))
	}
	if messages := s.Messages(); messages > 0 {
		summary += fmt.Sprintf(", %d messages", messages)
	}
	return summary
}
