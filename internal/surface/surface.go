package surface

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/yildizm/ChatLens/internal/analysis"
	"github.com/yildizm/ChatLens/internal/logger"
	"github.com/yildizm/ChatLens/internal/upload"
)

// ErrBusy is returned for a drop or selection while a request is pending
var ErrBusy = errors.New("upload surface is disabled while a file is being analyzed")

// EventKind identifies an input event delivered to the surface
type EventKind int

const (
	DragEnter EventKind = iota
	DragOver
	DragLeave
	Drop
	Select
)

// String returns the event name
func (k EventKind) String() string {
	switch k {
	case DragEnter:
		return "drag-enter"
	case DragOver:
		return "drag-over"
	case DragLeave:
		return "drag-leave"
	case Drop:
		return "drop"
	case Select:
		return "select"
	default:
		return fmt.Sprintf("event(%d)", int(k))
	}
}

// Event is one input event. Files is only meaningful for Drop and Select.
type Event struct {
	Kind  EventKind
	Files []upload.Candidate
}

// Outcome reports what the surface did with an event
type Outcome struct {
	// Handled is true when the event was consumed and must not reach
	// any other input, such as a text field
	Handled bool

	// Started is true when a candidate was forwarded to the controller
	Started bool

	// FileName is the accepted file, if any
	FileName string
}

// Starter begins an analysis request
type Starter interface {
	Start(ctx context.Context, candidate upload.Candidate) error
	State() analysis.RequestState
}

type handlerFunc func(s *Surface, ctx context.Context, ev Event) (Outcome, error)

// handlers is the event table
var handlers = map[EventKind]handlerFunc{
	DragEnter: (*Surface).handleDrag,
	DragOver:  (*Surface).handleDrag,
	DragLeave: (*Surface).handleDrag,
	Drop:      (*Surface).handleFiles,
	Select:    (*Surface).handleFiles,
}

// Surface is the upload input area: it tracks drag highlighting and the
// selected file name, validates incoming files and forwards them.
type Surface struct {
	starter Starter
	log     *logger.Logger

	mu           sync.Mutex
	dragActive   bool
	selectedName string
}

// New creates a surface forwarding accepted files to starter
func New(starter Starter, log *logger.Logger) *Surface {
	if log == nil {
		log = logger.Discard()
	}
	return &Surface{starter: starter, log: log.WithComponent("surface")}
}

// Handle dispatches one event
func (s *Surface) Handle(ctx context.Context, ev Event) (Outcome, error) {
	handler, ok := handlers[ev.Kind]
	if !ok {
		return Outcome{}, fmt.Errorf("unsupported event kind %s", ev.Kind)
	}
	return handler(s, ctx, ev)
}

// DragActive reports whether a drag is hovering over the surface
func (s *Surface) DragActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dragActive
}

// SelectedFileName returns the last accepted file name, or "" if none
func (s *Surface) SelectedFileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedName
}

// Disabled reports whether the surface currently rejects files
func (s *Surface) Disabled() bool {
	return analysis.IsPending(s.starter.State())
}

func (s *Surface) handleDrag(_ context.Context, ev Event) (Outcome, error) {
	s.mu.Lock()
	s.dragActive = ev.Kind != DragLeave
	s.mu.Unlock()

	return Outcome{Handled: true}, nil
}

// handleFiles serves both Drop and Select: the first file is validated
// and, if valid, forwarded to the controller
func (s *Surface) handleFiles(ctx context.Context, ev Event) (Outcome, error) {
	outcome := Outcome{Handled: true}

	if ev.Kind == Drop {
		s.mu.Lock()
		s.dragActive = false
		s.mu.Unlock()
	}

	if len(ev.Files) == 0 {
		return outcome, nil
	}
	if s.Disabled() {
		return outcome, ErrBusy
	}

	candidate := ev.Files[0]
	if len(ev.Files) > 1 {
		s.log.DebugWithFields("ignoring extra files", []logger.Field{
			logger.File(candidate.Name),
			logger.F("ignored", len(ev.Files)-1),
		})
	}

	if err := upload.Validate(candidate); err != nil {
		s.log.DebugWithFields("file rejected", []logger.Field{logger.File(candidate.Name), logger.Error(err)})
		return outcome, err
	}

	if err := s.starter.Start(ctx, candidate); err != nil {
		if errors.Is(err, analysis.ErrRequestInFlight) {
			return outcome, ErrBusy
		}
		return outcome, err
	}

	s.mu.Lock()
	s.selectedName = candidate.Name
	s.mu.Unlock()

	outcome.Started = true
	outcome.FileName = candidate.Name
	return outcome, nil
}
