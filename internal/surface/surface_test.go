package surface

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/yildizm/ChatLens/internal/analysis"
	"github.com/yildizm/ChatLens/internal/upload"
)

// fakeStarter records started candidates and reports a configurable state
type fakeStarter struct {
	mu       sync.Mutex
	state    analysis.RequestState
	started  []string
	startErr error
}

func newFakeStarter() *fakeStarter {
	return &fakeStarter{state: analysis.Idle{}}
}

func (f *fakeStarter) Start(_ context.Context, c upload.Candidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.startErr != nil {
		return f.startErr
	}
	f.started = append(f.started, c.Name)
	return nil
}

func (f *fakeStarter) State() analysis.RequestState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeStarter) setState(s analysis.RequestState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = s
}

func (f *fakeStarter) startedNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.started...)
}

func txt(name string) upload.Candidate {
	return upload.NewCandidate(name, []byte("12/01/2024, 10:00 - Ana: hi"))
}

func TestSurface_DragState(t *testing.T) {
	s := New(newFakeStarter(), nil)

	steps := []struct {
		kind       EventKind
		wantActive bool
	}{
		{DragEnter, true},
		{DragOver, true},
		{DragLeave, false},
		{DragOver, true},
		{Drop, false},
	}

	for _, step := range steps {
		outcome, err := s.Handle(context.Background(), Event{Kind: step.kind})
		if err != nil {
			t.Fatalf("%s: unexpected error %v", step.kind, err)
		}
		if !outcome.Handled {
			t.Errorf("%s: expected event to be handled", step.kind)
		}
		if s.DragActive() != step.wantActive {
			t.Errorf("after %s: DragActive() = %v, want %v", step.kind, s.DragActive(), step.wantActive)
		}
	}
}

func TestSurface_DropAndSelectForwardValidFile(t *testing.T) {
	for _, kind := range []EventKind{Drop, Select} {
		t.Run(kind.String(), func(t *testing.T) {
			starter := newFakeStarter()
			s := New(starter, nil)

			outcome, err := s.Handle(context.Background(), Event{Kind: kind, Files: []upload.Candidate{txt("chat.txt")}})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !outcome.Started || outcome.FileName != "chat.txt" {
				t.Errorf("unexpected outcome: %+v", outcome)
			}
			if s.SelectedFileName() != "chat.txt" {
				t.Errorf("SelectedFileName() = %q", s.SelectedFileName())
			}
			if got := starter.startedNames(); len(got) != 1 || got[0] != "chat.txt" {
				t.Errorf("started = %v", got)
			}
		})
	}
}

func TestSurface_FirstFileWins(t *testing.T) {
	starter := newFakeStarter()
	s := New(starter, nil)

	files := []upload.Candidate{txt("first.txt"), txt("second.txt"), txt("third.txt")}
	if _, err := s.Handle(context.Background(), Event{Kind: Drop, Files: files}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := starter.startedNames()
	if len(got) != 1 || got[0] != "first.txt" {
		t.Errorf("started = %v, want [first.txt]", got)
	}
}

func TestSurface_InvalidFileKeepsPreviousSelection(t *testing.T) {
	starter := newFakeStarter()
	s := New(starter, nil)

	if _, err := s.Handle(context.Background(), Event{Kind: Select, Files: []upload.Candidate{txt("good.txt")}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	starter.setState(analysis.Failed{Message: "bad file"})

	tests := []struct {
		name    string
		file    upload.Candidate
		wantErr error
	}{
		{name: "wrong type", file: txt("photo.png"), wantErr: upload.ErrWrongFileType},
		{name: "too large", file: upload.Candidate{Name: "huge.txt", SizeBytes: upload.MaxSizeBytes + 1}, wantErr: upload.ErrFileTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome, err := s.Handle(context.Background(), Event{Kind: Drop, Files: []upload.Candidate{tt.file}})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if outcome.Started {
				t.Error("invalid file must not start a request")
			}
			if s.SelectedFileName() != "good.txt" {
				t.Errorf("SelectedFileName() = %q, want good.txt", s.SelectedFileName())
			}
		})
	}

	if got := starter.startedNames(); len(got) != 1 {
		t.Errorf("expected only the valid file to be started, got %v", got)
	}
	// Validation failures leave the request state alone
	if starter.State().Phase() != analysis.PhaseFailed {
		t.Errorf("state changed to %s", starter.State().Phase())
	}
}

func TestSurface_BusyWhilePending(t *testing.T) {
	starter := newFakeStarter()
	starter.setState(analysis.Pending{FileName: "first.txt"})
	s := New(starter, nil)

	if !s.Disabled() {
		t.Fatal("surface should be disabled while pending")
	}

	for _, kind := range []EventKind{Drop, Select} {
		// Even an invalid file reports busy: nothing is validated
		_, err := s.Handle(context.Background(), Event{Kind: kind, Files: []upload.Candidate{txt("photo.png")}})
		if !errors.Is(err, ErrBusy) {
			t.Errorf("%s: error = %v, want ErrBusy", kind, err)
		}
	}

	if len(starter.startedNames()) != 0 {
		t.Error("no request should be started while busy")
	}
	if s.SelectedFileName() != "" {
		t.Errorf("SelectedFileName() = %q, want empty", s.SelectedFileName())
	}

	// Drag highlighting still works while busy
	if _, err := s.Handle(context.Background(), Event{Kind: DragEnter}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.DragActive() {
		t.Error("drag should still be tracked while busy")
	}
}

func TestSurface_LostRaceReportsBusy(t *testing.T) {
	starter := newFakeStarter()
	starter.startErr = analysis.ErrRequestInFlight
	s := New(starter, nil)

	_, err := s.Handle(context.Background(), Event{Kind: Select, Files: []upload.Candidate{txt("chat.txt")}})
	if !errors.Is(err, ErrBusy) {
		t.Fatalf("error = %v, want ErrBusy", err)
	}
	if s.SelectedFileName() != "" {
		t.Errorf("SelectedFileName() = %q, want empty", s.SelectedFileName())
	}
}

func TestSurface_EmptyDrop(t *testing.T) {
	starter := newFakeStarter()
	s := New(starter, nil)

	outcome, err := s.Handle(context.Background(), Event{Kind: Drop})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !outcome.Handled || outcome.Started {
		t.Errorf("unexpected outcome: %+v", outcome)
	}
}

func TestSurface_UnknownEvent(t *testing.T) {
	s := New(newFakeStarter(), nil)
	if _, err := s.Handle(context.Background(), Event{Kind: EventKind(42)}); err == nil {
		t.Error("expected error for unknown event kind")
	}
}

func TestSurface_WithController(t *testing.T) {
	analyzer := &stubAnalyzer{release: make(chan struct{})}
	controller := analysis.NewController(analyzer, nil)
	s := New(controller, nil)

	if _, err := s.Handle(context.Background(), Event{Kind: Drop, Files: []upload.Candidate{txt("a.txt")}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Handle(context.Background(), Event{Kind: Drop, Files: []upload.Candidate{txt("b.txt")}}); !errors.Is(err, ErrBusy) {
		t.Fatalf("second drop error = %v, want ErrBusy", err)
	}

	close(analyzer.release)
	if err := controller.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.Disabled() {
		t.Error("surface should be enabled after the request finished")
	}
	if s.SelectedFileName() != "a.txt" {
		t.Errorf("SelectedFileName() = %q, want a.txt", s.SelectedFileName())
	}
}

type stubAnalyzer struct {
	release chan struct{}
}

func (a *stubAnalyzer) Analyze(ctx context.Context, _ upload.Candidate) (*analysis.Report, error) {
	<-a.release
	return &analysis.Report{Analytics: &analysis.Result{}}, nil
}

func (a *stubAnalyzer) BaseURL() string { return "http://localhost:8000" }
