package analysis

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yildizm/ChatLens/internal/logger"
	"github.com/yildizm/ChatLens/internal/upload"
)

// Analyzer performs one upload against the service
type Analyzer interface {
	Analyze(ctx context.Context, candidate upload.Candidate) (*Report, error)
	BaseURL() string
}

// requestIDAnalyzer is implemented by analyzers that accept a caller-chosen request ID
type requestIDAnalyzer interface {
	analyze(ctx context.Context, candidate upload.Candidate, requestID string) (*Report, error)
}

// Observer is notified with a snapshot after every state transition.
// Observers run one at a time in transition order and must return promptly:
// Start, Reset and the end of a request wait for them, and so does Wait.
type Observer func(RequestState)

// Controller owns the request lifecycle of the upload workflow.
// At most one request is in flight at any time.
type Controller struct {
	analyzer Analyzer
	log      *logger.Logger

	// notifyMu orders a state change together with its notifications.
	// Observers must not block or call back into Start, Submit, Reset or Wait.
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     RequestState
	observers map[int]Observer
	nextID    int
	idle      chan struct{} // closed while no request is pending
}

// NewController creates a controller in the Idle state
func NewController(analyzer Analyzer, log *logger.Logger) *Controller {
	if log == nil {
		log = logger.Discard()
	}
	idle := make(chan struct{})
	close(idle)

	return &Controller{
		analyzer:  analyzer,
		log:       log.WithComponent("controller"),
		state:     Idle{},
		observers: make(map[int]Observer),
		idle:      idle,
	}
}

// State returns the current state snapshot
func (c *Controller) State() RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe registers an observer and returns a function removing it
func (c *Controller) Subscribe(observer Observer) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.nextID
	c.nextID++
	c.observers[id] = observer

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.observers, id)
	}
}

// Start moves to Pending and runs the request in the background.
// It returns ErrRequestInFlight if a request is already pending.
func (c *Controller) Start(ctx context.Context, candidate upload.Candidate) error {
	pending, err := c.begin(candidate)
	if err != nil {
		return err
	}

	go c.run(ctx, candidate, pending)
	return nil
}

// Submit moves to Pending, runs the request on the calling goroutine and
// returns the terminal state.
func (c *Controller) Submit(ctx context.Context, candidate upload.Candidate) (RequestState, error) {
	pending, err := c.begin(candidate)
	if err != nil {
		return c.State(), err
	}

	return c.run(ctx, candidate, pending), nil
}

// Reset returns a terminal state to Idle. It has no effect while pending.
func (c *Controller) Reset() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if IsPending(c.state) {
		c.mu.Unlock()
		return
	}
	c.state = Idle{}
	observers := c.snapshotObservers()
	c.mu.Unlock()

	notify(observers, Idle{})
}

// Wait blocks until no request is pending or ctx is done
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServiceURL returns the address requests are sent to
func (c *Controller) ServiceURL() string {
	return c.analyzer.BaseURL()
}

// begin claims the Pending state. The previous payload is discarded.
func (c *Controller) begin(candidate upload.Candidate) (Pending, error) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if IsPending(c.state) {
		c.mu.Unlock()
		c.log.WarnWithFields("upload rejected, request already in progress", []logger.Field{logger.File(candidate.Name)})
		return Pending{}, ErrRequestInFlight
	}

	pending := Pending{FileName: candidate.Name, RequestID: uuid.New().String()}
	c.state = pending
	c.idle = make(chan struct{})
	observers := c.snapshotObservers()
	c.mu.Unlock()

	c.log.InfoWithFields("uploading file", []logger.Field{
		logger.File(candidate.Name),
		logger.Size(candidate.SizeBytes),
		logger.RequestID(pending.RequestID),
	})
	notify(observers, pending)

	return pending, nil
}

// run performs the request and always resolves to a terminal state
func (c *Controller) run(ctx context.Context, candidate upload.Candidate, pending Pending) (final RequestState) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			err := NewInternalError(fmt.Errorf("analysis aborted: %v", r))
			final = Failed{Message: err.Message, Err: err, FileName: candidate.Name}
		}

		fields := []logger.Field{
			logger.File(candidate.Name),
			logger.RequestID(pending.RequestID),
			logger.F("state", final.Phase()),
			logger.Duration(time.Since(start)),
		}
		if failed, ok := final.(Failed); ok {
			fields = append(fields, logger.Error(failed.Err))
		}
		c.log.InfoWithFields("upload finished", fields)

		c.finish(final)
	}()

	var (
		report *Report
		err    error
	)
	if withID, ok := c.analyzer.(requestIDAnalyzer); ok {
		report, err = withID.analyze(ctx, candidate, pending.RequestID)
	} else {
		report, err = c.analyzer.Analyze(ctx, candidate)
	}

	if err != nil {
		return Failed{Message: UserMessage(err), Err: err, FileName: candidate.Name}
	}
	if report == nil || report.Analytics == nil {
		malformed := NewMalformedError(0, fmt.Errorf("empty report"))
		return Failed{Message: malformed.Message, Err: malformed, FileName: candidate.Name}
	}

	return Succeeded{Analytics: report.Analytics, TotalMessages: report.TotalMessages, FileName: candidate.Name}
}

// finish sets the terminal state, notifies observers and then releases waiters
func (c *Controller) finish(final RequestState) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	c.state = final
	idle := c.idle
	observers := c.snapshotObservers()
	c.mu.Unlock()

	defer close(idle)
	notify(observers, final)
}

// snapshotObservers must be called with c.mu held
func (c *Controller) snapshotObservers() []Observer {
	ids := make([]int, 0, len(c.observers))
	for id := range c.observers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	observers := make([]Observer, 0, len(ids))
	for _, id := range ids {
		observers = append(observers, c.observers[id])
	}
	return observers
}

func notify(observers []Observer, state RequestState) {
	for _, observer := range observers {
		observer(state)
	}
}
