package analysis

// Phase names the active RequestState variant
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseSucceeded
	PhaseFailed
)

// String returns the phase name
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhasePending:
		return "pending"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// RequestState is the lifecycle of one upload attempt. Exactly one of
// Idle, Pending, Succeeded or Failed is active.
type RequestState interface {
	Phase() Phase
	requestState()
}

// Idle means no request has been made, or the state was reset
type Idle struct{}

// Pending means a request is in flight
type Pending struct {
	// FileName of the upload being analyzed
	FileName string
	// RequestID correlates log lines of this attempt
	RequestID string
}

// Succeeded carries the analytics returned by the service
type Succeeded struct {
	Analytics     *Result
	TotalMessages int
	FileName      string
}

// Failed carries the message shown to the user
type Failed struct {
	Message  string
	Err      error
	FileName string
}

func (Idle) Phase() Phase      { return PhaseIdle }
func (Pending) Phase() Phase   { return PhasePending }
func (Succeeded) Phase() Phase { return PhaseSucceeded }
func (Failed) Phase() Phase    { return PhaseFailed }

func (Idle) requestState()      {}
func (Pending) requestState()   {}
func (Succeeded) requestState() {}
func (Failed) requestState()    {}

// IsPending reports whether the state is Pending
func IsPending(s RequestState) bool {
	return s != nil && s.Phase() == PhasePending
}
