package fpttts

import "time"

// PollState is the lifecycle of one synthesis handle.
type PollState string

const (
	StateSubmitted PollState = "submitted"
	StatePolling   PollState = "polling"
	StateReady     PollState = "ready"
	StateExhausted PollState = "exhausted"
)

// Transition is reported to an Observer each time the poll state changes or
// an attempt completes.
type Transition struct {
	State   PollState
	Attempt int
	Max     int
	Status  int
	Err     error
}

// Observer receives poll transitions; it must not block.
type Observer func(Transition)

// poller tracks attempts against one download link. It is not safe for
// concurrent use.
type poller struct {
	link        string
	maxAttempts int
	interval    time.Duration
	attempt     int
	state       PollState
}

func newPoller(link string, maxAttempts int, interval time.Duration) *poller {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &poller{link: link, maxAttempts: maxAttempts, interval: interval, state: StateSubmitted}
}

// begin moves to Polling and counts the next attempt. It returns false once
// the budget is spent.
func (p *poller) begin() bool {
	if p.state == StateReady || p.state == StateExhausted {
		return false
	}
	if p.attempt >= p.maxAttempts {
		p.state = StateExhausted
		return false
	}
	p.attempt++
	p.state = StatePolling
	return true
}

func (p *poller) ready() {
	p.state = StateReady
}

// failed records an unsuccessful attempt and reports whether polling is over.
func (p *poller) failed() bool {
	if p.attempt >= p.maxAttempts {
		p.state = StateExhausted
		return true
	}
	return false
}
