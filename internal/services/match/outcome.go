package match

import "pairchat/internal/domain"

// Outcome is what a join or leave request did for the requester.
type Outcome int

const (
	Queued Outcome = iota + 1
	Paired
	AlreadyPaired
	AlreadyQueued
	Ended
	Dequeued
	NotInSession
)

var outcomeNames = map[Outcome]string{
	Queued:        "queued",
	Paired:        "paired",
	AlreadyPaired: "already_paired",
	AlreadyQueued: "already_queued",
	Ended:         "ended",
	Dequeued:      "dequeued",
	NotInSession:  "not_in_session",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// Err maps the user-state outcomes to their sentinel errors and returns nil
// for outcomes that changed state.
func (o Outcome) Err() error {
	switch o {
	case AlreadyPaired:
		return domain.ErrAlreadyPaired
	case AlreadyQueued:
		return domain.ErrAlreadyQueued
	case NotInSession:
		return domain.ErrNotInSession
	}
	return nil
}

// Result carries the outcome and the notices produced by one request.
type Result struct {
	Outcome  Outcome
	Outbound []domain.Outbound
}

func result(o Outcome, msgs ...domain.Outbound) Result {
	return Result{Outcome: o, Outbound: msgs}
}
