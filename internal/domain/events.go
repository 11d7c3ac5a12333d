package domain

// Event is an inbound action delivered by the transport on behalf of a user.
type Event interface {
	Sender() Identity
}

// JoinRequest asks to be matched with a partner.
type JoinRequest struct {
	From Identity
}

// LeaveRequest ends the caller's session or removes them from the queue.
type LeaveRequest struct {
	From Identity
}

// TextMessage is a chat line to relay to the caller's partner.
type TextMessage struct {
	From Identity
	Body string
}

func (e JoinRequest) Sender() Identity  { return e.From }
func (e LeaveRequest) Sender() Identity { return e.From }
func (e TextMessage) Sender() Identity  { return e.From }

// OutboundKind distinguishes service notices from relayed partner text.
type OutboundKind string

const (
	KindNotice OutboundKind = "notice"
	KindText   OutboundKind = "text"
)

// Outbound is a message the transport must deliver to To.
//
// Sealed is set when Body carries a sealed envelope rather than plaintext.
// Key is only populated on the pairing notice in sealed mode so that each
// endpoint can open what its partner sends.
type Outbound struct {
	To     Identity     `json:"to"`
	Kind   OutboundKind `json:"kind"`
	Body   string       `json:"body"`
	Sealed bool         `json:"sealed,omitempty"`
	Key    string       `json:"key,omitempty"`
}

// Notice builds a service notice addressed to id.
func Notice(id Identity, body string) Outbound {
	return Outbound{To: id, Kind: KindNotice, Body: body}
}
