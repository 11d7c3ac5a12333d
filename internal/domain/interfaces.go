package domain

import "context"

// Sender is the outbound half of the external transport.
type Sender interface {
	Send(ctx context.Context, msg Outbound) error
}

// KeyStore keeps a client's session key between CLI invocations.
type KeyStore interface {
	SaveKey(id Identity, key SessionKey) error
	LoadKey(id Identity) (SessionKey, bool, error)
	DeleteKey(id Identity) error
}
