package crypto

import (
	"runtime"

	"pairchat/internal/domain"
)

// Wipe zeroes b in place. It is best-effort: copies made elsewhere by the
// runtime are not reached.
//
//go:noinline
func Wipe(b []byte) {
	clear(b)
	runtime.KeepAlive(&b)
}

// WipeKey zeroes a local copy of a session key once it is no longer needed.
func WipeKey(k *domain.SessionKey) { Wipe(k[:]) }
