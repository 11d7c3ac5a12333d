package domain

import "errors"

var (
	// ErrAlreadyPaired is reported when the requester (or a pairing candidate)
	// already has an active session.
	ErrAlreadyPaired = errors.New("already in a session")
	// ErrAlreadyQueued is reported when the requester is already waiting.
	ErrAlreadyQueued = errors.New("already waiting for a partner")
	// ErrNotInSession is reported by leave when there is nothing to leave.
	ErrNotInSession = errors.New("not in a session or queue")

	// ErrDecode means a ciphertext failed its length, padding or MAC check.
	ErrDecode = errors.New("decode failed")
	// ErrInvalidUTF8 means the recovered bytes are not valid text.
	ErrInvalidUTF8 = errors.New("decoded message is not valid UTF-8")

	// ErrBrokenSymmetry signals a pair table whose back references disagree.
	ErrBrokenSymmetry = errors.New("pair table symmetry violated")
)
