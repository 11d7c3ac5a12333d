// Package match runs the join and leave protocols on the session store.
//
// Join enqueues the requester and, in the same transaction, pairs the two
// longest-waiting identities under a fresh random key. Leave ends the
// requester's session (notifying the partner) or drops them from the queue.
// Both return the notices to deliver; delivery is the caller's job and
// happens after the store lock has been released.
package match
