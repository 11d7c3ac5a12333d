// Package store holds pairchat's state.
//
// Sessions is the single shared, in-memory store of the relay server: the
// FIFO waiting queue and the pair table. It is process-lifetime only and is
// never written to disk. All access is serialized through one lock, and the
// pairing protocol runs as one Update transaction.
//
// KeyFileStore is client-side: it keeps the session keys handed out in
// sealed mode, encrypted under a passphrase in the client's home directory.
package store
