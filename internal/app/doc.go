// Package app wires the relay server together.
//
// Config and Load read runtime options from the environment (optionally via
// a .env file). NewWire builds the session store, the match and relay
// services, the mailbox transport and the HTTP router. App dispatches each
// inbound event to the right service and delivers the resulting messages
// once the store transaction has finished.
package app
