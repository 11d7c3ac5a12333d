// Package client is an HTTP client for the pairchat server.
//
// It covers the whole user-facing API: opening the chat, joining the queue,
// leaving, sending text, and fetching and acknowledging queued messages.
// Every call takes a context for cancellation and deadlines. Non-2xx
// statuses are returned as errors naming the method, path and status, plus
// the server's error message when it sent one.
package client
