// Package commands defines the pairchat CLI.
//
// Commands
//
//   - serve   Run the relay server
//   - start   Show the welcome message
//   - join    Look for a chat partner
//   - leave   End the chat or leave the queue
//   - say     Send a message to your partner
//   - recv    Print and acknowledge queued messages
//   - stats   Print queue length and active pairs
//
// # Implementation
//
// The root command builds an HTTP client for --server and a key store under
// --home before any subcommand runs. Client commands act as the user named by
// --id. In sealed mode recv remembers the session key from the pairing notice
// so later messages can be opened locally.
package commands
