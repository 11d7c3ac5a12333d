// Package relay forwards a session participant's text to their partner.
//
// In parity mode the body is encrypted under the pair key with the key-derived
// IV and immediately decrypted again on the server; the recovered plaintext
// is what the partner receives, with decode failures replaced by a fixed
// placeholder. In sealed mode the body is sealed with a random IV and the
// envelope is forwarded untouched for the recipient to open.
package relay
