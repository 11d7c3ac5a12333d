// Package crypto implements the per-pair message codec.
//
// Contents
//
//   - AES-256-CBC with PKCS#7 padding under an IV taken from the key's first
//     16 bytes (Encrypt, Decrypt, DecodeText, RoundTrip)
//   - Sealed envelopes with a random IV per message and encrypt-then-MAC
//     using HKDF-derived subkeys (Seal, Open)
//   - Placeholder texts substituted for undecodable messages (Placeholder)
//   - Best-effort memory wiping for derived keys (Wipe)
//   - Short key fingerprints for logs (Fingerprint)
//
// # Notes
//
// The key-derived IV repeats for every message under a key, so equal
// plaintexts give equal ciphertexts. Sealed mode does not have this problem.
//
// Decoding never panics: short, misaligned or tampered input returns
// domain.ErrDecode and non-UTF-8 plaintext returns domain.ErrInvalidUTF8.
package crypto
