// Package token generates opaque session tokens and the digests used to
// store them server-side.
//
// Tokens carry 256 bits of entropy from crypto/rand and are hex-encoded,
// which keeps them safe in cookies and URLs. The database never sees the
// plain token: rows are keyed by SHA-256 (or HMAC-SHA256 when a key is
// configured), so a leaked sessions table cannot be replayed.
package token
