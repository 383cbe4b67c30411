// Package auth is the session-authentication core: credential
// verification, session minting, token-to-identity resolution, and
// session lifecycle (create, expire, revoke).
//
// The package owns the invariants of the system: session tokens never
// collide and are never reused, a revoked token stops authorizing
// immediately, and an unknown username is indistinguishable from a wrong
// password. Persistence is reached only through the CredentialStore and
// SessionStore interfaces so the core can run against Postgres or the
// in-memory store interchangeably.
package auth
