// Package password wraps salted, adaptive one-way password hashing.
//
// The hash output is a self-describing PHC-style string
// ($argon2id$v=19$m=...,t=...,p=...$salt$key), so verification needs only
// the stored value. Verification delegates mismatch timing to the
// underlying primitive plus a constant-time compare; it is not
// reimplemented here.
package password
