// Package authapi is the HTTP surface of the session authenticator.
//
// It speaks the envelope protocol {success, message, data?} on every
// response and delivers session tokens two ways at once: a SESSION_TOKEN
// HttpOnly cookie for browsers and data.token in the body for clients
// that replay it as a bearer token. AttachSession resolves the presented
// token on every inbound request and leaves the request anonymous on a
// miss; handlers decide whether anonymity is acceptable.
package authapi
