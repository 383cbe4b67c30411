package token

import "errors"

// Public, stable errors for callers.
var (
	ErrHMACKeyMissing  = errors.New("token hmac key missing")
	ErrHMACKeyTooShort = errors.New("token hmac key too short")
)
