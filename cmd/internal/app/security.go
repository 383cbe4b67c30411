package app

import (
	"errors"

	"gatehouse/cmd/security/token"
)

// ValidateSecurityConfig enforces the token-hashing policy at startup.
//
// Fail-fast is intentional: silently falling back to weaker hashing in
// production is unacceptable. Enforcement goes through the same module
// that performs the hashing (security/token).
func ValidateSecurityConfig(cfg Config) error {
	if !cfg.RequireTokenHMAC {
		return nil
	}

	// Minimum 32 bytes for an HMAC-SHA256 secret, measured as raw bytes.
	if _, err := token.HMACKeyFromEnv(32); err != nil {
		switch {
		case errors.Is(err, token.ErrHMACKeyMissing):
			return errors.New("security policy: GATEHOUSE_REQUIRE_TOKEN_HMAC=true but GATEHOUSE_TOKEN_HMAC_KEY is missing")
		case errors.Is(err, token.ErrHMACKeyTooShort):
			return errors.New("security policy: GATEHOUSE_REQUIRE_TOKEN_HMAC=true but GATEHOUSE_TOKEN_HMAC_KEY is too short (min 32 bytes)")
		default:
			return err
		}
	}

	// Hard assertion that the digest path actually is in HMAC mode, so a
	// future SHA fallback cannot slip in under policy.
	if !token.HMACEnabled() {
		return errors.New("security policy: GATEHOUSE_REQUIRE_TOKEN_HMAC=true but token hasher is not in HMAC mode")
	}

	return nil
}
