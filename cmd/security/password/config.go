package password

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
)

// Argon2idParams controls Argon2id hashing cost.
// MemoryKiB is in KiB as required by argon2.IDKey.
type Argon2idParams struct {
	MemoryKiB   uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// Config is the single configuration surface for this package.
type Config struct {
	Params Argon2idParams

	// Length policy. MinLength defaults to 1: any non-empty password is
	// accepted, matching the interactive-login contract; MaxLength bounds
	// hashing cost against pathological inputs.
	MinLength int
	MaxLength int
}

// DefaultConfig returns a baseline tuned for interactive login latency,
// not for bulk offline attack resistance beyond that.
func DefaultConfig() Config {
	// Clamp parallelism to [1..4] to keep resource usage predictable in containers.
	threads := runtime.NumCPU()
	if threads <= 0 {
		threads = 1
	}
	if threads > 4 {
		threads = 4
	}

	return Config{
		Params: Argon2idParams{
			MemoryKiB:   64 * 1024, // 64 MiB
			Iterations:  3,
			Parallelism: uint8(threads), // #nosec G115 -- clamped to [1..4] above; safe conversion.
			SaltLength:  16,
			KeyLength:   32,
		},
		MinLength: 1,
		MaxLength: 1024,
	}
}

// FromEnv loads config from environment variables, starting from DefaultConfig.
//
// Env surface:
// - GATEHOUSE_PASSWORD_MIN_LEN
// - GATEHOUSE_PASSWORD_MAX_LEN
// - GATEHOUSE_ARGON2_MEMORY_KIB
// - GATEHOUSE_ARGON2_ITERATIONS
// - GATEHOUSE_ARGON2_PARALLELISM
func FromEnv() (Config, error) {
	cfg := DefaultConfig()

	if v, ok := os.LookupEnv("GATEHOUSE_PASSWORD_MIN_LEN"); ok {
		n, err := atoiRange(v, 1, 1024)
		if err != nil {
			return Config{}, fmt.Errorf("GATEHOUSE_PASSWORD_MIN_LEN: %w", err)
		}
		cfg.MinLength = n
	}

	if v, ok := os.LookupEnv("GATEHOUSE_PASSWORD_MAX_LEN"); ok {
		n, err := atoiRange(v, 1, 4096)
		if err != nil {
			return Config{}, fmt.Errorf("GATEHOUSE_PASSWORD_MAX_LEN: %w", err)
		}
		cfg.MaxLength = n
	}

	if v, ok := os.LookupEnv("GATEHOUSE_ARGON2_MEMORY_KIB"); ok {
		u, err := atou32Range(v, 8*1024, 1024*1024) // 8 MiB .. 1 GiB
		if err != nil {
			return Config{}, fmt.Errorf("GATEHOUSE_ARGON2_MEMORY_KIB: %w", err)
		}
		cfg.Params.MemoryKiB = u
	}

	if v, ok := os.LookupEnv("GATEHOUSE_ARGON2_ITERATIONS"); ok {
		u, err := atou32Range(v, 1, 20)
		if err != nil {
			return Config{}, fmt.Errorf("GATEHOUSE_ARGON2_ITERATIONS: %w", err)
		}
		cfg.Params.Iterations = u
	}

	if v, ok := os.LookupEnv("GATEHOUSE_ARGON2_PARALLELISM"); ok {
		u, err := atou32Range(v, 1, 64)
		if err != nil {
			return Config{}, fmt.Errorf("GATEHOUSE_ARGON2_PARALLELISM: %w", err)
		}
		if u > 255 {
			return Config{}, fmt.Errorf("GATEHOUSE_ARGON2_PARALLELISM: out of range")
		}
		cfg.Params.Parallelism = uint8(u)
	}

	if cfg.MinLength > cfg.MaxLength {
		return Config{}, fmt.Errorf(
			"password policy invalid: min_len(%d) > max_len(%d)",
			cfg.MinLength,
			cfg.MaxLength,
		)
	}

	return cfg, nil
}

func atoiRange(s string, minVal, maxVal int) (int, error) {
	i64, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an integer")
	}
	i := int(i64)
	if i < minVal || i > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return i, nil
}

func atou32Range(s string, minVal, maxVal uint32) (uint32, error) {
	u64, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("not an unsigned integer")
	}
	u := uint32(u64)
	if u < minVal || u > maxVal {
		return 0, fmt.Errorf("out of range [%d..%d]", minVal, maxVal)
	}
	return u, nil
}
