package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testConfig keeps hashing cheap in unit tests.
func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Params.MemoryKiB = 8 * 1024
	cfg.Params.Iterations = 1
	cfg.Params.Parallelism = 1
	return cfg
}

func TestHashAndVerify(t *testing.T) {
	cfg := testConfig()

	enc, err := cfg.Hash("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(enc, "$argon2id$v=19$"))

	ok, err := cfg.Verify(enc, "s3cret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cfg.Verify(enc, "wrong")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashSaltsDiffer(t *testing.T) {
	cfg := testConfig()

	a, err := cfg.Hash("same-password")
	require.NoError(t, err)
	b, err := cfg.Hash("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b, "salt must vary per hash")
}

func TestValidateLengthPolicy(t *testing.T) {
	cfg := testConfig()

	assert.ErrorIs(t, cfg.Validate(""), ErrPasswordTooShort)
	assert.NoError(t, cfg.Validate("x"))
	assert.ErrorIs(t, cfg.Validate(strings.Repeat("a", cfg.MaxLength+1)), ErrPasswordTooLong)
}

func TestVerifyMalformedHash(t *testing.T) {
	cfg := testConfig()

	for _, enc := range []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$AAAA$AAAA",
		"$argon2id$v=18$m=8192,t=1,p=1$AAAA$AAAA",
		"$argon2id$v=19$m=0,t=1,p=1$AAAA$AAAA",
	} {
		_, err := cfg.Verify(enc, "whatever")
		assert.ErrorIs(t, err, ErrInvalidHash, "hash %q", enc)
	}
}

func TestVerifyRejectsOversizedParams(t *testing.T) {
	cfg := testConfig()

	// A hash claiming far larger memory than configured must be refused.
	big := DefaultConfig()
	big.Params.MemoryKiB = cfg.Params.MemoryKiB * 4
	big.Params.Iterations = 1
	big.Params.Parallelism = 1
	enc, err := big.Hash("pw")
	require.NoError(t, err)

	_, err = cfg.Verify(enc, "pw")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("GATEHOUSE_PASSWORD_MIN_LEN", "8")
	t.Setenv("GATEHOUSE_ARGON2_ITERATIONS", "2")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.MinLength)
	assert.Equal(t, uint32(2), cfg.Params.Iterations)
}

func TestFromEnvInvalid(t *testing.T) {
	t.Setenv("GATEHOUSE_PASSWORD_MIN_LEN", "nope")

	_, err := FromEnv()
	assert.Error(t, err)
}
