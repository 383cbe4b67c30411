package auth

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewUserID returns a new ULID string (26 chars).
// ULIDs are lexicographically sortable and work well in distributed systems.
func NewUserID(now time.Time) (string, error) {
	if now.IsZero() {
		now = time.Now().UTC()
	}

	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
