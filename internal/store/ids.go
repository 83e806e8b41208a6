package store

import (
	"math/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// NewID generates a ULID for use as a record primary key. ULIDs sort by
// creation time, which keeps listing queries cheap without a created_at index.
func NewID() string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
	return ulid.MustNew(ulid.Now(), entropy).String()
}
