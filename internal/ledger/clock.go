package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Clock supplies the current time. The ledger only uses its calendar date.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ReferenceGenerator produces unique payment references.
// Implemented by UUIDv7Generator (production) and
// testutil.SequenceGenerator (tests).
type ReferenceGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 payment references.
//
// UUIDv7 embeds a timestamp in the most significant bits, so references sort
// by the time the payment was recorded.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}
