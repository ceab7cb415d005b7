package pulse

import (
	"context"
	"time"
)

// Repository reads recorded pulse checks.
type Repository interface {
	// QueryChecksSince returns a student's checks recorded at or after `since`,
	// ordered most-recent-first.
	QueryChecksSince(ctx context.Context, userID string, since time.Time) ([]Check, error)
	// GetLatestCheck returns a student's most recent check, or ErrNoChecks.
	GetLatestCheck(ctx context.Context, userID string) (Check, error)
}
