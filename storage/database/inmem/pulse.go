package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/hapiedu/hapi/core/pulse"
)

type pulseRepository struct {
	checks *checkTable
}

var _ pulse.Repository = (*pulseRepository)(nil) // interface compliance check

func NewPulseRepository(db *DB) *pulseRepository {
	return &pulseRepository{checks: db.checks}
}

func (repo *pulseRepository) QueryChecksSince(ctx context.Context, userID string, since time.Time) ([]pulse.Check, error) {
	repo.checks.RLock()
	defer repo.checks.RUnlock()

	out := make([]pulse.Check, 0)
	for _, c := range repo.checks.table[userID] {
		if !c.CheckedAt.Before(since) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (repo *pulseRepository) GetLatestCheck(ctx context.Context, userID string) (pulse.Check, error) {
	repo.checks.RLock()
	defer repo.checks.RUnlock()

	checks := repo.checks.table[userID]
	if len(checks) == 0 {
		return pulse.Check{}, pulse.ErrNoChecks
	}
	return checks[0], nil
}

// AddCheck records a check, keeping the student's history most-recent-first.
func (repo *pulseRepository) AddCheck(c pulse.Check) pulse.Check {
	repo.checks.Lock()
	defer repo.checks.Unlock()

	checks := append(repo.checks.table[c.UserID], c)
	sort.SliceStable(checks, func(i, j int) bool { return checks[i].CheckedAt.After(checks[j].CheckedAt) })
	repo.checks.table[c.UserID] = checks
	return c
}
