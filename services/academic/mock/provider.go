// Package mockacademic is the fixture-table academic provider used by tests
// and local development when no live LMS is wired.
package mockacademic

import (
	"context"
	"sync"

	"github.com/hapiedu/hapi/core/academic"
)

type provider struct {
	mu    sync.RWMutex
	table map[string]*academic.Snapshot // by "userID/classID"
}

var _ academic.Provider = (*provider)(nil)

func NewProvider() *provider {
	return &provider{table: make(map[string]*academic.Snapshot)}
}

func (p *provider) Snapshot(ctx context.Context, userID, classID string) (*academic.Snapshot, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if snap, ok := p.table[key(userID, classID)]; ok {
		cp := *snap
		if snap.PreviousGrade != nil {
			prev := *snap.PreviousGrade
			cp.PreviousGrade = &prev
		}
		return &cp, nil
	}
	return nil, nil
}

// SetSnapshot seeds the fixture table.
func (p *provider) SetSnapshot(snap academic.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.table[key(snap.UserID, snap.ClassID)] = &snap
}

func key(userID, classID string) string {
	return userID + "/" + classID
}
