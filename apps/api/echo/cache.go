package echoapi

import (
	"github.com/coocood/freecache"
	json "github.com/goccy/go-json"

	"github.com/hapiedu/hapi/core/risk"
)

const (
	rosterCacheSize = 4 * 1024 * 1024 // 4MB
	rosterCacheTTL  = 300             // seconds
)

// rosterCache keeps the last successfully built roster per teacher/class so
// that a slow or failing build can still serve yesterday's picture.
type rosterCache struct {
	cache *freecache.Cache
}

func newRosterCache() *rosterCache {
	return &rosterCache{cache: freecache.NewCache(rosterCacheSize)}
}

func (rc *rosterCache) key(teacherID, classID string) []byte {
	return []byte("roster:" + teacherID + ":" + classID)
}

func (rc *rosterCache) Set(teacherID, classID string, roster []risk.AtRiskStudent) {
	buf, err := json.Marshal(roster)
	if err != nil {
		return
	}
	_ = rc.cache.Set(rc.key(teacherID, classID), buf, rosterCacheTTL)
}

func (rc *rosterCache) Get(teacherID, classID string) ([]risk.AtRiskStudent, bool) {
	buf, err := rc.cache.Get(rc.key(teacherID, classID))
	if err != nil {
		return nil, false
	}
	var roster []risk.AtRiskStudent
	if err := json.Unmarshal(buf, &roster); err != nil {
		return nil, false
	}
	return roster, true
}
