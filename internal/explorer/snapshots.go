package explorer

import (
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/regview/internal/log"
	"github.com/zjrosen/regview/internal/registry"
)

// DefaultSnapshotTTL bounds how long a resolved object stays restorable.
const DefaultSnapshotTTL = 30 * time.Minute

// Snapshots keeps the object detail each history entry resolved to, so
// back and forward can restore it without a request. Forward navigation
// never reads from it.
type Snapshots struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewSnapshots creates a store whose entries expire after ttl. A
// non-positive ttl uses DefaultSnapshotTTL.
func NewSnapshots(ttl time.Duration) *Snapshots {
	if ttl <= 0 {
		ttl = DefaultSnapshotTTL
	}
	return &Snapshots{cache: gocache.New(ttl, 2*ttl), ttl: ttl}
}

func (s *Snapshots) Put(entry uuid.UUID, detail *registry.ObjectDetail) {
	s.cache.Set(entry.String(), detail, s.ttl)
	log.Debug(log.CatCache, "snapshot stored", "entry", entry, "target", detail.Target().Path())
}

func (s *Snapshots) Get(entry uuid.UUID) (*registry.ObjectDetail, bool) {
	v, found := s.cache.Get(entry.String())
	if !found {
		return nil, false
	}
	detail, ok := v.(*registry.ObjectDetail)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting snapshot", "entry", entry)
		return nil, false
	}
	log.Debug(log.CatCache, "snapshot hit", "entry", entry)
	return detail, true
}

func (s *Snapshots) Len() int {
	return s.cache.ItemCount()
}

func (s *Snapshots) Flush() {
	s.cache.Flush()
}
