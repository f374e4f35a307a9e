// internal/session/cache.go
//
// Lazy session cache with idle and LRU eviction.
//
// Context
// -------
// Sessions are created on first sight of an id, stored in a sync.Map,
// and dropped by a background evictor when idle longer than the TTL or
// when the map outgrows maxEntries.  Creation is deduplicated through
// singleflight so a burst of parallel requests for a brand-new id builds
// exactly one Session.
//
// Notes
// -----
//   - The cache never refuses an id; an evicted session is simply rebuilt
//     empty on the next request, at the cost of one collection reload.
//   - Oxford commas, two spaces after periods.
package session

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yanizio/backoffice/internal/entity"
	"github.com/yanizio/backoffice/internal/metrics"
)

// Static defaults.  Overridden from the config file in main.
const (
	IdleTTL       = 30 * time.Minute
	MaxEntries    = 100
	EvictInterval = 5 * time.Minute
)

// Cache lazily builds sessions, stores them in a sync.Map, and evicts
// them on idle TTL or LRU pressure.
type Cache struct {
	svc         entity.Service
	confirm     entity.Confirmer
	pageSize    int
	log         *zap.SugaredLogger
	sfg         singleflight.Group
	m           sync.Map
	evictTicker *time.Ticker
	done        chan struct{}
	stopOnce    sync.Once
	idleTTL     time.Duration
	maxEntries  int
}

// NewCache constructs a Cache and starts the background evictor.
func NewCache(svc entity.Service, confirm entity.Confirmer, pageSize int, idleTTL time.Duration, maxEntries int, log *zap.SugaredLogger) *Cache {
	if log == nil {
		log = zap.S()
	}
	c := &Cache{
		svc:        svc,
		confirm:    confirm,
		pageSize:   pageSize,
		log:        log,
		done:       make(chan struct{}),
		idleTTL:    idleTTL,
		maxEntries: maxEntries,
	}
	c.evictTicker = time.NewTicker(EvictInterval)
	go c.evictLoop()
	return c
}

// Get returns the Session for id, building it on demand.
func (c *Cache) Get(id string) (*Session, error) {
	if v, ok := c.m.Load(id); ok {
		sess := v.(*Session)
		sess.Touch()
		return sess, nil
	}

	v, err, _ := c.sfg.Do(id, func() (interface{}, error) {
		// Double-check after singleflight barrier.
		if v, ok := c.m.Load(id); ok {
			sess := v.(*Session)
			sess.Touch()
			return sess, nil
		}
		sess, err := New(id, c.svc, c.confirm, c.pageSize, c.log)
		if err != nil {
			return nil, err
		}
		c.m.Store(id, sess)
		metrics.ActiveSessions.Inc()
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Stop halts the background evictor and lets its goroutine exit.  Safe
// to call more than once.  Used by tests and shutdown.
func (c *Cache) Stop() {
	c.stopOnce.Do(func() {
		c.evictTicker.Stop()
		close(c.done)
	})
}

// Len reports how many sessions are currently cached.
func (c *Cache) Len() int {
	n := 0
	c.m.Range(func(_, _ any) bool { n++; return true })
	return n
}
