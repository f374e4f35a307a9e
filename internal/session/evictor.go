// evictor.go houses the eviction loop for Cache.  Every EvictInterval it
// scans the map and removes:
//
//   - sessions idle longer than idleTTL
//   - least-recently-used sessions when map size exceeds maxEntries
//
// Each eviction event is logged and updates Prometheus counters.
package session

import (
	"sort"
	"time"

	"github.com/yanizio/backoffice/internal/metrics"
)

func (c *Cache) evictLoop() {
	for {
		select {
		case <-c.done:
			return
		case <-c.evictTicker.C:
			c.evictPass(time.Now())
		}
	}
}

// evictPass runs one idle sweep followed by one LRU sweep.  Split out of
// evictLoop so tests can drive it without the ticker.
func (c *Cache) evictPass(now time.Time) {
	var count int

	// ----------------------------------------------------------------
	// Idle eviction pass
	// ----------------------------------------------------------------
	c.m.Range(func(key, value any) bool {
		count++
		sess := value.(*Session)
		idle := now.Sub(sess.LastSeen())
		if idle > c.idleTTL {
			c.m.Delete(key)
			count--
			c.log.Infow("session evicted", "id", key, "idle", idle.Truncate(time.Second))
			metrics.SessionEvictTotal.Inc()
			metrics.ActiveSessions.Dec()
		}
		return true
	})

	// ----------------------------------------------------------------
	// LRU eviction pass
	// ----------------------------------------------------------------
	if c.maxEntries > 0 && count > c.maxEntries {
		type kv struct {
			key string
			at  time.Time
		}
		var all []kv
		c.m.Range(func(key, value any) bool {
			sess := value.(*Session)
			all = append(all, kv{key: key.(string), at: sess.LastSeen()})
			return true
		})
		sort.Slice(all, func(i, j int) bool { return all[i].at.Before(all[j].at) })
		for i := 0; i < count-c.maxEntries; i++ {
			if _, ok := c.m.Load(all[i].key); ok {
				c.m.Delete(all[i].key)
				c.log.Infow("session evicted", "id", all[i].key, "reason", "lru pressure")
				metrics.SessionEvictTotal.Inc()
				metrics.ActiveSessions.Dec()
			}
		}
	}
}
