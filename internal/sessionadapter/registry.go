package sessionadapter

import (
	"context"
	"time"

	"github.com/jellydator/ttlcache/v3"

	"github.com/MarcoTuMD/Template-Admin/internal/metrics"
	"github.com/MarcoTuMD/Template-Admin/internal/state"
)

// Registry holds one state.Host per browser client. A host unused for
// the idle TTL is dropped; the next request for that client starts
// again from loading.
type Registry struct {
	cache *ttlcache.Cache[string, *state.Host]
}

func NewRegistry(idle time.Duration) *Registry {
	cache := ttlcache.New[string, *state.Host](
		ttlcache.WithTTL[string, *state.Host](idle),
	)

	cache.OnInsertion(func(context.Context, *ttlcache.Item[string, *state.Host]) {
		metrics.CachedHosts.Inc()
	})
	cache.OnEviction(func(context.Context, ttlcache.EvictionReason, *ttlcache.Item[string, *state.Host]) {
		metrics.CachedHosts.Dec()
	})

	return &Registry{cache: cache}
}

// Host returns the client's host, creating it on first use. Every call
// counts as activity.
func (r *Registry) Host(clientID string) *state.Host {
	if item := r.cache.Get(clientID); item != nil {
		return item.Value()
	}
	item, _ := r.cache.GetOrSet(clientID, state.NewHost())
	return item.Value()
}

// Touch keeps a client's host alive, e.g. while a stream is open.
func (r *Registry) Touch(clientID string) {
	r.cache.Touch(clientID)
}

func (r *Registry) Len() int {
	return r.cache.Len()
}

// Start runs expiry until Stop is called. It blocks.
func (r *Registry) Start() {
	r.cache.Start()
}

func (r *Registry) Stop() {
	r.cache.Stop()
}
