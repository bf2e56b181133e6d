package checkout

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/azizikri/yeoubi-storefront/internal/cart"
)

// Registry keeps one Flow per cart session.
type Registry struct {
	sessions *cart.Sessions
	deps     Deps
	opts     Options

	mu    sync.Mutex
	flows map[string]*Flow
}

func NewRegistry(sessions *cart.Sessions, deps Deps, opts Options) *Registry {
	return &Registry{
		sessions: sessions,
		deps:     deps,
		opts:     opts,
		flows:    make(map[string]*Flow),
	}
}

func (r *Registry) Get(ctx context.Context, sessionID string) (*Flow, error) {
	store, err := r.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.flows[sessionID]; ok {
		if f.cart == store {
			return f, nil
		}
		// The cart was evicted and reloaded; a flow bound to the old store
		// would read stale items.
		f.Cancel()
	}
	f := NewFlow(sessionID, store, r.deps, r.opts)
	r.flows[sessionID] = f
	return f, nil
}

// Sweep evicts sessions idle for longer than idle together with their
// flows. Sessions mid-submission or inside a payment window are kept.
func (r *Registry) Sweep(idle time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := r.sessions.Sweep(idle, func(sessionID string) bool {
		f, ok := r.flows[sessionID]
		return ok && f.busy()
	})
	for _, id := range evicted {
		if f, ok := r.flows[id]; ok {
			f.Cancel()
			delete(r.flows, id)
		}
	}
	return len(evicted)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.flows)
}

// RunJanitor sweeps idle sessions every interval until ctx is done.
func (r *Registry) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				log.Printf("evicted %d idle cart sessions", n)
			}
		}
	}
}
