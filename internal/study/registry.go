package study

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// StoreFactory creates the store for a new session.
type StoreFactory func(sessionID string) (*Store, error)

// Registry holds one Store per session id.
type Registry struct {
	mu      sync.Mutex
	stores  map[string]*Store
	factory StoreFactory
	logger  *slog.Logger
	now     func() time.Time
}

// NewRegistry creates an empty Registry that builds stores with factory.
func NewRegistry(factory StoreFactory, logger *slog.Logger) *Registry {
	if factory == nil {
		// ALLOW-PANIC: registry cannot create stores without a factory
		panic("store factory cannot be nil")
	}
	if logger == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("logger cannot be nil")
	}
	return &Registry{
		stores:  make(map[string]*Store),
		factory: factory,
		logger:  logger.With(slog.String("component", "study_registry")),
		now:     time.Now,
	}
}

// Get returns the store for sessionID if one exists.
func (r *Registry) Get(sessionID string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stores[sessionID]
	return s, ok
}

// GetOrCreate returns the store for sessionID, creating it on first use. An
// existing store is marked active so a concurrent Sweep keeps it.
func (r *Registry) GetOrCreate(sessionID string) (*Store, error) {
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[sessionID]; ok {
		s.touch()
		return s, nil
	}

	s, err := r.factory(sessionID)
	if err != nil {
		return nil, err
	}
	r.stores[sessionID] = s
	r.logger.Debug("created study store", slog.String("session_id", sessionID), slog.Int("store_count", len(r.stores)))
	return s, nil
}

// Remove drops the store for sessionID and abandons its in-flight request.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	s, ok := r.stores[sessionID]
	delete(r.stores, sessionID)
	r.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Len reports how many sessions are held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Sweep removes every store idle for longer than maxIdle and returns how
// many were removed.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var stale []*Store
	for id, s := range r.stores {
		if s.LastActive().Before(cutoff) {
			stale = append(stale, s)
			delete(r.stores, id)
		}
	}
	remaining := len(r.stores)
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	if len(stale) > 0 {
		r.logger.Info("swept idle study sessions",
			slog.Int("removed", len(stale)),
			slog.Int("remaining", remaining))
	}
	return len(stale)
}

// CloseAll removes every store and abandons their in-flight requests. It
// returns how many stores were removed.
func (r *Registry) CloseAll() int {
	r.mu.Lock()
	stores := r.stores
	r.stores = make(map[string]*Store)
	r.mu.Unlock()

	for _, s := range stores {
		s.Close()
	}
	return len(stores)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep(maxIdle)
		}
	}
}
