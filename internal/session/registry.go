// Package session keeps one forecast orchestrator per HTTP client so concurrent clients
// never see each other's pipelines.
package session

import (
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Leeky19/meteo/internal/orchestrator"
)

// Factory builds the orchestrator of a new session.
type Factory func() *orchestrator.Orchestrator

type entry struct {
	orch     *orchestrator.Orchestrator
	lastSeen time.Time
}

type Registry struct {
	factory       Factory
	ttl           time.Duration
	sweepInterval time.Duration
	now           func() time.Time
	logger        *zap.Logger

	mu       sync.Mutex
	sessions map[string]*entry
	onSweep  []func()

	scheduler *gocron.Scheduler
}

func NewRegistry(factory Factory, ttl, sweepInterval time.Duration, logger *zap.Logger) *Registry {
	return &Registry{
		factory:       factory,
		ttl:           ttl,
		sweepInterval: sweepInterval,
		now:           time.Now,
		logger:        logger,
		sessions:      make(map[string]*entry),
		scheduler:     gocron.NewScheduler(time.UTC),
	}
}

// NewID issues a session id.
func NewID() string {
	return uuid.NewString()
}

// Get returns the orchestrator of session id, creating it on first use.
func (r *Registry) Get(id string) *orchestrator.Orchestrator {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok {
		e = &entry{orch: r.factory()}
		r.sessions[id] = e
		r.logger.Debug("Session created", zap.String("session_id", id))
	}
	e.lastSeen = r.now()
	return e.orch
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// OnSweep adds a task run after every sweep.
func (r *Registry) OnSweep(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSweep = append(r.onSweep, fn)
}

// Sweep drops sessions idle for longer than the TTL and returns how many were removed.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	cutoff := r.now().Add(-r.ttl)
	removed := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	hooks := append([]func(){}, r.onSweep...)
	remaining := len(r.sessions)
	r.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}

	if removed > 0 {
		r.logger.Info("Expired sessions removed",
			zap.Int("removed", removed),
			zap.Int("active", remaining))
	}
	return removed
}

// Start schedules the periodic sweep.
func (r *Registry) Start() error {
	_, err := r.scheduler.Every(r.sweepInterval).Do(func() {
		r.Sweep()
	})
	if err != nil {
		return err
	}

	r.scheduler.StartAsync()
	r.logger.Info("Session sweeper started",
		zap.Duration("interval", r.sweepInterval),
		zap.Duration("ttl", r.ttl))
	return nil
}

func (r *Registry) Stop() {
	if r.scheduler != nil {
		r.scheduler.Stop()
	}
}
