package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/intake/internal/logging"
	"github.com/aretw0/intake/pkg/ports"
	"github.com/aretw0/intake/pkg/workflow"
)

// DefaultLockTTL bounds how long a crashed replica can hold a session.
const DefaultLockTTL = 30 * time.Second

// DefaultIdleTTL is how long an unused controller stays cached.
const DefaultIdleTTL = 30 * time.Minute

// ErrMissingSessionID is returned when a controller is requested without an ID.
var ErrMissingSessionID = errors.New("session id is required")

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// cachedController is a bootstrapped controller and its last access time.
type cachedController struct {
	ctrl     *workflow.Controller
	lastUsed time.Time
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	engine   ports.WorkflowEngine
	ctrlOpts []workflow.Option

	mu          sync.Mutex            // Global lock for both maps
	locks       map[string]*lockEntry // Map of active locks
	controllers map[string]*cachedController

	idleTTL   time.Duration // Zero disables eviction
	lastSweep time.Time
	now       func() time.Time

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithIdleTTL sets how long an unused controller stays cached. Evicted sessions
// are bootstrapped from the engine again on their next access. Zero keeps
// controllers until Forget.
func WithIdleTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.idleTTL = ttl
	}
}

// WithClock replaces the time source used for idle eviction.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithControllerOptions are applied to every controller the manager creates.
func WithControllerOptions(opts ...workflow.Option) Option {
	return func(m *Manager) {
		m.ctrlOpts = append(m.ctrlOpts, opts...)
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a manager whose controllers talk to engine.
func NewManager(engine ports.WorkflowEngine, opts ...Option) *Manager {
	m := &Manager{
		engine:      engine,
		locks:       make(map[string]*lockEntry),
		controllers: make(map[string]*cachedController),
		idleTTL:     DefaultIdleTTL,
		now:         time.Now,
		lockTTL:     DefaultLockTTL,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Controller returns the controller for sessionID, creating and bootstrapping it
// on first use. Concurrent callers for the same ID share one bootstrap.
func (m *Manager) Controller(ctx context.Context, sessionID string) (*workflow.Controller, error) {
	if sessionID == "" {
		return nil, ErrMissingSessionID
	}
	if c := m.cached(sessionID); c != nil {
		return c, nil
	}

	var ctrl *workflow.Controller
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if c := m.cached(sessionID); c != nil {
			ctrl = c
			return nil
		}

		opts := append([]workflow.Option{workflow.WithLogger(m.logger)}, m.ctrlOpts...)
		c := workflow.NewController(m.engine, sessionID, opts...)
		res, err := c.Bootstrap(ctx)
		if err != nil {
			return fmt.Errorf("failed to bootstrap session %s: %w", sessionID, err)
		}
		m.logger.Debug("Session bootstrapped", "session_id", sessionID, "state", res.State, "resumed", res.Resumed)

		m.mu.Lock()
		m.controllers[sessionID] = &cachedController{ctrl: c, lastUsed: m.now()}
		m.mu.Unlock()
		ctrl = c
		return nil
	})
	return ctrl, err
}

func (m *Manager) cached(sessionID string) *workflow.Controller {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.sweepLocked(now)
	entry, ok := m.controllers[sessionID]
	if !ok {
		return nil
	}
	entry.lastUsed = now
	return entry.ctrl
}

// sweepLocked evicts idle controllers, at most once per idle TTL. Busy
// controllers are kept. It must be called with m.mu held.
func (m *Manager) sweepLocked(now time.Time) {
	if m.idleTTL <= 0 || now.Sub(m.lastSweep) < m.idleTTL {
		return
	}
	m.lastSweep = now
	for id, entry := range m.controllers {
		if now.Sub(entry.lastUsed) >= m.idleTTL && !entry.ctrl.Busy() {
			delete(m.controllers, id)
			m.logger.Debug("Evicted idle session", "session_id", id)
		}
	}
}

// Forget drops the cached controller; the next access bootstraps again.
func (m *Manager) Forget(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.controllers, sessionID)
}

// Len returns the number of cached controllers.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.controllers)
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// A cancelled request context must not keep the lock until the TTL.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
