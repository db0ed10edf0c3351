// Package session tracks in-flight calls. Each call is independent; the
// manager only owns the registry, capacity limit, and idle cleanup.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Config struct {
	RedisAddr     string        `envconfig:"REDIS_ADDR" split_words:"true"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD" split_words:"true"`
	MaxCalls      int           `envconfig:"MAX_CALLS" split_words:"true" default:"100"`
	IdleTimeout   time.Duration `envconfig:"IDLE_TIMEOUT" split_words:"true" default:"30m"`
}

// Call is one tracked call.
type Call struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	lastActivity time.Time
	terminate    func()
}

// Touch marks the call active now.
func (c *Call) Touch() {
	c.mu.Lock()
	c.lastActivity = time.Now()
	c.mu.Unlock()
}

func (c *Call) LastActivity() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastActivity
}

// OnTerminate registers the cleanup run when the manager ends the call.
func (c *Call) OnTerminate(fn func()) {
	c.mu.Lock()
	c.terminate = fn
	c.mu.Unlock()
}

func (c *Call) runTerminate() {
	c.mu.Lock()
	fn := c.terminate
	c.terminate = nil
	c.mu.Unlock()
	if fn != nil {
		fn()
	}
}

type Manager struct {
	mu    sync.RWMutex
	calls map[string]*Call

	redis       *redis.Client
	maxCalls    int
	idleTimeout time.Duration
}

// NewManager builds the call registry. Redis is optional activity tracking:
// when the address is unset or unreachable the manager runs memory-only.
func NewManager(cfg Config) *Manager {
	var client *redis.Client
	if cfg.RedisAddr != "" {
		client = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unreachable, tracking calls in memory only")
			client = nil
		}
	}

	maxCalls := cfg.MaxCalls
	if maxCalls <= 0 {
		maxCalls = 100
	}
	idleTimeout := cfg.IdleTimeout
	if idleTimeout <= 0 {
		idleTimeout = 30 * time.Minute
	}

	return &Manager{
		calls:       make(map[string]*Call),
		redis:       client,
		maxCalls:    maxCalls,
		idleTimeout: idleTimeout,
	}
}

// Begin registers a new call, enforcing the capacity limit.
func (m *Manager) Begin(ctx context.Context) (*Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.calls) >= m.maxCalls {
		return nil, ErrAtCapacity
	}

	now := time.Now()
	call := &Call{
		ID:           uuid.New().String(),
		CreatedAt:    now,
		lastActivity: now,
	}
	m.calls[call.ID] = call

	if m.redis != nil {
		m.redis.HSet(ctx, "call:"+call.ID, map[string]interface{}{
			"created_at": call.CreatedAt.Format(time.RFC3339),
			"status":     "active",
		})
		m.redis.SAdd(ctx, "active_calls", call.ID)
		m.redis.Expire(ctx, "call:"+call.ID, m.idleTimeout)
	}
	return call, nil
}

// End terminates and forgets a call. Ending an unknown ID is a no-op.
func (m *Manager) End(ctx context.Context, callID string) {
	m.mu.Lock()
	call, exists := m.calls[callID]
	delete(m.calls, callID)
	m.mu.Unlock()

	if !exists {
		return
	}
	call.runTerminate()

	if m.redis != nil {
		m.redis.Del(ctx, "call:"+callID)
		m.redis.SRem(ctx, "active_calls", callID)
	}
}

func (m *Manager) ActiveCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.calls)
}

// CleanupIdle ends calls whose last activity is older than the idle timeout.
func (m *Manager) CleanupIdle(ctx context.Context) {
	m.mu.RLock()
	var stale []string
	now := time.Now()
	for id, call := range m.calls {
		if now.Sub(call.LastActivity()) > m.idleTimeout {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		log.Info().Str("call_id", id).Msg("ending idle call")
		m.End(ctx, id)
	}
}

// StartCleanupRoutine runs CleanupIdle every minute until ctx is done.
func (m *Manager) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CleanupIdle(ctx)
		}
	}
}

// Shutdown ends every call and releases the redis client.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	calls := m.calls
	m.calls = make(map[string]*Call)
	m.mu.Unlock()

	for _, call := range calls {
		call.runTerminate()
	}
	if m.redis != nil {
		_ = m.redis.Close()
	}
}
