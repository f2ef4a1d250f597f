package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Options configures a Manager.
type Options struct {
	// DeployDelay is the duration of a simulated deployment.
	DeployDelay time.Duration
	Logger      *zap.Logger
}

// Manager creates and looks up sessions. Sessions live in memory only.
type Manager struct {
	gen  Generator
	opts Options

	mu       sync.RWMutex
	sessions map[string]*Controller
}

// NewManager creates a Manager whose sessions use gen.
func NewManager(gen Generator, opts Options) *Manager {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Manager{
		gen:      gen,
		opts:     opts,
		sessions: make(map[string]*Controller),
	}
}

// Create starts a new session on the landing screen.
func (m *Manager) Create() *Controller {
	c := newController(uuid.New().String(), m.gen, m.opts.DeployDelay, m.opts.Logger)

	m.mu.Lock()
	m.sessions[c.ID()] = c
	m.mu.Unlock()

	m.opts.Logger.Debug("session created", zap.String("session_id", c.ID()))
	return c
}

// Get returns the session with id.
func (m *Manager) Get(id string) (*Controller, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return c, nil
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Prune drops sessions that have not changed for longer than maxIdle and
// are not generating. It returns the number removed.
func (m *Manager) Prune(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, c := range m.sessions {
		if c.idleSince().After(cutoff) {
			continue
		}
		if snap := c.Snapshot(); snap.Screen == ScreenGenerating || len(snap.InFlight) > 0 {
			continue
		}
		delete(m.sessions, id)
		removed++
	}
	if removed > 0 {
		m.opts.Logger.Info("pruned idle sessions", zap.Int("removed", removed))
	}
	return removed
}
