// internal/store/memory.go
//
// In-memory implementation of the player Store.
// Holds one *Player (and its game session) per browser.
//
// Characteristics:
//   - Players keyed by ID in a map guarded by an RWMutex.
//   - Each Player serializes access to its own session via Do.
//   - State is lost when the process restarts; idle players are swept.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robalobadob/memory-cards/apps/go-server/internal/game"
)

// ErrNotFound is returned by Get for unknown player IDs.
var ErrNotFound = errors.New("player not found")

// Store defines the persistence interface for player sessions.
type Store interface {
	// Save adds or replaces a player.
	Save(ctx context.Context, p *Player) error

	// Get retrieves a player by ID or returns ErrNotFound.
	Get(ctx context.Context, id string) (*Player, error)

	// Sweep drops players idle for longer than idleFor and reports how many.
	Sweep(ctx context.Context, idleFor time.Duration) int
}

// Player owns one game session. The session is only touched inside Do.
type Player struct {
	ID string

	mu       sync.Mutex
	session  *game.Session
	lastSeen time.Time
}

// NewPlayer wraps a session for the given ID.
func NewPlayer(id string, s *game.Session) *Player {
	return &Player{ID: id, session: s, lastSeen: time.Now()}
}

// Do runs fn with exclusive access to the player's session.
func (p *Player) Do(fn func(s *game.Session)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastSeen = time.Now()
	fn(p.session)
}

func (p *Player) idleSince() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu      sync.RWMutex
	players map[string]*Player
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{players: make(map[string]*Player)}
}

func (m *memory) Save(ctx context.Context, p *Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.players[p.ID] = p
	return nil
}

func (m *memory) Get(ctx context.Context, id string) (*Player, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if p, ok := m.players[id]; ok {
		return p, nil
	}
	return nil, ErrNotFound
}

func (m *memory) Sweep(ctx context.Context, idleFor time.Duration) int {
	cutoff := time.Now().Add(-idleFor)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, p := range m.players {
		if p.idleSince().Before(cutoff) {
			delete(m.players, id)
			n++
		}
	}
	return n
}
