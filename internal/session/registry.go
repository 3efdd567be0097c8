// Package session keeps the live games of a server process. Games are held
// in memory only and disappear after sitting idle for the configured TTL.
package session

import (
	"errors"
	"fmt"
	"hash/maphash"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/mines"
)

var ErrNotFound = errors.New("session not found")

// Session owns one game. Grid and visibility are always replaced together.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	game     *mines.GameState
	clock    func() time.Time
	lastSeen atomic.Int64 // unix nanos
}

// Do runs fn with exclusive access to the session's game. Every call counts
// as activity and postpones eviction.
func (s *Session) Do(fn func(game *mines.GameState) error) error {
	s.touch(s.clock())
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.game)
}

// View snapshots the game for rendering.
func (s *Session) View() mines.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.View()
}

func (s *Session) touch(now time.Time) {
	s.lastSeen.Store(now.UnixNano())
}

func (s *Session) idleSince() time.Time {
	return time.Unix(0, s.lastSeen.Load())
}

type Options struct {
	Table mines.DifficultyTable
	// Rand seeds mine placement; a randomly seeded PCG when nil.
	Rand *rand.Rand
	// TTL evicts sessions idle for longer. Zero keeps them forever.
	TTL           time.Duration
	SweepInterval time.Duration
	Logger        *logrus.Logger
}

type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	genMu sync.Mutex // guards gen, whose rand is not concurrency safe
	gen   mines.Generator

	ttl time.Duration
	now func() time.Time
	log *logrus.Logger

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func createRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

func NewRegistry(opts Options) *Registry {
	r := opts.Rand
	if r == nil {
		r = createRand()
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	reg := &Registry{
		sessions: make(map[string]*Session),
		gen:      mines.Generator{Table: opts.Table, Shuffle: mines.ShuffleWith(r)},
		ttl:      opts.TTL,
		now:      time.Now,
		log:      log,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	if reg.ttl > 0 {
		interval := opts.SweepInterval
		if interval <= 0 {
			interval = reg.ttl / 2
		}
		go reg.sweepLoop(interval)
	} else {
		close(reg.done)
	}

	return reg
}

func (r *Registry) newGame(params mines.GameParams) (*mines.GameState, error) {
	r.genMu.Lock()
	defer r.genMu.Unlock()
	return mines.NewGameFrom(r.gen, params)
}

// Create generates a game for params and registers it under a fresh id.
func (r *Registry) Create(params mines.GameParams) (*Session, error) {
	game, err := r.newGame(params)
	if err != nil {
		return nil, err
	}

	now := r.now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		game:      game,
		clock:     func() time.Time { return r.now() },
	}
	s.touch(now)

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()

	r.log.WithFields(logrus.Fields{
		"session": s.ID,
		"seed":    params.Seed(),
		"mines":   game.Grid().MineCount(),
	}).Debug("created game")

	return s, nil
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.touch(r.now())
	return s, nil
}

// Restart discards the session's game and deals a new one with the same
// parameters.
func (r *Registry) Restart(id string) (*Session, error) {
	s, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	game, err := r.newGame(s.game.Params)
	if err != nil {
		return nil, err
	}
	s.game = game

	r.log.WithField("session", id).Debug("restarted game")
	return s, nil
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Close stops the sweeper. The registry stays usable.
func (r *Registry) Close() {
	r.closeOnce.Do(func() {
		close(r.stop)
	})
	<-r.done
}

func (r *Registry) sweepLoop(interval time.Duration) {
	defer close(r.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return
		case <-ticker.C:
			if n := r.sweep(r.now()); n > 0 {
				r.log.WithField("evicted", n).Info("evicted idle games")
			}
		}
	}
}

// sweep removes sessions idle for longer than the TTL and returns how many.
func (r *Registry) sweep(now time.Time) int {
	cutoff := now.Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, s := range r.sessions {
		if s.idleSince().Before(cutoff) {
			delete(r.sessions, id)
			evicted++
		}
	}
	return evicted
}
