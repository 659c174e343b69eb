// Package session owns the in-memory Identity for the lifetime of the
// process and keeps it in lockstep with the local cache. All writes go
// through the sync orchestrator; screens only ever read snapshots.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/coffyapp/coffy-client/internal/client/models"
	"github.com/coffyapp/coffy-client/internal/client/repositories/cache"
	"github.com/coffyapp/coffy-client/internal/common"
	"github.com/coffyapp/coffy-client/internal/logging"
)

// State is the authentication state machine over Identity.
type State int

const (
	// StateUnauthenticated is the initial state and the state after sign-out.
	StateUnauthenticated State = iota
	// StateRestoring is transient while a persisted identity is being loaded
	// on startup. The UI shows a neutral loading state here, never a login
	// prompt: a slow restore is still an authenticated session.
	StateRestoring
	// StateAuthenticated has an Identity resident; NeedsProfileSetup on the
	// identity distinguishes onboarding-incomplete from ready.
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	}
	return "unauthenticated"
}

type Store struct {
	mu       sync.Mutex
	state    State
	identity *models.Identity

	repo cache.Repository
	log  logging.Logger
}

func NewStore(repo cache.Repository, log logging.Logger) *Store {
	return &Store{state: StateUnauthenticated, repo: repo, log: log}
}

// Restore loads a persisted Identity from the cache on startup. A cache miss
// lands in Unauthenticated. A corrupted record is dropped and also lands in
// Unauthenticated: the user logs in again rather than the app crashing into
// a half-state.
func (s *Store) Restore(ctx context.Context) (State, error) {
	s.mu.Lock()
	s.state = StateRestoring
	s.mu.Unlock()

	data, err := s.repo.Get(ctx, cache.KeyUser)
	if err != nil {
		s.setUnauthenticated()
		return StateUnauthenticated, fmt.Errorf("restore identity: %w", err)
	}
	if data == nil {
		s.setUnauthenticated()
		return StateUnauthenticated, nil
	}

	var id models.Identity
	if err := json.Unmarshal(data, &id); err != nil || id.ID == "" {
		s.log.Warn(ctx, "dropping unreadable identity record")
		_ = s.repo.Delete(ctx, cache.KeyUser)
		s.setUnauthenticated()
		return StateUnauthenticated, nil
	}

	s.mu.Lock()
	s.identity = &id
	s.state = StateAuthenticated
	s.mu.Unlock()
	s.log.Info(ctx, "session restored", "user_id", id.ID, "needs_setup", id.NeedsProfileSetup)
	return StateAuthenticated, nil
}

// Login persists the identity to the cache before exposing it in memory. A
// crash between the two steps simply re-restores on next launch.
func (s *Store) Login(ctx context.Context, id models.Identity) error {
	data, err := json.Marshal(id)
	if err != nil {
		return fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.repo.Set(ctx, cache.KeyUser, data); err != nil {
		return fmt.Errorf("%w: persist identity: %v", common.ErrCacheUnavailable, err)
	}

	s.mu.Lock()
	s.identity = &id
	s.state = StateAuthenticated
	s.mu.Unlock()
	s.log.Info(ctx, "logged in", "user_id", id.ID, "needs_setup", id.NeedsProfileSetup)
	return nil
}

// Update applies fn to a copy of the current identity, persists the result,
// then swaps it in. The lock is held across the persist so two overlapping
// reconciliations cannot interleave their writes.
func (s *Store) Update(ctx context.Context, fn func(*models.Identity)) (models.Identity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.identity == nil {
		return models.Identity{}, common.ErrNotAuthenticated
	}

	next := *s.identity
	fn(&next)

	data, err := json.Marshal(next)
	if err != nil {
		return models.Identity{}, fmt.Errorf("marshal identity: %w", err)
	}
	if err := s.repo.Set(ctx, cache.KeyUser, data); err != nil {
		return models.Identity{}, fmt.Errorf("%w: persist identity: %v", common.ErrCacheUnavailable, err)
	}

	s.identity = &next
	return next, nil
}

// SignOut clears the in-memory identity immediately so the UI reacts, then
// clears every session key with the identity key last (see cache.SignOutKeys).
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	s.identity = nil
	s.state = StateUnauthenticated
	s.mu.Unlock()

	if err := s.repo.Clear(ctx, cache.SignOutKeys()...); err != nil {
		return fmt.Errorf("clear session keys: %w", err)
	}
	s.log.Info(ctx, "signed out")
	return nil
}

// Snapshot returns a copy of the current identity. The second return is
// false when no identity is resident.
func (s *Store) Snapshot() (models.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.identity == nil {
		return models.Identity{}, false
	}
	return *s.identity, true
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) setUnauthenticated() {
	s.mu.Lock()
	s.identity = nil
	s.state = StateUnauthenticated
	s.mu.Unlock()
}
