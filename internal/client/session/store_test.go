package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coffyapp/coffy-client/internal/client/models"
	"github.com/coffyapp/coffy-client/internal/client/repositories/cache"
	"github.com/coffyapp/coffy-client/internal/common"
	"github.com/coffyapp/coffy-client/internal/logging"
)

// memRepo is an in-memory cache.Repository that records the order of
// operations and can fail on demand.
type memRepo struct {
	mu     sync.Mutex
	data   map[string][]byte
	ops    []string
	GetErr error
	SetErr error
	ClrErr error
}

func newMemRepo() *memRepo {
	return &memRepo{data: map[string][]byte{}}
}

func (m *memRepo) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, "get:"+key)
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.data[key], nil
}

func (m *memRepo) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, "set:"+key)
	if m.SetErr != nil {
		return m.SetErr
	}
	m.data[key] = value
	return nil
}

func (m *memRepo) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, "delete:"+key)
	delete(m.data, key)
	return nil
}

func (m *memRepo) List(ctx context.Context) (map[string][]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string][]byte, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out, nil
}

func (m *memRepo) Clear(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClrErr != nil {
		return m.ClrErr
	}
	for _, key := range keys {
		m.ops = append(m.ops, "clear:"+key)
		delete(m.data, key)
	}
	return nil
}

func newStore(repo cache.Repository) *Store {
	return NewStore(repo, logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestRestore_NoStoredIdentity(t *testing.T) {
	store := newStore(newMemRepo())

	state, err := store.Restore(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateUnauthenticated, state)
	require.Equal(t, StateUnauthenticated, store.State())

	_, ok := store.Snapshot()
	require.False(t, ok)
}

func TestRestore_StoredIdentity(t *testing.T) {
	repo := newMemRepo()
	id := models.Identity{ID: "u1", Email: "a@b.c", NeedsProfileSetup: false, ContactsLoaded: true}
	data, _ := json.Marshal(id)
	repo.data[cache.KeyUser] = data

	store := newStore(repo)
	state, err := store.Restore(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateAuthenticated, state)

	got, ok := store.Snapshot()
	require.True(t, ok)
	require.Equal(t, id, got)
}

func TestRestore_CorruptedRecordDropsToUnauthenticated(t *testing.T) {
	repo := newMemRepo()
	repo.data[cache.KeyUser] = []byte(`{"id": `)

	store := newStore(repo)
	state, err := store.Restore(context.Background())
	require.NoError(t, err)
	require.Equal(t, StateUnauthenticated, state)
	require.Nil(t, repo.data[cache.KeyUser], "corrupted record must be dropped")
}

func TestLogin_PersistsBeforeMemory(t *testing.T) {
	repo := newMemRepo()
	repo.SetErr = errors.New("disk full")
	store := newStore(repo)

	err := store.Login(context.Background(), models.Identity{ID: "u1"})
	require.Error(t, err)
	require.True(t, errors.Is(err, common.ErrCacheUnavailable))

	// persist failed, so memory must not claim an authenticated session
	_, ok := store.Snapshot()
	require.False(t, ok)
	require.Equal(t, StateUnauthenticated, store.State())
}

func TestLogin_Succeeds(t *testing.T) {
	repo := newMemRepo()
	store := newStore(repo)

	require.NoError(t, store.Login(context.Background(), models.Identity{ID: "u1", NeedsProfileSetup: true}))
	require.Equal(t, StateAuthenticated, store.State())
	require.NotNil(t, repo.data[cache.KeyUser])

	got, ok := store.Snapshot()
	require.True(t, ok)
	require.True(t, got.NeedsProfileSetup)
}

func TestUpdate_MergesAndRepersists(t *testing.T) {
	repo := newMemRepo()
	store := newStore(repo)
	require.NoError(t, store.Login(context.Background(), models.Identity{ID: "u1", NeedsProfileSetup: true}))

	got, err := store.Update(context.Background(), func(id *models.Identity) {
		id.Name = "Ann"
		id.NeedsProfileSetup = false
	})
	require.NoError(t, err)
	require.Equal(t, "Ann", got.Name)
	require.False(t, got.NeedsProfileSetup)

	var persisted models.Identity
	require.NoError(t, json.Unmarshal(repo.data[cache.KeyUser], &persisted))
	require.Equal(t, got, persisted)
}

func TestUpdate_WithoutIdentity(t *testing.T) {
	store := newStore(newMemRepo())
	_, err := store.Update(context.Background(), func(*models.Identity) {})
	require.True(t, errors.Is(err, common.ErrNotAuthenticated))
}

func TestSignOut_ClearsEverythingIdentityLast(t *testing.T) {
	repo := newMemRepo()
	store := newStore(repo)
	require.NoError(t, store.Login(context.Background(), models.Identity{ID: "u1"}))
	for _, key := range cache.SignOutKeys() {
		require.NoError(t, repo.Set(context.Background(), key, []byte("v")))
	}
	repo.ops = nil

	require.NoError(t, store.SignOut(context.Background()))

	require.Equal(t, StateUnauthenticated, store.State())
	all, _ := repo.List(context.Background())
	require.Empty(t, all)

	// the identity key is the final delete, so a crash mid-clear can only
	// be observed as authenticated-with-missing-profile
	require.Equal(t, "clear:"+cache.KeyUser, repo.ops[len(repo.ops)-1])
}

func TestSignOut_MemoryClearedEvenIfCacheFails(t *testing.T) {
	repo := newMemRepo()
	store := newStore(repo)
	require.NoError(t, store.Login(context.Background(), models.Identity{ID: "u1"}))
	repo.ClrErr = errors.New("backend gone")

	err := store.SignOut(context.Background())
	require.Error(t, err)
	_, ok := store.Snapshot()
	require.False(t, ok, "UI must see the sign-out immediately")
}
