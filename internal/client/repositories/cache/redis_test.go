package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *RedisRepository {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisRepository(rdb)
}

func TestNewRepository_SelectsBackendByScheme(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	repo, err := NewRepository(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	require.IsType(t, &RedisRepository{}, repo)
	require.NoError(t, repo.Set(ctx, KeyUser, []byte("v")))

	repo, err = NewRepository(ctx, "file:selector?mode=memory&cache=shared")
	require.NoError(t, err)
	require.IsType(t, &SQLiteRepository{}, repo)
	require.NoError(t, repo.Set(ctx, KeyUser, []byte("v")))
}

func TestNewRepository_BadRedisDSN(t *testing.T) {
	_, err := NewRepository(context.Background(), "redis://bad addr:with spaces")
	require.Error(t, err)
}

func TestRedisRepository_GetSet(t *testing.T) {
	repo := setupRedis(t)
	ctx := context.Background()

	v, err := repo.Get(ctx, KeyUser)
	require.NoError(t, err)
	require.Nil(t, v)

	require.NoError(t, repo.Set(ctx, KeyUser, []byte(`{"id":"u1"}`)))

	v, err = repo.Get(ctx, KeyUser)
	require.NoError(t, err)
	require.Equal(t, []byte(`{"id":"u1"}`), v)
}

func TestRedisRepository_Delete(t *testing.T) {
	repo := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyUserProfile, []byte("x")))
	require.NoError(t, repo.Delete(ctx, KeyUserProfile))

	v, err := repo.Get(ctx, KeyUserProfile)
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestRedisRepository_List(t *testing.T) {
	repo := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, KeyUser, []byte("a")))
	require.NoError(t, repo.Set(ctx, KeyUserBestFriends, []byte("b")))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string][]byte{KeyUser: []byte("a"), KeyUserBestFriends: []byte("b")}, all)
}

func TestRedisRepository_Clear(t *testing.T) {
	repo := setupRedis(t)
	ctx := context.Background()

	for _, key := range SignOutKeys() {
		require.NoError(t, repo.Set(ctx, key, []byte("v")))
	}

	require.NoError(t, repo.Clear(ctx, SignOutKeys()...))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}
