package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/magabrotheeeer/tasktracker/internal/config"
)

func setupTestGuard(t *testing.T, maxAttempts int, lockout time.Duration) *LoginGuard {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(time.Minute),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start container")
	t.Cleanup(func() {
		_ = container.Terminate(ctx)
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	guard, err := InitServer(ctx, config.Redis{
		Address:     endpoint,
		MaxAttempts: maxAttempts,
		Lockout:     lockout,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = guard.Close() })
	return guard
}

func TestLoginGuard_BlocksAfterMaxAttempts(t *testing.T) {
	guard := setupTestGuard(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		blocked, err := guard.Blocked(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, blocked, "attempt %d", i+1)
		require.NoError(t, guard.Fail(ctx, "alice"))
	}

	blocked, err := guard.Blocked(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, blocked)

	blocked, err = guard.Blocked(ctx, "bob")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestLoginGuard_ResetClearsCounter(t *testing.T) {
	guard := setupTestGuard(t, 1, time.Minute)
	ctx := context.Background()

	require.NoError(t, guard.Fail(ctx, "alice"))
	blocked, err := guard.Blocked(ctx, "alice")
	require.NoError(t, err)
	require.True(t, blocked)

	require.NoError(t, guard.Reset(ctx, "alice"))
	blocked, err = guard.Blocked(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestLoginGuard_LockoutSetsTTL(t *testing.T) {
	guard := setupTestGuard(t, 5, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, guard.Fail(ctx, "alice"))
	require.NoError(t, guard.Fail(ctx, "alice"))

	ttl, err := guard.Db.TTL(ctx, attemptsPrefix+"alice").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, 30*time.Second)
}

func TestLoginGuard_FailRestoresMissingTTL(t *testing.T) {
	guard := setupTestGuard(t, 5, 30*time.Second)
	ctx := context.Background()
	key := attemptsPrefix + "alice"

	require.NoError(t, guard.Db.Set(ctx, key, 3, 0).Err())
	require.NoError(t, guard.Fail(ctx, "alice"))

	n, err := guard.Db.Get(ctx, key).Int()
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	ttl, err := guard.Db.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestLoginGuard_FailKeepsWindowFromFirstFailure(t *testing.T) {
	guard := setupTestGuard(t, 5, 30*time.Second)
	ctx := context.Background()
	key := attemptsPrefix + "alice"

	require.NoError(t, guard.Fail(ctx, "alice"))
	require.NoError(t, guard.Db.Expire(ctx, key, 10*time.Second).Err())
	require.NoError(t, guard.Fail(ctx, "alice"))

	ttl, err := guard.Db.TTL(ctx, key).Result()
	require.NoError(t, err)
	assert.LessOrEqual(t, ttl, 10*time.Second)
}

func TestInitServer_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := InitServer(ctx, config.Redis{Address: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestNewLoginGuard_Defaults(t *testing.T) {
	g := NewLoginGuard(nil, 0, 0)
	assert.Equal(t, 5, g.maxAttempts)
	assert.Equal(t, 15*time.Minute, g.lockout)
}
