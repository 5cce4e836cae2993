package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/domain"
)

func newUnreachableCache(t *testing.T) *TeamCache {
	t.Helper()

	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewTeamCache(rdb, time.Minute)
}

// newRedisClient 启动一个 redis 容器并返回连接到它的客户端
func newRedisClient(t *testing.T) *redis.Client {
	t.Helper()

	if testing.Short() {
		t.Skip("跳过需要 docker 的测试")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor: wait.ForAll(
				wait.ForLog("Ready to accept connections"),
				wait.ForListeningPort("6379/tcp"),
			).WithDeadline(30 * time.Second),
		},
		Started: true,
	})
	if redisContainer != nil {
		t.Cleanup(func() {
			_ = redisContainer.Terminate(context.Background())
		})
	}
	require.NoError(t, err)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379/tcp")
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())

	return rdb
}

func TestTeamCacheUnreachable(t *testing.T) {
	c := newUnreachableCache(t)
	ctx := context.Background()

	teams, ok, err := c.GetTeams(ctx)
	require.Error(t, err)
	assert.False(t, ok)
	assert.Nil(t, teams)

	assert.Error(t, c.SetTeams(ctx, nil))
	assert.Error(t, c.Invalidate(ctx))
}

func TestTeamCache(t *testing.T) {
	rdb := newRedisClient(t)
	c := NewTeamCache(rdb, time.Minute)
	ctx := context.Background()

	tableNo := 4
	teams := []*domain.Team{
		{ID: "T1", Name: "Alpha", Creator: "u1", TableNo: &tableNo},
		{ID: "T2", Name: "Beta", Creator: "u2"},
	}

	t.Run("miss", func(t *testing.T) {
		got, ok, err := c.GetTeams(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("set then get", func(t *testing.T) {
		require.NoError(t, c.SetTeams(ctx, teams))

		got, ok, err := c.GetTeams(ctx)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, teams, got)
		assert.Nil(t, got[1].TableNo)

		raw, err := rdb.Get(ctx, teamsKey).Result()
		require.NoError(t, err)
		assert.Contains(t, raw, `"id":"T1"`)
		assert.Contains(t, raw, `"table_no":4`)

		ttl, err := rdb.TTL(ctx, teamsKey).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("empty list is a hit", func(t *testing.T) {
		require.NoError(t, c.SetTeams(ctx, []*domain.Team{}))

		got, ok, err := c.GetTeams(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Empty(t, got)
	})

	t.Run("corrupt entry is a miss", func(t *testing.T) {
		require.NoError(t, rdb.Set(ctx, teamsKey, "not json", 0).Err())

		got, ok, err := c.GetTeams(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Nil(t, got)
	})

	t.Run("invalidate", func(t *testing.T) {
		require.NoError(t, c.SetTeams(ctx, teams))
		require.NoError(t, c.Invalidate(ctx))

		_, ok, err := c.GetTeams(ctx)
		require.NoError(t, err)
		assert.False(t, ok)

		// 键不存在时删除也不报错
		require.NoError(t, c.Invalidate(ctx))
	})
}
