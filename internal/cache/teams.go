package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/auth-directory/backend/internal/domain"
)

const teamsKey = "auth_directory_teams"

// TeamCache 把认证服务返回的队伍列表整体缓存在 redis 中
type TeamCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTeamCache(rdb *redis.Client, ttl time.Duration) *TeamCache {
	return &TeamCache{
		rdb: rdb,
		ttl: ttl,
	}
}

// GetTeams 缓存未命中时返回 ok = false 且 err = nil
func (c *TeamCache) GetTeams(ctx context.Context) ([]*domain.Team, bool, error) {
	data, err := c.rdb.Get(ctx, teamsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}

	teams := make([]*domain.Team, 0)
	if err := json.Unmarshal(data, &teams); err != nil {
		// 缓存内容损坏时当作未命中处理，下次写入会覆盖
		return nil, false, nil
	}

	return teams, true, nil
}

func (c *TeamCache) SetTeams(ctx context.Context, teams []*domain.Team) error {
	data, err := json.Marshal(teams)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, teamsKey, data, c.ttl).Err()
}

func (c *TeamCache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, teamsKey).Err()
}
