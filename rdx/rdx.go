package rdx

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const trendingKey = "recipes:trending"

// Conn stays nil when no REDIS_ADDR is configured; callers must nil-check.
var Conn *redis.Client

func Init(addr string) error {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return err
	}
	Conn = client
	return nil
}

// BumpTrending counts one unlock against a recipe.
func BumpTrending(ctx context.Context, recipeID string) {
	if Conn == nil {
		return
	}
	Conn.ZIncrBy(ctx, trendingKey, 1, recipeID)
}

// TopTrending returns the most-unlocked recipe ids, best first.
func TopTrending(ctx context.Context, n int64) ([]string, error) {
	if Conn == nil {
		return nil, nil
	}
	return Conn.ZRevRange(ctx, trendingKey, 0, n-1).Result()
}
