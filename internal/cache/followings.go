package cache

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// placeholder 保证“没有关注任何人”的集合也能被缓存，不是合法的用户 ID
const placeholder = "-"

// ErrStaleFill 加载期间关注关系发生变化，本次结果未写入缓存，调用方应直接查主库
var ErrStaleFill = errors.New("followings changed during cache fill")

// LoadFunc 缓存未命中时从主库加载关注 ID 列表
type LoadFunc func(ctx context.Context) ([]string, error)

// FollowingsCache caches each user's outgoing follow edges as a Redis set
// so that membership checks do not scan the relationships table.
type FollowingsCache struct {
	client *redis.Client
	ttl    time.Duration

	hits  atomic.Int64
	loads atomic.Int64
}

func NewFollowingsCache(client *redis.Client, ttl time.Duration) *FollowingsCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FollowingsCache{client: client, ttl: ttl}
}

func key(userID string) string { return fmt.Sprintf("followings:%s", userID) }

// genKey 每次失效自增，回填前后比对以丢弃过期的加载结果
func genKey(userID string) string { return fmt.Sprintf("followings:gen:%s", userID) }

// getter 由 *redis.Client 与 *redis.Tx 共同实现
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generation(ctx context.Context, g getter, userID string) (int64, error) {
	gen, err := g.Get(ctx, genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// IsFollowing 判断 userID 是否关注了 otherID；集合不存在时调用 load 回填
func (c *FollowingsCache) IsFollowing(ctx context.Context, userID, otherID string, load LoadFunc) (bool, error) {
	if otherID == placeholder {
		return false, nil
	}
	k := key(userID)
	exists, err := c.client.Exists(ctx, k).Result()
	if err != nil {
		return false, err
	}
	if exists > 0 {
		c.hits.Add(1)
		return c.client.SIsMember(ctx, k, otherID).Result()
	}

	ids, err := c.fill(ctx, userID, load)
	if err != nil {
		return false, err
	}
	for _, id := range ids {
		if id == otherID {
			return true, nil
		}
	}
	return false, nil
}

func (c *FollowingsCache) fill(ctx context.Context, userID string, load LoadFunc) ([]string, error) {
	c.loads.Add(1)
	gen, err := generation(ctx, c.client, userID)
	if err != nil {
		return nil, err
	}
	ids, err := load(ctx)
	if err != nil {
		return nil, err
	}

	k := key(userID)
	members := make([]interface{}, 0, len(ids)+1)
	members = append(members, placeholder)
	for _, id := range ids {
		members = append(members, id)
	}

	gk := genKey(userID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := generation(ctx, tx, userID)
		if err != nil {
			return err
		}
		if cur != gen {
			return ErrStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, k)
			pipe.SAdd(ctx, k, members...)
			pipe.Expire(ctx, k, c.ttl)
			return nil
		})
		return err
	}, gk)
	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrStaleFill
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// Invalidate 关注关系变化后删除缓存，并使进行中的回填失效
func (c *FollowingsCache) Invalidate(ctx context.Context, userID string) error {
	pipe := c.client.TxPipeline()
	pipe.Incr(ctx, genKey(userID))
	pipe.Expire(ctx, genKey(userID), c.ttl)
	pipe.Del(ctx, key(userID))
	_, err := pipe.Exec(ctx)
	return err
}

// Counters reports cache hits and how many times the primary store was consulted.
func (c *FollowingsCache) Counters() Counters {
	return Counters{Hits: c.hits.Load(), Loads: c.loads.Load()}
}

// ResetCounters clears recorded counters.
func (c *FollowingsCache) ResetCounters() {
	c.hits.Store(0)
	c.loads.Store(0)
}

type Counters struct {
	Hits  int64
	Loads int64
}
