package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrDuplicateSubmission = errors.New("a submission for this request is already in progress")

// SubmissionGuard rejects a second identical submission while the first is
// still running. Locks expire after the TTL even if never released.
type SubmissionGuard interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

type MemoryGuard struct {
	mu       sync.Mutex
	ttl      time.Duration
	inflight map[string]time.Time
	now      func() time.Time
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	return &MemoryGuard{ttl: ttl, inflight: make(map[string]time.Time), now: time.Now}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	for k, exp := range g.inflight {
		if now.After(exp) {
			delete(g.inflight, k)
		}
	}
	if _, busy := g.inflight[key]; busy {
		return nil, ErrDuplicateSubmission
	}
	expires := now.Add(g.ttl)
	g.inflight[key] = expires

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			// A lock that expired and was re-taken belongs to someone else.
			if g.inflight[key].Equal(expires) {
				delete(g.inflight, key)
			}
		})
	}, nil
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisGuard(client *redis.Client, ttl time.Duration) *RedisGuard {
	return &RedisGuard{client: client, ttl: ttl, prefix: "quotation:inflight:"}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (func(), error) {
	redisKey := g.prefix + key
	token := uuid.NewString()

	ok, err := g.client.SetNX(ctx, redisKey, token, g.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire submission lock: %w", err)
	}
	if !ok {
		return nil, ErrDuplicateSubmission
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(rctx, g.client, []string{redisKey}, token).Err(); err != nil {
				log.Printf("Warning: release submission lock %s: %v", redisKey, err)
			}
		})
	}, nil
}
