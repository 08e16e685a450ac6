package cities

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Directory provides the current city list. Callers take a fresh snapshot
// before validating a form, so list updates apply to the next submission.
type Directory interface {
	Snapshot(ctx context.Context) (*Set, error)
}

type StaticDirectory struct {
	set *Set
}

// NewStaticDirectory builds a directory over a fixed list. An empty list
// falls back to DefaultNames.
func NewStaticDirectory(names ...string) *StaticDirectory {
	if len(names) == 0 {
		names = DefaultNames
	}
	return &StaticDirectory{set: NewSet(names...)}
}

func (d *StaticDirectory) Snapshot(context.Context) (*Set, error) {
	return d.set, nil
}

// RedisDirectory reads the city list from a redis set and keeps a cached
// snapshot, so a burst of submissions doesn't hit redis on every request.
// Transient read errors fall back to the last good snapshot.
type RedisDirectory struct {
	client    *redis.Client
	namespace string
	ttl       time.Duration

	mutex    sync.Mutex
	cached   *Set
	cachedAt time.Time
}

const DefaultCacheTTL = 5 * time.Minute

func NewRedisDirectory(client *redis.Client, namespace string, ttl time.Duration) *RedisDirectory {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &RedisDirectory{client: client, namespace: namespace, ttl: ttl}
}

func directoryKey(namespace string) string {
	return fmt.Sprintf("%s:cities", namespace)
}

func (d *RedisDirectory) Snapshot(ctx context.Context) (*Set, error) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.cached != nil && time.Since(d.cachedAt) < d.ttl {
		return d.cached, nil
	}

	names, err := d.client.SMembers(ctx, directoryKey(d.namespace)).Result()
	if err != nil {
		if d.cached != nil {
			slog.Warn("Falling back to cached city list", "error", err)
			return d.cached, nil
		}
		return nil, fmt.Errorf("failed to load city list: %w", err)
	}
	if len(names) == 0 {
		names = DefaultNames
	}

	d.cached = NewSet(names...)
	d.cachedAt = time.Now()
	slog.Debug("City list refreshed", "count", d.cached.Len())
	return d.cached, nil
}
