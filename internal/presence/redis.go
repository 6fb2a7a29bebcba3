package presence

import (
	"context"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"
)

const (
	defaultUsersKey = "onyx:presence:users"
	defaultConnsKey = "onyx:presence:conns"
)

// KEYS[1] users hash, KEYS[2] conns hash, ARGV[1] user, ARGV[2] conn
var registerScript = redis.NewScript(`
local old = redis.call('HGET', KEYS[1], ARGV[1])
if old and old ~= ARGV[2] then
  redis.call('HDEL', KEYS[2], old)
else
  old = ''
end
redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
redis.call('HSET', KEYS[2], ARGV[2], ARGV[1])
return old
`)

// KEYS[1] users hash, KEYS[2] conns hash, ARGV[1] conn
var unregisterScript = redis.NewScript(`
local uid = redis.call('HGET', KEYS[2], ARGV[1])
if not uid then
  return false
end
redis.call('HDEL', KEYS[2], ARGV[1])
if redis.call('HGET', KEYS[1], uid) == ARGV[1] then
  redis.call('HDEL', KEYS[1], uid)
end
return uid
`)

// RedisDirectory keeps presence in two Redis hashes updated by Lua scripts,
// so each operation is atomic across processes sharing the instance.
type RedisDirectory struct {
	client   redis.Cmdable
	usersKey string
	connsKey string
}

// NewRedisDirectory creates a RedisDirectory using the default key names
func NewRedisDirectory(client redis.Cmdable) *RedisDirectory {
	return &RedisDirectory{client: client, usersKey: defaultUsersKey, connsKey: defaultConnsKey}
}

// WithPrefix namespaces the hashes, mainly so tests can share a server
func (d *RedisDirectory) WithPrefix(prefix string) *RedisDirectory {
	return &RedisDirectory{
		client:   d.client,
		usersKey: prefix + defaultUsersKey,
		connsKey: prefix + defaultConnsKey,
	}
}

func (d *RedisDirectory) keys() []string {
	return []string{d.usersKey, d.connsKey}
}

func (d *RedisDirectory) Register(ctx context.Context, userID, connID string) (string, error) {
	return registerScript.Run(ctx, d.client, d.keys(), userID, connID).Text()
}

func (d *RedisDirectory) Lookup(ctx context.Context, userID string) (string, bool, error) {
	connID, err := d.client.HGet(ctx, d.usersKey, userID).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return connID, true, nil
}

func (d *RedisDirectory) Unregister(ctx context.Context, connID string) (string, bool, error) {
	userID, err := unregisterScript.Run(ctx, d.client, d.keys(), connID).Text()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return userID, true, nil
}

func (d *RedisDirectory) ListActive(ctx context.Context) ([]string, error) {
	users, err := d.client.HKeys(ctx, d.usersKey).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(users)
	return users, nil
}

func (d *RedisDirectory) Reset(ctx context.Context) error {
	return d.client.Del(ctx, d.usersKey, d.connsKey).Err()
}
