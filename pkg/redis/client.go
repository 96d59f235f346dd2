package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	dialTimeout = 5 * time.Second
	ioTimeout   = 3 * time.Second
)

// ErrNotInitialized is returned by every operation before Init or SetClient
var ErrNotInitialized = errors.New("redis client not initialized")

var client *redis.Client

var pingClient = func(ctx context.Context, c *redis.Client) error {
	return c.Ping(ctx).Err()
}

// Init connects the shared client. password overrides one embedded in url.
func Init(url, password string) error {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return err
	}
	if password != "" {
		opts.Password = password
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = dialTimeout
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = ioTimeout
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = ioTimeout
	}

	client = redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	defer cancel()
	return pingClient(ctx, client)
}

// SetClient replaces the shared client, mostly for tests
func SetClient(c *redis.Client) {
	client = c
}

func GetClient() *redis.Client {
	return client
}

func Close() error {
	if client == nil {
		return nil
	}
	return client.Close()
}

// Ping is used by the health endpoint
func Ping(ctx context.Context) error {
	if client == nil {
		return ErrNotInitialized
	}
	return pingClient(ctx, client)
}

// IsNil reports whether err means the key does not exist
func IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if client == nil {
		return ErrNotInitialized
	}
	return client.Set(ctx, key, value, expiration).Err()
}

func Get(ctx context.Context, key string) (string, error) {
	if client == nil {
		return "", ErrNotInitialized
	}
	return client.Get(ctx, key).Result()
}

func Del(ctx context.Context, key string) error {
	if client == nil {
		return ErrNotInitialized
	}
	return client.Del(ctx, key).Err()
}

// SetNX sets key only if it does not exist and reports whether it did
func SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	if client == nil {
		return false, ErrNotInitialized
	}
	return client.SetNX(ctx, key, value, expiration).Result()
}

func HSet(ctx context.Context, key, field string, value interface{}) error {
	if client == nil {
		return ErrNotInitialized
	}
	return client.HSet(ctx, key, field, value).Err()
}

func HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if client == nil {
		return nil, ErrNotInitialized
	}
	return client.HGetAll(ctx, key).Result()
}

func HDel(ctx context.Context, key string, fields ...string) error {
	if client == nil {
		return ErrNotInitialized
	}
	return client.HDel(ctx, key, fields...).Err()
}
