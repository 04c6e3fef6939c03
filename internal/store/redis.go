package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
)

// RedisStore is a Backend on a Redis server.
type RedisStore struct {
	pool   *redis.Pool
	prefix string
}

// NewRedisPool creates a pool for addr and verifies it answers PING.
func NewRedisPool(addr string) (*redis.Pool, error) {
	if addr == "" {
		addr = "localhost:6379"
	}
	pool := &redis.Pool{
		MaxIdle:     4,
		MaxActive:   16,
		Wait:        true,
		IdleTimeout: 5 * time.Minute,
		Dial: func() (redis.Conn, error) {
			return redis.Dial("tcp", addr,
				redis.DialConnectTimeout(5*time.Second),
				redis.DialReadTimeout(5*time.Second),
				redis.DialWriteTimeout(5*time.Second),
			)
		},
		TestOnBorrow: func(c redis.Conn, t time.Time) error {
			if time.Since(t) < time.Minute {
				return nil
			}
			_, err := c.Do("PING")
			return err
		},
	}

	conn := pool.Get()
	defer conn.Close()
	if _, err := conn.Do("PING"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("redis %s: %w", addr, err)
	}
	return pool, nil
}

// NewRedisStore wraps pool. Keys are stored as prefix/key when prefix is set.
func NewRedisStore(pool *redis.Pool, prefix string) *RedisStore {
	return &RedisStore{pool: pool, prefix: prefix}
}

func (s *RedisStore) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + "/" + k
}

// Get returns the document stored under key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	raw, err := redis.Bytes(conn.Do("GET", s.key(key)))
	if errors.Is(err, redis.ErrNil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return raw, nil
}

// Put replaces the document stored under key.
func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	conn, err := s.pool.GetContext(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	_, err = conn.Do("SET", s.key(key), value)
	return err
}

func (s *RedisStore) Close() error {
	return s.pool.Close()
}
