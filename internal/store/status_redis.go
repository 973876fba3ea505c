package store

import (
    "context"
    "encoding/json"
    "fmt"
    "time"

    redis "github.com/redis/go-redis/v9"
)

// statusTTL keeps finished generation records around long enough for the
// frontend to poll them without growing Redis unboundedly.
const statusTTL = 24 * time.Hour

type RedisStatus struct {
    client *redis.Client
    keyNS  string
}

func NewRedisStatus(redisURL string) (*RedisStatus, error) {
    opt, err := redis.ParseURL(redisURL)
    if err != nil { return nil, err }
    c := redis.NewClient(opt)
    ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
    defer cancel()
    if err := c.Ping(ctx).Err(); err != nil { return nil, fmt.Errorf("redis ping: %w", err) }
    return &RedisStatus{client: c, keyNS: "generation"}, nil
}

func (s *RedisStatus) key(requestID string) string {
    return fmt.Sprintf("%s:%s:status", s.keyNS, requestID)
}

func (s *RedisStatus) Set(ctx context.Context, requestID string, st Status) error {
    b, err := json.Marshal(st)
    if err != nil { return err }
    return s.client.Set(ctx, s.key(requestID), b, statusTTL).Err()
}

func (s *RedisStatus) Get(ctx context.Context, requestID string) (Status, bool, error) {
    b, err := s.client.Get(ctx, s.key(requestID)).Bytes()
    if err == redis.Nil { return Status{}, false, nil }
    if err != nil { return Status{}, false, err }
    var st Status
    if err := json.Unmarshal(b, &st); err != nil { return Status{}, false, err }
    return st, true, nil
}

func (s *RedisStatus) Close() error { return s.client.Close() }
