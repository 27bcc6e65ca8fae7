// Package cache provides a read-through profile cache in front of the account
// store. Resolution happens on every wizard keystroke-settled email edit, so
// hot profiles are kept in Redis with a short TTL.
package cache

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"tekfest/internal/identity/models"
	platformredis "tekfest/internal/platform/redis"
	"tekfest/pkg/platform/sentinel"
)

// ProfileCache stores profile snapshots keyed by email.
type ProfileCache interface {
	Find(ctx context.Context, email string) (*models.ProfileSnapshot, error)
	Save(ctx context.Context, email string, snapshot *models.ProfileSnapshot) error
}

// RedisProfileCache keeps snapshots in Redis with TTL expiration.
type RedisProfileCache struct {
	client *platformredis.Client
	ttl    time.Duration
}

func NewRedisProfileCache(client *platformredis.Client, ttl time.Duration) *RedisProfileCache {
	return &RedisProfileCache{client: client, ttl: ttl}
}

func (c *RedisProfileCache) Find(ctx context.Context, email string) (*models.ProfileSnapshot, error) {
	raw, err := c.client.Get(ctx, key(email)).Bytes()
	if err != nil {
		return nil, sentinel.ErrNotFound
	}
	var snapshot models.ProfileSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, sentinel.ErrNotFound
	}
	return &snapshot, nil
}

func (c *RedisProfileCache) Save(ctx context.Context, email string, snapshot *models.ProfileSnapshot) error {
	if snapshot == nil {
		return nil
	}
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(email), raw, c.ttl).Err()
}

func key(email string) string {
	return "profile:" + strings.ToLower(email)
}
