package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"marketplace-backend/internal/features/account/models"
)

// AccountCache caches token -> account lookups in front of the account
// store. Entries hold the credential-free projection only.
type AccountCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAccountCache(client *redis.Client, ttl time.Duration) *AccountCache {
	return &AccountCache{client: client, ttl: ttl}
}

func (c *AccountCache) keyByToken(token string) string {
	return fmt.Sprintf("auth:token:%s", token)
}

// GetByToken returns the cached account or redis.Nil on a miss.
func (c *AccountCache) GetByToken(ctx context.Context, token string) (*models.Account, error) {
	v, err := c.client.Get(ctx, c.keyByToken(token)).Bytes()
	if err != nil {
		return nil, err
	}
	var account models.Account
	if err := json.Unmarshal(v, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// Set stores the account under its token key.
func (c *AccountCache) Set(ctx context.Context, token string, account *models.Account) error {
	b, err := json.Marshal(account)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.keyByToken(token), b, c.ttl).Err()
}

// Invalidate removes the cached entry for a token.
func (c *AccountCache) Invalidate(ctx context.Context, token string) error {
	return c.client.Del(ctx, c.keyByToken(token)).Err()
}
