package coupons

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/veyronstory/storefront-backend/pkg/db/models"
	"github.com/veyronstory/storefront-backend/pkg/logger"
	"github.com/veyronstory/storefront-backend/pkg/redis"
)

// Cache is the read-through lookup used by Validate. Misses and backend
// failures fall back to the repository.
type Cache interface {
	Get(ctx context.Context, code string) (*models.Coupon, bool)
	Set(ctx context.Context, coupon *models.Coupon)
	Invalidate(ctx context.Context, code string)
}

type redisCache struct {
	client *redis.Client
	ttl    time.Duration
	logg   *logger.Logger
}

// NewRedisCache builds a coupon cache over the shared redis client. The TTL
// is short: a stale entry only delays visibility of admin edits, never a
// usage-cap decision (the cap is enforced by the conditional increment).
func NewRedisCache(client *redis.Client, ttl time.Duration, logg *logger.Logger) Cache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &redisCache{client: client, ttl: ttl, logg: logg}
}

func (c *redisCache) Get(ctx context.Context, code string) (*models.Coupon, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.client.CouponKey(code))
	if err != nil {
		if !errors.Is(err, goredis.Nil) && c.logg != nil {
			c.logg.Warn(c.logg.WithCouponCode(ctx, code), "coupon cache read failed")
		}
		return nil, false
	}
	var coupon models.Coupon
	if err := json.Unmarshal([]byte(raw), &coupon); err != nil {
		c.Invalidate(ctx, code)
		return nil, false
	}
	return &coupon, true
}

func (c *redisCache) Set(ctx context.Context, coupon *models.Coupon) {
	if c.client == nil || coupon == nil {
		return
	}
	raw, err := json.Marshal(coupon)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.client.CouponKey(coupon.Code), string(raw), c.ttl); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithCouponCode(ctx, coupon.Code), "coupon cache write failed")
	}
}

func (c *redisCache) Invalidate(ctx context.Context, code string) {
	if c.client == nil {
		return
	}
	if err := c.client.Del(ctx, c.client.CouponKey(code)); err != nil && c.logg != nil {
		c.logg.Warn(c.logg.WithCouponCode(ctx, code), "coupon cache invalidation failed")
	}
}

// NopCache disables caching; useful in tests and for workers without redis.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*models.Coupon, bool) { return nil, false }
func (NopCache) Set(context.Context, *models.Coupon)                {}
func (NopCache) Invalidate(context.Context, string)                 {}
