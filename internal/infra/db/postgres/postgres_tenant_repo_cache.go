package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"

	"telegram-menu-builder/internal/domain/model"
	"telegram-menu-builder/internal/domain/ports/repository"
	"telegram-menu-builder/internal/infra/metrics"
	red "telegram-menu-builder/internal/infra/redis"
)

var _ repository.TenantRepository = (*tenantRepoCacheDecorator)(nil)

// tenantRepoCacheDecorator serves credential lookups from Redis. Tenants are
// never deleted, so entries only need dropping on Save.
type tenantRepoCacheDecorator struct {
	inner repository.TenantRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewTenantRepoCacheDecorator(inner repository.TenantRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.TenantRepository {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &tenantRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: logger}
}

// Tokens are secrets; keys carry a digest instead.
func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "tenant:token:" + hex.EncodeToString(sum[:16])
}

func idKey(id int64) string { return fmt.Sprintf("tenant:id:%d", id) }

func (d *tenantRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, t *model.Tenant) error {
	if err := d.inner.Save(ctx, tx, t); err != nil {
		return err
	}
	_ = d.cache.Del(ctx, tokenKey(t.Token), idKey(t.ID))
	return nil
}

func (d *tenantRepoCacheDecorator) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.Tenant, error) {
	// Reads inside a transaction must see the transaction's own writes.
	if tx != nil {
		return d.inner.FindByToken(ctx, tx, token)
	}
	return d.cached(ctx, tokenKey(token), func() (*model.Tenant, error) {
		return d.inner.FindByToken(ctx, tx, token)
	})
}

func (d *tenantRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Tenant, error) {
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	return d.cached(ctx, idKey(id), func() (*model.Tenant, error) {
		return d.inner.FindByID(ctx, tx, id)
	})
}

func (d *tenantRepoCacheDecorator) cached(ctx context.Context, key string, load func() (*model.Tenant, error)) (*model.Tenant, error) {
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		var t model.Tenant
		if json.Unmarshal([]byte(val), &t) == nil {
			metrics.IncCacheRequest("tenant", "hit")
			return &t, nil
		}
	} else if !errors.Is(err, redis.Nil) && d.log != nil {
		d.log.Warn().Err(err).Msg("tenant cache read failed")
	}

	metrics.IncCacheRequest("tenant", "miss")
	t, err := load()
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(t); err == nil {
		_ = d.cache.Set(ctx, tokenKey(t.Token), b, d.ttl)
		_ = d.cache.Set(ctx, idKey(t.ID), b, d.ttl)
	}
	return t, nil
}

func (d *tenantRepoCacheDecorator) List(ctx context.Context, tx repository.Tx) ([]*model.Tenant, error) {
	metrics.IncCacheRequest("tenant_list", "bypass")
	return d.inner.List(ctx, tx)
}
