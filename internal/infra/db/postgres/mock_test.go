//go:build !integration

package postgres

import (
	"context"
	"time"

	"telegram-menu-builder/internal/domain/model"
	"telegram-menu-builder/internal/domain/ports/repository"
	red "telegram-menu-builder/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerTenantRepo mocks the database repository the tenant decorator wraps.
type mockInnerTenantRepo struct {
	SaveFunc        func(ctx context.Context, tx repository.Tx, t *model.Tenant) error
	FindByTokenFunc func(ctx context.Context, tx repository.Tx, token string) (*model.Tenant, error)
	FindByIDFunc    func(ctx context.Context, tx repository.Tx, id int64) (*model.Tenant, error)
	ListFunc        func(ctx context.Context, tx repository.Tx) ([]*model.Tenant, error)
}

func (m *mockInnerTenantRepo) Save(ctx context.Context, tx repository.Tx, t *model.Tenant) error {
	return m.SaveFunc(ctx, tx, t)
}
func (m *mockInnerTenantRepo) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.Tenant, error) {
	return m.FindByTokenFunc(ctx, tx, token)
}
func (m *mockInnerTenantRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Tenant, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerTenantRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Tenant, error) {
	return m.ListFunc(ctx, tx)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc    func(ctx context.Context, keys ...string) error
	PingFunc   func(ctx context.Context) error
	IncrFunc   func(ctx context.Context, key string) (int64, error)
	ExpireFunc func(ctx context.Context, key string, expiration time.Duration) error
	CloseFunc  func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
