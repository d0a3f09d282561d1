package web

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"telegram-menu-builder/internal/config"
	"telegram-menu-builder/internal/domain"
	"telegram-menu-builder/internal/domain/model"
)

// mockTenantUC serves a fixed tenant list; Register is configurable.
type mockTenantUC struct {
	tenants      []*model.Tenant
	menus        map[int64][]*model.Menu
	actions      map[int64][]model.ActionSummary
	RegisterFunc func(ctx context.Context, credential string, adminID int64) (*model.Tenant, error)
	ListError    error
}

func (m *mockTenantUC) Register(ctx context.Context, credential string, adminID int64) (*model.Tenant, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, credential, adminID)
	}
	t := &model.Tenant{ID: int64(len(m.tenants) + 1), Token: credential, AdminUserID: adminID, CreatedAt: time.Now()}
	m.tenants = append(m.tenants, t)
	return t, nil
}

func (m *mockTenantUC) ResolveByCredential(ctx context.Context, credential string) (*model.Tenant, error) {
	for _, t := range m.tenants {
		if t.Token == credential {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTenantUC) Get(ctx context.Context, id int64) (*model.Tenant, error) {
	for _, t := range m.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockTenantUC) List(ctx context.Context) ([]*model.Tenant, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}
	return m.tenants, nil
}

func (m *mockTenantUC) Menus(ctx context.Context, tenantID int64) ([]*model.Menu, error) {
	if _, err := m.Get(ctx, tenantID); err != nil {
		return nil, err
	}
	return m.menus[tenantID], nil
}

func (m *mockTenantUC) Actions(ctx context.Context, tenantID int64) ([]model.ActionSummary, error) {
	if _, err := m.Get(ctx, tenantID); err != nil {
		return nil, err
	}
	return m.actions[tenantID], nil
}

type mockWebhookUC struct {
	calls           int
	RegisterAllFunc func(ctx context.Context) (int, error)
}

func (m *mockWebhookUC) Register(ctx context.Context, credential string) error { return nil }

func (m *mockWebhookUC) RegisterAll(ctx context.Context) (int, error) {
	m.calls++
	if m.RegisterAllFunc != nil {
		return m.RegisterAllFunc(ctx)
	}
	return 0, nil
}

func newTestLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

func newTestAuth() *AuthManager {
	return NewAuthManager(config.AdminConfig{
		APIKey:    "test-admin-key",
		JWTSecret: "test-admin-jwt-secret-please-change",
		TokenTTL:  time.Minute,
	}, false)
}
