package repository

import (
	"context"

	"telegram-menu-builder/internal/domain/model"
)

// -----------------------------
// Tenants (child bots)
// -----------------------------

type TenantRepository interface {
	// Save inserts a tenant and fills its ID. A duplicate token yields
	// domain.ErrAlreadyExists.
	Save(ctx context.Context, tx Tx, t *model.Tenant) error
	FindByToken(ctx context.Context, tx Tx, token string) (*model.Tenant, error)
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Tenant, error)
	List(ctx context.Context, tx Tx) ([]*model.Tenant, error)
}
