package repository

import (
	"context"

	"telegram-menu-builder/internal/domain/model"
)

// -----------------------------
// Menus and buttons
// -----------------------------

type MenuRepository interface {
	// CreateMenu fills m.ID. A duplicate name yields domain.ErrAlreadyExists.
	CreateMenu(ctx context.Context, tx Tx, m *model.Menu) error
	FindMenu(ctx context.Context, tx Tx, tenantID int64, name string) (*model.Menu, error)
	// ListMenus returns menus in insertion order.
	ListMenus(ctx context.Context, tx Tx, tenantID int64) ([]*model.Menu, error)

	// CreateButton fills b.ID. A duplicate label in the same menu yields
	// domain.ErrAlreadyExists.
	CreateButton(ctx context.Context, tx Tx, b *model.Button) error
	// ListButtons returns the menu's buttons in insertion order.
	ListButtons(ctx context.Context, tx Tx, menuID int64) ([]*model.Button, error)
	CountReferences(ctx context.Context, tx Tx, tenantID int64, kind model.ButtonKind, reference string) (int, error)
}
