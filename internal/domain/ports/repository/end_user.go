package repository

import (
	"context"

	"telegram-menu-builder/internal/domain/model"
)

type EndUserRepository interface {
	// FindOrCreate returns the end user, creating it at the root path on
	// first contact. Inside a transaction the row is locked for update.
	FindOrCreate(ctx context.Context, tx Tx, tenantID, telegramID int64) (*model.EndUser, error)
	UpdatePath(ctx context.Context, tx Tx, id int64, path model.Path) error
}
