package repository

import (
	"context"

	"telegram-menu-builder/internal/domain/model"
)

type ActionRepository interface {
	// AppendStep stores text as the next step of the named action, numbering
	// from 0. Callers run it inside a transaction to keep the order contiguous.
	AppendStep(ctx context.Context, tx Tx, tenantID int64, name, text string) (*model.ActionStep, error)
	// ListSteps returns the action's steps by step order. Unknown actions
	// yield an empty slice.
	ListSteps(ctx context.Context, tx Tx, tenantID int64, name string) ([]*model.ActionStep, error)
	// ListActions returns one summary per action in creation order.
	ListActions(ctx context.Context, tx Tx, tenantID int64) ([]model.ActionSummary, error)
	// Delete removes every step of the action and reports how many went.
	Delete(ctx context.Context, tx Tx, tenantID int64, name string) (int64, error)
}
