package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-menu-builder/internal/domain"
	"telegram-menu-builder/internal/domain/model"
	"telegram-menu-builder/internal/domain/ports/repository"
)

var _ repository.ActionRepository = (*PostgresActionRepo)(nil)

type PostgresActionRepo struct {
	pool *pgxpool.Pool
}

func NewActionRepo(pool *pgxpool.Pool) *PostgresActionRepo {
	return &PostgresActionRepo{pool: pool}
}

// AppendStep numbers the step from the current maximum in the same
// statement. A racing writer that took the same step order wins; the loser
// gets domain.ErrAlreadyExists and its transaction stays usable.
func (r *PostgresActionRepo) AppendStep(ctx context.Context, tx repository.Tx, tenantID int64, name, text string) (*model.ActionStep, error) {
	const q = `
INSERT INTO actions (bot_id, name, step_order, text)
SELECT $1, $2, COALESCE(MAX(step_order) + 1, 0), $3
  FROM actions
 WHERE bot_id=$1 AND name=$2
ON CONFLICT DO NOTHING
RETURNING id, step_order;`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	st := &model.ActionStep{TenantID: tenantID, Name: name, Text: text}
	if err := exec.QueryRow(ctx, q, tenantID, name, text).Scan(&st.ID, &st.StepOrder); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAlreadyExists
		}
		return nil, fmt.Errorf("append action step: %w", err)
	}
	return st, nil
}

func (r *PostgresActionRepo) ListSteps(ctx context.Context, tx repository.Tx, tenantID int64, name string) ([]*model.ActionStep, error) {
	const q = `
SELECT id, bot_id, name, step_order, text
  FROM actions
 WHERE bot_id=$1 AND name=$2
 ORDER BY step_order;`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Query(ctx, q, tenantID, name)
	if err != nil {
		return nil, fmt.Errorf("list action steps: %w", err)
	}
	defer rows.Close()

	out := []*model.ActionStep{}
	for rows.Next() {
		var st model.ActionStep
		if err := rows.Scan(&st.ID, &st.TenantID, &st.Name, &st.StepOrder, &st.Text); err != nil {
			return nil, err
		}
		out = append(out, &st)
	}
	return out, rows.Err()
}

func (r *PostgresActionRepo) ListActions(ctx context.Context, tx repository.Tx, tenantID int64) ([]model.ActionSummary, error) {
	const q = `
SELECT name, COUNT(*)
  FROM actions
 WHERE bot_id=$1
 GROUP BY name
 ORDER BY MIN(id);`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Query(ctx, q, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var out []model.ActionSummary
	for rows.Next() {
		var a model.ActionSummary
		if err := rows.Scan(&a.Name, &a.Steps); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresActionRepo) Delete(ctx context.Context, tx repository.Tx, tenantID int64, name string) (int64, error) {
	const q = `DELETE FROM actions WHERE bot_id=$1 AND name=$2;`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	tag, err := exec.Exec(ctx, q, tenantID, name)
	if err != nil {
		return 0, fmt.Errorf("delete action: %w", err)
	}
	return tag.RowsAffected(), nil
}
