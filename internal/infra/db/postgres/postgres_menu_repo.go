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

var _ repository.MenuRepository = (*PostgresMenuRepo)(nil)

type PostgresMenuRepo struct {
	pool *pgxpool.Pool
}

func NewMenuRepo(pool *pgxpool.Pool) *PostgresMenuRepo {
	return &PostgresMenuRepo{pool: pool}
}

// CreateMenu skips the insert on a duplicate name instead of raising a
// unique violation, which would abort the caller's transaction.
func (r *PostgresMenuRepo) CreateMenu(ctx context.Context, tx repository.Tx, m *model.Menu) error {
	const q = `
INSERT INTO menus (bot_id, name, description) VALUES ($1, $2, $3)
ON CONFLICT DO NOTHING
RETURNING id;`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if err := exec.QueryRow(ctx, q, m.TenantID, m.Name, m.Description).Scan(&m.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert menu: %w", err)
	}
	return nil
}

func (r *PostgresMenuRepo) FindMenu(ctx context.Context, tx repository.Tx, tenantID int64, name string) (*model.Menu, error) {
	const q = `SELECT id, bot_id, name, description FROM menus WHERE bot_id=$1 AND name=$2;`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var m model.Menu
	if err := exec.QueryRow(ctx, q, tenantID, name).Scan(&m.ID, &m.TenantID, &m.Name, &m.Description); err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *PostgresMenuRepo) ListMenus(ctx context.Context, tx repository.Tx, tenantID int64) ([]*model.Menu, error) {
	const q = `SELECT id, bot_id, name, description FROM menus WHERE bot_id=$1 ORDER BY id;`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Query(ctx, q, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list menus: %w", err)
	}
	defer rows.Close()

	var out []*model.Menu
	for rows.Next() {
		var m model.Menu
		if err := rows.Scan(&m.ID, &m.TenantID, &m.Name, &m.Description); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

func (r *PostgresMenuRepo) CreateButton(ctx context.Context, tx repository.Tx, b *model.Button) error {
	const q = `
INSERT INTO buttons (menu_id, label, kind, reference) VALUES ($1, $2, $3, $4)
ON CONFLICT DO NOTHING
RETURNING id;`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if err := exec.QueryRow(ctx, q, b.MenuID, b.Label, string(b.Kind), b.Reference).Scan(&b.ID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert button: %w", err)
	}
	return nil
}

func (r *PostgresMenuRepo) ListButtons(ctx context.Context, tx repository.Tx, menuID int64) ([]*model.Button, error) {
	const q = `SELECT id, menu_id, label, kind, reference FROM buttons WHERE menu_id=$1 ORDER BY id;`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Query(ctx, q, menuID)
	if err != nil {
		return nil, fmt.Errorf("list buttons: %w", err)
	}
	defer rows.Close()

	var out []*model.Button
	for rows.Next() {
		var (
			b    model.Button
			kind string
		)
		if err := rows.Scan(&b.ID, &b.MenuID, &b.Label, &kind, &b.Reference); err != nil {
			return nil, err
		}
		b.Kind = model.ButtonKind(kind)
		out = append(out, &b)
	}
	return out, rows.Err()
}

func (r *PostgresMenuRepo) CountReferences(ctx context.Context, tx repository.Tx, tenantID int64, kind model.ButtonKind, reference string) (int, error) {
	const q = `
SELECT COUNT(*)
  FROM buttons b
  JOIN menus m ON m.id = b.menu_id
 WHERE m.bot_id=$1 AND b.kind=$2 AND b.reference=$3;`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := exec.QueryRow(ctx, q, tenantID, string(kind), reference).Scan(&n); err != nil {
		return 0, fmt.Errorf("count references: %w", err)
	}
	return n, nil
}
