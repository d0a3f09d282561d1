package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-menu-builder/internal/domain"
	"telegram-menu-builder/internal/domain/model"
	"telegram-menu-builder/internal/domain/ports/repository"
)

var _ repository.TenantRepository = (*PostgresTenantRepo)(nil)

type PostgresTenantRepo struct {
	pool *pgxpool.Pool
}

func NewTenantRepo(pool *pgxpool.Pool) *PostgresTenantRepo {
	return &PostgresTenantRepo{pool: pool}
}

func (r *PostgresTenantRepo) Save(ctx context.Context, tx repository.Tx, t *model.Tenant) error {
	const q = `
INSERT INTO child_bots (admin_user_id, token, created_at)
VALUES ($1, $2, $3)
RETURNING id;`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if err := exec.QueryRow(ctx, q, t.AdminUserID, t.Token, t.CreatedAt).Scan(&t.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return fmt.Errorf("insert tenant: %w", err)
	}
	return nil
}

func (r *PostgresTenantRepo) FindByToken(ctx context.Context, tx repository.Tx, token string) (*model.Tenant, error) {
	const q = `SELECT id, admin_user_id, token, created_at FROM child_bots WHERE token=$1;`
	return r.findOne(ctx, tx, q, token)
}

func (r *PostgresTenantRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Tenant, error) {
	const q = `SELECT id, admin_user_id, token, created_at FROM child_bots WHERE id=$1;`
	return r.findOne(ctx, tx, q, id)
}

func (r *PostgresTenantRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg any) (*model.Tenant, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var t model.Tenant
	if err := exec.QueryRow(ctx, q, arg).Scan(&t.ID, &t.AdminUserID, &t.Token, &t.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &t, nil
}

func (r *PostgresTenantRepo) List(ctx context.Context, tx repository.Tx) ([]*model.Tenant, error) {
	const q = `SELECT id, admin_user_id, token, created_at FROM child_bots ORDER BY id;`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()
	return scanTenants(rows)
}

func scanTenants(rows pgx.Rows) ([]*model.Tenant, error) {
	var out []*model.Tenant
	for rows.Next() {
		var t model.Tenant
		if err := rows.Scan(&t.ID, &t.AdminUserID, &t.Token, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
