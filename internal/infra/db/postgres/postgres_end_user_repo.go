package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-menu-builder/internal/domain"
	"telegram-menu-builder/internal/domain/model"
	"telegram-menu-builder/internal/domain/ports/repository"
)

var _ repository.EndUserRepository = (*PostgresEndUserRepo)(nil)

type PostgresEndUserRepo struct {
	pool *pgxpool.Pool
}

func NewEndUserRepo(pool *pgxpool.Pool) *PostgresEndUserRepo {
	return &PostgresEndUserRepo{pool: pool}
}

func (r *PostgresEndUserRepo) FindOrCreate(ctx context.Context, tx repository.Tx, tenantID, telegramID int64) (*model.EndUser, error) {
	const insert = `
INSERT INTO end_users (bot_id, telegram_id, menu_path)
VALUES ($1, $2, $3)
ON CONFLICT (bot_id, telegram_id) DO NOTHING;`
	q := `SELECT id, bot_id, telegram_id, menu_path FROM end_users WHERE bot_id=$1 AND telegram_id=$2`
	if inTx(tx) {
		q += ` FOR UPDATE`
	}

	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	if _, err := exec.Exec(ctx, insert, tenantID, telegramID, model.RootPath().String()); err != nil {
		return nil, fmt.Errorf("insert end user: %w", err)
	}

	var (
		u    model.EndUser
		path string
	)
	if err := exec.QueryRow(ctx, q, tenantID, telegramID).Scan(&u.ID, &u.TenantID, &u.TelegramID, &path); err != nil {
		return nil, notFound(err)
	}
	u.Path = model.ParsePath(path)
	return &u, nil
}

func (r *PostgresEndUserRepo) UpdatePath(ctx context.Context, tx repository.Tx, id int64, path model.Path) error {
	const q = `UPDATE end_users SET menu_path=$2, updated_at=NOW() WHERE id=$1;`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := exec.Exec(ctx, q, id, path.String())
	if err != nil {
		return fmt.Errorf("update path: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
