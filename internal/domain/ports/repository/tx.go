package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is the storage-specific transaction handle (pgx.Tx for Postgres).
// Repositories accept NoTX for non-transactional calls.
type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside one transaction. The handle passed to fn
// must be forwarded to every repository call that belongs to the same unit
// of work. A non-nil error from fn rolls everything back.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
