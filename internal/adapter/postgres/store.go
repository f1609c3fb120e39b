package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pledge-escrow/internal/core/port"
)

var errReadOnly = errors.New("postgres: write inside read-only view")

// Store implements port.Store on PostgreSQL. Writable transactions run at
// serializable isolation and lock the campaign row they touch, so
// operations on one campaign are totally ordered.
type Store struct {
	pool    *pgxpool.Pool
	retries int
}

// NewStore returns a store that retries a transaction up to retries times
// when PostgreSQL aborts it with a serialization failure.
func NewStore(pool *pgxpool.Pool, retries int) *Store {
	return &Store{pool: pool, retries: retries}
}

type txKey struct{}

// pgTx is the transaction carried on the context. Nested WithinTx calls
// open a savepoint on it.
type pgTx struct {
	tx       pgx.Tx
	readOnly bool
}

func txFrom(ctx context.Context) (*pgTx, bool) {
	t, ok := ctx.Value(txKey{}).(*pgTx)
	return t, ok
}

func (t *pgTx) Campaigns() port.CampaignRepository         { return campaignRepo{t} }
func (t *pgTx) Contributions() port.ContributionRepository { return contributionRepo{t} }

// WithinTx implements port.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	if parent, ok := txFrom(ctx); ok {
		if parent.readOnly {
			return errReadOnly
		}
		return s.savepoint(ctx, parent, fn)
	}

	for attempt := 0; ; attempt++ {
		err := s.run(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable}, false, fn)
		if !isSerializationFailure(err) || attempt >= s.retries {
			return err
		}
	}
}

// View implements port.Store.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	if t, ok := txFrom(ctx); ok {
		return fn(ctx, t)
	}
	return s.run(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}, true, fn)
}

func (s *Store) run(ctx context.Context, opts pgx.TxOptions, readOnly bool, fn func(ctx context.Context, tx port.Tx) error) (err error) {
	tx, err := s.pool.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()
	t := &pgTx{tx: tx, readOnly: readOnly}
	return fn(context.WithValue(ctx, txKey{}, t), t)
}

func (s *Store) savepoint(ctx context.Context, parent *pgTx, fn func(ctx context.Context, tx port.Tx) error) (err error) {
	sp, err := parent.tx.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = sp.Rollback(ctx)
		} else {
			err = sp.Commit(ctx)
		}
	}()
	t := &pgTx{tx: sp}
	return fn(context.WithValue(ctx, txKey{}, t), t)
}

// isSerializationFailure reports SQLSTATE 40001 and 40P01, after which the
// whole transaction may be retried.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
