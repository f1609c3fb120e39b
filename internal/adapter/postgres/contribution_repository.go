package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// contributionRepo implements port.ContributionRepository within one
// transaction. Writers always lock the campaign row first, which
// serializes access to its contribution rows.
type contributionRepo struct {
	t *pgTx
}

// Balance returns the stored amount, zero when no row exists.
func (r contributionRepo) Balance(ctx context.Context, campaignID uint64, contributor string) (uint64, error) {
	id, ok := toID(campaignID)
	if !ok {
		return 0, nil
	}
	query := `SELECT amount FROM contributions WHERE campaign_id = $1 AND contributor = $2`
	if !r.t.readOnly {
		query += ` FOR UPDATE`
	}
	var amount pgtype.Numeric
	err := r.t.tx.QueryRow(ctx, query, id, contributor).Scan(&amount)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return fromNumeric(amount)
}

// SetBalance upserts the record. Zero rows are kept as refund markers.
func (r contributionRepo) SetBalance(ctx context.Context, campaignID uint64, contributor string, amount uint64, at time.Time) error {
	id, _ := toID(campaignID)
	_, err := r.t.tx.Exec(ctx, `INSERT INTO contributions (campaign_id, contributor, amount, updated_at)
VALUES ($1,$2,$3,$4)
ON CONFLICT (campaign_id, contributor) DO UPDATE SET amount = EXCLUDED.amount, updated_at = EXCLUDED.updated_at`,
		id, contributor, toNumeric(amount), at)
	return err
}
