package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"pledge-escrow/internal/core/domain"
)

const campaignColumns = `id, owner, title, description, goal_amount, raised_amount,
        deadline, phase, goal_reached, created_at, resolved_at`

// campaignRepo implements port.CampaignRepository within one transaction.
type campaignRepo struct {
	t *pgTx
}

// NextID bumps the single-row counter. The counter is transactional, so
// a rolled-back creation does not leave a gap.
func (r campaignRepo) NextID(ctx context.Context) (uint64, error) {
	var id int64
	err := r.t.tx.QueryRow(ctx, `UPDATE campaign_counter SET next_id = next_id + 1 RETURNING next_id - 1`).Scan(&id)
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// Count returns the number of allocated ids.
func (r campaignRepo) Count(ctx context.Context) (uint64, error) {
	var n int64
	if err := r.t.tx.QueryRow(ctx, `SELECT next_id FROM campaign_counter`).Scan(&n); err != nil {
		return 0, err
	}
	return uint64(n), nil
}

// Insert stores a new campaign row.
func (r campaignRepo) Insert(ctx context.Context, c domain.Campaign) error {
	id, ok := toID(c.ID)
	if !ok {
		return fmt.Errorf("campaign id %d out of range", c.ID)
	}
	_, err := r.t.tx.Exec(ctx, `INSERT INTO campaigns
    (id, owner, title, description, goal_amount, raised_amount, deadline, phase, goal_reached, created_at, resolved_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		id, c.Owner, c.Title, c.Description, toNumeric(c.GoalAmount), toNumeric(c.RaisedAmount),
		c.Deadline, string(c.Phase), c.GoalReached, c.CreatedAt, c.ResolvedAt)
	return err
}

// Get returns a campaign by id, locking the row in writable transactions.
func (r campaignRepo) Get(ctx context.Context, id uint64) (*domain.Campaign, error) {
	key, ok := toID(id)
	if !ok {
		return nil, nil
	}
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`
	if !r.t.readOnly {
		query += ` FOR UPDATE`
	}
	rows, err := r.t.tx.Query(ctx, query, key)
	if err != nil {
		return nil, err
	}
	c, err := pgx.CollectOneRow(rows, scanCampaign)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update writes the mutable campaign fields.
func (r campaignRepo) Update(ctx context.Context, c domain.Campaign) error {
	id, ok := toID(c.ID)
	if !ok {
		return fmt.Errorf("campaign id %d out of range", c.ID)
	}
	tag, err := r.t.tx.Exec(ctx, `UPDATE campaigns
SET raised_amount = $2, phase = $3, goal_reached = $4, resolved_at = $5
WHERE id = $1`, id, toNumeric(c.RaisedAmount), string(c.Phase), c.GoalReached, c.ResolvedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("campaign %d not updated", c.ID)
	}
	return nil
}

// List returns campaigns ordered by id.
func (r campaignRepo) List(ctx context.Context, offset, limit uint64) ([]domain.Campaign, error) {
	off, ok := toID(offset)
	if !ok {
		return []domain.Campaign{}, nil
	}
	lim, _ := toID(limit)
	rows, err := r.t.tx.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns ORDER BY id OFFSET $1 LIMIT $2`, off, lim)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanCampaign)
}

func scanCampaign(row pgx.CollectableRow) (domain.Campaign, error) {
	var (
		c            domain.Campaign
		id           int64
		phase        string
		goal, raised pgtype.Numeric
	)
	err := row.Scan(
		&id,
		&c.Owner,
		&c.Title,
		&c.Description,
		&goal,
		&raised,
		&c.Deadline,
		&phase,
		&c.GoalReached,
		&c.CreatedAt,
		&c.ResolvedAt,
	)
	if err != nil {
		return c, err
	}
	c.ID = uint64(id)
	c.Phase = domain.Phase(phase)
	if !c.Phase.Valid() {
		return c, fmt.Errorf("campaign %d has unknown phase %q", id, phase)
	}
	if c.GoalAmount, err = fromNumeric(goal); err != nil {
		return c, err
	}
	if c.RaisedAmount, err = fromNumeric(raised); err != nil {
		return c, err
	}
	return c, nil
}
