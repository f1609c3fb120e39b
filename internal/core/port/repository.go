package port

import (
	"context"
	"time"

	"pledge-escrow/internal/core/domain"
)

// Store is the transactional persistence layer for the escrow ledger. It
// is an outbound port in hexagonal architecture. Implementations must be
// concurrency-safe.
type Store interface {
	// WithinTx runs fn atomically: every change made through tx is
	// committed when fn returns nil and rolled back otherwise. When ctx
	// already carries a transaction of the same store, the call joins it
	// as a nested savepoint whose failure rolls back only its own changes.
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// View runs read-only work. It joins the transaction carried by ctx
	// when there is one, so reads observe uncommitted effects of the
	// enclosing operation.
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx scopes the repositories to one transaction.
type Tx interface {
	Campaigns() CampaignRepository
	Contributions() ContributionRepository
}

// CampaignRepository persists campaign records. Inside a writable
// transaction Get locks the campaign until the transaction ends.
type CampaignRepository interface {
	// NextID allocates the next sequential id. Ids are never reused and
	// rolled-back allocations leave no gap.
	NextID(ctx context.Context) (uint64, error)
	// Count returns the number of allocated ids.
	Count(ctx context.Context) (uint64, error)
	// Insert stores a new campaign.
	Insert(ctx context.Context, c domain.Campaign) error
	// Get returns the campaign or nil when it does not exist.
	Get(ctx context.Context, id uint64) (*domain.Campaign, error)
	// Update overwrites the mutable fields of an existing campaign.
	Update(ctx context.Context, c domain.Campaign) error
	// List returns campaigns ordered by id.
	List(ctx context.Context, offset, limit uint64) ([]domain.Campaign, error)
}

// ContributionRepository persists per-contributor balances. Records are
// upserted and never deleted.
type ContributionRepository interface {
	// Balance returns the stored amount, zero when no record exists.
	Balance(ctx context.Context, campaignID uint64, contributor string) (uint64, error)
	// SetBalance creates or overwrites the record.
	SetBalance(ctx context.Context, campaignID uint64, contributor string, amount uint64, at time.Time) error
}
