package port

import (
	"context"
	"time"

	"pledge-escrow/internal/core/domain"
)

// EscrowUseCase defines the business operations exposed by the escrow
// ledger. This interface represents the primary port into the application
// domain. Every operation is atomic: it is either fully applied or leaves
// no trace. The environment clock is passed explicitly on each call and is
// never cached.
type EscrowUseCase interface {
	// CreateCampaign registers a new campaign owned by req.Owner and
	// returns its sequential id.
	CreateCampaign(ctx context.Context, req CreateCampaignReq, now time.Time) (uint64, error)

	// Pledge adds amount to contributor's escrowed balance for the
	// campaign and latches the goal flag when the target is met.
	Pledge(ctx context.Context, campaignID uint64, contributor string, amount uint64, now time.Time) error

	// Resolve closes the campaign. Only the owner may call it, and only
	// once the goal has been reached or the deadline has passed. A reached
	// goal pays the escrowed total to the owner; otherwise contributors
	// become eligible for refunds.
	Resolve(ctx context.Context, campaignID uint64, caller string, now time.Time) (*Resolution, error)

	// Refund withdraws contributor's full balance from a failed campaign
	// and returns the amount transferred.
	Refund(ctx context.Context, campaignID uint64, contributor string, now time.Time) (uint64, error)

	// GetCampaign returns a snapshot of the campaign.
	GetCampaign(ctx context.Context, campaignID uint64) (*domain.Campaign, error)

	// GetContribution returns contributor's current balance, zero when the
	// contributor never pledged or was already refunded.
	GetContribution(ctx context.Context, campaignID uint64, contributor string) (uint64, error)

	// GetTotalCampaigns returns the number of campaigns ever created.
	GetTotalCampaigns(ctx context.Context) (uint64, error)

	// ListCampaigns returns campaigns ordered by id.
	ListCampaigns(ctx context.Context, offset, limit uint64) ([]domain.Campaign, error)
}

// CreateCampaignReq carries the caller-supplied campaign attributes.
type CreateCampaignReq struct {
	Owner           string
	Title           string
	Description     string
	GoalAmount      uint64
	DurationSeconds uint64
}

// Resolution reports the terminal phase chosen by Resolve and the amount
// paid out to the owner (zero for a failed campaign).
type Resolution struct {
	Phase         domain.Phase
	AmountSettled uint64
}
