package port

import (
	"context"

	"pledge-escrow/internal/core/domain"
)

// TransferKind distinguishes owner payouts from contributor refunds.
type TransferKind string

const (
	TransferPayout TransferKind = "payout"
	TransferRefund TransferKind = "refund"
)

// TransferRequest describes one outbound value movement.
type TransferRequest struct {
	CampaignID uint64
	To         string
	Amount     uint64
	Kind       TransferKind
}

// Receipt identifies a completed transfer.
type Receipt struct {
	ID string
}

// Transferer moves value out of escrow. It is an untrusted boundary: an
// implementation may call back into the escrow use case, but only with the
// context it receives, which carries the open transaction. A call made with
// a fresh context waits for the transaction that is waiting on the
// transfer, and deadlocks on the in-memory store. Withdrawals (resolve, refund) made from inside a
// transfer are rejected. A returned error aborts the operation that
// requested the transfer and rolls back all of its effects.
type Transferer interface {
	Transfer(ctx context.Context, req TransferRequest) (Receipt, error)
}

// Notifier receives events after the originating operation commits.
// Delivery is fire-and-forget.
type Notifier interface {
	Publish(ctx context.Context, event domain.Event)
}
