package usecase

import (
	"context"
	"fmt"
	"time"

	"pledge-escrow/internal/core/domain"
	"pledge-escrow/internal/core/port"
	"pledge-escrow/internal/metrics"
)

// EscrowUseCase is the campaign lifecycle controller. It enforces the
// state machine Active -> ResolvedSuccess | ResolvedFailure on top of the
// registry and the contribution ledger, and delegates value movement to
// the FundTransferGuard. Every operation runs in one store transaction;
// events are published only after that transaction commits.
type EscrowUseCase struct {
	store    port.Store
	guard    *FundTransferGuard
	notifier port.Notifier
	metrics  *metrics.Metrics
}

// NewEscrowUseCase creates the lifecycle controller.
func NewEscrowUseCase(store port.Store, guard *FundTransferGuard, notifier port.Notifier, m *metrics.Metrics) *EscrowUseCase {
	return &EscrowUseCase{store: store, guard: guard, notifier: notifier, metrics: m}
}

type outboxKey struct{}

type outbox struct {
	events []domain.Event
}

func (o *outbox) add(e domain.Event) {
	o.events = append(o.events, e)
}

// atomically runs fn in a transaction and publishes the events it emitted
// once the outermost transaction commits. A nested call (one made from a
// transfer callback) hands its events to the enclosing operation instead.
func (u *EscrowUseCase) atomically(ctx context.Context, fn func(ctx context.Context, tx port.Tx, emit func(domain.Event)) error) error {
	parent, nested := ctx.Value(outboxKey{}).(*outbox)
	box := &outbox{}
	err := u.store.WithinTx(ctx, func(ctx context.Context, tx port.Tx) error {
		// The store may retry fn; keep only the events of the last attempt.
		box.events = box.events[:0]
		return fn(context.WithValue(ctx, outboxKey{}, box), tx, box.add)
	})
	if err != nil {
		return err
	}
	if nested {
		parent.events = append(parent.events, box.events...)
		return nil
	}
	for _, e := range box.events {
		u.notifier.Publish(ctx, e)
	}
	return nil
}

// CreateCampaign registers a new active campaign.
func (u *EscrowUseCase) CreateCampaign(ctx context.Context, req port.CreateCampaignReq, now time.Time) (id uint64, err error) {
	defer func() { u.metrics.ObserveOperation("create_campaign", err) }()

	err = u.atomically(ctx, func(ctx context.Context, tx port.Tx, emit func(domain.Event)) error {
		c, err := NewCampaignRegistry(tx.Campaigns()).Create(ctx, req, now)
		if err != nil {
			return err
		}
		id = c.ID
		emit(domain.CampaignCreated{
			CampaignID: c.ID,
			Owner:      c.Owner,
			Title:      c.Title,
			GoalAmount: c.GoalAmount,
			Deadline:   c.Deadline,
		})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Pledge records amount for contributor and latches GoalReached in the
// same step when the raised total meets the goal.
func (u *EscrowUseCase) Pledge(ctx context.Context, campaignID uint64, contributor string, amount uint64, now time.Time) (err error) {
	defer func() { u.metrics.ObserveOperation("pledge", err) }()

	return u.atomically(ctx, func(ctx context.Context, tx port.Tx, emit func(domain.Event)) error {
		c, err := NewCampaignRegistry(tx.Campaigns()).Get(ctx, campaignID)
		if err != nil {
			return err
		}
		if contributor == "" {
			return domain.New(domain.CodeInvalidInput, "contributor is required")
		}
		if amount == 0 {
			return domain.New(domain.CodeInvalidInput, "amount must be positive")
		}
		if c.Phase != domain.PhaseActive {
			return domain.New(domain.CodeInvalidState, fmt.Sprintf("campaign %d is %s", c.ID, c.Phase))
		}
		if !c.AcceptsPledgesAt(now) {
			return domain.New(domain.CodeInvalidState,
				fmt.Sprintf("campaign %d deadline passed at %s", c.ID, c.Deadline.Format(time.RFC3339)))
		}

		if _, err = NewContributionLedger(tx.Contributions()).Accumulate(ctx, c.ID, contributor, amount, now); err != nil {
			return err
		}
		if c.RaisedAmount, err = domain.AddAmount(c.RaisedAmount, amount); err != nil {
			return err
		}
		c.MarkGoalReached()
		if err = tx.Campaigns().Update(ctx, *c); err != nil {
			return fmt.Errorf("update campaign %d: %w", c.ID, err)
		}

		emit(domain.ContributionMade{CampaignID: c.ID, Contributor: contributor, Amount: amount})
		return nil
	})
}

// Resolve moves the campaign to its terminal phase. On success the escrow
// total is zeroed in the campaign record before the payout is attempted;
// a rejected payout rolls the whole resolution back.
func (u *EscrowUseCase) Resolve(ctx context.Context, campaignID uint64, caller string, now time.Time) (res *port.Resolution, err error) {
	defer func() { u.metrics.ObserveOperation("resolve", err) }()

	err = u.atomically(ctx, func(ctx context.Context, tx port.Tx, emit func(domain.Event)) error {
		if err := u.guard.Enter(ctx, campaignID); err != nil {
			return err
		}
		c, err := NewCampaignRegistry(tx.Campaigns()).Get(ctx, campaignID)
		if err != nil {
			return err
		}
		if c.Owner != caller {
			return domain.ErrUnauthorized
		}
		if c.Phase.Terminal() {
			return domain.New(domain.CodeInvalidState, fmt.Sprintf("campaign %d already %s", c.ID, c.Phase))
		}
		if !c.ResolvableAt(now) {
			return domain.New(domain.CodeInvalidState,
				fmt.Sprintf("campaign %d goal not reached and deadline %s not passed", c.ID, c.Deadline.Format(time.RFC3339)))
		}

		resolvedAt := now
		c.ResolvedAt = &resolvedAt

		if !c.GoalReached {
			c.Phase = domain.PhaseResolvedFailure
			if err = tx.Campaigns().Update(ctx, *c); err != nil {
				return fmt.Errorf("update campaign %d: %w", c.ID, err)
			}
			res = &port.Resolution{Phase: c.Phase}
			emit(domain.CampaignResolved{CampaignID: c.ID})
			return nil
		}

		payout := c.RaisedAmount
		c.Phase = domain.PhaseResolvedSuccess
		c.RaisedAmount = 0
		if err = tx.Campaigns().Update(ctx, *c); err != nil {
			return fmt.Errorf("update campaign %d: %w", c.ID, err)
		}
		if _, err = u.guard.Transfer(ctx, port.TransferRequest{
			CampaignID: c.ID,
			To:         c.Owner,
			Amount:     payout,
			Kind:       port.TransferPayout,
		}); err != nil {
			return err
		}

		res = &port.Resolution{Phase: c.Phase, AmountSettled: payout}
		emit(domain.CampaignResolved{CampaignID: c.ID, GoalReached: true, AmountSettled: payout})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Refund pays contributor's whole balance back from a failed campaign.
// The balance is zeroed before the transfer, so a repeated or reentrant
// refund finds nothing to withdraw.
func (u *EscrowUseCase) Refund(ctx context.Context, campaignID uint64, contributor string, now time.Time) (amount uint64, err error) {
	defer func() { u.metrics.ObserveOperation("refund", err) }()

	err = u.atomically(ctx, func(ctx context.Context, tx port.Tx, emit func(domain.Event)) error {
		if err := u.guard.Enter(ctx, campaignID); err != nil {
			return err
		}
		c, err := NewCampaignRegistry(tx.Campaigns()).Get(ctx, campaignID)
		if err != nil {
			return err
		}
		if c.Phase != domain.PhaseResolvedFailure {
			return domain.New(domain.CodeInvalidState, fmt.Sprintf("campaign %d is %s, refunds need %s",
				c.ID, c.Phase, domain.PhaseResolvedFailure))
		}

		taken, err := NewContributionLedger(tx.Contributions()).TakeAll(ctx, c.ID, contributor, now)
		if err != nil {
			return err
		}
		if taken == 0 {
			return domain.New(domain.CodeNothingToRefund,
				fmt.Sprintf("contributor %q has no balance in campaign %d", contributor, c.ID))
		}
		if c.RaisedAmount, err = domain.SubAmount(c.RaisedAmount, taken); err != nil {
			return err
		}
		if err = tx.Campaigns().Update(ctx, *c); err != nil {
			return fmt.Errorf("update campaign %d: %w", c.ID, err)
		}
		if _, err = u.guard.Transfer(ctx, port.TransferRequest{
			CampaignID: c.ID,
			To:         contributor,
			Amount:     taken,
			Kind:       port.TransferRefund,
		}); err != nil {
			return err
		}

		amount = taken
		emit(domain.RefundIssued{CampaignID: c.ID, Contributor: contributor, Amount: taken})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}

// GetCampaign returns a snapshot of the campaign.
func (u *EscrowUseCase) GetCampaign(ctx context.Context, campaignID uint64) (*domain.Campaign, error) {
	var c *domain.Campaign
	err := u.store.View(ctx, func(ctx context.Context, tx port.Tx) (err error) {
		c, err = NewCampaignRegistry(tx.Campaigns()).Get(ctx, campaignID)
		return err
	})
	return c, err
}

// GetContribution returns the contributor's balance. Unknown campaigns and
// contributors read as zero.
func (u *EscrowUseCase) GetContribution(ctx context.Context, campaignID uint64, contributor string) (uint64, error) {
	var amount uint64
	err := u.store.View(ctx, func(ctx context.Context, tx port.Tx) (err error) {
		amount, err = NewContributionLedger(tx.Contributions()).BalanceOf(ctx, campaignID, contributor)
		return err
	})
	return amount, err
}

// GetTotalCampaigns returns the number of campaigns ever created.
func (u *EscrowUseCase) GetTotalCampaigns(ctx context.Context) (uint64, error) {
	var n uint64
	err := u.store.View(ctx, func(ctx context.Context, tx port.Tx) (err error) {
		n, err = NewCampaignRegistry(tx.Campaigns()).Count(ctx)
		return err
	})
	return n, err
}

// ListCampaigns returns a page of campaigns ordered by id.
func (u *EscrowUseCase) ListCampaigns(ctx context.Context, offset, limit uint64) ([]domain.Campaign, error) {
	var out []domain.Campaign
	err := u.store.View(ctx, func(ctx context.Context, tx port.Tx) (err error) {
		out, err = NewCampaignRegistry(tx.Campaigns()).List(ctx, offset, limit)
		return err
	})
	return out, err
}
