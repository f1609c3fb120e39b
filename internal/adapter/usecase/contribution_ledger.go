package usecase

import (
	"context"
	"fmt"
	"time"

	"pledge-escrow/internal/core/domain"
	"pledge-escrow/internal/core/port"
)

// ContributionLedger tracks the cumulative pledge of every contributor per
// campaign. Balances only grow through Accumulate and are zeroed exactly
// once by TakeAll.
type ContributionLedger struct {
	repo port.ContributionRepository
}

// NewContributionLedger binds the ledger to a transaction-scoped repository.
func NewContributionLedger(repo port.ContributionRepository) ContributionLedger {
	return ContributionLedger{repo: repo}
}

// Accumulate adds amount to the contributor's running total and returns
// the new total.
func (l ContributionLedger) Accumulate(ctx context.Context, campaignID uint64, contributor string, amount uint64, now time.Time) (uint64, error) {
	if amount == 0 {
		return 0, domain.New(domain.CodeInvalidInput, "amount must be positive")
	}
	balance, err := l.repo.Balance(ctx, campaignID, contributor)
	if err != nil {
		return 0, fmt.Errorf("read contribution: %w", err)
	}
	total, err := domain.AddAmount(balance, amount)
	if err != nil {
		return 0, err
	}
	if err = l.repo.SetBalance(ctx, campaignID, contributor, total, now); err != nil {
		return 0, fmt.Errorf("write contribution: %w", err)
	}
	return total, nil
}

// TakeAll zeroes the contributor's balance and returns what it held. A
// second call returns 0.
func (l ContributionLedger) TakeAll(ctx context.Context, campaignID uint64, contributor string, now time.Time) (uint64, error) {
	balance, err := l.repo.Balance(ctx, campaignID, contributor)
	if err != nil {
		return 0, fmt.Errorf("read contribution: %w", err)
	}
	if balance == 0 {
		return 0, nil
	}
	if err = l.repo.SetBalance(ctx, campaignID, contributor, 0, now); err != nil {
		return 0, fmt.Errorf("write contribution: %w", err)
	}
	return balance, nil
}

// BalanceOf returns the contributor's current balance.
func (l ContributionLedger) BalanceOf(ctx context.Context, campaignID uint64, contributor string) (uint64, error) {
	return l.repo.Balance(ctx, campaignID, contributor)
}
