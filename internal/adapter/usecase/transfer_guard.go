package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"pledge-escrow/internal/core/domain"
	"pledge-escrow/internal/core/port"
	"pledge-escrow/internal/metrics"
)

type inFlightKey struct{}

// inFlight marks a transfer under way on the current call path.
type inFlight struct {
	campaignID uint64
	kind       port.TransferKind
}

// FundTransferGuard performs payouts and refunds. Callers must commit the
// state change that makes a withdrawal non-repeatable before calling
// Transfer. The guard is single-flight per call path: while a transfer is
// under way, resolve and refund calls made from inside it are rejected for
// every campaign, since the enclosing operation can still roll back their
// ledger effects after their value has left escrow.
type FundTransferGuard struct {
	transferer port.Transferer
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// NewFundTransferGuard wraps transferer.
func NewFundTransferGuard(transferer port.Transferer, logger *slog.Logger, m *metrics.Metrics) *FundTransferGuard {
	return &FundTransferGuard{transferer: transferer, logger: logger, metrics: m}
}

// Enter fails with InvalidState when ctx descends from any transfer.
func (g *FundTransferGuard) Enter(ctx context.Context, campaignID uint64) error {
	if f, ok := ctx.Value(inFlightKey{}).(*inFlight); ok {
		return domain.New(domain.CodeInvalidState, fmt.Sprintf(
			"campaign %d: withdrawal not allowed during %s of campaign %d", campaignID, f.kind, f.campaignID))
	}
	return nil
}

// Transfer moves req.Amount to req.To. Any transferer error is reported as
// TransferFailed so the enclosing transaction rolls back.
func (g *FundTransferGuard) Transfer(ctx context.Context, req port.TransferRequest) (port.Receipt, error) {
	ctx = context.WithValue(ctx, inFlightKey{}, &inFlight{campaignID: req.CampaignID, kind: req.Kind})

	receipt, err := g.transferer.Transfer(ctx, req)
	if err != nil {
		g.logger.Warn("transfer rejected",
			slog.Uint64("campaign_id", req.CampaignID),
			slog.String("kind", string(req.Kind)),
			slog.String("to", req.To),
			slog.Uint64("amount", req.Amount),
			slog.Any("error", err),
		)
		g.metrics.ObserveTransferFailure(string(req.Kind))
		return port.Receipt{}, domain.Wrap(domain.CodeTransferFailed,
			fmt.Sprintf("%s of %d to %s", req.Kind, req.Amount, req.To), err)
	}
	g.logger.Info("transfer completed",
		slog.Uint64("campaign_id", req.CampaignID),
		slog.String("kind", string(req.Kind)),
		slog.String("receipt", receipt.ID),
		slog.Uint64("amount", req.Amount),
	)
	return receipt, nil
}
