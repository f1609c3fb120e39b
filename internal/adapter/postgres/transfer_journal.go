package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"pledge-escrow/internal/core/port"
)

var errNoTx = errors.New("postgres: transfer requires an open store transaction")

// TransferJournal implements port.Transferer by recording the transfer in
// the transfers table of the caller's transaction. The row commits or
// rolls back together with the ledger change that produced it; settlement
// systems read the journal afterwards.
type TransferJournal struct{}

// NewTransferJournal returns the journal transferer.
func NewTransferJournal() *TransferJournal {
	return &TransferJournal{}
}

// Transfer implements port.Transferer.
func (j *TransferJournal) Transfer(ctx context.Context, req port.TransferRequest) (port.Receipt, error) {
	t, ok := txFrom(ctx)
	if !ok || t.readOnly {
		return port.Receipt{}, errNoTx
	}
	id, _ := toID(req.CampaignID)
	receipt := port.Receipt{ID: uuid.NewString()}
	_, err := t.tx.Exec(ctx, `INSERT INTO transfers (id, campaign_id, recipient, amount, kind, created_at)
VALUES ($1,$2,$3,$4,$5,now())`, receipt.ID, id, req.To, toNumeric(req.Amount), string(req.Kind))
	if err != nil {
		return port.Receipt{}, err
	}
	return receipt, nil
}
