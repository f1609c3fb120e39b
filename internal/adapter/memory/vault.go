package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"pledge-escrow/internal/core/domain"
	"pledge-escrow/internal/core/port"
)

// Transfer is one entry of the vault journal.
type Transfer struct {
	Receipt port.Receipt
	Request port.TransferRequest
}

// Vault implements port.Transferer by crediting in-memory accounts. It
// stands in for the payment rail in development and tests. Recipients can
// be marked as rejecting to exercise the rollback path.
type Vault struct {
	mu        sync.Mutex
	balances  map[string]uint64
	journal   []Transfer
	rejecting map[string]bool
}

// NewVault returns an empty vault.
func NewVault() *Vault {
	return &Vault{
		balances:  map[string]uint64{},
		rejecting: map[string]bool{},
	}
}

// Reject makes every future transfer to account fail.
func (v *Vault) Reject(account string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.rejecting[account] = true
}

// Accept clears a previous Reject.
func (v *Vault) Accept(account string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.rejecting, account)
}

// Transfer implements port.Transferer.
func (v *Vault) Transfer(_ context.Context, req port.TransferRequest) (port.Receipt, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.rejecting[req.To] {
		return port.Receipt{}, fmt.Errorf("recipient %q rejected transfer", req.To)
	}
	balance, err := domain.AddAmount(v.balances[req.To], req.Amount)
	if err != nil {
		return port.Receipt{}, err
	}
	v.balances[req.To] = balance

	receipt := port.Receipt{ID: uuid.NewString()}
	v.journal = append(v.journal, Transfer{Receipt: receipt, Request: req})
	return receipt, nil
}

// Balance returns the total credited to account.
func (v *Vault) Balance(account string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.balances[account]
}

// Journal returns a copy of all completed transfers in order.
func (v *Vault) Journal() []Transfer {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]Transfer, len(v.journal))
	copy(out, v.journal)
	return out
}
