package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pledge-escrow/internal/core/port"
)

func TestVault(t *testing.T) {
	v := NewVault()
	ctx := context.Background()

	r, err := v.Transfer(ctx, port.TransferRequest{CampaignID: 1, To: "x", Amount: 40, Kind: port.TransferRefund})
	require.NoError(t, err)
	assert.NotEmpty(t, r.ID)

	v.Reject("x")
	_, err = v.Transfer(ctx, port.TransferRequest{CampaignID: 1, To: "x", Amount: 1, Kind: port.TransferRefund})
	assert.Error(t, err)
	v.Accept("x")

	_, err = v.Transfer(ctx, port.TransferRequest{CampaignID: 2, To: "x", Amount: 2, Kind: port.TransferRefund})
	require.NoError(t, err)

	assert.Equal(t, uint64(42), v.Balance("x"))
	journal := v.Journal()
	require.Len(t, journal, 2)
	assert.Equal(t, r, journal[0].Receipt)
}
