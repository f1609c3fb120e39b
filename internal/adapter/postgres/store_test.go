package postgres_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pledge-escrow/internal/adapter/postgres"
	"pledge-escrow/internal/adapter/usecase"
	"pledge-escrow/internal/core/domain"
	"pledge-escrow/internal/core/port"
	"pledge-escrow/internal/core/port/mocks"
	"pledge-escrow/internal/db"
)

var t0 = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func testAddress(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("PSQL_TEST_ADDRESS")
	if addr == "" {
		t.Skip("PSQL_TEST_ADDRESS not set")
	}
	return addr
}

// newService connects to the database named by PSQL_TEST_ADDRESS, migrates
// it and empties every table.
func newService(t *testing.T, transferer port.Transferer) (*usecase.EscrowUseCase, *pgxpool.Pool) {
	t.Helper()
	addr := testAddress(t)
	_, err := db.Migrate(addr)
	require.NoError(t, err)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, addr)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE transfers, contributions, campaigns; UPDATE campaign_counter SET next_id = 0`)
	require.NoError(t, err)

	if transferer == nil {
		transferer = postgres.NewTransferJournal()
	}
	notifier := mocks.NewMockNotifier(t)
	notifier.EXPECT().Publish(mock.Anything, mock.Anything).Return().Maybe()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := usecase.NewEscrowUseCase(postgres.NewStore(pool, 3),
		usecase.NewFundTransferGuard(transferer, logger, nil), notifier, nil)
	return svc, pool
}

func createCampaign(t *testing.T, svc *usecase.EscrowUseCase, goal uint64) uint64 {
	t.Helper()
	id, err := svc.CreateCampaign(context.Background(), port.CreateCampaignReq{
		Owner: "alice", Title: "Garden", GoalAmount: goal, DurationSeconds: 60,
	}, t0)
	require.NoError(t, err)
	return id
}

func countTransfers(t *testing.T, pool *pgxpool.Pool) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT count(*) FROM transfers`).Scan(&n))
	return n
}

func TestSuccessfulCampaign(t *testing.T) {
	svc, pool := newService(t, nil)
	ctx := context.Background()

	id := createCampaign(t, svc, 100)
	assert.Equal(t, uint64(0), id)
	require.NoError(t, svc.Pledge(ctx, id, "bob", 60, t0))
	require.NoError(t, svc.Pledge(ctx, id, "bob", 40, t0))

	c, err := svc.GetCampaign(ctx, id)
	require.NoError(t, err)
	assert.True(t, c.GoalReached)
	assert.Equal(t, uint64(100), c.RaisedAmount)

	res, err := svc.Resolve(ctx, id, "alice", t0)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), res.AmountSettled)
	assert.Equal(t, 1, countTransfers(t, pool))

	_, err = svc.Resolve(ctx, id, "alice", t0)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestFailedCampaignRefund(t *testing.T) {
	svc, pool := newService(t, nil)
	ctx := context.Background()

	id := createCampaign(t, svc, 1000)
	require.NoError(t, svc.Pledge(ctx, id, "bob", 70, t0))

	after := t0.Add(61 * time.Second)
	res, err := svc.Resolve(ctx, id, "alice", after)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseResolvedFailure, res.Phase)

	amount, err := svc.Refund(ctx, id, "bob", after)
	require.NoError(t, err)
	assert.Equal(t, uint64(70), amount)

	_, err = svc.Refund(ctx, id, "bob", after)
	assert.ErrorIs(t, err, domain.ErrNothingToRefund)

	balance, err := svc.GetContribution(ctx, id, "bob")
	require.NoError(t, err)
	assert.Zero(t, balance)
	assert.Equal(t, 1, countTransfers(t, pool))
}

func TestRejectedTransferRollsBack(t *testing.T) {
	testAddress(t)
	transferer := mocks.NewMockTransferer(t)
	transferer.EXPECT().Transfer(mock.Anything, mock.Anything).Return(port.Receipt{}, assert.AnError)
	svc, _ := newService(t, transferer)
	ctx := context.Background()

	id := createCampaign(t, svc, 10)
	require.NoError(t, svc.Pledge(ctx, id, "bob", 10, t0))

	_, err := svc.Resolve(ctx, id, "alice", t0)
	assert.ErrorIs(t, err, domain.ErrTransferFailed)

	c, err := svc.GetCampaign(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.PhaseActive, c.Phase)
	assert.Equal(t, uint64(10), c.RaisedAmount)
}

func TestIDsAreSequential(t *testing.T) {
	svc, _ := newService(t, nil)

	for want := uint64(0); want < 3; want++ {
		assert.Equal(t, want, createCampaign(t, svc, 1))
	}
	n, err := svc.GetTotalCampaigns(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(3), n)

	page, err := svc.ListCampaigns(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, uint64(1), page[0].ID)
}
