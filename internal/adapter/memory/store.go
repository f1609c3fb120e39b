package memory

import (
	"context"
	"errors"
	"maps"
	"sync"
	"time"

	"pledge-escrow/internal/core/domain"
	"pledge-escrow/internal/core/port"
)

var (
	errUnknownCampaign = errors.New("memory: update of unknown campaign")
	errReadOnly        = errors.New("memory: write inside read-only view")
)

type contributionKey struct {
	campaignID  uint64
	contributor string
}

// state is the full ledger image. Transactions work on a clone and swap
// it in on commit.
type state struct {
	campaigns     []domain.Campaign
	contributions map[contributionKey]domain.ContributionRecord
}

func (s *state) clone() *state {
	out := &state{
		campaigns:     make([]domain.Campaign, len(s.campaigns)),
		contributions: maps.Clone(s.contributions),
	}
	copy(out.campaigns, s.campaigns)
	return out
}

// Store implements port.Store in process memory. A single mutex
// serializes transactions, which gives the total order of operations the
// lifecycle relies on.
type Store struct {
	mu    sync.Mutex
	state *state
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{state: &state{contributions: map[contributionKey]domain.ContributionRecord{}}}
}

type txKey struct{}

// tx is bound to one Store. Nested transactions share it and restore
// st from a savepoint on failure.
type tx struct {
	store    *Store
	st       *state
	readOnly bool
}

func (s *Store) txFrom(ctx context.Context) (*tx, bool) {
	t, ok := ctx.Value(txKey{}).(*tx)
	if !ok || t.store != s {
		return nil, false
	}
	return t, true
}

// WithinTx implements port.Store.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	if t, ok := s.txFrom(ctx); ok {
		if t.readOnly {
			return errReadOnly
		}
		savepoint := t.st.clone()
		if err := fn(ctx, t); err != nil {
			t.st = savepoint
			return err
		}
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{store: s, st: s.state.clone()}
	if err := fn(context.WithValue(ctx, txKey{}, t), t); err != nil {
		return err
	}
	s.state = t.st
	return nil
}

// View implements port.Store. Outside a transaction it reads the committed
// state directly under the lock.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	if t, ok := s.txFrom(ctx); ok {
		return fn(ctx, t)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := &tx{store: s, st: s.state, readOnly: true}
	return fn(context.WithValue(ctx, txKey{}, t), t)
}

func (t *tx) Campaigns() port.CampaignRepository         { return campaignRepo{t} }
func (t *tx) Contributions() port.ContributionRepository { return contributionRepo{t} }

type campaignRepo struct{ t *tx }

func (r campaignRepo) NextID(context.Context) (uint64, error) {
	return uint64(len(r.t.st.campaigns)), nil
}

func (r campaignRepo) Count(context.Context) (uint64, error) {
	return uint64(len(r.t.st.campaigns)), nil
}

// Insert appends the campaign; ids are positions in the slice.
func (r campaignRepo) Insert(_ context.Context, c domain.Campaign) error {
	if r.t.readOnly {
		return errReadOnly
	}
	if c.ID != uint64(len(r.t.st.campaigns)) {
		return errors.New("memory: campaign id out of sequence")
	}
	r.t.st.campaigns = append(r.t.st.campaigns, c)
	return nil
}

func (r campaignRepo) Get(_ context.Context, id uint64) (*domain.Campaign, error) {
	if id >= uint64(len(r.t.st.campaigns)) {
		return nil, nil
	}
	c := r.t.st.campaigns[id]
	return &c, nil
}

func (r campaignRepo) Update(_ context.Context, c domain.Campaign) error {
	if r.t.readOnly {
		return errReadOnly
	}
	if c.ID >= uint64(len(r.t.st.campaigns)) {
		return errUnknownCampaign
	}
	r.t.st.campaigns[c.ID] = c
	return nil
}

func (r campaignRepo) List(_ context.Context, offset, limit uint64) ([]domain.Campaign, error) {
	n := uint64(len(r.t.st.campaigns))
	if offset >= n {
		return []domain.Campaign{}, nil
	}
	end := n
	if limit < n-offset {
		end = offset + limit
	}
	out := make([]domain.Campaign, end-offset)
	copy(out, r.t.st.campaigns[offset:end])
	return out, nil
}

type contributionRepo struct{ t *tx }

func (r contributionRepo) Balance(_ context.Context, campaignID uint64, contributor string) (uint64, error) {
	return r.t.st.contributions[contributionKey{campaignID, contributor}].Amount, nil
}

func (r contributionRepo) SetBalance(_ context.Context, campaignID uint64, contributor string, amount uint64, at time.Time) error {
	if r.t.readOnly {
		return errReadOnly
	}
	r.t.st.contributions[contributionKey{campaignID, contributor}] = domain.ContributionRecord{
		CampaignID:  campaignID,
		Contributor: contributor,
		Amount:      amount,
		UpdatedAt:   at,
	}
	return nil
}
