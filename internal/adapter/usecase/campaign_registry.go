package usecase

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"pledge-escrow/internal/core/domain"
	"pledge-escrow/internal/core/port"
)

const (
	// DefaultListLimit applies when a listing request sets no limit.
	DefaultListLimit = 20
	// MaxListLimit caps a single listing page.
	MaxListLimit = 100

	maxDurationSeconds = uint64(math.MaxInt64 / int64(time.Second))
)

// CampaignRegistry owns campaign records: it validates and allocates new
// campaigns and resolves ids. There is no deletion; campaigns stay for
// audit.
type CampaignRegistry struct {
	repo port.CampaignRepository
}

// NewCampaignRegistry binds the registry to a transaction-scoped repository.
func NewCampaignRegistry(repo port.CampaignRepository) CampaignRegistry {
	return CampaignRegistry{repo: repo}
}

// Create validates req and stores a new active campaign whose deadline is
// now plus the requested duration.
func (r CampaignRegistry) Create(ctx context.Context, req port.CreateCampaignReq, now time.Time) (domain.Campaign, error) {
	switch {
	case req.Owner == "":
		return domain.Campaign{}, domain.New(domain.CodeInvalidInput, "owner is required")
	case strings.TrimSpace(req.Title) == "":
		return domain.Campaign{}, domain.New(domain.CodeInvalidInput, "title is required")
	case req.GoalAmount == 0:
		return domain.Campaign{}, domain.New(domain.CodeInvalidInput, "goal amount must be positive")
	case req.DurationSeconds == 0:
		return domain.Campaign{}, domain.New(domain.CodeInvalidInput, "duration must be positive")
	case req.DurationSeconds > maxDurationSeconds:
		return domain.Campaign{}, domain.New(domain.CodeOverflow, "duration exceeds representable range")
	}

	id, err := r.repo.NextID(ctx)
	if err != nil {
		return domain.Campaign{}, fmt.Errorf("allocate campaign id: %w", err)
	}
	c := domain.Campaign{
		ID:          id,
		Owner:       req.Owner,
		Title:       req.Title,
		Description: req.Description,
		GoalAmount:  req.GoalAmount,
		Deadline:    now.Add(time.Duration(req.DurationSeconds) * time.Second),
		Phase:       domain.PhaseActive,
		CreatedAt:   now,
	}
	if err = r.repo.Insert(ctx, c); err != nil {
		return domain.Campaign{}, fmt.Errorf("insert campaign %d: %w", id, err)
	}
	return c, nil
}

// Get returns the campaign or a NotFound error.
func (r CampaignRegistry) Get(ctx context.Context, id uint64) (*domain.Campaign, error) {
	c, err := r.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get campaign %d: %w", id, err)
	}
	if c == nil {
		return nil, domain.New(domain.CodeNotFound, fmt.Sprintf("campaign %d not found", id))
	}
	return c, nil
}

// Exists reports whether id has been allocated.
func (r CampaignRegistry) Exists(ctx context.Context, id uint64) (bool, error) {
	n, err := r.repo.Count(ctx)
	if err != nil {
		return false, err
	}
	return id < n, nil
}

// Count returns the number of campaigns ever created.
func (r CampaignRegistry) Count(ctx context.Context) (uint64, error) {
	return r.repo.Count(ctx)
}

// List returns a page of campaigns ordered by id.
func (r CampaignRegistry) List(ctx context.Context, offset, limit uint64) ([]domain.Campaign, error) {
	if limit == 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return r.repo.List(ctx, offset, limit)
}
