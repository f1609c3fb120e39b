package db

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"pledge-escrow/internal/core/port"
)

// Seed creates demo campaigns with random pledges through the use case,
// so the same data lands in whichever store backs it. Every second
// campaign gets enough pledges to reach its goal. It returns the ids
// created.
func Seed(ctx context.Context, svc port.EscrowUseCase, now time.Time) ([]uint64, error) {
	r := rand.New(rand.NewSource(now.UnixNano()))

	ids := make([]uint64, 0, 5)
	for i := 1; i <= 5; i++ {
		goal := uint64(10000 * i) // 100.00 units per step
		id, err := svc.CreateCampaign(ctx, port.CreateCampaignReq{
			Owner:           fmt.Sprintf("owner-%d", i),
			Title:           fmt.Sprintf("Campaign %d", i),
			Description:     fmt.Sprintf("Demo campaign %d", i),
			GoalAmount:      goal,
			DurationSeconds: uint64((7 * 24 * time.Hour).Seconds()),
		}, now)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)

		target := goal / 2
		if i%2 == 0 {
			target = goal
		}
		var raised uint64
		for raised < target {
			amount := uint64(r.Intn(2500) + 500)
			if raised+amount > target {
				amount = target - raised
			}
			contributor := "backer-" + uuid.NewString()[:8]
			if err = svc.Pledge(ctx, id, contributor, amount, now); err != nil {
				return ids, err
			}
			raised += amount
		}
	}
	return ids, nil
}
