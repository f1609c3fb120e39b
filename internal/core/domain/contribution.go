package domain

import (
	"math"
	"time"
)

// ContributionRecord is the cumulative pledge of one contributor to one
// campaign. A zero amount is a valid "already refunded" marker; records are
// never deleted.
type ContributionRecord struct {
	CampaignID  uint64
	Contributor string
	Amount      uint64
	UpdatedAt   time.Time
}

// AddAmount returns a+b or ErrOverflow when the sum does not fit in uint64.
func AddAmount(a, b uint64) (uint64, error) {
	if b > math.MaxUint64-a {
		return 0, ErrOverflow
	}
	return a + b, nil
}

// SubAmount returns a-b or an InvalidState error on underflow, which would
// mean the escrow books no longer balance.
func SubAmount(a, b uint64) (uint64, error) {
	if b > a {
		return 0, New(CodeInvalidState, "escrow balance underflow")
	}
	return a - b, nil
}
