package domain

import "time"

// Phase is the lifecycle stage of a campaign. Active is the only
// non-terminal phase.
type Phase string

const (
	PhaseActive          Phase = "active"
	PhaseResolvedSuccess Phase = "resolved_success"
	PhaseResolvedFailure Phase = "resolved_failure"
)

// Terminal reports whether no further transitions are possible.
func (p Phase) Terminal() bool {
	return p == PhaseResolvedSuccess || p == PhaseResolvedFailure
}

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseActive, PhaseResolvedSuccess, PhaseResolvedFailure:
		return true
	}
	return false
}

// Campaign represents one fundraising goal held in escrow.
// Amounts are stored in integer units (e.g. cents).
type Campaign struct {
	ID          uint64
	Owner       string
	Title       string
	Description string
	GoalAmount  uint64
	// RaisedAmount is the escrowed total. It drops to zero after a payout
	// and shrinks with each refund of a failed campaign.
	RaisedAmount uint64
	Deadline     time.Time
	Phase        Phase
	// GoalReached is set once RaisedAmount meets GoalAmount and is never
	// cleared afterwards.
	GoalReached bool
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}

// AcceptsPledgesAt reports whether a pledge made at now may be admitted.
// The deadline itself is still inside the pledge window.
func (c *Campaign) AcceptsPledgesAt(now time.Time) bool {
	return c.Phase == PhaseActive && !now.After(c.Deadline)
}

// ResolvableAt reports whether the owner may close the campaign at now:
// either the goal has been reached or the deadline has passed.
func (c *Campaign) ResolvableAt(now time.Time) bool {
	return c.Phase == PhaseActive && (c.GoalReached || now.After(c.Deadline))
}

// MarkGoalReached latches the goal flag when the raised total covers the
// goal. It never resets the flag.
func (c *Campaign) MarkGoalReached() {
	if c.RaisedAmount >= c.GoalAmount {
		c.GoalReached = true
	}
}
