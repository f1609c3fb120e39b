package domain

import (
	"time"
)

// Event topics published after an operation commits.
const (
	TopicCampaignCreated  = "campaign.created"
	TopicContributionMade = "contribution.made"
	TopicCampaignResolved = "campaign.resolved"
	TopicRefundIssued     = "refund.issued"
)

// Topics lists every event topic.
var Topics = []string{
	TopicCampaignCreated,
	TopicContributionMade,
	TopicCampaignResolved,
	TopicRefundIssued,
}

// Event is a notification emitted by the lifecycle once its operation has
// been committed.
type Event interface {
	Topic() string
	Campaign() uint64
}

// CampaignCreated is emitted when a campaign is registered.
type CampaignCreated struct {
	CampaignID uint64    `json:"campaign_id"`
	Owner      string    `json:"owner"`
	Title      string    `json:"title"`
	GoalAmount uint64    `json:"goal_amount"`
	Deadline   time.Time `json:"deadline"`
}

func (CampaignCreated) Topic() string      { return TopicCampaignCreated }
func (e CampaignCreated) Campaign() uint64 { return e.CampaignID }

// ContributionMade is emitted for every admitted pledge.
type ContributionMade struct {
	CampaignID  uint64 `json:"campaign_id"`
	Contributor string `json:"contributor"`
	Amount      uint64 `json:"amount"`
}

func (ContributionMade) Topic() string      { return TopicContributionMade }
func (e ContributionMade) Campaign() uint64 { return e.CampaignID }

// CampaignResolved is emitted when a campaign enters a terminal phase.
// AmountSettled is the payout for a successful campaign and zero for a
// failed one, since nothing moves until contributors withdraw.
type CampaignResolved struct {
	CampaignID    uint64 `json:"campaign_id"`
	GoalReached   bool   `json:"goal_reached"`
	AmountSettled uint64 `json:"amount_settled"`
}

func (CampaignResolved) Topic() string      { return TopicCampaignResolved }
func (e CampaignResolved) Campaign() uint64 { return e.CampaignID }

// RefundIssued is emitted for each successful refund withdrawal.
type RefundIssued struct {
	CampaignID  uint64 `json:"campaign_id"`
	Contributor string `json:"contributor"`
	Amount      uint64 `json:"amount"`
}

func (RefundIssued) Topic() string      { return TopicRefundIssued }
func (e RefundIssued) Campaign() uint64 { return e.CampaignID }
