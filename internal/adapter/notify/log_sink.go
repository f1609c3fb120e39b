package notify

import (
	"context"
	"log/slog"

	"pledge-escrow/internal/core/domain"
)

// LogSink writes one info record per event.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Name() string { return "log" }

func (s *LogSink) Handle(ctx context.Context, e domain.Event) {
	attrs := []slog.Attr{
		slog.String("topic", e.Topic()),
		slog.Uint64("campaign_id", e.Campaign()),
	}
	switch ev := e.(type) {
	case domain.CampaignCreated:
		attrs = append(attrs,
			slog.String("owner", ev.Owner),
			slog.Uint64("goal_amount", ev.GoalAmount),
			slog.Time("deadline", ev.Deadline))
	case domain.ContributionMade:
		attrs = append(attrs, slog.String("contributor", ev.Contributor), slog.Uint64("amount", ev.Amount))
	case domain.CampaignResolved:
		attrs = append(attrs, slog.Bool("goal_reached", ev.GoalReached), slog.Uint64("amount_settled", ev.AmountSettled))
	case domain.RefundIssued:
		attrs = append(attrs, slog.String("contributor", ev.Contributor), slog.Uint64("amount", ev.Amount))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "escrow event", attrs...)
}
