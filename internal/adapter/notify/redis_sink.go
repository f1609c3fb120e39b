package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"pledge-escrow/internal/config/configs"
	"pledge-escrow/internal/core/domain"
)

// StreamWriter is the part of the redis client the sink needs.
type StreamWriter interface {
	XAdd(ctx context.Context, a *redis.XAddArgs) *redis.StringCmd
}

// RedisSink appends every event to a redis stream as
// {id, topic, campaign_id, at, payload}. Failures are logged and the
// event is dropped.
type RedisSink struct {
	client  StreamWriter
	stream  string
	maxLen  int64
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewRedisClient connects to redis and checks the connection.
func NewRedisClient(ctx context.Context, cfg configs.Redis) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctxPing).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func NewRedisSink(client StreamWriter, cfg configs.Redis, logger *slog.Logger) *RedisSink {
	return &RedisSink{
		client:  client,
		stream:  cfg.Stream,
		maxLen:  cfg.MaxLen,
		timeout: 3 * time.Second,
		logger:  logger,
		now:     time.Now,
	}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Handle(ctx context.Context, e domain.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		s.logger.Error("encode event", slog.String("topic", e.Topic()), slog.Any("error", err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{
			"id":          uuid.NewString(),
			"topic":       e.Topic(),
			"campaign_id": strconv.FormatUint(e.Campaign(), 10),
			"at":          s.now().UTC().Format(time.RFC3339Nano),
			"payload":     string(payload),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}
	if err = s.client.XAdd(ctx, args).Err(); err != nil {
		s.logger.Warn("event not streamed",
			slog.String("stream", s.stream),
			slog.String("topic", e.Topic()),
			slog.Uint64("campaign_id", e.Campaign()),
			slog.Any("error", err))
	}
}
