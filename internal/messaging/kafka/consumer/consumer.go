package consumer

import (
	"context"
	"encoding/json"

	"go-timeoff/internal/employee"
	"go-timeoff/internal/events"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeRequestChanges drops the cached balance summary of the affected
// employee whenever a request transition event arrives, so the next read
// recomputes from the database. Delivery is advisory: a lost or reordered
// event only delays a cache refresh, it can never corrupt a balance.
func ConsumeRequestChanges(
	ctx context.Context,
	reader *kafkago.Reader,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.request_changes")
	log.Info("request change consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("request change consumer stopped")
				return
			}
			log.Error("fetch request change message failed", zap.Error(err))
			continue
		}

		var event events.RequestChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode request_changed event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		cacheKey := employee.BalanceSummaryKey(event.EmployeeID)
		if err := rdb.Del(ctx, cacheKey).Err(); err != nil {
			log.Error("invalidate balance summary cache failed",
				zap.String("employee_id", event.EmployeeID),
				zap.String("key", cacheKey),
				zap.Error(err),
			)
			// leave the message uncommitted so invalidation is retried
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit request change message failed", zap.Error(err))
			continue
		}

		log.Info("balance summary cache invalidated",
			zap.String("employee_id", event.EmployeeID),
			zap.String("action", event.Action),
		)
	}
}
