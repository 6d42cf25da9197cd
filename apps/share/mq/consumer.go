package mq

import (
	"context"
	"errors"

	"ShareServer/apps/share/internal/service"
	rediskey "ShareServer/consts/redisKey"
	"ShareServer/pkg/logger"
	"ShareServer/pkg/util"

	"github.com/redis/go-redis/v9"
	segkafka "github.com/segmentio/kafka-go"
)

// RelationEventConsumer 关系接受事件消费者。
// 投递保证是 at-least-once：以 event_id 在 Redis 做 SETNX 去重，
// 重投事件不会二次触发回填（回填本身也幂等，去重只是省掉重复开销）。
type RelationEventConsumer struct {
	reader   *segkafka.Reader
	rdb      *redis.Client
	backfill service.IBackfillService
}

// NewRelationEventConsumer 创建消费者
func NewRelationEventConsumer(reader *segkafka.Reader, rdb *redis.Client, backfill service.IBackfillService) *RelationEventConsumer {
	return &RelationEventConsumer{
		reader:   reader,
		rdb:      rdb,
		backfill: backfill,
	}
}

// Start 阻塞消费，直到 ctx 取消。处理成功才提交位点；
// 处理失败时释放去重标记且不提交，重启后可重放。
func (c *RelationEventConsumer) Start(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		c.handleMessage(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			logger.Error(ctx, "位点提交失败",
				logger.Int64("offset", msg.Offset),
				logger.ErrorField("error", err),
			)
		}
	}
}

func (c *RelationEventConsumer) handleMessage(ctx context.Context, msg segkafka.Message) {
	event, err := DecodeRelationAcceptedEvent(msg.Value)
	if err != nil {
		// 消息体损坏无法重试，记录后跳过
		logger.Error(ctx, "关系事件反序列化失败",
			logger.Int64("offset", msg.Offset),
			logger.ErrorField("error", err),
		)
		return
	}
	if event.Status != StatusAccepted || event.EventID == "" {
		logger.Warn(ctx, "忽略非法关系事件",
			logger.String("event_id", event.EventID),
			logger.String("status", event.Status),
		)
		return
	}

	msgCtx := c.eventContext(event)

	if !c.claimEvent(msgCtx, event.EventID) {
		logger.Info(msgCtx, "关系事件已处理过，跳过",
			logger.String("event_id", event.EventID),
		)
		return
	}

	if err := c.backfill.HandleAccepted(msgCtx, event.SourceUuid, event.TargetUuid); err != nil {
		// 释放去重标记，让重投/重放有机会补齐
		c.releaseEvent(msgCtx, event.EventID)
		logger.Error(msgCtx, "关系回填处理失败",
			logger.String("event_id", event.EventID),
			logger.String("source_uuid", event.SourceUuid),
			logger.String("target_uuid", event.TargetUuid),
			logger.ErrorField("error", err),
		)
		return
	}

	logger.Info(msgCtx, "关系事件处理完成",
		logger.String("event_id", event.EventID),
	)
}

// claimEvent SETNX 抢占事件处理权；Redis 不可用时放行（回填幂等）
func (c *RelationEventConsumer) claimEvent(ctx context.Context, eventID string) bool {
	if c.rdb == nil {
		return true
	}
	ok, err := c.rdb.SetNX(ctx, rediskey.AcceptedEventKey(eventID), "1", rediskey.AcceptedEventTTL).Result()
	if err != nil {
		logger.Warn(ctx, "事件去重标记写入失败，按未处理继续",
			logger.String("event_id", eventID),
			logger.ErrorField("error", err),
		)
		return true
	}
	return ok
}

func (c *RelationEventConsumer) releaseEvent(ctx context.Context, eventID string) {
	if c.rdb == nil {
		return
	}
	if err := c.rdb.Del(ctx, rediskey.AcceptedEventKey(eventID)).Err(); err != nil {
		logger.Warn(ctx, "事件去重标记释放失败",
			logger.String("event_id", eventID),
			logger.ErrorField("error", err),
		)
	}
}

// eventContext 恢复事件携带的 trace_id，缺失时补一个
func (c *RelationEventConsumer) eventContext(event RelationAcceptedEvent) context.Context {
	traceID := event.TraceID
	if traceID == "" {
		traceID = util.NewUUID()
	}
	return context.WithValue(context.Background(), "trace_id", traceID)
}
