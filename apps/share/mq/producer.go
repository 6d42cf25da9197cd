package mq

import (
	"context"
	"time"

	"ShareServer/apps/share/internal/service"
	"ShareServer/model"
	"ShareServer/pkg/kafka"
	"ShareServer/pkg/logger"
	"ShareServer/pkg/util"
)

// RelationEventProducer 关系接受事件生产者
type RelationEventProducer struct {
	producer *kafka.Producer
}

// NewRelationEventProducer 创建生产者
func NewRelationEventProducer(producer *kafka.Producer) service.IRelationEventPublisher {
	return &RelationEventProducer{producer: producer}
}

// PublishAccepted 发布关系接受事件。
// Key 取关系对 key：同一对用户的事件保持分区内有序。
func (p *RelationEventProducer) PublishAccepted(ctx context.Context, sourceUUID, targetUUID string) error {
	event := RelationAcceptedEvent{
		EventID:    util.NewUUID(),
		SourceUuid: sourceUUID,
		TargetUuid: targetUUID,
		Status:     StatusAccepted,
		Timestamp:  time.Now(),
	}
	if traceID, ok := ctx.Value("trace_id").(string); ok {
		event.TraceID = traceID
	}

	value, err := event.Encode()
	if err != nil {
		return err
	}

	pairKey := model.PairKey(sourceUUID, targetUUID)
	if err := p.producer.Send(ctx, []byte(pairKey), value); err != nil {
		return err
	}

	logger.Info(ctx, "关系接受事件已发布",
		logger.String("event_id", event.EventID),
		logger.String("pair_key", pairKey),
	)
	return nil
}
