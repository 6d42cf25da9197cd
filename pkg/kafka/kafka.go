package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer Kafka 生产者封装（单 topic）。
type Producer struct {
	writer *kafka.Writer
}

// NewProducer 创建生产者。
// 按 key 哈希分区，保证同一关系对的事件落到同一分区（分区内有序）。
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			BatchTimeout: 10 * time.Millisecond,
		},
	}
}

// Send 发送一条消息。
func (p *Producer) Send(ctx context.Context, key, value []byte) error {
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   key,
		Value: value,
	})
}

// Close 关闭生产者。
func (p *Producer) Close() error {
	return p.writer.Close()
}

// NewReader 创建消费者 Reader（消费组模式）。
func NewReader(brokers []string, topic, groupID string, minBytes, maxBytes int, commitInterval time.Duration) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       minBytes,
		MaxBytes:       maxBytes,
		CommitInterval: commitInterval,
	})
}

// ==================== zap 日志适配 ====================

// ZapLoggerAdapter 将 kafka-go 的日志回调接到 zap。
type ZapLoggerAdapter struct {
	l *zap.SugaredLogger
}

// NewZapLoggerAdapter 创建适配器。
func NewZapLoggerAdapter(l *zap.Logger) *ZapLoggerAdapter {
	return &ZapLoggerAdapter{l: l.Sugar()}
}

// Printf 实现 kafka.Logger 接口。
func (a *ZapLoggerAdapter) Printf(msg string, args ...interface{}) {
	a.l.Infof(msg, args...)
}
