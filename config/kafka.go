package config

import "time"

// KafkaConsumerConfig 消费者配置
type KafkaConsumerConfig struct {
	GroupID        string        `json:"groupId" yaml:"groupId"`               // 消费组 ID
	MinBytes       int           `json:"minBytes" yaml:"minBytes"`             // 单次拉取最小字节数
	MaxBytes       int           `json:"maxBytes" yaml:"maxBytes"`             // 单次拉取最大字节数
	CommitInterval time.Duration `json:"commitInterval" yaml:"commitInterval"` // 位点提交间隔（0 表示同步提交）
}

// KafkaConfig Kafka 配置
type KafkaConfig struct {
	Brokers []string `json:"brokers" yaml:"brokers"` // Broker 地址列表

	// RelationAcceptedTopic 关系接受事件主题
	RelationAcceptedTopic string `json:"relationAcceptedTopic" yaml:"relationAcceptedTopic"`

	ConsumerConfig KafkaConsumerConfig `json:"consumer" yaml:"consumer"`
}

// DefaultKafkaConfig 返回本地开发的默认配置。
func DefaultKafkaConfig() KafkaConfig {
	return KafkaConfig{
		Brokers:               []string{"kafka:9092"},
		RelationAcceptedTopic: "relationship.accepted",
		ConsumerConfig: KafkaConsumerConfig{
			GroupID:        "share-backfill",
			MinBytes:       1,
			MaxBytes:       10 * 1024 * 1024,
			CommitInterval: 0,
		},
	}
}
