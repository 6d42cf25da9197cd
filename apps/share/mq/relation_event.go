package mq

import (
	"encoding/json"
	"time"
)

// ==================== 关系事件定义 ====================

// StatusAccepted 事件状态：关系已接受
const StatusAccepted = "accepted"

// RelationAcceptedEvent 关系接受事件消息体。
// EventID 全局唯一，消费端以它做去重（投递保证是 at-least-once）。
// 消息 Key 取关系对 key，同一对用户的事件落到同一分区保持有序。
type RelationAcceptedEvent struct {
	EventID    string    `json:"event_id"`
	SourceUuid string    `json:"source_uuid"`
	TargetUuid string    `json:"target_uuid"`
	Status     string    `json:"status"`
	TraceID    string    `json:"trace_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Encode 序列化为消息体
func (e RelationAcceptedEvent) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// DecodeRelationAcceptedEvent 反序列化消息体
func DecodeRelationAcceptedEvent(data []byte) (RelationAcceptedEvent, error) {
	var e RelationAcceptedEvent
	err := json.Unmarshal(data, &e)
	return e, err
}
