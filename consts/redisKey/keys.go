package rediskey

import (
	"fmt"
	"time"
)

// ==================== TTL 常量 ====================

const (
	// VisibilityTokenTTL 动态可见性令牌缓存 TTL
	VisibilityTokenTTL = 12 * time.Hour
	// VisibilityTokenEmptyTTL 动态可见性令牌空值缓存 TTL
	VisibilityTokenEmptyTTL = 5 * time.Minute

	// FriendRelationTTL 好友关系缓存 TTL
	FriendRelationTTL = 24 * time.Hour
	// FriendRelationEmptyTTL 好友关系空值缓存 TTL
	FriendRelationEmptyTTL = 5 * time.Minute

	// AcceptedEventTTL 已处理的关系接受事件去重标记 TTL
	AcceptedEventTTL = 24 * time.Hour
)

// ==================== Key 构造函数 ====================

// UpdateVisibilityKey 生成动态可见性令牌集合 Key: feed:update:tokens:{update_uuid}
func UpdateVisibilityKey(updateUUID string) string {
	return fmt.Sprintf("feed:update:tokens:%s", updateUUID)
}

// FriendRelationKey 生成好友关系 Key: share:relation:friend:{user_uuid}
func FriendRelationKey(userUUID string) string {
	return fmt.Sprintf("share:relation:friend:%s", userUUID)
}

// AcceptedEventKey 生成关系接受事件去重 Key: share:event:accepted:{event_id}
func AcceptedEventKey(eventID string) string {
	return fmt.Sprintf("share:event:accepted:%s", eventID)
}

// RateLimitIPKey 生成 IP 限流 Key: share:rate:limit:ip:{ip}
func RateLimitIPKey(ip string) string {
	return fmt.Sprintf("share:rate:limit:ip:%s", ip)
}
