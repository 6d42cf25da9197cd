package dto

import (
	"encoding/json"

	"ShareServer/model"
)

// ==================== Feed 相关 DTO ====================

// FeedItem Feed 条目 DTO
type FeedItem struct {
	UpdateUuid      string   `json:"updateUuid"`      // 动态uuid
	CreatorUuid     string   `json:"creatorUuid"`     // 发布者uuid
	Direct          bool     `json:"direct"`          // 是否直接可见（本人/好友渠道）
	FriendUuid      string   `json:"friendUuid"`      // 来源好友uuid（圈子渠道为空）
	GroupUuids      []string `json:"groupUuids"`      // 贡献可见性的圈子
	UpdateCreatedAt int64    `json:"updateCreatedAt"` // 动态创建时间（毫秒时间戳）
}

// ==================== Feed DTO 转换函数 ====================

// ConvertFeedItemFromModel 将 Feed 条目模型转换为 DTO
func ConvertFeedItemFromModel(e *model.FeedEntry) *FeedItem {
	if e == nil {
		return nil
	}

	groups := []string{}
	if e.GroupUuids != "" && e.GroupUuids != "[]" {
		if err := json.Unmarshal([]byte(e.GroupUuids), &groups); err != nil {
			groups = []string{}
		}
	}

	return &FeedItem{
		UpdateUuid:      e.UpdateUuid,
		CreatorUuid:     e.CreatorUuid,
		Direct:          e.Direct,
		FriendUuid:      e.FriendUuid,
		GroupUuids:      groups,
		UpdateCreatedAt: e.UpdateCreatedAt.UnixMilli(),
	}
}

// ConvertFeedItemsFromModel 批量转换 Feed 条目
func ConvertFeedItemsFromModel(entries []*model.FeedEntry) []*FeedItem {
	items := make([]*FeedItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, ConvertFeedItemFromModel(e))
	}
	return items
}
