package dto

import (
	"ShareServer/model"
)

// ==================== 好友关系相关 DTO ====================

// InviteRequest 发送好友邀请请求 DTO
type InviteRequest struct {
	TargetUuid string `json:"targetUuid" binding:"required,max=20"` // 目标用户uuid
}

// RelationItem 关系信息 DTO
type RelationItem struct {
	PairKey           string `json:"pairKey"`           // 关系对key
	SourceUuid        string `json:"sourceUuid"`        // 发起者uuid
	TargetUuid        string `json:"targetUuid"`        // 接收者uuid
	Status            int8   `json:"status"`            // 状态(0:待处理 1:已接受 2:已拒绝)
	SourceDisplayName string `json:"sourceDisplayName"` // 发起者昵称
	SourceAvatarUrl   string `json:"sourceAvatarUrl"`   // 发起者头像URL
	TargetDisplayName string `json:"targetDisplayName"` // 接收者昵称
	TargetAvatarUrl   string `json:"targetAvatarUrl"`   // 接收者头像URL
	CreatedAt         int64  `json:"createdAt"`         // 创建时间（毫秒时间戳）
	UpdatedAt         int64  `json:"updatedAt"`         // 更新时间（毫秒时间戳）
}

// ==================== 关系 DTO 转换函数 ====================

// ConvertRelationItemFromModel 将关系模型转换为 DTO。
// resolveAvatar 把头像对象键换成可访问 URL（为 nil 时返回空串）。
func ConvertRelationItemFromModel(r *model.Relationship, resolveAvatar func(string) string) *RelationItem {
	if r == nil {
		return nil
	}
	if resolveAvatar == nil {
		resolveAvatar = func(string) string { return "" }
	}

	return &RelationItem{
		PairKey:           r.PairKey,
		SourceUuid:        r.SourceUuid,
		TargetUuid:        r.TargetUuid,
		Status:            r.Status,
		SourceDisplayName: r.SourceDisplayName,
		SourceAvatarUrl:   resolveAvatar(r.SourceAvatarKey),
		TargetDisplayName: r.TargetDisplayName,
		TargetAvatarUrl:   resolveAvatar(r.TargetAvatarKey),
		CreatedAt:         r.CreatedAt.UnixMilli(),
		UpdatedAt:         r.UpdatedAt.UnixMilli(),
	}
}

// ConvertRelationItemsFromModel 批量转换关系模型
func ConvertRelationItemsFromModel(rels []*model.Relationship, resolveAvatar func(string) string) []*RelationItem {
	items := make([]*RelationItem, 0, len(rels))
	for _, r := range rels {
		items = append(items, ConvertRelationItemFromModel(r, resolveAvatar))
	}
	return items
}
