package dto

import (
	"encoding/json"

	"ShareServer/model"
)

// ==================== 动态相关 DTO ====================

// CreateUpdateRequest 创建动态请求 DTO
type CreateUpdateRequest struct {
	Content        string   `json:"content" binding:"required,min=1,max=2048"`          // 正文
	Sentiment      string   `json:"sentiment" binding:"omitempty,max=32"`               // 情绪标签
	SentimentScore float64  `json:"sentimentScore" binding:"omitempty,gte=-1,lte=1"`    // 情绪分值
	Emoji          string   `json:"emoji" binding:"omitempty,max=16"`                   // 情绪表情
	FriendUuids    []string `json:"friendUuids" binding:"omitempty,max=500,dive,max=20"` // 分享好友
	GroupUuids     []string `json:"groupUuids" binding:"omitempty,max=100,dive,max=20"`  // 分享圈子
	Broadcast      bool     `json:"broadcast"`                                          // 全网络可见
	ImageKeys      []string `json:"imageKeys" binding:"omitempty,max=9,dive,max=255"`   // 图片对象键
}

// ShareUpdateRequest 追加分享请求 DTO
type ShareUpdateRequest struct {
	FriendUuids []string `json:"friendUuids" binding:"omitempty,max=500,dive,max=20"` // 新增好友
	GroupUuids  []string `json:"groupUuids" binding:"omitempty,max=100,dive,max=20"`  // 新增圈子
}

// UpdateItem 动态信息 DTO
type UpdateItem struct {
	UpdateUuid     string   `json:"updateUuid"`     // 动态uuid
	CreatorUuid    string   `json:"creatorUuid"`    // 发布者uuid
	Content        string   `json:"content"`        // 正文
	Sentiment      string   `json:"sentiment"`      // 情绪标签
	SentimentScore float64  `json:"sentimentScore"` // 情绪分值
	Emoji          string   `json:"emoji"`          // 情绪表情
	Broadcast      bool     `json:"broadcast"`      // 全网络可见
	CommentCount   int64    `json:"commentCount"`   // 评论数
	ReactionCount  int64    `json:"reactionCount"`  // 表态数
	ImageUrls      []string `json:"imageUrls"`      // 图片预签名URL
	CreatedAt      int64    `json:"createdAt"`      // 创建时间（毫秒时间戳）
}

// CreateUpdateResponse 创建动态响应 DTO
type CreateUpdateResponse struct {
	Update *UpdateItem `json:"update"` // 创建的动态
}

// ==================== 动态 DTO 转换函数 ====================

// DecodeImageKeys 解析图片对象键 JSON 列
func DecodeImageKeys(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var keys []string
	if err := json.Unmarshal([]byte(raw), &keys); err != nil {
		return nil
	}
	return keys
}

// ConvertUpdateItemFromModel 将动态模型转换为 DTO。
// resolveImages 把对象键换成可访问 URL（为 nil 时图片列表为空）。
func ConvertUpdateItemFromModel(u *model.Update, resolveImages func([]string) []string) *UpdateItem {
	if u == nil {
		return nil
	}

	imageURLs := []string{}
	if keys := DecodeImageKeys(u.ImageKeys); len(keys) > 0 && resolveImages != nil {
		imageURLs = resolveImages(keys)
	}

	return &UpdateItem{
		UpdateUuid:     u.UpdateUuid,
		CreatorUuid:    u.CreatorUuid,
		Content:        u.Content,
		Sentiment:      u.Sentiment,
		SentimentScore: u.SentimentScore,
		Emoji:          u.Emoji,
		Broadcast:      u.Broadcast,
		CommentCount:   u.CommentCount,
		ReactionCount:  u.ReactionCount,
		ImageUrls:      imageURLs,
		CreatedAt:      u.CreatedAt.UnixMilli(),
	}
}

// ConvertUpdateItemsFromModel 批量转换动态模型
func ConvertUpdateItemsFromModel(updates []*model.Update, resolveImages func([]string) []string) []*UpdateItem {
	items := make([]*UpdateItem, 0, len(updates))
	for _, u := range updates {
		items = append(items, ConvertUpdateItemFromModel(u, resolveImages))
	}
	return items
}
