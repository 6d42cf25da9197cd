package model

import (
	"time"
)

// Update 用户发布的动态（帖子）。
// 可见性令牌不在本表存储，见 UpdateVisibility（仅追加，保证单调可见性）。
type Update struct {
	Id          int64  `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	UpdateUuid  string `gorm:"column:update_uuid;type:char(20);not null;uniqueIndex;comment:动态uuid(雪花id)"`
	CreatorUuid string `gorm:"column:creator_uuid;type:char(20);not null;index:idx_creator_created,priority:1;comment:发布者uuid"`
	Content     string `gorm:"column:content;type:varchar(2048);not null;comment:正文"`

	// 情绪字段（客户端打分，服务端透传）
	Sentiment      string  `gorm:"column:sentiment;type:varchar(32);comment:情绪标签"`
	SentimentScore float64 `gorm:"column:sentiment_score;comment:情绪分值"`
	Emoji          string  `gorm:"column:emoji;type:varchar(16);comment:情绪表情"`

	// Broadcast 为 true 时对发布者全部好友与圈子可见
	Broadcast bool `gorm:"column:broadcast;not null;default:0;index:idx_creator_broadcast;comment:是否全网络可见"`

	// 冗余计数（评论/点赞服务写入，本服务只读）
	CommentCount  int64 `gorm:"column:comment_count;not null;default:0;comment:评论数"`
	ReactionCount int64 `gorm:"column:reaction_count;not null;default:0;comment:表态数"`

	// 图片对象键列表，JSON 数组，如 ["updates/xx/1.jpg"]
	ImageKeys string `gorm:"column:image_keys;type:varchar(2048);comment:图片对象键JSON"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_creator_created,priority:2"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Update) TableName() string { return "update_post" }
