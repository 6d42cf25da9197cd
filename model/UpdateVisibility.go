package model

import "time"

// 可见性渠道类型
const (
	ChannelSelf   = "self"   // 发布者本人
	ChannelFriend = "friend" // 好友渠道
	ChannelGroup  = "group"  // 圈子渠道
)

// UpdateVisibility 动态可见性令牌，一行一个访问渠道。
// 约束：uidx_update_token 保证同一令牌只追加一次；记录只增不删（分享只会扩大可见范围）。
type UpdateVisibility struct {
	Id         int64  `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	UpdateUuid string `gorm:"column:update_uuid;type:char(20);not null;uniqueIndex:uidx_update_token,priority:1;comment:动态uuid"`
	// Token 形如 self:{uuid} / friend:{uuid} / group:{uuid}
	Token       string    `gorm:"column:token;type:varchar(64);not null;uniqueIndex:uidx_update_token,priority:2;index:idx_token;comment:可见性令牌"`
	ChannelType string    `gorm:"column:channel_type;type:varchar(16);not null;comment:渠道类型 self/friend/group"`
	ChannelUuid string    `gorm:"column:channel_uuid;type:char(20);not null;comment:渠道对象uuid"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (UpdateVisibility) TableName() string { return "update_visibility" }
