package model

import "time"

// FeedEntry 按接收者维度的 Feed 索引条目，一条指向一篇动态。
// 约束：uidx_recipient_update 保证 (接收者, 动态) 至多一条；写入走 INSERT ... DO NOTHING，
// 重复扇出不改写首次落库的内容，也不会产生重复行。
type FeedEntry struct {
	Id            int64  `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	RecipientUuid string `gorm:"column:recipient_uuid;type:char(20);not null;uniqueIndex:uidx_recipient_update,priority:1;index:idx_recipient_created,priority:1;comment:接收者uuid"`
	UpdateUuid    string `gorm:"column:update_uuid;type:char(20);not null;uniqueIndex:uidx_recipient_update,priority:2;comment:动态uuid"`
	CreatorUuid   string `gorm:"column:creator_uuid;type:char(20);not null;comment:动态发布者uuid"`

	// Direct 表示接收者经由本人/好友渠道直接可见（而非仅圈子）
	Direct bool `gorm:"column:direct;not null;default:0;comment:是否直接可见"`
	// FriendUuid 直接可见时的来源好友（即发布者），圈子渠道为空
	FriendUuid string `gorm:"column:friend_uuid;type:char(20);comment:来源好友uuid"`
	// GroupUuids 贡献可见性的圈子uuid列表，JSON 数组
	GroupUuids string `gorm:"column:group_uuids;type:varchar(1024);comment:贡献圈子uuid JSON"`

	// UpdateCreatedAt 复制自动态的创建时间，Feed 按它倒序排列
	UpdateCreatedAt time.Time `gorm:"column:update_created_at;not null;index:idx_recipient_created,priority:2;comment:动态创建时间"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (FeedEntry) TableName() string { return "feed_entry" }
