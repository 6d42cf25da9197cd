package model

import "time"

// UserProfile 用户资料（本服务只读，用于关系邀请的展示字段快照）。
type UserProfile struct {
	Id          int64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	UserUuid    string    `gorm:"column:user_uuid;type:char(20);not null;uniqueIndex;comment:用户uuid"`
	DisplayName string    `gorm:"column:display_name;type:varchar(64);not null;comment:昵称"`
	AvatarKey   string    `gorm:"column:avatar_key;type:varchar(255);comment:头像对象键"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserProfile) TableName() string { return "user_profile" }
