package model

import "time"

// Group 圈子（小组）。本服务只读成员关系用于受众解析，建群/改名等由外部服务负责。
type Group struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	GroupUuid string    `gorm:"column:group_uuid;type:char(20);not null;uniqueIndex;comment:圈子uuid"`
	Name      string    `gorm:"column:name;type:varchar(64);not null;comment:圈子名称"`
	OwnerUuid string    `gorm:"column:owner_uuid;type:char(20);not null;comment:创建者uuid"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Group) TableName() string { return "group_info" }

// GroupMember 圈子成员关系。
type GroupMember struct {
	Id        int64     `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	GroupUuid string    `gorm:"column:group_uuid;type:char(20);not null;uniqueIndex:uidx_group_member,priority:1;comment:圈子uuid"`
	UserUuid  string    `gorm:"column:user_uuid;type:char(20);not null;uniqueIndex:uidx_group_member,priority:2;index;comment:成员uuid"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (GroupMember) TableName() string { return "group_member" }
