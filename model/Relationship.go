package model

import (
	"strings"
	"time"
)

// PairKey 生成与方向无关的用户对 key：小 uuid 在前，冒号拼接。
func PairKey(a, b string) string {
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + ":" + b
}

// Relationship 好友关系（对称），一对用户一条记录。
// PairKey 由两个 uuid 排序拼接（小者在前），保证与方向无关的唯一性。
// 生命周期：pending 创建，仅允许一次转移到 accepted（触发回填）或 rejected（终态）。
type Relationship struct {
	Id      int64  `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	PairKey string `gorm:"column:pair_key;type:char(41);not null;uniqueIndex;comment:排序对key {min}:{max}"`

	// 发起方与接收方（邀请方向）
	SourceUuid string `gorm:"column:source_uuid;type:char(20);not null;index;comment:发起者uuid"`
	TargetUuid string `gorm:"column:target_uuid;type:char(20);not null;index;comment:接收者uuid"`

	Status int8 `gorm:"column:status;not null;default:0;comment:状态 0.待处理 1.已接受 2.已拒绝"`

	// 冗余展示字段（创建邀请时快照，避免列表页回表）
	SourceDisplayName string `gorm:"column:source_display_name;type:varchar(64);comment:发起者昵称快照"`
	SourceAvatarKey   string `gorm:"column:source_avatar_key;type:varchar(255);comment:发起者头像对象键"`
	TargetDisplayName string `gorm:"column:target_display_name;type:varchar(64);comment:接收者昵称快照"`
	TargetAvatarKey   string `gorm:"column:target_avatar_key;type:varchar(255);comment:接收者头像对象键"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Relationship) TableName() string { return "relationship" }
