package model

import "time"

// RelationshipSummary AI 生成的关系摘要，按方向存储：
// PairKey 与方向无关，(PairKey, CreatorUuid) 唯一确定"creator 的内容在 viewer 眼中的摘要"。
// UpdateCount 单调不减，作为乐观并发控制的版本号（CAS 条件列）。
type RelationshipSummary struct {
	Id      int64  `gorm:"column:id;primaryKey;autoIncrement;comment:自增id"`
	PairKey string `gorm:"column:pair_key;type:char(41);not null;uniqueIndex:uidx_pair_creator,priority:1;comment:排序对key {min}:{max}"`

	// 方向：CreatorUuid 的动态被摘要给 ViewerUuid 看
	CreatorUuid string `gorm:"column:creator_uuid;type:char(20);not null;uniqueIndex:uidx_pair_creator,priority:2;comment:内容创建者uuid"`
	ViewerUuid  string `gorm:"column:viewer_uuid;type:char(20);not null;comment:阅读者uuid"`

	Summary     string `gorm:"column:summary;type:text;comment:自然语言摘要"`
	Suggestions string `gorm:"column:suggestions;type:text;comment:互动建议"`

	// LastUpdateUuid 最近一次折叠进摘要的动态uuid
	LastUpdateUuid string `gorm:"column:last_update_uuid;type:char(20);comment:最近折叠的动态uuid"`
	// UpdateCount 累计折叠的动态条数，只增不减
	UpdateCount int64 `gorm:"column:update_count;not null;default:0;comment:累计折叠条数"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (RelationshipSummary) TableName() string { return "relationship_summary" }
