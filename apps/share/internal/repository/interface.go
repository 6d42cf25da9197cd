package repository

import (
	"context"

	"ShareServer/model"
	"ShareServer/pkg/pagination"
)

// IUpdateRepository 动态数据访问层
type IUpdateRepository interface {
	// CreateUpdate 同事务写入动态与初始可见性令牌
	CreateUpdate(ctx context.Context, update *model.Update, tokens []*model.UpdateVisibility) error
	// GetUpdate 按 uuid 获取动态
	GetUpdate(ctx context.Context, updateUUID string) (*model.Update, error)
	// AppendVisibilityTokens 追加可见性令牌（仅追加；已存在的令牌静默跳过）
	AppendVisibilityTokens(ctx context.Context, updateUUID string, tokens []*model.UpdateVisibility) error
	// ListVisibilityTokens 列出动态的全部可见性令牌
	ListVisibilityTokens(ctx context.Context, updateUUID string) ([]*model.UpdateVisibility, error)
	// HasAnyVisibilityToken 判断动态的令牌集合与给定令牌是否有交集（访问检查）
	HasAnyVisibilityToken(ctx context.Context, updateUUID string, tokens []string) (bool, error)
	// ListUpdatesByCreator 游标分页列出某用户的动态（新到旧）
	ListUpdatesByCreator(ctx context.Context, creatorUUID string, cur *pagination.Cursor, limit int) ([]*model.Update, error)
	// StreamBroadcastUpdates 惰性流式遍历某用户的 broadcast 动态（新到旧），
	// 按 batchSize 分批拉取并逐批回调；fn 返回错误时终止遍历
	StreamBroadcastUpdates(ctx context.Context, creatorUUID string, batchSize int, fn func(batch []*model.Update) error) error
}

// IFeedRepository Feed 索引数据访问层
type IFeedRepository interface {
	// BatchUpsertEntries 批量写入 Feed 条目：按上限分块、逐块提交；
	// 返回已成功提交的条数（失败时之前的块保持已提交状态）
	BatchUpsertEntries(ctx context.Context, entries []*model.FeedEntry) (int, error)
	// ListFeed 游标分页列出接收者的 Feed（按动态创建时间新到旧）
	ListFeed(ctx context.Context, recipientUUID string, cur *pagination.Cursor, limit int) ([]*model.FeedEntry, error)
}

// IRelationRepository 好友关系数据访问层
type IRelationRepository interface {
	// CreateInvitation 创建 pending 邀请
	CreateInvitation(ctx context.Context, rel *model.Relationship) error
	// GetByPair 按用户对获取关系（不存在时返回 ErrRecordNotFound）
	GetByPair(ctx context.Context, a, b string) (*model.Relationship, error)
	// Accept 仅执行 pending→accepted 转移；已处理过的邀请不再生效
	Accept(ctx context.Context, sourceUUID, targetUUID string) (*model.Relationship, error)
	// Reject 仅执行 pending→rejected 转移（终态）
	Reject(ctx context.Context, sourceUUID, targetUUID string) error
	// ListAcceptedFriendUUIDs 列出某用户全部已接受好友的 uuid（broadcast 受众展开用）
	ListAcceptedFriendUUIDs(ctx context.Context, userUUID string) ([]string, error)
	// ListAcceptedFriends 游标分页列出好友关系
	ListAcceptedFriends(ctx context.Context, userUUID string, cur *pagination.Cursor, limit int) ([]*model.Relationship, error)
	// ListPendingInvitations 游标分页列出收到的待处理邀请
	ListPendingInvitations(ctx context.Context, targetUUID string, cur *pagination.Cursor, limit int) ([]*model.Relationship, error)
}

// ISummaryRepository 关系摘要数据访问层
type ISummaryRepository interface {
	// Get 获取某方向的摘要；不存在时返回 (nil, nil)
	Get(ctx context.Context, pairKey, creatorUUID string) (*model.RelationshipSummary, error)
	// CompareAndSwap 以 priorCount 为版本条件落库：
	// priorCount == 0 且记录不存在时创建；否则仅当 update_count 仍为 priorCount 时更新。
	// 版本不匹配返回 ErrConflict。
	CompareAndSwap(ctx context.Context, summary *model.RelationshipSummary, priorCount int64) error
}

// IGroupRepository 圈子数据访问层
type IGroupRepository interface {
	// ListGroupUUIDsByMember 列出某用户加入的全部圈子 uuid
	ListGroupUUIDsByMember(ctx context.Context, userUUID string) ([]string, error)
	// ListMembers 列出圈子成员 uuid（带进程内缓存）
	ListMembers(ctx context.Context, groupUUID string) ([]string, error)
	// ListMembersMulti 批量列出多个圈子的成员
	ListMembersMulti(ctx context.Context, groupUUIDs []string) (map[string][]string, error)
}

// IProfileRepository 用户资料数据访问层（只读）
type IProfileRepository interface {
	// GetProfile 按 uuid 获取资料
	GetProfile(ctx context.Context, userUUID string) (*model.UserProfile, error)
}
