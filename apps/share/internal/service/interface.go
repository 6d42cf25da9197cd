package service

import (
	"context"
	"errors"

	"ShareServer/model"
	"ShareServer/pkg/pagination"
)

// ==================== Service 层错误 ====================

var (
	// ErrNotVisible 请求者不持有该动态的任何可见性令牌
	ErrNotVisible = errors.New("update not visible to viewer")

	// ErrSelfInvitation 不能邀请自己
	ErrSelfInvitation = errors.New("cannot invite yourself")

	// ErrAlreadyFriend 已经是好友
	ErrAlreadyFriend = errors.New("already friends")

	// ErrInvitationExists 邀请已存在
	ErrInvitationExists = errors.New("invitation already sent")

	// ErrInvitationHandled 邀请已处理过（接受/拒绝是一次性转移）
	ErrInvitationHandled = errors.New("invitation already handled")
)

// ==================== 受众解析 ====================

// AudienceInput 受众解析输入。全部数据由调用方预先取好，解析本身是纯函数。
type AudienceInput struct {
	CreatorUUID string
	FriendUUIDs []string // 显式分享的好友
	GroupUUIDs  []string // 显式分享的圈子
	Broadcast   bool     // 是否全网络可见

	// broadcast 展开所需的当前关系快照（由调用方查询注入）
	AcceptedFriendUUIDs []string // 发布者全部已接受好友
	CreatorGroupUUIDs   []string // 发布者加入的全部圈子

	// 圈子 uuid -> 成员 uuid 列表（须覆盖解析后的全部圈子）
	GroupMembers map[string][]string
}

// Audience 受众解析结果。
type Audience struct {
	CreatorUUID string
	FriendUUIDs []string // 去重后的好友渠道
	GroupUUIDs  []string // 去重后的圈子渠道
	Recipients  []string // {发布者} ∪ 好友 ∪ 圈子成员，去重

	// Tokens 每个访问渠道一个令牌（self/每个好友/每个圈子），
	// 即使某接收者经多渠道可达也逐渠道记录，便于后续按渠道回收
	Tokens []*model.UpdateVisibility

	friendSet         map[string]struct{}
	groupsByRecipient map[string][]string
}

// IsDirect 接收者是否经本人/好友渠道直接可达
func (a *Audience) IsDirect(recipientUUID string) bool {
	if recipientUUID == a.CreatorUUID {
		return true
	}
	_, ok := a.friendSet[recipientUUID]
	return ok
}

// RecipientGroups 返回为该接收者贡献可见性的圈子列表
func (a *Audience) RecipientGroups(recipientUUID string) []string {
	return a.groupsByRecipient[recipientUUID]
}

// IVisibilityService 可见性解析（纯计算，无 I/O）
type IVisibilityService interface {
	Resolve(input AudienceInput) *Audience
}

// ==================== 扇出 ====================

// IFanoutService Feed 索引写入器
type IFanoutService interface {
	// FanOutUpdate 为受众中每个接收者写入一条 Feed 条目，返回已提交条数。
	// 同一扇出重放得到相同终态；跨批次失败不回滚、错误向上传播。
	FanOutUpdate(ctx context.Context, update *model.Update, audience *Audience) (int, error)
}

// ==================== 动态 ====================

// CreateUpdateParams 创建动态参数
type CreateUpdateParams struct {
	CreatorUUID    string
	Content        string
	Sentiment      string
	SentimentScore float64
	Emoji          string
	FriendUUIDs    []string
	GroupUUIDs     []string
	Broadcast      bool
	ImageKeys      []string
}

// IUpdateService 动态服务
type IUpdateService interface {
	// CreateUpdate 创建动态并异步扇出；扇出部分失败不影响创建成功
	CreateUpdate(ctx context.Context, params CreateUpdateParams) (*model.Update, error)
	// ShareUpdate 追加分享对象：令牌只增不减，已覆盖的对象是幂等空操作
	ShareUpdate(ctx context.Context, userUUID, updateUUID string, friendUUIDs, groupUUIDs []string) error
	// GetUpdate 获取单条动态（可见性令牌访问检查，未命中返回 ErrNotVisible）
	GetUpdate(ctx context.Context, viewerUUID, updateUUID string) (*model.Update, error)
	// ListMyUpdates 游标分页列出自己的动态
	ListMyUpdates(ctx context.Context, userUUID, afterCursor string, limit int) (pagination.Page[*model.Update], error)
}

// ==================== Feed ====================

// IFeedService Feed 读取服务
type IFeedService interface {
	// ListFeed 游标分页读取 Feed
	ListFeed(ctx context.Context, userUUID, afterCursor string, limit int) (pagination.Page[*model.FeedEntry], error)
}

// ==================== 好友关系 ====================

// IRelationEventPublisher 关系接受事件发布（mq 层实现）
type IRelationEventPublisher interface {
	// PublishAccepted 发布一条 accepted 事件，携带唯一事件 id 供消费端去重
	PublishAccepted(ctx context.Context, sourceUUID, targetUUID string) error
}

// IRelationService 关系服务
type IRelationService interface {
	// Invite 创建 pending 邀请
	Invite(ctx context.Context, sourceUUID, targetUUID string) (*model.Relationship, error)
	// Accept 接受邀请（pending→accepted，一次性转移），并发布关系接受事件
	Accept(ctx context.Context, sourceUUID, targetUUID string) (*model.Relationship, error)
	// Reject 拒绝邀请（终态）
	Reject(ctx context.Context, sourceUUID, targetUUID string) error
	// ListFriends 游标分页列出好友
	ListFriends(ctx context.Context, userUUID, afterCursor string, limit int) (pagination.Page[*model.Relationship], error)
	// ListInvitations 游标分页列出收到的待处理邀请
	ListInvitations(ctx context.Context, userUUID, afterCursor string, limit int) (pagination.Page[*model.Relationship], error)
}

// ==================== 生成式摘要 ====================

// SummaryPair 一对（摘要, 建议）。折叠的输入与输出单元。
type SummaryPair struct {
	Summary     string
	Suggestions string
}

// IAIFlowService 生成式调用的有界重试包装。
// 生成失败永远不向调用方传播错误：耗尽重试后返回调用方给定的已有值。
type IAIFlowService interface {
	// FoldSummary 把一条动态折叠进已有（摘要, 建议），返回折叠后的结果。
	// 失败/全空时原样返回 existing；部分为空的字段按字段回填 existing 对应值。
	FoldSummary(ctx context.Context, existing SummaryPair, update *model.Update) SummaryPair
}

// ==================== 回填管道 ====================

// IBackfillService 关系接受后的回填与摘要管道
type IBackfillService interface {
	// HandleAccepted 对已接受的关系对执行双向回填；单方向失败不影响另一方向
	HandleAccepted(ctx context.Context, sourceUUID, targetUUID string) error
}
