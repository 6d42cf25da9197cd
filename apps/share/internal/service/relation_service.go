package service

import (
	"context"
	"errors"
	"time"

	"ShareServer/apps/share/internal/repository"
	"ShareServer/consts"
	"ShareServer/model"
	"ShareServer/pkg/logger"
	"ShareServer/pkg/pagination"
)

// relationServiceImpl 关系服务实现
type relationServiceImpl struct {
	relRepo     repository.IRelationRepository
	profileRepo repository.IProfileRepository
	publisher   IRelationEventPublisher
}

// NewRelationService 创建关系服务实例
func NewRelationService(
	relRepo repository.IRelationRepository,
	profileRepo repository.IProfileRepository,
	publisher IRelationEventPublisher,
) IRelationService {
	return &relationServiceImpl{
		relRepo:     relRepo,
		profileRepo: profileRepo,
		publisher:   publisher,
	}
}

// Invite 创建 pending 邀请，双方昵称/头像在此刻快照进记录。
// 同一用户对只允许存在一条关系记录；已有记录按状态分类报错。
func (s *relationServiceImpl) Invite(ctx context.Context, sourceUUID, targetUUID string) (*model.Relationship, error) {
	if sourceUUID == targetUUID {
		return nil, ErrSelfInvitation
	}

	sourceProfile, err := s.profileRepo.GetProfile(ctx, sourceUUID)
	if err != nil {
		return nil, err
	}
	targetProfile, err := s.profileRepo.GetProfile(ctx, targetUUID)
	if err != nil {
		return nil, err
	}

	rel := &model.Relationship{
		PairKey:           model.PairKey(sourceUUID, targetUUID),
		SourceUuid:        sourceUUID,
		TargetUuid:        targetUUID,
		Status:            consts.RelationPending,
		SourceDisplayName: sourceProfile.DisplayName,
		SourceAvatarKey:   sourceProfile.AvatarKey,
		TargetDisplayName: targetProfile.DisplayName,
		TargetAvatarKey:   targetProfile.AvatarKey,
	}
	err = s.relRepo.CreateInvitation(ctx, rel)
	if err == nil {
		logger.Info(ctx, "好友邀请已创建",
			logger.String("source_uuid", sourceUUID),
			logger.String("target_uuid", targetUUID),
		)
		return rel, nil
	}
	if !errors.Is(err, repository.ErrDuplicateKey) {
		return nil, err
	}

	// 已有记录：按当前状态分类
	existing, getErr := s.relRepo.GetByPair(ctx, sourceUUID, targetUUID)
	if getErr != nil {
		return nil, getErr
	}
	switch existing.Status {
	case consts.RelationAccepted:
		return nil, ErrAlreadyFriend
	case consts.RelationPending:
		return nil, ErrInvitationExists
	default:
		return nil, ErrInvitationHandled
	}
}

// Accept 接受邀请：pending→accepted 一次性转移，成功后发布关系接受事件，
// 由事件消费端触发历史回填。事件发布失败不回滚状态转移（回填可人工补发）。
func (s *relationServiceImpl) Accept(ctx context.Context, sourceUUID, targetUUID string) (*model.Relationship, error) {
	rel, err := s.relRepo.Accept(ctx, sourceUUID, targetUUID)
	if err != nil {
		return nil, s.classifyTransitionError(ctx, sourceUUID, targetUUID, err)
	}

	if pubErr := s.publisher.PublishAccepted(ctx, sourceUUID, targetUUID); pubErr != nil {
		logger.Error(ctx, "关系接受事件发布失败",
			logger.String("pair_key", rel.PairKey),
			logger.ErrorField("error", pubErr),
		)
	}

	logger.Info(ctx, "好友邀请已接受",
		logger.String("pair_key", rel.PairKey),
	)
	return rel, nil
}

// Reject 拒绝邀请：pending→rejected，终态，无后续动作
func (s *relationServiceImpl) Reject(ctx context.Context, sourceUUID, targetUUID string) error {
	err := s.relRepo.Reject(ctx, sourceUUID, targetUUID)
	if err != nil {
		return s.classifyTransitionError(ctx, sourceUUID, targetUUID, err)
	}
	return nil
}

// classifyTransitionError 转移失败时区分"不存在"与"已处理过"
func (s *relationServiceImpl) classifyTransitionError(ctx context.Context, sourceUUID, targetUUID string, err error) error {
	if !errors.Is(err, repository.ErrRecordNotFound) {
		return err
	}
	existing, getErr := s.relRepo.GetByPair(ctx, sourceUUID, targetUUID)
	if getErr != nil {
		return err
	}
	if existing.Status != consts.RelationPending {
		return ErrInvitationHandled
	}
	return err
}

// ListFriends 游标分页列出已接受的好友关系
func (s *relationServiceImpl) ListFriends(ctx context.Context, userUUID, afterCursor string, limit int) (pagination.Page[*model.Relationship], error) {
	cur, err := pagination.Decode(afterCursor)
	if err != nil {
		return pagination.Page[*model.Relationship]{}, err
	}
	limit, err = pagination.NormalizeLimit(limit, consts.DefaultPageLimit, consts.MaxPageLimit)
	if err != nil {
		return pagination.Page[*model.Relationship]{}, err
	}

	items, err := s.relRepo.ListAcceptedFriends(ctx, userUUID, cur, limit)
	if err != nil {
		return pagination.Page[*model.Relationship]{}, err
	}

	return pagination.NewPage(items, limit, func(r *model.Relationship) (time.Time, string) {
		return r.UpdatedAt, r.PairKey
	}), nil
}

// ListInvitations 游标分页列出收到的待处理邀请
func (s *relationServiceImpl) ListInvitations(ctx context.Context, userUUID, afterCursor string, limit int) (pagination.Page[*model.Relationship], error) {
	cur, err := pagination.Decode(afterCursor)
	if err != nil {
		return pagination.Page[*model.Relationship]{}, err
	}
	limit, err = pagination.NormalizeLimit(limit, consts.DefaultPageLimit, consts.MaxPageLimit)
	if err != nil {
		return pagination.Page[*model.Relationship]{}, err
	}

	items, err := s.relRepo.ListPendingInvitations(ctx, userUUID, cur, limit)
	if err != nil {
		return pagination.Page[*model.Relationship]{}, err
	}

	return pagination.NewPage(items, limit, func(r *model.Relationship) (time.Time, string) {
		return r.CreatedAt, r.PairKey
	}), nil
}
