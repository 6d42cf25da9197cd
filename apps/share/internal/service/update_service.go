package service

import (
	"context"
	"errors"
	"time"

	"ShareServer/apps/share/internal/repository"
	"ShareServer/consts"
	"ShareServer/model"
	"ShareServer/pkg/async"
	"ShareServer/pkg/logger"
	"ShareServer/pkg/pagination"
)

// fanoutTimeout 异步扇出任务的超时预算（大受众时受批量提交节奏影响）
const fanoutTimeout = 2 * time.Minute

// updateServiceImpl 动态服务实现
type updateServiceImpl struct {
	updateRepo repository.IUpdateRepository
	relRepo    repository.IRelationRepository
	groupRepo  repository.IGroupRepository
	visibility IVisibilityService
	fanout     IFanoutService
}

// NewUpdateService 创建动态服务实例
func NewUpdateService(
	updateRepo repository.IUpdateRepository,
	relRepo repository.IRelationRepository,
	groupRepo repository.IGroupRepository,
	visibility IVisibilityService,
	fanout IFanoutService,
) IUpdateService {
	return &updateServiceImpl{
		updateRepo: updateRepo,
		relRepo:    relRepo,
		groupRepo:  groupRepo,
		visibility: visibility,
		fanout:     fanout,
	}
}

// CreateUpdate 创建动态：同事务写入动态与可见性令牌后立即返回，
// Feed 扇出投递到协程池异步执行——扇出失败不影响动态创建成功。
func (s *updateServiceImpl) CreateUpdate(ctx context.Context, params CreateUpdateParams) (*model.Update, error) {
	audience, err := s.resolveAudience(ctx, params.CreatorUUID, params.FriendUUIDs, params.GroupUUIDs, params.Broadcast)
	if err != nil {
		return nil, err
	}

	update := &model.Update{
		UpdateUuid:     repository.NewEntityUUID(),
		CreatorUuid:    params.CreatorUUID,
		Content:        params.Content,
		Sentiment:      params.Sentiment,
		SentimentScore: params.SentimentScore,
		Emoji:          params.Emoji,
		Broadcast:      params.Broadcast,
		ImageKeys:      marshalStringList(params.ImageKeys),
	}
	if err := s.updateRepo.CreateUpdate(ctx, update, audience.Tokens); err != nil {
		return nil, err
	}

	s.fanOutAsync(ctx, update, audience)

	logger.Info(ctx, "动态创建成功",
		logger.String("update_uuid", update.UpdateUuid),
		logger.String("creator_uuid", update.CreatorUuid),
		logger.Bool("broadcast", update.Broadcast),
		logger.Int("recipients", len(audience.Recipients)),
	)
	return update, nil
}

// ShareUpdate 追加分享对象。令牌只增不减：对已覆盖的对象是幂等空操作。
func (s *updateServiceImpl) ShareUpdate(ctx context.Context, userUUID, updateUUID string, friendUUIDs, groupUUIDs []string) error {
	update, err := s.updateRepo.GetUpdate(ctx, updateUUID)
	if err != nil {
		return err
	}
	if update.CreatorUuid != userUUID {
		return ErrNotVisible
	}

	audience, err := s.resolveAudience(ctx, userUUID, friendUUIDs, groupUUIDs, false)
	if err != nil {
		return err
	}

	if err := s.updateRepo.AppendVisibilityTokens(ctx, updateUUID, audience.Tokens); err != nil {
		return err
	}

	// 增量扇出：已有条目被唯一索引挡掉，只新增真正的新接收者
	s.fanOutAsync(ctx, update, audience)
	return nil
}

// GetUpdate 获取单条动态。访问检查：请求者的渠道令牌集合与动态令牌集合有交集才可见。
func (s *updateServiceImpl) GetUpdate(ctx context.Context, viewerUUID, updateUUID string) (*model.Update, error) {
	update, err := s.updateRepo.GetUpdate(ctx, updateUUID)
	if err != nil {
		return nil, err
	}
	if update.CreatorUuid == viewerUUID {
		return update, nil
	}

	viewerGroups, err := s.groupRepo.ListGroupUUIDsByMember(ctx, viewerUUID)
	if err != nil {
		return nil, err
	}
	viewerTokens := make([]string, 0, len(viewerGroups)+2)
	viewerTokens = append(viewerTokens,
		VisibilityToken(model.ChannelSelf, viewerUUID),
		VisibilityToken(model.ChannelFriend, viewerUUID),
	)
	for _, g := range viewerGroups {
		viewerTokens = append(viewerTokens, VisibilityToken(model.ChannelGroup, g))
	}

	visible, err := s.updateRepo.HasAnyVisibilityToken(ctx, updateUUID, viewerTokens)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, ErrNotVisible
	}
	return update, nil
}

// ListMyUpdates 游标分页列出自己的动态（新到旧）
func (s *updateServiceImpl) ListMyUpdates(ctx context.Context, userUUID, afterCursor string, limit int) (pagination.Page[*model.Update], error) {
	cur, err := pagination.Decode(afterCursor)
	if err != nil {
		return pagination.Page[*model.Update]{}, err
	}
	limit, err = pagination.NormalizeLimit(limit, consts.DefaultPageLimit, consts.MaxPageLimit)
	if err != nil {
		return pagination.Page[*model.Update]{}, err
	}

	items, err := s.updateRepo.ListUpdatesByCreator(ctx, userUUID, cur, limit)
	if err != nil {
		return pagination.Page[*model.Update]{}, err
	}

	return pagination.NewPage(items, limit, func(u *model.Update) (time.Time, string) {
		return u.CreatedAt, u.UpdateUuid
	}), nil
}

// resolveAudience 取齐关系快照后做纯受众解析
func (s *updateServiceImpl) resolveAudience(ctx context.Context, creatorUUID string, friendUUIDs, groupUUIDs []string, broadcast bool) (*Audience, error) {
	input := AudienceInput{
		CreatorUUID: creatorUUID,
		FriendUUIDs: friendUUIDs,
		GroupUUIDs:  groupUUIDs,
		Broadcast:   broadcast,
	}

	if broadcast {
		accepted, err := s.relRepo.ListAcceptedFriendUUIDs(ctx, creatorUUID)
		if err != nil {
			return nil, err
		}
		creatorGroups, err := s.groupRepo.ListGroupUUIDsByMember(ctx, creatorUUID)
		if err != nil {
			return nil, err
		}
		input.AcceptedFriendUUIDs = accepted
		input.CreatorGroupUUIDs = creatorGroups
	}

	// 成员展开需要覆盖解析后的全部圈子
	allGroups := append(append([]string{}, input.GroupUUIDs...), input.CreatorGroupUUIDs...)
	if len(allGroups) > 0 {
		members, err := s.groupRepo.ListMembersMulti(ctx, allGroups)
		if err != nil {
			return nil, err
		}
		input.GroupMembers = members
	}

	return s.visibility.Resolve(input), nil
}

// fanOutAsync 异步扇出；失败只记日志（条目写入幂等，可由重放补齐）
func (s *updateServiceImpl) fanOutAsync(ctx context.Context, update *model.Update, audience *Audience) {
	async.RunSafe(ctx, func(taskCtx context.Context) {
		if _, err := s.fanout.FanOutUpdate(taskCtx, update, audience); err != nil {
			if !errors.Is(err, context.Canceled) {
				logger.Error(taskCtx, "异步扇出失败",
					logger.String("update_uuid", update.UpdateUuid),
					logger.ErrorField("error", err),
				)
			}
		}
	}, fanoutTimeout)
}
