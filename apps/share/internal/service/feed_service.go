package service

import (
	"context"
	"time"

	"ShareServer/apps/share/internal/repository"
	"ShareServer/consts"
	"ShareServer/model"
	"ShareServer/pkg/pagination"
)

// feedServiceImpl Feed 读取服务实现
type feedServiceImpl struct {
	feedRepo repository.IFeedRepository
}

// NewFeedService 创建 Feed 服务实例
func NewFeedService(feedRepo repository.IFeedRepository) IFeedService {
	return &feedServiceImpl{feedRepo: feedRepo}
}

// ListFeed 游标分页读取 Feed（按动态创建时间新到旧）
func (s *feedServiceImpl) ListFeed(ctx context.Context, userUUID, afterCursor string, limit int) (pagination.Page[*model.FeedEntry], error) {
	cur, err := pagination.Decode(afterCursor)
	if err != nil {
		return pagination.Page[*model.FeedEntry]{}, err
	}
	limit, err = pagination.NormalizeLimit(limit, consts.DefaultPageLimit, consts.MaxPageLimit)
	if err != nil {
		return pagination.Page[*model.FeedEntry]{}, err
	}

	items, err := s.feedRepo.ListFeed(ctx, userUUID, cur, limit)
	if err != nil {
		return pagination.Page[*model.FeedEntry]{}, err
	}

	return pagination.NewPage(items, limit, func(e *model.FeedEntry) (time.Time, string) {
		return e.UpdateCreatedAt, e.UpdateUuid
	}), nil
}
