package service

import (
	"context"
	"encoding/json"

	"ShareServer/apps/share/internal/repository"
	"ShareServer/model"
	"ShareServer/pkg/logger"
)

// fanoutServiceImpl Feed 索引写入器实现
type fanoutServiceImpl struct {
	feedRepo repository.IFeedRepository
}

// NewFanoutService 创建扇出服务实例
func NewFanoutService(feedRepo repository.IFeedRepository) IFanoutService {
	return &fanoutServiceImpl{feedRepo: feedRepo}
}

// FanOutUpdate 为受众中每个接收者构造并写入 Feed 条目。
// 每个接收者：
//   - direct = 接收者是发布者本人，或经好友渠道可达；
//   - friend_uuid = direct 时为发布者，否则为空；
//   - group_uuids = 受众圈子与该接收者所在圈子的交集（解析时已算好）。
//
// 写入委托给仓储层的分批提交；跨批次失败不回滚，错误向上传播。
func (s *fanoutServiceImpl) FanOutUpdate(ctx context.Context, update *model.Update, audience *Audience) (int, error) {
	if len(audience.Recipients) == 0 {
		return 0, nil
	}

	entries := make([]*model.FeedEntry, 0, len(audience.Recipients))
	for _, recipient := range audience.Recipients {
		entries = append(entries, BuildFeedEntry(update, recipient, audience))
	}

	committed, err := s.feedRepo.BatchUpsertEntries(ctx, entries)
	if err != nil {
		logger.Error(ctx, "Feed 扇出部分失败",
			logger.String("update_uuid", update.UpdateUuid),
			logger.Int("committed", committed),
			logger.Int("total", len(entries)),
			logger.ErrorField("error", err),
		)
		return committed, err
	}

	logger.Info(ctx, "Feed 扇出完成",
		logger.String("update_uuid", update.UpdateUuid),
		logger.Int("recipients", committed),
	)
	return committed, nil
}

// BuildFeedEntry 为单个接收者构造 Feed 条目
func BuildFeedEntry(update *model.Update, recipientUUID string, audience *Audience) *model.FeedEntry {
	direct := audience.IsDirect(recipientUUID)

	friendUUID := ""
	if direct {
		friendUUID = audience.CreatorUUID
	}

	return &model.FeedEntry{
		RecipientUuid:   recipientUUID,
		UpdateUuid:      update.UpdateUuid,
		CreatorUuid:     update.CreatorUuid,
		Direct:          direct,
		FriendUuid:      friendUUID,
		GroupUuids:      marshalStringList(audience.RecipientGroups(recipientUUID)),
		UpdateCreatedAt: update.CreatedAt,
	}
}

// marshalStringList 序列化字符串列表到 JSON 列
func marshalStringList(list []string) string {
	if len(list) == 0 {
		return "[]"
	}
	data, err := json.Marshal(list)
	if err != nil {
		return "[]"
	}
	return string(data)
}
