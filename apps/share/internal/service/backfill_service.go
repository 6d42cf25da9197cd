package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ShareServer/apps/share/internal/repository"
	"ShareServer/consts"
	"ShareServer/model"
	"ShareServer/pkg/async"
	"ShareServer/pkg/logger"
)

// backfillServiceImpl 关系接受后的回填与摘要管道实现
type backfillServiceImpl struct {
	updateRepo  repository.IUpdateRepository
	feedRepo    repository.IFeedRepository
	relRepo     repository.IRelationRepository
	summaryRepo repository.ISummaryRepository
	aiflow      IAIFlowService

	streamBatchSize int
}

// NewBackfillService 创建回填服务实例
func NewBackfillService(
	updateRepo repository.IUpdateRepository,
	feedRepo repository.IFeedRepository,
	relRepo repository.IRelationRepository,
	summaryRepo repository.ISummaryRepository,
	aiflow IAIFlowService,
) IBackfillService {
	return &backfillServiceImpl{
		updateRepo:      updateRepo,
		feedRepo:        feedRepo,
		relRepo:         relRepo,
		summaryRepo:     summaryRepo,
		aiflow:          aiflow,
		streamBatchSize: 200,
	}
}

// HandleAccepted 对已接受的关系对执行双向回填。
// 两个方向并行执行、各自独立失败；全部结束后汇总错误返回。
// 整个流程重放幂等（Feed 写入、令牌追加均为只增 set 语义，摘要落库带版本守卫），
// 事件重投不会重复生效。
func (s *backfillServiceImpl) HandleAccepted(ctx context.Context, sourceUUID, targetUUID string) error {
	rel, err := s.relRepo.GetByPair(ctx, sourceUUID, targetUUID)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			logger.Warn(ctx, "回填触发但关系不存在",
				logger.String("source_uuid", sourceUUID),
				logger.String("target_uuid", targetUUID),
			)
			return nil
		}
		return err
	}
	if rel.Status != consts.RelationAccepted {
		// 重投事件落后于关系状态时直接丢弃
		logger.Warn(ctx, "回填触发但关系非 accepted 状态",
			logger.String("pair_key", rel.PairKey),
			logger.Int("status", int(rel.Status)),
		)
		return nil
	}

	var (
		wg   sync.WaitGroup
		errs [2]error
	)
	directions := [2][2]string{
		{sourceUUID, targetUUID},
		{targetUUID, sourceUUID},
	}
	for i, d := range directions {
		wg.Add(1)
		run := func() {
			defer wg.Done()
			errs[i] = s.backfillDirection(ctx, d[0], d[1])
		}
		if submitErr := async.Submit(run); submitErr != nil {
			go run()
		}
	}
	wg.Wait()

	return errors.Join(errs[0], errs[1])
}

// backfillDirection 单方向回填：把 creator 的 broadcast 历史动态
// 补进 viewer 的 Feed，并把折叠摘要写入 (pair, creator) 方向的记录。
func (s *backfillServiceImpl) backfillDirection(ctx context.Context, creatorUUID, viewerUUID string) error {
	friendToken := VisibilityToken(model.ChannelFriend, viewerUUID)

	// 流式遍历（新到旧）：逐批补 Feed 条目 + 追加可见性令牌，
	// 同时保留最近 10 条作为摘要折叠窗口
	window := make([]*model.Update, 0, consts.SummaryWindowSize)
	err := s.updateRepo.StreamBroadcastUpdates(ctx, creatorUUID, s.streamBatchSize, func(batch []*model.Update) error {
		entries := make([]*model.FeedEntry, 0, len(batch))
		for _, u := range batch {
			entries = append(entries, &model.FeedEntry{
				RecipientUuid:   viewerUUID,
				UpdateUuid:      u.UpdateUuid,
				CreatorUuid:     creatorUUID,
				Direct:          true,
				FriendUuid:      creatorUUID,
				GroupUuids:      "[]",
				UpdateCreatedAt: u.CreatedAt,
			})
		}
		if _, err := s.feedRepo.BatchUpsertEntries(ctx, entries); err != nil {
			return err
		}

		for _, u := range batch {
			tokens := []*model.UpdateVisibility{{
				Token:       friendToken,
				ChannelType: model.ChannelFriend,
				ChannelUuid: viewerUUID,
			}}
			if err := s.updateRepo.AppendVisibilityTokens(ctx, u.UpdateUuid, tokens); err != nil {
				return err
			}
			if len(window) < consts.SummaryWindowSize {
				window = append(window, u)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("backfill %s->%s: %w", creatorUUID, viewerUUID, err)
	}

	// 零动态：不写摘要，直接结束
	if len(window) == 0 {
		logger.Info(ctx, "回填方向无 broadcast 动态",
			logger.String("creator_uuid", creatorUUID),
			logger.String("viewer_uuid", viewerUUID),
		)
		return nil
	}

	// 反转为旧到新：摘要折叠必须按时间顺序展开叙事
	for i, j := 0, len(window)-1; i < j; i, j = i+1, j-1 {
		window[i], window[j] = window[j], window[i]
	}

	if err := s.foldAndPersist(ctx, creatorUUID, viewerUUID, window); err != nil {
		return fmt.Errorf("backfill %s->%s: %w", creatorUUID, viewerUUID, err)
	}

	logger.Info(ctx, "回填方向完成",
		logger.String("creator_uuid", creatorUUID),
		logger.String("viewer_uuid", viewerUUID),
		logger.Int("folded", len(window)),
	)
	return nil
}

// casMaxRetries 摘要落库版本冲突的重读上限
const casMaxRetries = 3

// foldAndPersist 从已有摘要出发顺序折叠窗口内动态，CAS 落库。
// 版本冲突说明有并发写入者（事件重投竞态），重读后基于新版本重新折叠。
func (s *backfillServiceImpl) foldAndPersist(ctx context.Context, creatorUUID, viewerUUID string, window []*model.Update) error {
	pairKey := model.PairKey(creatorUUID, viewerUUID)

	var lastErr error
	for retry := 0; retry < casMaxRetries; retry++ {
		existing, err := s.summaryRepo.Get(ctx, pairKey, creatorUUID)
		if err != nil {
			return err
		}

		pair := SummaryPair{}
		var priorCount int64
		if existing != nil {
			pair = SummaryPair{Summary: existing.Summary, Suggestions: existing.Suggestions}
			priorCount = existing.UpdateCount
		}

		// 顺序折叠，严格有序、永不并行；单步失败沿用上一步结果继续
		for _, u := range window {
			pair = s.aiflow.FoldSummary(ctx, pair, u)
		}

		summary := &model.RelationshipSummary{
			PairKey:        pairKey,
			CreatorUuid:    creatorUUID,
			ViewerUuid:     viewerUUID,
			Summary:        pair.Summary,
			Suggestions:    pair.Suggestions,
			LastUpdateUuid: window[len(window)-1].UpdateUuid,
			UpdateCount:    priorCount + int64(len(window)),
		}
		err = s.summaryRepo.CompareAndSwap(ctx, summary, priorCount)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return err
		}
		lastErr = err
		logger.Warn(ctx, "摘要落库版本冲突，重读重试",
			logger.String("pair_key", pairKey),
			logger.String("creator_uuid", creatorUUID),
			logger.Int("retry", retry+1),
		)
	}
	return lastErr
}
