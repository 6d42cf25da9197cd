package repository

import (
	"context"
	"errors"
	"time"

	"ShareServer/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// summaryRepositoryImpl 关系摘要数据访问层实现
type summaryRepositoryImpl struct {
	db *gorm.DB
}

// NewSummaryRepository 创建摘要仓储实例
func NewSummaryRepository(db *gorm.DB) ISummaryRepository {
	return &summaryRepositoryImpl{db: db}
}

// Get 获取某方向的摘要；不存在返回 (nil, nil)，调用方以 nil 判断首次创建。
func (r *summaryRepositoryImpl) Get(ctx context.Context, pairKey, creatorUUID string) (*model.RelationshipSummary, error) {
	var summary model.RelationshipSummary
	err := r.db.WithContext(ctx).
		Where("pair_key = ? AND creator_uuid = ?", pairKey, creatorUUID).
		First(&summary).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, WrapDBError(err)
	}
	return &summary, nil
}

// CompareAndSwap 以 update_count 为版本号的乐观并发落库。
//   - priorCount == 0：尝试创建（唯一索引冲突说明并发方已创建，映射为 ErrConflict）；
//   - priorCount > 0：UPDATE 条件带 update_count = priorCount，零行命中说明版本被
//     并发方推进过，返回 ErrConflict 让管道重读重折叠。
//
// update_count 只增不减由调用方保证（新值 = priorCount + 本次折叠条数）。
func (r *summaryRepositoryImpl) CompareAndSwap(ctx context.Context, summary *model.RelationshipSummary, priorCount int64) error {
	now := time.Now()

	if priorCount == 0 {
		summary.CreatedAt = now
		summary.UpdatedAt = now
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(summary).Error
		if err != nil {
			return WrapDBError(err)
		}
		// DoNothing 吞掉了冲突：零行插入说明记录已被并发方创建
		if summary.Id == 0 {
			var count int64
			if err := r.db.WithContext(ctx).
				Model(&model.RelationshipSummary{}).
				Where("pair_key = ? AND creator_uuid = ? AND update_count = ?",
					summary.PairKey, summary.CreatorUuid, summary.UpdateCount).
				Count(&count).Error; err != nil {
				return WrapDBError(err)
			}
			if count == 0 {
				return ErrConflict
			}
		}
		return nil
	}

	result := r.db.WithContext(ctx).
		Model(&model.RelationshipSummary{}).
		Where("pair_key = ? AND creator_uuid = ? AND update_count = ?",
			summary.PairKey, summary.CreatorUuid, priorCount).
		Updates(map[string]interface{}{
			"summary":          summary.Summary,
			"suggestions":      summary.Suggestions,
			"last_update_uuid": summary.LastUpdateUuid,
			"update_count":     summary.UpdateCount,
			"updated_at":       now,
		})
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrConflict
	}
	return nil
}
