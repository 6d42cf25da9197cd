package repository

import (
	"context"

	"ShareServer/consts"
	"ShareServer/model"
	"ShareServer/pkg/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// feedRepositoryImpl Feed 索引数据访问层实现
type feedRepositoryImpl struct {
	db *gorm.DB
}

// NewFeedRepository 创建 Feed 仓储实例
func NewFeedRepository(db *gorm.DB) IFeedRepository {
	return &feedRepositoryImpl{db: db}
}

// BatchUpsertEntries 批量写入 Feed 条目。
// 语义与约束：
//   - (recipient, update) 唯一索引 + DoNothing，重放同一批扇出得到相同终态，不产生重复行；
//   - 条目按 MaxBatchWriteOps 分块，每块一条 INSERT 独立提交，提交完一块才开始下一块；
//   - 原子性只保证到单块：第 k 块之后失败时，1..k 块保持已提交（接受的最终一致性缺口，
//     不做补偿回滚），错误向上传播由调用方决定是否重放；
//   - 返回已成功提交的条数。
func (r *feedRepositoryImpl) BatchUpsertEntries(ctx context.Context, entries []*model.FeedEntry) (int, error) {
	if len(entries) == 0 {
		return 0, nil
	}

	committed := 0
	for _, chunk := range chunkFeedEntries(entries, consts.MaxBatchWriteOps) {
		err := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&chunk).Error
		if err != nil {
			return committed, WrapDBError(err)
		}
		committed += len(chunk)
	}

	return committed, nil
}

// chunkFeedEntries 将条目按 size 上限切块，保持原有顺序，不复制元素
func chunkFeedEntries(entries []*model.FeedEntry, size int) [][]*model.FeedEntry {
	if size <= 0 || len(entries) == 0 {
		return nil
	}
	chunks := make([][]*model.FeedEntry, 0, (len(entries)+size-1)/size)
	for start := 0; start < len(entries); start += size {
		end := start + size
		if end > len(entries) {
			end = len(entries)
		}
		chunks = append(chunks, entries[start:end])
	}
	return chunks
}

// ListFeed 游标分页列出接收者的 Feed。
// 排序键是动态的创建时间（写入时从动态复制），同一时刻用动态 uuid 次级排序保证稳定。
func (r *feedRepositoryImpl) ListFeed(ctx context.Context, recipientUUID string, cur *pagination.Cursor, limit int) ([]*model.FeedEntry, error) {
	query := r.db.WithContext(ctx).
		Where("recipient_uuid = ?", recipientUUID)

	if cur != nil {
		query = query.Where(
			"(update_created_at < ?) OR (update_created_at = ? AND update_uuid < ?)",
			cur.CreatedAt(), cur.CreatedAt(), cur.ID,
		)
	}

	var entries []*model.FeedEntry
	err := query.
		Order("update_created_at DESC, update_uuid DESC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return entries, nil
}
