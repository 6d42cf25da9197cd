package repository

import (
	"context"
	"time"

	rediskey "ShareServer/consts/redisKey"
	"ShareServer/model"
	"ShareServer/pkg/async"
	"ShareServer/pkg/pagination"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// updateRepositoryImpl 动态数据访问层实现
type updateRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewUpdateRepository 创建动态仓储实例
func NewUpdateRepository(db *gorm.DB, redisClient *redis.Client) IUpdateRepository {
	return &updateRepositoryImpl{db: db, redisClient: redisClient}
}

// CreateUpdate 同事务写入动态与初始可见性令牌
func (r *updateRepositoryImpl) CreateUpdate(ctx context.Context, update *model.Update, tokens []*model.UpdateVisibility) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(update).Error; err != nil {
			return err
		}
		if len(tokens) == 0 {
			return nil
		}
		// 令牌表带唯一索引，DoNothing 保证重复创建不报错
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&tokens).Error
	})
	if err != nil {
		return WrapDBError(err)
	}

	// 同步建立令牌缓存（异步，失败只影响缓存命中率）
	tokenValues := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenValues = append(tokenValues, t.Token)
	}
	r.appendTokenCacheAsync(ctx, update.UpdateUuid, tokenValues)

	return nil
}

// GetUpdate 按 uuid 获取动态
func (r *updateRepositoryImpl) GetUpdate(ctx context.Context, updateUUID string) (*model.Update, error) {
	var update model.Update
	err := r.db.WithContext(ctx).
		Where("update_uuid = ?", updateUUID).
		First(&update).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &update, nil
}

// AppendVisibilityTokens 追加可见性令牌。
// 唯一索引 + DoNothing：重复追加是幂等空操作，令牌集合只增不减。
func (r *updateRepositoryImpl) AppendVisibilityTokens(ctx context.Context, updateUUID string, tokens []*model.UpdateVisibility) error {
	if len(tokens) == 0 {
		return nil
	}

	for _, t := range tokens {
		t.UpdateUuid = updateUUID
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&tokens).Error
	if err != nil {
		return WrapDBError(err)
	}

	tokenValues := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenValues = append(tokenValues, t.Token)
	}
	r.appendTokenCacheAsync(ctx, updateUUID, tokenValues)

	return nil
}

// ListVisibilityTokens 列出动态的全部可见性令牌
func (r *updateRepositoryImpl) ListVisibilityTokens(ctx context.Context, updateUUID string) ([]*model.UpdateVisibility, error) {
	var tokens []*model.UpdateVisibility
	err := r.db.WithContext(ctx).
		Where("update_uuid = ?", updateUUID).
		Find(&tokens).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return tokens, nil
}

// HasAnyVisibilityToken 访问检查：动态的令牌集合与请求者持有的令牌是否有交集。
// 采用 Cache-Aside Pattern：优先查 Redis Set，未命中则回源 MySQL 并重建缓存。
func (r *updateRepositoryImpl) HasAnyVisibilityToken(ctx context.Context, updateUUID string, tokens []string) (bool, error) {
	if len(tokens) == 0 {
		return false, nil
	}

	cacheKey := rediskey.UpdateVisibilityKey(updateUUID)

	// ==================== 1. 组合查询 Redis (Pipeline) ====================
	if r.redisClient != nil {
		pipe := r.redisClient.Pipeline()
		existsCmd := pipe.Exists(ctx, cacheKey)
		memberCmd := pipe.SMIsMember(ctx, cacheKey, toAnySlice(tokens)...)

		// 概率续期优化：1% 的概率在读取时顺便续期
		if getRandomBool(0.01) {
			pipe.Expire(ctx, cacheKey, getRandomExpireTime(rediskey.VisibilityTokenTTL))
		}

		_, err := pipe.Exec(ctx)
		if err != nil && err != redis.Nil {
			if isRedisWrongType(err) {
				_ = r.redisClient.Del(ctx, cacheKey).Err()
			} else {
				// Redis 挂了，记录日志，降级去查 DB
				LogRedisError(ctx, err)
			}
		} else if existsCmd.Val() > 0 && memberCmd.Err() == nil {
			for _, hit := range memberCmd.Val() {
				if hit {
					return true, nil
				}
			}
			return false, nil
		}
	}

	// ==================== 2. 缓存未命中，回源查询 MySQL ====================
	var all []model.UpdateVisibility
	err := r.db.WithContext(ctx).
		Where("update_uuid = ?", updateUUID).
		Find(&all).Error
	if err != nil {
		return false, WrapDBError(err)
	}

	// ==================== 3. 重建缓存 (Set) ====================
	r.rebuildTokenCacheAsync(ctx, updateUUID, all)

	tokenSet := make(map[string]struct{}, len(all))
	for _, t := range all {
		tokenSet[t.Token] = struct{}{}
	}
	for _, t := range tokens {
		if _, ok := tokenSet[t]; ok {
			return true, nil
		}
	}
	return false, nil
}

// ListUpdatesByCreator 游标分页列出某用户的动态（创建时间倒序 + uuid 倒序稳定排序）
func (r *updateRepositoryImpl) ListUpdatesByCreator(ctx context.Context, creatorUUID string, cur *pagination.Cursor, limit int) ([]*model.Update, error) {
	query := r.db.WithContext(ctx).
		Where("creator_uuid = ?", creatorUUID)

	// 游标作为排他上界续接下一页
	if cur != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND update_uuid < ?)",
			cur.CreatedAt(), cur.CreatedAt(), cur.ID,
		)
	}

	var updates []*model.Update
	err := query.
		Order("created_at DESC, update_uuid DESC").
		Limit(limit).
		Find(&updates).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return updates, nil
}

// StreamBroadcastUpdates 流式遍历某用户的 broadcast 动态（新到旧）。
// 内部用键集游标分批拉取，惰性供给回调；两次调用之间不保留会话状态。
func (r *updateRepositoryImpl) StreamBroadcastUpdates(ctx context.Context, creatorUUID string, batchSize int, fn func(batch []*model.Update) error) error {
	if batchSize <= 0 {
		batchSize = 200
	}

	var lastCreatedAt time.Time
	var lastUUID string
	first := true

	for {
		query := r.db.WithContext(ctx).
			Where("creator_uuid = ? AND broadcast = ?", creatorUUID, true)
		if !first {
			query = query.Where(
				"(created_at < ?) OR (created_at = ? AND update_uuid < ?)",
				lastCreatedAt, lastCreatedAt, lastUUID,
			)
		}

		var batch []*model.Update
		err := query.
			Order("created_at DESC, update_uuid DESC").
			Limit(batchSize).
			Find(&batch).Error
		if err != nil {
			return WrapDBError(err)
		}
		if len(batch) == 0 {
			return nil
		}

		if err := fn(batch); err != nil {
			return err
		}

		last := batch[len(batch)-1]
		lastCreatedAt = last.CreatedAt
		lastUUID = last.UpdateUuid
		first = false

		if len(batch) < batchSize {
			return nil
		}
	}
}

// ==================== 缓存维护 ====================

// appendTokenCacheAsync 异步向令牌缓存集合追加成员（仅在缓存存在时）。
func (r *updateRepositoryImpl) appendTokenCacheAsync(ctx context.Context, updateUUID string, tokens []string) {
	if r.redisClient == nil || len(tokens) == 0 {
		return
	}
	cacheKey := rediskey.UpdateVisibilityKey(updateUUID)

	async.RunSafe(ctx, func(runCtx context.Context) {
		// 仅在 key 存在时增量追加，避免写出不完整集合
		exists, err := r.redisClient.Exists(runCtx, cacheKey).Result()
		if err != nil {
			LogRedisError(runCtx, err)
			return
		}
		if exists == 0 {
			return
		}
		pipe := r.redisClient.Pipeline()
		pipe.SAdd(runCtx, cacheKey, toAnySlice(tokens)...)
		pipe.Expire(runCtx, cacheKey, getRandomExpireTime(rediskey.VisibilityTokenTTL))
		if _, err := pipe.Exec(runCtx); err != nil && err != redis.Nil {
			if isRedisWrongType(err) {
				_ = r.redisClient.Del(runCtx, cacheKey).Err()
				return
			}
			LogRedisError(runCtx, err)
		}
	}, 0)
}

// rebuildTokenCacheAsync 异步全量重建令牌缓存集合。
func (r *updateRepositoryImpl) rebuildTokenCacheAsync(ctx context.Context, updateUUID string, tokens []model.UpdateVisibility) {
	if r.redisClient == nil {
		return
	}
	cacheKey := rediskey.UpdateVisibilityKey(updateUUID)

	async.RunSafe(ctx, func(runCtx context.Context) {
		pipe := r.redisClient.Pipeline()
		pipe.Del(runCtx, cacheKey)

		if len(tokens) == 0 {
			pipe.SAdd(runCtx, cacheKey, "__EMPTY__")
			pipe.Expire(runCtx, cacheKey, rediskey.VisibilityTokenEmptyTTL)
		} else {
			members := make([]interface{}, 0, len(tokens))
			for _, t := range tokens {
				if t.Token == "" {
					continue
				}
				members = append(members, t.Token)
			}
			if len(members) > 0 {
				pipe.SAdd(runCtx, cacheKey, members...)
			}
			pipe.Expire(runCtx, cacheKey, getRandomExpireTime(rediskey.VisibilityTokenTTL))
		}

		if _, err := pipe.Exec(runCtx); err != nil && err != redis.Nil {
			if isRedisWrongType(err) {
				_ = r.redisClient.Del(runCtx, cacheKey).Err()
				return
			}
			LogRedisError(runCtx, err)
		}
	}, 0)
}

func toAnySlice(list []string) []interface{} {
	out := make([]interface{}, 0, len(list))
	for _, s := range list {
		out = append(out, s)
	}
	return out
}
