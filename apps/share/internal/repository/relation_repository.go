package repository

import (
	"context"
	"errors"
	"time"

	"ShareServer/consts"
	rediskey "ShareServer/consts/redisKey"
	"ShareServer/model"
	"ShareServer/pkg/async"
	"ShareServer/pkg/pagination"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// relationRepositoryImpl 好友关系数据访问层实现
type relationRepositoryImpl struct {
	db          *gorm.DB
	redisClient *redis.Client
}

// NewRelationRepository 创建关系仓储实例
func NewRelationRepository(db *gorm.DB, redisClient *redis.Client) IRelationRepository {
	return &relationRepositoryImpl{db: db, redisClient: redisClient}
}

// CreateInvitation 创建 pending 邀请。
// 同一对用户的重复邀请由 pair_key 唯一索引拦截，映射为 ErrDuplicateKey。
func (r *relationRepositoryImpl) CreateInvitation(ctx context.Context, rel *model.Relationship) error {
	rel.PairKey = model.PairKey(rel.SourceUuid, rel.TargetUuid)
	rel.Status = consts.RelationPending

	if err := r.db.WithContext(ctx).Create(rel).Error; err != nil {
		return WrapDBError(err)
	}
	return nil
}

// GetByPair 按用户对获取关系
func (r *relationRepositoryImpl) GetByPair(ctx context.Context, a, b string) (*model.Relationship, error) {
	var rel model.Relationship
	err := r.db.WithContext(ctx).
		Where("pair_key = ?", model.PairKey(a, b)).
		First(&rel).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &rel, nil
}

// Accept 执行 pending→accepted 状态转移。
// WHERE 带 status 条件使转移只能发生一次：已接受/已拒绝的邀请返回 ErrRecordNotFound，
// 由服务层区分"邀请不存在"与"已处理过"。
func (r *relationRepositoryImpl) Accept(ctx context.Context, sourceUUID, targetUUID string) (*model.Relationship, error) {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&model.Relationship{}).
		Where("pair_key = ? AND source_uuid = ? AND target_uuid = ? AND status = ?",
			model.PairKey(sourceUUID, targetUUID), sourceUUID, targetUUID, consts.RelationPending).
		Updates(map[string]interface{}{
			"status":     consts.RelationAccepted,
			"updated_at": now,
		})
	if result.Error != nil {
		return nil, WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrRecordNotFound
	}

	// 双方好友列表缓存失效（新好友加入）
	r.invalidateFriendCacheAsync(ctx, sourceUUID, targetUUID)

	return r.GetByPair(ctx, sourceUUID, targetUUID)
}

// Reject 执行 pending→rejected 状态转移（终态，不触发任何回填）。
func (r *relationRepositoryImpl) Reject(ctx context.Context, sourceUUID, targetUUID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Relationship{}).
		Where("pair_key = ? AND source_uuid = ? AND target_uuid = ? AND status = ?",
			model.PairKey(sourceUUID, targetUUID), sourceUUID, targetUUID, consts.RelationPending).
		Update("status", consts.RelationRejected)
	if result.Error != nil {
		return WrapDBError(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// ListAcceptedFriendUUIDs 列出某用户全部已接受好友。
// broadcast 受众展开的热点路径，采用 Cache-Aside：优先 Redis Set，未命中回源重建。
func (r *relationRepositoryImpl) ListAcceptedFriendUUIDs(ctx context.Context, userUUID string) ([]string, error) {
	cacheKey := rediskey.FriendRelationKey(userUUID)

	// ==================== 1. 查询 Redis ====================
	if r.redisClient != nil {
		members, err := r.redisClient.SMembers(ctx, cacheKey).Result()
		if err != nil && err != redis.Nil {
			if isRedisWrongType(err) {
				_ = r.redisClient.Del(ctx, cacheKey).Err()
			} else {
				LogRedisError(ctx, err)
			}
		} else if len(members) > 0 {
			// 空值哨兵表示"确认没有好友"
			friends := make([]string, 0, len(members))
			for _, m := range members {
				if m == "__EMPTY__" {
					continue
				}
				friends = append(friends, m)
			}
			return friends, nil
		}
	}

	// ==================== 2. 回源 MySQL ====================
	friends, err := r.queryAcceptedFriendUUIDs(ctx, userUUID)
	if err != nil {
		return nil, err
	}

	// ==================== 3. 重建缓存 ====================
	r.rebuildFriendCacheAsync(ctx, userUUID, friends)

	return friends, nil
}

// queryAcceptedFriendUUIDs 回源查询已接受好友（对端 uuid）。
func (r *relationRepositoryImpl) queryAcceptedFriendUUIDs(ctx context.Context, userUUID string) ([]string, error) {
	var rels []model.Relationship
	err := r.db.WithContext(ctx).
		Where("(source_uuid = ? OR target_uuid = ?) AND status = ?", userUUID, userUUID, consts.RelationAccepted).
		Find(&rels).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	friends := make([]string, 0, len(rels))
	for _, rel := range rels {
		if rel.SourceUuid == userUUID {
			friends = append(friends, rel.TargetUuid)
		} else {
			friends = append(friends, rel.SourceUuid)
		}
	}
	return friends, nil
}

// ListAcceptedFriends 游标分页列出好友关系（接受时间倒序）
func (r *relationRepositoryImpl) ListAcceptedFriends(ctx context.Context, userUUID string, cur *pagination.Cursor, limit int) ([]*model.Relationship, error) {
	query := r.db.WithContext(ctx).
		Where("(source_uuid = ? OR target_uuid = ?) AND status = ?", userUUID, userUUID, consts.RelationAccepted)

	if cur != nil {
		query = query.Where(
			"(updated_at < ?) OR (updated_at = ? AND pair_key < ?)",
			cur.CreatedAt(), cur.CreatedAt(), cur.ID,
		)
	}

	var rels []*model.Relationship
	err := query.
		Order("updated_at DESC, pair_key DESC").
		Limit(limit).
		Find(&rels).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return rels, nil
}

// ListPendingInvitations 游标分页列出收到的待处理邀请（创建时间倒序）
func (r *relationRepositoryImpl) ListPendingInvitations(ctx context.Context, targetUUID string, cur *pagination.Cursor, limit int) ([]*model.Relationship, error) {
	query := r.db.WithContext(ctx).
		Where("target_uuid = ? AND status = ?", targetUUID, consts.RelationPending)

	if cur != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND pair_key < ?)",
			cur.CreatedAt(), cur.CreatedAt(), cur.ID,
		)
	}

	var rels []*model.Relationship
	err := query.
		Order("created_at DESC, pair_key DESC").
		Limit(limit).
		Find(&rels).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return rels, nil
}

// ==================== 缓存维护 ====================

// invalidateFriendCacheAsync 异步失效双方的好友缓存（下次读取时回源重建）。
func (r *relationRepositoryImpl) invalidateFriendCacheAsync(ctx context.Context, userUUID, friendUUID string) {
	if r.redisClient == nil {
		return
	}
	async.RunSafe(ctx, func(runCtx context.Context) {
		keys := []string{
			rediskey.FriendRelationKey(userUUID),
			rediskey.FriendRelationKey(friendUUID),
		}
		if err := r.redisClient.Del(runCtx, keys...).Err(); err != nil && !errors.Is(err, redis.Nil) {
			LogRedisError(runCtx, err)
		}
	}, 0)
}

// rebuildFriendCacheAsync 异步重建好友缓存（Set）。
func (r *relationRepositoryImpl) rebuildFriendCacheAsync(ctx context.Context, userUUID string, friends []string) {
	if r.redisClient == nil {
		return
	}
	cacheKey := rediskey.FriendRelationKey(userUUID)
	async.RunSafe(ctx, func(runCtx context.Context) {
		pipe := r.redisClient.Pipeline()
		pipe.Del(runCtx, cacheKey)

		if len(friends) == 0 {
			pipe.SAdd(runCtx, cacheKey, "__EMPTY__")
			pipe.Expire(runCtx, cacheKey, rediskey.FriendRelationEmptyTTL)
		} else {
			pipe.SAdd(runCtx, cacheKey, toAnySlice(friends)...)
			pipe.Expire(runCtx, cacheKey, getRandomExpireTime(rediskey.FriendRelationTTL))
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
