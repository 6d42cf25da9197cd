package repository

import (
	"context"
	"time"

	"ShareServer/model"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"gorm.io/gorm"
)

// groupRepositoryImpl 圈子数据访问层实现。
// 成员列表是扇出热点且变更低频，用进程内 LRU（带 TTL）挡一层，
// 过期后自然回源；成员变更由外部圈子服务负责，这里接受短暂陈旧。
type groupRepositoryImpl struct {
	db          *gorm.DB
	memberCache *lru.LRU[string, []string]
}

// NewGroupRepository 创建圈子仓储实例
func NewGroupRepository(db *gorm.DB) IGroupRepository {
	return &groupRepositoryImpl{
		db:          db,
		memberCache: lru.NewLRU[string, []string](1024, nil, 5*time.Minute),
	}
}

// ListGroupUUIDsByMember 列出某用户加入的全部圈子
func (r *groupRepositoryImpl) ListGroupUUIDsByMember(ctx context.Context, userUUID string) ([]string, error) {
	var members []model.GroupMember
	err := r.db.WithContext(ctx).
		Where("user_uuid = ?", userUUID).
		Find(&members).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	groups := make([]string, 0, len(members))
	for _, m := range members {
		groups = append(groups, m.GroupUuid)
	}
	return groups, nil
}

// ListMembers 列出圈子成员（LRU 缓存优先）
func (r *groupRepositoryImpl) ListMembers(ctx context.Context, groupUUID string) ([]string, error) {
	if cached, ok := r.memberCache.Get(groupUUID); ok {
		return cached, nil
	}

	var members []model.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_uuid = ?", groupUUID).
		Find(&members).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	uuids := make([]string, 0, len(members))
	for _, m := range members {
		uuids = append(uuids, m.UserUuid)
	}

	r.memberCache.Add(groupUUID, uuids)
	return uuids, nil
}

// ListMembersMulti 批量列出多个圈子的成员
func (r *groupRepositoryImpl) ListMembersMulti(ctx context.Context, groupUUIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(groupUUIDs))
	if len(groupUUIDs) == 0 {
		return result, nil
	}

	// 先吃缓存，剩下的合并一次回源
	missing := make([]string, 0, len(groupUUIDs))
	for _, g := range groupUUIDs {
		if cached, ok := r.memberCache.Get(g); ok {
			result[g] = cached
		} else {
			missing = append(missing, g)
		}
	}
	if len(missing) == 0 {
		return result, nil
	}

	var members []model.GroupMember
	err := r.db.WithContext(ctx).
		Where("group_uuid IN ?", missing).
		Find(&members).Error
	if err != nil {
		return nil, WrapDBError(err)
	}

	for _, g := range missing {
		result[g] = []string{}
	}
	for _, m := range members {
		result[m.GroupUuid] = append(result[m.GroupUuid], m.UserUuid)
	}
	for _, g := range missing {
		r.memberCache.Add(g, result[g])
	}

	return result, nil
}
