package repository

import (
	"context"

	"ShareServer/model"

	"gorm.io/gorm"
)

// profileRepositoryImpl 用户资料数据访问层实现（只读，资料维护在用户服务）
type profileRepositoryImpl struct {
	db *gorm.DB
}

// NewProfileRepository 创建资料仓储实例
func NewProfileRepository(db *gorm.DB) IProfileRepository {
	return &profileRepositoryImpl{db: db}
}

// GetProfile 按 uuid 获取资料
func (r *profileRepositoryImpl) GetProfile(ctx context.Context, userUUID string) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := r.db.WithContext(ctx).
		Where("user_uuid = ?", userUUID).
		First(&profile).Error
	if err != nil {
		return nil, WrapDBError(err)
	}
	return &profile, nil
}
