package repository

import (
	"context"

	"github.com/jimyag/cvp/internal/cvp/repository/model"
	"gorm.io/gorm"
)

// UnitRepository 计算单元仓库接口
type UnitRepository interface {
	Create(ctx context.Context, unit *model.Unit) error
	GetByID(ctx context.Context, id string) (*model.Unit, error)
	GetByOwnerAndName(ctx context.Context, ownerID, name string) (*model.Unit, error)
	List(ctx context.Context, ownerID string, ids []string, states []string) ([]*model.Unit, error)
	ListContainerIDs(ctx context.Context) ([]string, error)
	Update(ctx context.Context, unit *model.Unit) error
	Delete(ctx context.Context, id string) error
	HardDelete(ctx context.Context, id string) error
	GetByIDWithDeleted(ctx context.Context, id string) (*model.Unit, error)
}

type unitRepository struct {
	db *gorm.DB
}

// NewUnitRepository 创建计算单元仓库
func NewUnitRepository(db *gorm.DB) UnitRepository {
	return &unitRepository{db: db}
}

// Create 创建计算单元记录
func (r *unitRepository) Create(ctx context.Context, unit *model.Unit) error {
	return r.db.WithContext(ctx).Create(unit).Error
}

// GetByID 根据 ID 获取计算单元（自动过滤已销毁）
func (r *unitRepository) GetByID(ctx context.Context, id string) (*model.Unit, error) {
	var unit model.Unit
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

// GetByOwnerAndName 根据租户和名称获取计算单元（自动过滤已销毁）
func (r *unitRepository) GetByOwnerAndName(ctx context.Context, ownerID, name string) (*model.Unit, error) {
	var unit model.Unit
	if err := r.db.WithContext(ctx).
		Where("owner_id = ? AND name = ?", ownerID, name).
		First(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

// List 列出租户的计算单元
func (r *unitRepository) List(ctx context.Context, ownerID string, ids []string, states []string) ([]*model.Unit, error) {
	var units []*model.Unit
	query := r.db.WithContext(ctx).Model(&model.Unit{}).Where("owner_id = ?", ownerID)

	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	if len(states) > 0 {
		query = query.Where("state IN ?", states)
	}

	if err := query.Order("created_at").Find(&units).Error; err != nil {
		return nil, err
	}

	return units, nil
}

// ListContainerIDs 列出所有未销毁单元指向的容器 ID（跨租户，用于孤儿清理）
func (r *unitRepository) ListContainerIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if err := r.db.WithContext(ctx).Model(&model.Unit{}).
		Where("container_id <> ''").
		Pluck("container_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// Update 更新计算单元
func (r *unitRepository) Update(ctx context.Context, unit *model.Unit) error {
	return r.db.WithContext(ctx).Save(unit).Error
}

// Delete 软删除计算单元（销毁，名称立即可复用）
func (r *unitRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Unit{}, "id = ?", id).Error
}

// HardDelete 硬删除计算单元（用于创建失败的回滚，不留残骸）
func (r *unitRepository) HardDelete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&model.Unit{}, "id = ?", id).Error
}

// GetByIDWithDeleted 根据 ID 获取计算单元（包含已销毁的记录）
func (r *unitRepository) GetByIDWithDeleted(ctx context.Context, id string) (*model.Unit, error) {
	var unit model.Unit
	if err := r.db.WithContext(ctx).Unscoped().Where("id = ?", id).First(&unit).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}
