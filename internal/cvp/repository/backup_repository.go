package repository

import (
	"context"

	"github.com/jimyag/cvp/internal/cvp/repository/model"
	"gorm.io/gorm"
)

// BackupRepository 备份仓库接口
type BackupRepository interface {
	Create(ctx context.Context, backup *model.Backup) error
	GetByID(ctx context.Context, id string) (*model.Backup, error)
	List(ctx context.Context, ownerID string, ids []string, unitID string) ([]*model.Backup, error)
	Delete(ctx context.Context, id string) error
}

type backupRepository struct {
	db *gorm.DB
}

// NewBackupRepository 创建备份仓库
func NewBackupRepository(db *gorm.DB) BackupRepository {
	return &backupRepository{db: db}
}

// Create 创建备份记录
func (r *backupRepository) Create(ctx context.Context, backup *model.Backup) error {
	return r.db.WithContext(ctx).Create(backup).Error
}

// GetByID 根据 ID 获取备份（自动过滤已删除）
func (r *backupRepository) GetByID(ctx context.Context, id string) (*model.Backup, error) {
	var backup model.Backup
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&backup).Error; err != nil {
		return nil, err
	}
	return &backup, nil
}

// List 列出租户的备份
func (r *backupRepository) List(ctx context.Context, ownerID string, ids []string, unitID string) ([]*model.Backup, error) {
	var backups []*model.Backup
	query := r.db.WithContext(ctx).Model(&model.Backup{}).Where("owner_id = ?", ownerID)

	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}
	if unitID != "" {
		query = query.Where("unit_id = ?", unitID)
	}

	if err := query.Order("created_at").Find(&backups).Error; err != nil {
		return nil, err
	}

	return backups, nil
}

// Delete 软删除备份记录
func (r *backupRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Backup{}, "id = ?", id).Error
}
