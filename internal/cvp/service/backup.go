package service

import (
	"context"
	"errors"
	"time"

	"github.com/jimyag/cvp/internal/cvp/entity"
	"github.com/jimyag/cvp/internal/cvp/repository"
	"github.com/jimyag/cvp/internal/cvp/repository/model"
	"github.com/jimyag/cvp/pkg/apierror"
	"github.com/jimyag/cvp/pkg/dockerx"
	"github.com/jimyag/cvp/pkg/idgen"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// backupImageRepo 提交备份镜像时使用的仓库名前缀
const backupImageRepo = "cvp/backup"

// BackupService 备份服务
// 备份是容器文件系统提交成的不可变镜像制品，源单元删除后依然存在；
// 恢复等价于以备份镜像为基础镜像的全新创建
type BackupService struct {
	runtime dockerx.Client
	units   repository.UnitRepository
	backups repository.BackupRepository
	unitSvc *UnitService
	idGen   *idgen.Generator
}

// NewBackupService 创建新的 Backup Service
func NewBackupService(runtime dockerx.Client, units repository.UnitRepository, backups repository.BackupRepository, unitSvc *UnitService) *BackupService {
	return &BackupService{
		runtime: runtime,
		units:   units,
		backups: backups,
		unitSvc: unitSvc,
		idGen:   idgen.New(),
	}
}

// getOwnedBackup 获取租户自己的备份
func (s *BackupService) getOwnedBackup(ctx context.Context, ownerID, backupID string) (*model.Backup, error) {
	m, err := s.backups.GetByID(ctx, backupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.ErrNotFound
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to load backup", err)
	}
	if m.OwnerID != ownerID {
		return nil, apierror.ErrNotFound
	}
	return m, nil
}

// CreateBackup 为计算单元创建备份
// 任何状态都允许备份；运行中的容器在提交期间会被短暂暂停以保证一致性
func (s *BackupService) CreateBackup(ctx context.Context, req *entity.CreateBackupRequest) (*entity.CreateBackupResponse, error) {
	unit, err := s.unitSvc.getOwned(ctx, req.OwnerID, req.UnitID)
	if err != nil {
		return nil, err
	}
	if unit.ContainerID == "" {
		return nil, apierror.WrapError(apierror.ErrStateConflict,
			"The compute unit has no backing container to back up.", nil)
	}

	backupID, err := s.idGen.GenerateBackupID()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to generate backup ID", err)
	}
	imageRef := backupImageRepo + ":" + backupID

	zerolog.Ctx(ctx).Info().
		Str("backup_id", backupID).
		Str("unit_id", req.UnitID).
		Str("image_ref", imageRef).
		Msg("Creating backup")

	result, err := s.runtime.Commit(ctx, unit.ContainerID, imageRef)
	if err != nil {
		return nil, runtimeError(err)
	}

	now := time.Now()
	m := &model.Backup{
		ID:        backupID,
		OwnerID:   req.OwnerID,
		Name:      req.Name,
		UnitID:    req.UnitID,
		ImageRef:  imageRef,
		SizeBytes: result.SizeBytes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.backups.Create(ctx, m); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to persist backup", err)
	}

	e, err := backupModelToEntity(m)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert backup", err)
	}
	return &entity.CreateBackupResponse{Backup: e}, nil
}

// DescribeBackups 列出租户的备份
func (s *BackupService) DescribeBackups(ctx context.Context, req *entity.DescribeBackupsRequest) (*entity.DescribeBackupsResponse, error) {
	models, err := s.backups.List(ctx, req.OwnerID, req.BackupIDs, req.UnitID)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to list backups", err)
	}

	backups := make([]entity.Backup, 0, len(models))
	for _, m := range models {
		e, err := backupModelToEntity(m)
		if err != nil {
			return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert backup", err)
		}
		backups = append(backups, *e)
	}
	return &entity.DescribeBackupsResponse{Backups: backups}, nil
}

// RestoreBackup 从备份恢复出一个全新的计算单元
// 新单元拿到全新的身份和 stopped 初始状态，不继承源单元的名称占用和历史
func (s *BackupService) RestoreBackup(ctx context.Context, req *entity.RestoreBackupRequest) (*entity.RestoreBackupResponse, error) {
	backup, err := s.getOwnedBackup(ctx, req.OwnerID, req.BackupID)
	if err != nil {
		return nil, err
	}

	zerolog.Ctx(ctx).Info().
		Str("backup_id", req.BackupID).
		Str("image_ref", backup.ImageRef).
		Str("name", req.Name).
		Msg("Restoring compute unit from backup")

	// 完整复用创建流程：校验、定价、回滚语义全都一致
	resp, err := s.unitSvc.RunUnit(ctx, &entity.RunUnitRequest{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Image:       backup.ImageRef,
		VCPUs:       req.VCPUs,
		MemoryMB:    req.MemoryMB,
		StorageGB:   req.StorageGB,
		BandwidthGB: req.BandwidthGB,
		Env:         req.Env,
		Ports:       req.Ports,
	})
	if err != nil {
		return nil, err
	}

	return &entity.RestoreBackupResponse{Unit: resp.Unit, Advisories: resp.Advisories}, nil
}

// DeleteBackup 删除备份
// 先删提交的镜像再软删除记录；镜像已不存在视为成功
func (s *BackupService) DeleteBackup(ctx context.Context, req *entity.DeleteBackupRequest) (*entity.DeleteBackupResponse, error) {
	backup, err := s.getOwnedBackup(ctx, req.OwnerID, req.BackupID)
	if err != nil {
		return nil, err
	}

	if err := s.runtime.RemoveImage(ctx, backup.ImageRef); err != nil {
		return nil, runtimeError(err)
	}

	if err := s.backups.Delete(ctx, req.BackupID); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to delete backup record", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("backup_id", req.BackupID).
		Msg("Backup deleted")

	return &entity.DeleteBackupResponse{BackupID: req.BackupID}, nil
}
