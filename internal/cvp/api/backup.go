package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/cvp/internal/cvp/entity"
	"github.com/jimyag/cvp/internal/cvp/service"
	"github.com/jimyag/cvp/pkg/ginx"
	"github.com/rs/zerolog"
)

// BackupServiceInterface 定义备份服务的接口
type BackupServiceInterface interface {
	CreateBackup(ctx context.Context, req *entity.CreateBackupRequest) (*entity.CreateBackupResponse, error)
	DescribeBackups(ctx context.Context, req *entity.DescribeBackupsRequest) (*entity.DescribeBackupsResponse, error)
	RestoreBackup(ctx context.Context, req *entity.RestoreBackupRequest) (*entity.RestoreBackupResponse, error)
	DeleteBackup(ctx context.Context, req *entity.DeleteBackupRequest) (*entity.DeleteBackupResponse, error)
}

type Backup struct {
	backupService BackupServiceInterface
}

func NewBackup(backupService *service.BackupService) *Backup {
	return &Backup{
		backupService: backupService,
	}
}

func (b *Backup) RegisterRoutes(router *gin.RouterGroup) {
	backupRouter := router.Group("/backups")
	backupRouter.POST("/create", ginx.AdaptReq(b.CreateBackup))
	backupRouter.POST("/describe", ginx.AdaptReq(b.DescribeBackups))
	backupRouter.POST("/restore", ginx.AdaptReq(b.RestoreBackup))
	backupRouter.POST("/delete", ginx.AdaptReq(b.DeleteBackup))
}

func (b *Backup) CreateBackup(ctx *gin.Context, req *entity.CreateBackupRequest) (*entity.CreateBackupResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("unit_id", req.UnitID).
		Str("name", req.Name).
		Msg("CreateBackup called")

	resp, err := b.backupService.CreateBackup(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("unit_id", req.UnitID).
			Msg("Failed to create backup")
		return nil, err
	}

	logger.Info().
		Str("backup_id", resp.Backup.ID).
		Msg("Backup created successfully")

	return resp, nil
}

func (b *Backup) DescribeBackups(ctx *gin.Context, req *entity.DescribeBackupsRequest) (*entity.DescribeBackupsResponse, error) {
	return b.backupService.DescribeBackups(ctx, req)
}

func (b *Backup) RestoreBackup(ctx *gin.Context, req *entity.RestoreBackupRequest) (*entity.RestoreBackupResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("backup_id", req.BackupID).
		Str("name", req.Name).
		Msg("RestoreBackup called")

	resp, err := b.backupService.RestoreBackup(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("backup_id", req.BackupID).
			Msg("Failed to restore backup")
		return nil, err
	}

	logger.Info().
		Str("backup_id", req.BackupID).
		Str("unit_id", resp.Unit.ID).
		Msg("Backup restored successfully")

	return resp, nil
}

func (b *Backup) DeleteBackup(ctx *gin.Context, req *entity.DeleteBackupRequest) (*entity.DeleteBackupResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("backup_id", req.BackupID).
		Msg("DeleteBackup called")

	return b.backupService.DeleteBackup(ctx, req)
}
