package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/cvp/internal/cvp/entity"
	"github.com/jimyag/cvp/internal/cvp/service"
	"github.com/jimyag/cvp/pkg/ginx"
	"github.com/rs/zerolog"
)

// UnitServiceInterface 定义计算单元服务的接口
type UnitServiceInterface interface {
	RunUnit(ctx context.Context, req *entity.RunUnitRequest) (*entity.RunUnitResponse, error)
	DescribeUnits(ctx context.Context, req *entity.DescribeUnitsRequest) (*entity.DescribeUnitsResponse, error)
	StartUnit(ctx context.Context, req *entity.StartUnitRequest) (*entity.UnitStateChangeResponse, error)
	StopUnit(ctx context.Context, req *entity.StopUnitRequest) (*entity.UnitStateChangeResponse, error)
	RestartUnit(ctx context.Context, req *entity.RestartUnitRequest) (*entity.UnitStateChangeResponse, error)
	DeleteUnit(ctx context.Context, req *entity.DeleteUnitRequest) (*entity.DeleteUnitResponse, error)
	ResizeUnit(ctx context.Context, req *entity.ResizeUnitRequest) (*entity.ResizeUnitResponse, error)
	SuspendUnit(ctx context.Context, req *entity.SuspendUnitRequest) (*entity.UnitStateChangeResponse, error)
	ResumeUnit(ctx context.Context, req *entity.ResumeUnitRequest) (*entity.UnitStateChangeResponse, error)
	ResetUnit(ctx context.Context, req *entity.ResetUnitRequest) (*entity.UnitStateChangeResponse, error)
	UnitStats(ctx context.Context, req *entity.UnitStatsRequest) (*entity.UnitStatsResponse, error)
	UnitLogs(ctx context.Context, req *entity.UnitLogsRequest) (*entity.UnitLogsResponse, error)
	ExecUnit(ctx context.Context, req *entity.ExecUnitRequest) (*entity.ExecUnitResponse, error)
}

type Unit struct {
	unitService UnitServiceInterface
}

func NewUnit(unitService *service.UnitService) *Unit {
	return &Unit{
		unitService: unitService,
	}
}

func (u *Unit) RegisterRoutes(router *gin.RouterGroup) {
	unitRouter := router.Group("/units")
	unitRouter.POST("/run", ginx.AdaptReq(u.RunUnit))
	unitRouter.POST("/describe", ginx.AdaptReq(u.DescribeUnits))
	unitRouter.POST("/start", ginx.AdaptReq(u.StartUnit))
	unitRouter.POST("/stop", ginx.AdaptReq(u.StopUnit))
	unitRouter.POST("/restart", ginx.AdaptReq(u.RestartUnit))
	unitRouter.POST("/delete", ginx.AdaptReq(u.DeleteUnit))
	unitRouter.POST("/resize", ginx.AdaptReq(u.ResizeUnit))
	unitRouter.POST("/suspend", ginx.AdaptReq(u.SuspendUnit))
	unitRouter.POST("/resume", ginx.AdaptReq(u.ResumeUnit))
	unitRouter.POST("/reset", ginx.AdaptReq(u.ResetUnit))
	unitRouter.POST("/stats", ginx.AdaptReq(u.UnitStats))
	unitRouter.POST("/logs", ginx.AdaptReq(u.UnitLogs))
	unitRouter.POST("/exec", ginx.AdaptReq(u.ExecUnit))
}

func (u *Unit) RunUnit(ctx *gin.Context, req *entity.RunUnitRequest) (*entity.RunUnitResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("owner_id", req.OwnerID).
		Str("name", req.Name).
		Str("image", req.Image).
		Msg("RunUnit called")

	resp, err := u.unitService.RunUnit(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Msg("Failed to run unit")
		return nil, err
	}

	logger.Info().
		Str("unit_id", resp.Unit.ID).
		Msg("Unit created successfully")

	return resp, nil
}

func (u *Unit) DescribeUnits(ctx *gin.Context, req *entity.DescribeUnitsRequest) (*entity.DescribeUnitsResponse, error) {
	return u.unitService.DescribeUnits(ctx, req)
}

func (u *Unit) StartUnit(ctx *gin.Context, req *entity.StartUnitRequest) (*entity.UnitStateChangeResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("unit_id", req.UnitID).
		Msg("StartUnit called")

	resp, err := u.unitService.StartUnit(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("unit_id", req.UnitID).
			Msg("Failed to start unit")
		return nil, err
	}
	return resp, nil
}

func (u *Unit) StopUnit(ctx *gin.Context, req *entity.StopUnitRequest) (*entity.UnitStateChangeResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("unit_id", req.UnitID).
		Msg("StopUnit called")

	resp, err := u.unitService.StopUnit(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("unit_id", req.UnitID).
			Msg("Failed to stop unit")
		return nil, err
	}
	return resp, nil
}

func (u *Unit) RestartUnit(ctx *gin.Context, req *entity.RestartUnitRequest) (*entity.UnitStateChangeResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("unit_id", req.UnitID).
		Msg("RestartUnit called")

	resp, err := u.unitService.RestartUnit(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("unit_id", req.UnitID).
			Msg("Failed to restart unit")
		return nil, err
	}
	return resp, nil
}

func (u *Unit) DeleteUnit(ctx *gin.Context, req *entity.DeleteUnitRequest) (*entity.DeleteUnitResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("unit_id", req.UnitID).
		Msg("DeleteUnit called")

	resp, err := u.unitService.DeleteUnit(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("unit_id", req.UnitID).
			Msg("Failed to delete unit")
		return nil, err
	}

	logger.Info().
		Str("unit_id", req.UnitID).
		Msg("Unit destroyed successfully")

	return resp, nil
}

func (u *Unit) ResizeUnit(ctx *gin.Context, req *entity.ResizeUnitRequest) (*entity.ResizeUnitResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("unit_id", req.UnitID).
		Uint16("vcpus", req.VCPUs).
		Uint64("memory_mb", req.MemoryMB).
		Msg("ResizeUnit called")

	resp, err := u.unitService.ResizeUnit(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("unit_id", req.UnitID).
			Msg("Failed to resize unit")
		return nil, err
	}
	return resp, nil
}

func (u *Unit) SuspendUnit(ctx *gin.Context, req *entity.SuspendUnitRequest) (*entity.UnitStateChangeResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Warn().
		Str("unit_id", req.UnitID).
		Str("admin_id", req.AdminID).
		Msg("SuspendUnit called")

	resp, err := u.unitService.SuspendUnit(ctx, req)
	if err != nil {
		logger.Error().
			Err(err).
			Str("unit_id", req.UnitID).
			Msg("Failed to suspend unit")
		return nil, err
	}
	return resp, nil
}

func (u *Unit) ResumeUnit(ctx *gin.Context, req *entity.ResumeUnitRequest) (*entity.UnitStateChangeResponse, error) {
	return u.unitService.ResumeUnit(ctx, req)
}

func (u *Unit) ResetUnit(ctx *gin.Context, req *entity.ResetUnitRequest) (*entity.UnitStateChangeResponse, error) {
	return u.unitService.ResetUnit(ctx, req)
}

func (u *Unit) UnitStats(ctx *gin.Context, req *entity.UnitStatsRequest) (*entity.UnitStatsResponse, error) {
	return u.unitService.UnitStats(ctx, req)
}

func (u *Unit) UnitLogs(ctx *gin.Context, req *entity.UnitLogsRequest) (*entity.UnitLogsResponse, error) {
	return u.unitService.UnitLogs(ctx, req)
}

func (u *Unit) ExecUnit(ctx *gin.Context, req *entity.ExecUnitRequest) (*entity.ExecUnitResponse, error) {
	logger := zerolog.Ctx(ctx)
	logger.Info().
		Str("unit_id", req.UnitID).
		Strs("command", req.Command).
		Msg("ExecUnit called")

	return u.unitService.ExecUnit(ctx, req)
}
