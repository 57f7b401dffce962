package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jimyag/cvp/internal/cvp/billing"
	"github.com/jimyag/cvp/internal/cvp/entity"
	"github.com/jimyag/cvp/internal/cvp/repository"
	"github.com/jimyag/cvp/internal/cvp/repository/model"
	"github.com/jimyag/cvp/pkg/apierror"
	"github.com/jimyag/cvp/pkg/dockerx"
	"github.com/jimyag/cvp/pkg/idgen"
	"github.com/jimyag/cvp/pkg/policy"
	"github.com/jimyag/cvp/pkg/usage"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// 容器标签，用于从运行时按标签反查计算单元
const (
	LabelOwner    = "cvp.owner"
	LabelUnit     = "cvp.unit"
	LabelPlatform = "cvp.platform"
)

// platformLabelValue 平台标签的固定取值，所有托管容器都带这个标签
const platformLabelValue = "cvp"

// defaultStopTimeoutSeconds 优雅停止的默认超时
const defaultStopTimeoutSeconds = 10

// UnitService 计算单元服务，编排单元的全生命周期
//
// 同一单元上的状态转换通过每单元互斥锁线性化；
// 不同单元之间互不阻塞。状态读取（describe/stats）不参与线性化。
type UnitService struct {
	runtime dockerx.Client
	units   repository.UnitRepository
	billing billing.Recorder
	idGen   *idgen.Generator

	// locks 每单元互斥锁注册表，key 为单元 ID
	locks sync.Map
}

// NewUnitService 创建新的 Unit Service
func NewUnitService(runtime dockerx.Client, units repository.UnitRepository, recorder billing.Recorder) *UnitService {
	return &UnitService{
		runtime: runtime,
		units:   units,
		billing: recorder,
		idGen:   idgen.New(),
	}
}

// lockFor 获取某个单元的互斥锁
func (s *UnitService) lockFor(unitID string) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(unitID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// getOwned 获取租户自己的单元
// 单元不存在或属于其他租户时统一返回 NotFound，不暴露存在性
func (s *UnitService) getOwned(ctx context.Context, ownerID, unitID string) (*model.Unit, error) {
	m, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.ErrNotFound
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to load compute unit", err)
	}
	if m.OwnerID != ownerID {
		return nil, apierror.ErrNotFound
	}
	return m, nil
}

// runtimeError 把运行时错误归类到错误分类
// 控制面不可达 → RuntimeUnreachable；引擎拒绝 → RuntimeOperationFailed（原始消息保留）
func runtimeError(err error) *apierror.Error {
	if dockerx.IsUnreachable(err) {
		return apierror.WrapError(apierror.ErrRuntimeUnreachable, apierror.ErrRuntimeUnreachable.Message, err)
	}
	return apierror.WrapError(apierror.ErrRuntimeOperationFailed, err.Error(), err)
}

// RunUnit 创建计算单元
// 成功后单元处于 stopped 状态，费率冻结并通知计费系统；
// 容器创建失败时回滚记录，不留孤儿
func (s *UnitService) RunUnit(ctx context.Context, req *entity.RunUnitRequest) (*entity.RunUnitResponse, error) {
	logger := zerolog.Ctx(ctx)

	quota := policy.Quota{
		VCPUs:       req.VCPUs,
		MemoryMB:    req.MemoryMB,
		StorageGB:   req.StorageGB,
		BandwidthGB: req.BandwidthGB,
	}

	// 校验必须返回所有违反的规则，而不是第一条
	if violations := policy.Validate(quota); len(violations) > 0 {
		reasons := make([]string, 0, len(violations))
		for _, v := range violations {
			reasons = append(reasons, v.String())
		}
		return nil, apierror.ErrValidationFailed.WithReasons(reasons)
	}
	advisories := policy.Advisories(quota)

	// 未销毁的单元在同一租户内名称唯一
	if _, err := s.units.GetByOwnerAndName(ctx, req.OwnerID, req.Name); err == nil {
		return nil, apierror.ErrValidationFailed.WithReasons([]string{
			"name: a compute unit with this name already exists",
		})
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to check unit name", err)
	}

	unitID, err := s.idGen.GenerateUnitID()
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to generate unit ID", err)
	}

	logger.Info().
		Str("unit_id", unitID).
		Str("owner_id", req.OwnerID).
		Str("name", req.Name).
		Str("image", req.Image).
		Uint16("vcpus", req.VCPUs).
		Uint64("memory_mb", req.MemoryMB).
		Msg("Creating compute unit")

	now := time.Now()
	m := &model.Unit{
		ID:          unitID,
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		State:       entity.UnitStateStopped,
		Image:       req.Image,
		VCPUs:       req.VCPUs,
		MemoryMB:    req.MemoryMB,
		StorageGB:   req.StorageGB,
		BandwidthGB: req.BandwidthGB,
		Env:         req.Env,
		Ports:       portsEntityToModel(req.Ports),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.units.Create(ctx, m); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to persist compute unit", err)
	}

	ports := make([]dockerx.PortMapping, 0, len(req.Ports))
	for _, p := range req.Ports {
		ports = append(ports, dockerx.PortMapping{
			HostPort:      p.HostPort,
			ContainerPort: p.ContainerPort,
			Protocol:      p.Protocol,
		})
	}

	containerID, err := s.runtime.Create(ctx, &dockerx.CreateSpec{
		Name:        unitID,
		Image:       req.Image,
		NanoCPUs:    policy.NanoCPUs(req.VCPUs),
		MemoryBytes: policy.MemoryBytes(req.MemoryMB),
		StorageOpt:  policy.StorageOpt(req.StorageGB),
		Env:         req.Env,
		Labels: map[string]string{
			LabelOwner:    req.OwnerID,
			LabelUnit:     unitID,
			LabelPlatform: platformLabelValue,
		},
		Ports: ports,
	})
	if err != nil {
		// 回滚记录，失败的创建不留任何痕迹
		if delErr := s.units.HardDelete(ctx, unitID); delErr != nil {
			logger.Error().Err(delErr).Str("unit_id", unitID).Msg("Failed to roll back unit record")
		}
		return nil, runtimeError(err)
	}

	// 创建成功：绑定容器、冻结费率、通知计费
	m.ContainerID = containerID
	m.HourlyRate = policy.EstimateHourlyRate(quota)
	m.UpdatedAt = time.Now()
	if err := s.units.Update(ctx, m); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to attach container to unit", err)
	}
	s.billing.RecordRate(ctx, billing.Record{
		UnitID:     unitID,
		OwnerID:    req.OwnerID,
		Quota:      quota,
		HourlyRate: m.HourlyRate,
	})

	logger.Info().
		Str("unit_id", unitID).
		Str("container_id", containerID).
		Float64("hourly_rate", m.HourlyRate).
		Msg("Compute unit created")

	e, err := unitModelToEntity(m)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert unit", err)
	}
	return &entity.RunUnitResponse{Unit: e, Advisories: advisories}, nil
}

// DescribeUnits 列出租户的计算单元
func (s *UnitService) DescribeUnits(ctx context.Context, req *entity.DescribeUnitsRequest) (*entity.DescribeUnitsResponse, error) {
	models, err := s.units.List(ctx, req.OwnerID, req.UnitIDs, req.States)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to list compute units", err)
	}

	units := make([]entity.Unit, 0, len(models))
	for _, m := range models {
		e, err := unitModelToEntity(m)
		if err != nil {
			return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert unit", err)
		}
		units = append(units, *e)
	}
	return &entity.DescribeUnitsResponse{Units: units}, nil
}

// StartUnit 启动计算单元
// 同步翻转到 starting 并返回；实际的运行时调用在后台完成，调用方轮询终态
func (s *UnitService) StartUnit(ctx context.Context, req *entity.StartUnitRequest) (*entity.UnitStateChangeResponse, error) {
	mu := s.lockFor(req.UnitID)
	mu.Lock()
	defer mu.Unlock()

	m, err := s.getOwned(ctx, req.OwnerID, req.UnitID)
	if err != nil {
		return nil, err
	}

	switch m.State {
	case entity.UnitStateRunning, entity.UnitStateStarting:
		return nil, apierror.ErrAlreadyRunning
	case entity.UnitStateSuspended:
		return nil, apierror.ErrUnitSuspended
	case entity.UnitStateStopped:
		// 允许启动
	default:
		return nil, apierror.WrapError(apierror.ErrStateConflict,
			"The compute unit cannot be started from state "+m.State+".", nil)
	}

	previous := m.State
	m.State = entity.UnitStateStarting
	m.UpdatedAt = time.Now()
	if err := s.units.Update(ctx, m); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to persist state transition", err)
	}

	containerID := m.ContainerID
	go s.reconcile(ctx, req.UnitID, entity.UnitStateStarting, entity.UnitStateRunning, func(ctx context.Context) (*dockerx.Snapshot, error) {
		return s.runtime.Start(ctx, containerID)
	})

	return &entity.UnitStateChangeResponse{
		UnitID:        req.UnitID,
		CurrentState:  entity.UnitStateStarting,
		PreviousState: previous,
	}, nil
}

// StopUnit 停止计算单元
func (s *UnitService) StopUnit(ctx context.Context, req *entity.StopUnitRequest) (*entity.UnitStateChangeResponse, error) {
	mu := s.lockFor(req.UnitID)
	mu.Lock()
	defer mu.Unlock()

	m, err := s.getOwned(ctx, req.OwnerID, req.UnitID)
	if err != nil {
		return nil, err
	}

	switch m.State {
	case entity.UnitStateStopped, entity.UnitStateStopping:
		return nil, apierror.ErrAlreadyStopped
	case entity.UnitStateSuspended:
		return nil, apierror.ErrUnitSuspended
	case entity.UnitStateRunning:
		// 允许停止
	default:
		return nil, apierror.WrapError(apierror.ErrStateConflict,
			"The compute unit cannot be stopped from state "+m.State+".", nil)
	}

	previous := m.State
	m.State = entity.UnitStateStopping
	m.UpdatedAt = time.Now()
	if err := s.units.Update(ctx, m); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to persist state transition", err)
	}

	timeout := req.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultStopTimeoutSeconds
	}
	containerID := m.ContainerID
	go s.reconcile(ctx, req.UnitID, entity.UnitStateStopping, entity.UnitStateStopped, func(ctx context.Context) (*dockerx.Snapshot, error) {
		return s.runtime.Stop(ctx, containerID, timeout)
	})

	return &entity.UnitStateChangeResponse{
		UnitID:        req.UnitID,
		CurrentState:  entity.UnitStateStopping,
		PreviousState: previous,
	}, nil
}

// RestartUnit 重启计算单元（只允许运行中的单元）
func (s *UnitService) RestartUnit(ctx context.Context, req *entity.RestartUnitRequest) (*entity.UnitStateChangeResponse, error) {
	mu := s.lockFor(req.UnitID)
	mu.Lock()
	defer mu.Unlock()

	m, err := s.getOwned(ctx, req.OwnerID, req.UnitID)
	if err != nil {
		return nil, err
	}

	if m.State == entity.UnitStateSuspended {
		return nil, apierror.ErrUnitSuspended
	}
	if m.State != entity.UnitStateRunning {
		return nil, apierror.WrapError(apierror.ErrStateConflict,
			"Only a running compute unit can be restarted, current state is "+m.State+".", nil)
	}

	previous := m.State
	m.State = entity.UnitStateRestarting
	m.UpdatedAt = time.Now()
	if err := s.units.Update(ctx, m); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to persist state transition", err)
	}

	timeout := req.TimeoutSeconds
	if timeout <= 0 {
		timeout = defaultStopTimeoutSeconds
	}
	containerID := m.ContainerID
	go s.reconcile(ctx, req.UnitID, entity.UnitStateRestarting, entity.UnitStateRunning, func(ctx context.Context) (*dockerx.Snapshot, error) {
		return s.runtime.Restart(ctx, containerID, timeout)
	})

	return &entity.UnitStateChangeResponse{
		UnitID:        req.UnitID,
		CurrentState:  entity.UnitStateRestarting,
		PreviousState: previous,
	}, nil
}

// reconcile 在后台执行运行时调用并把单元收敛到终态
// 运行时调用返回后立即收敛，不做固定时长的等待；
// 控制面不可达 → degraded（可重试），引擎拒绝 → error（原因保留，等管理员重置）
func (s *UnitService) reconcile(parent context.Context, unitID, transitional, successState string, op func(context.Context) (*dockerx.Snapshot, error)) {
	// 与请求生命周期解耦，但保留请求的日志上下文
	ctx := zerolog.Ctx(parent).WithContext(context.Background())
	logger := zerolog.Ctx(ctx)

	mu := s.lockFor(unitID)
	mu.Lock()
	defer mu.Unlock()

	m, err := s.units.GetByID(ctx, unitID)
	if err != nil {
		logger.Error().Err(err).Str("unit_id", unitID).Msg("Failed to load unit for reconciliation")
		return
	}

	// 持锁重读：状态已不是发起时的过渡值，说明转换被别人取代（比如管理员挂起），放弃收敛
	if m.State != transitional {
		logger.Warn().
			Str("unit_id", unitID).
			Str("state", m.State).
			Str("expected", transitional).
			Msg("Unit state changed before reconciliation, giving up")
		return
	}

	snap, err := op(ctx)
	if err != nil {
		if dockerx.IsUnreachable(err) {
			m.State = entity.UnitStateDegraded
			logger.Warn().Err(err).Str("unit_id", unitID).Msg("Runtime unreachable, unit marked degraded")
		} else {
			m.State = entity.UnitStateError
			m.FailureReason = err.Error()
			logger.Error().Err(err).Str("unit_id", unitID).Msg("Runtime rejected transition, unit marked error")
		}
		m.UpdatedAt = time.Now()
		if err := s.units.Update(ctx, m); err != nil {
			logger.Error().Err(err).Str("unit_id", unitID).Msg("Failed to persist failed transition")
		}
		return
	}

	m.State = successState
	m.FailureReason = ""
	if snap != nil {
		m.PrivateIP = snap.IPAddress
	}
	m.UpdatedAt = time.Now()
	if err := s.units.Update(ctx, m); err != nil {
		logger.Error().Err(err).Str("unit_id", unitID).Msg("Failed to persist reconciled state")
		return
	}

	logger.Info().
		Str("unit_id", unitID).
		Str("state", successState).
		Msg("Compute unit reconciled")
}

// DeleteUnit 销毁计算单元
// 只允许停止状态；容器删除是幂等的，记录软删除后名称立即可复用
func (s *UnitService) DeleteUnit(ctx context.Context, req *entity.DeleteUnitRequest) (*entity.DeleteUnitResponse, error) {
	mu := s.lockFor(req.UnitID)
	mu.Lock()
	defer mu.Unlock()

	m, err := s.getOwned(ctx, req.OwnerID, req.UnitID)
	if err != nil {
		return nil, err
	}

	if m.State != entity.UnitStateStopped {
		if m.State == entity.UnitStateSuspended {
			return nil, apierror.ErrUnitSuspended
		}
		return nil, apierror.ErrUnitRunning
	}

	if m.ContainerID != "" {
		if err := s.runtime.Remove(ctx, m.ContainerID, false); err != nil {
			return nil, runtimeError(err)
		}
	}

	// 清空容器绑定再软删除，销毁的单元不再指向任何容器
	m.ContainerID = ""
	m.UpdatedAt = time.Now()
	if err := s.units.Update(ctx, m); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to detach container", err)
	}
	if err := s.units.Delete(ctx, req.UnitID); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to destroy compute unit", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("unit_id", req.UnitID).
		Str("owner_id", req.OwnerID).
		Msg("Compute unit destroyed")

	return &entity.DeleteUnitResponse{UnitID: req.UnitID, State: "destroyed"}, nil
}

// ResizeUnit 调整配额（只允许停止状态）
// 原地重建：删除旧容器，用新配额重建，费率重新冻结
func (s *UnitService) ResizeUnit(ctx context.Context, req *entity.ResizeUnitRequest) (*entity.ResizeUnitResponse, error) {
	mu := s.lockFor(req.UnitID)
	mu.Lock()
	defer mu.Unlock()

	m, err := s.getOwned(ctx, req.OwnerID, req.UnitID)
	if err != nil {
		return nil, err
	}

	if m.State != entity.UnitStateStopped {
		if m.State == entity.UnitStateSuspended {
			return nil, apierror.ErrUnitSuspended
		}
		return nil, apierror.WrapError(apierror.ErrStateConflict,
			"The compute unit must be stopped before resizing, current state is "+m.State+".", nil)
	}

	quota := policy.Quota{
		VCPUs:       req.VCPUs,
		MemoryMB:    req.MemoryMB,
		StorageGB:   req.StorageGB,
		BandwidthGB: req.BandwidthGB,
	}
	if violations := policy.Validate(quota); len(violations) > 0 {
		reasons := make([]string, 0, len(violations))
		for _, v := range violations {
			reasons = append(reasons, v.String())
		}
		return nil, apierror.ErrValidationFailed.WithReasons(reasons)
	}
	advisories := policy.Advisories(quota)

	// 先删旧容器。删除是幂等的，但不可达时不动任何状态
	if m.ContainerID != "" {
		if err := s.runtime.Remove(ctx, m.ContainerID, false); err != nil {
			return nil, runtimeError(err)
		}
	}

	ports := make([]dockerx.PortMapping, 0, len(m.Ports))
	for _, p := range m.Ports {
		ports = append(ports, dockerx.PortMapping{
			HostPort:      p.HostPort,
			ContainerPort: p.ContainerPort,
			Protocol:      p.Protocol,
		})
	}

	// 重建必须还原创建时的环境变量和端口，只有资源限制变化
	containerID, err := s.runtime.Create(ctx, &dockerx.CreateSpec{
		Name:        m.ID,
		Image:       m.Image,
		NanoCPUs:    policy.NanoCPUs(req.VCPUs),
		MemoryBytes: policy.MemoryBytes(req.MemoryMB),
		StorageOpt:  policy.StorageOpt(req.StorageGB),
		Env:         m.Env,
		Labels: map[string]string{
			LabelOwner:    m.OwnerID,
			LabelUnit:     m.ID,
			LabelPlatform: platformLabelValue,
		},
		Ports: ports,
	})
	if err != nil {
		// 旧容器已删、新容器没建起来：标记 error 等管理员介入
		m.ContainerID = ""
		m.State = entity.UnitStateError
		m.FailureReason = err.Error()
		m.UpdatedAt = time.Now()
		if updErr := s.units.Update(ctx, m); updErr != nil {
			zerolog.Ctx(ctx).Error().Err(updErr).Str("unit_id", m.ID).Msg("Failed to persist resize failure")
		}
		return nil, runtimeError(err)
	}

	m.VCPUs = req.VCPUs
	m.MemoryMB = req.MemoryMB
	m.StorageGB = req.StorageGB
	m.BandwidthGB = req.BandwidthGB
	m.ContainerID = containerID
	m.HourlyRate = policy.EstimateHourlyRate(quota)
	m.PrivateIP = ""
	m.UpdatedAt = time.Now()
	if err := s.units.Update(ctx, m); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to persist resized unit", err)
	}

	s.billing.RecordRate(ctx, billing.Record{
		UnitID:     m.ID,
		OwnerID:    m.OwnerID,
		Quota:      quota,
		HourlyRate: m.HourlyRate,
	})

	zerolog.Ctx(ctx).Info().
		Str("unit_id", m.ID).
		Str("container_id", containerID).
		Float64("hourly_rate", m.HourlyRate).
		Msg("Compute unit resized")

	e, err := unitModelToEntity(m)
	if err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to convert unit", err)
	}
	return &entity.ResizeUnitResponse{Unit: e, Advisories: advisories}, nil
}

// SuspendUnit 挂起计算单元（仅管理员，如欠费场景）
// 运行中的单元会先被强制停止；挂起状态下租户的一切操作都被拒绝
func (s *UnitService) SuspendUnit(ctx context.Context, req *entity.SuspendUnitRequest) (*entity.UnitStateChangeResponse, error) {
	mu := s.lockFor(req.UnitID)
	mu.Lock()
	defer mu.Unlock()

	m, err := s.units.GetByID(ctx, req.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.ErrNotFound
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to load compute unit", err)
	}

	switch m.State {
	case entity.UnitStateSuspended:
		return nil, apierror.WrapError(apierror.ErrStateConflict, "The compute unit is already suspended.", nil)
	case entity.UnitStateStarting, entity.UnitStateStopping, entity.UnitStateRestarting:
		// 过渡状态下有收敛在途，挂起会被终态写回覆盖掉，必须等转换结束
		return nil, apierror.WrapError(apierror.ErrStateConflict,
			"The compute unit is in transition, current state is "+m.State+".", nil)
	}

	previous := m.State
	if m.State == entity.UnitStateRunning && m.ContainerID != "" {
		if _, err := s.runtime.Stop(ctx, m.ContainerID, defaultStopTimeoutSeconds); err != nil && !dockerx.IsNotFound(err) {
			return nil, runtimeError(err)
		}
	}

	m.State = entity.UnitStateSuspended
	m.UpdatedAt = time.Now()
	if err := s.units.Update(ctx, m); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to persist suspension", err)
	}

	zerolog.Ctx(ctx).Warn().
		Str("unit_id", req.UnitID).
		Str("admin_id", req.AdminID).
		Str("reason", req.Reason).
		Msg("Compute unit suspended")

	return &entity.UnitStateChangeResponse{
		UnitID:        req.UnitID,
		CurrentState:  entity.UnitStateSuspended,
		PreviousState: previous,
	}, nil
}

// ResumeUnit 恢复挂起的计算单元（仅管理员）
// 恢复后回到 stopped，由租户自己决定是否启动
func (s *UnitService) ResumeUnit(ctx context.Context, req *entity.ResumeUnitRequest) (*entity.UnitStateChangeResponse, error) {
	mu := s.lockFor(req.UnitID)
	mu.Lock()
	defer mu.Unlock()

	m, err := s.units.GetByID(ctx, req.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.ErrNotFound
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to load compute unit", err)
	}

	if m.State != entity.UnitStateSuspended {
		return nil, apierror.WrapError(apierror.ErrStateConflict, "The compute unit is not suspended.", nil)
	}

	m.State = entity.UnitStateStopped
	m.UpdatedAt = time.Now()
	if err := s.units.Update(ctx, m); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to persist resumption", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("unit_id", req.UnitID).
		Str("admin_id", req.AdminID).
		Msg("Compute unit resumed")

	return &entity.UnitStateChangeResponse{
		UnitID:        req.UnitID,
		CurrentState:  entity.UnitStateStopped,
		PreviousState: entity.UnitStateSuspended,
	}, nil
}

// ResetUnit 重置 error/degraded 状态的单元（仅管理员）
// 以运行时的实际状态为准收敛：容器在运行 → running，否则 → stopped
func (s *UnitService) ResetUnit(ctx context.Context, req *entity.ResetUnitRequest) (*entity.UnitStateChangeResponse, error) {
	mu := s.lockFor(req.UnitID)
	mu.Lock()
	defer mu.Unlock()

	m, err := s.units.GetByID(ctx, req.UnitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierror.ErrNotFound
		}
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to load compute unit", err)
	}

	if m.State != entity.UnitStateError && m.State != entity.UnitStateDegraded {
		return nil, apierror.WrapError(apierror.ErrStateConflict,
			"Only an error or degraded compute unit can be reset, current state is "+m.State+".", nil)
	}

	previous := m.State
	next := entity.UnitStateStopped
	if m.ContainerID != "" {
		snap, err := s.runtime.Inspect(ctx, m.ContainerID)
		switch {
		case err == nil:
			if snap.Running {
				next = entity.UnitStateRunning
				m.PrivateIP = snap.IPAddress
			}
		case dockerx.IsNotFound(err):
			// 容器已经不在了，回到 stopped 并解除绑定
			m.ContainerID = ""
		default:
			return nil, runtimeError(err)
		}
	}

	m.State = next
	m.FailureReason = ""
	m.UpdatedAt = time.Now()
	if err := s.units.Update(ctx, m); err != nil {
		return nil, apierror.WrapError(apierror.ErrInternalError, "Failed to persist reset", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("unit_id", req.UnitID).
		Str("admin_id", req.AdminID).
		Str("state", next).
		Msg("Compute unit reset")

	return &entity.UnitStateChangeResponse{
		UnitID:        req.UnitID,
		CurrentState:  next,
		PreviousState: previous,
	}, nil
}

// UnitStats 查询资源用量
// 未运行的单元返回空样本；停止竞态导致的容器不存在同样按未运行处理
func (s *UnitService) UnitStats(ctx context.Context, req *entity.UnitStatsRequest) (*entity.UnitStatsResponse, error) {
	m, err := s.getOwned(ctx, req.OwnerID, req.UnitID)
	if err != nil {
		return nil, err
	}

	resp := &entity.UnitStatsResponse{UnitID: req.UnitID, State: m.State}
	if m.ContainerID == "" {
		return resp, nil
	}

	prev, cur, err := s.runtime.Stats(ctx, m.ContainerID)
	if err != nil {
		if dockerx.IsNotFound(err) {
			return resp, nil
		}
		return nil, runtimeError(err)
	}

	resp.Sample = usage.Translate(prev, cur)
	return resp, nil
}

// UnitLogs 读取计算单元的日志
func (s *UnitService) UnitLogs(ctx context.Context, req *entity.UnitLogsRequest) (*entity.UnitLogsResponse, error) {
	m, err := s.getOwned(ctx, req.OwnerID, req.UnitID)
	if err != nil {
		return nil, err
	}
	if m.ContainerID == "" {
		return &entity.UnitLogsResponse{UnitID: req.UnitID}, nil
	}

	opts := &dockerx.LogsOptions{
		TailLines:  req.TailLines,
		Timestamps: req.Timestamps,
	}
	if req.Since != "" {
		since, err := time.Parse(time.RFC3339, req.Since)
		if err != nil {
			return nil, apierror.ErrValidationFailed.WithReasons([]string{
				"since: must be an RFC3339 timestamp",
			})
		}
		opts.Since = since
	}
	if req.Until != "" {
		until, err := time.Parse(time.RFC3339, req.Until)
		if err != nil {
			return nil, apierror.ErrValidationFailed.WithReasons([]string{
				"until: must be an RFC3339 timestamp",
			})
		}
		opts.Until = until
	}

	logs, err := s.runtime.Logs(ctx, m.ContainerID, opts)
	if err != nil {
		if dockerx.IsNotFound(err) {
			return &entity.UnitLogsResponse{UnitID: req.UnitID}, nil
		}
		return nil, runtimeError(err)
	}

	return &entity.UnitLogsResponse{UnitID: req.UnitID, Logs: logs}, nil
}

// ExecUnit 在运行中的计算单元内同步执行命令
func (s *UnitService) ExecUnit(ctx context.Context, req *entity.ExecUnitRequest) (*entity.ExecUnitResponse, error) {
	m, err := s.getOwned(ctx, req.OwnerID, req.UnitID)
	if err != nil {
		return nil, err
	}
	if m.State == entity.UnitStateSuspended {
		return nil, apierror.ErrUnitSuspended
	}
	if m.State != entity.UnitStateRunning || m.ContainerID == "" {
		return nil, apierror.WrapError(apierror.ErrStateConflict,
			"The compute unit must be running to execute commands, current state is "+m.State+".", nil)
	}

	result, err := s.runtime.Exec(ctx, m.ContainerID, req.Command)
	if err != nil {
		return nil, runtimeError(err)
	}

	return &entity.ExecUnitResponse{
		UnitID:   req.UnitID,
		ExitCode: result.ExitCode,
		Output:   result.Output,
	}, nil
}

// SweepOrphans 清理带平台标签但没有单元记录指向的遗留容器
// 创建落库前或删除落库后崩溃都可能留下这类孤儿，启动时扫一次
func (s *UnitService) SweepOrphans(ctx context.Context) error {
	containerIDs, err := s.runtime.ListByLabel(ctx, LabelPlatform, platformLabelValue)
	if err != nil {
		return runtimeError(err)
	}

	known, err := s.units.ListContainerIDs(ctx)
	if err != nil {
		return apierror.WrapError(apierror.ErrInternalError, "Failed to list backing containers", err)
	}
	knownSet := make(map[string]struct{}, len(known))
	for _, id := range known {
		knownSet[id] = struct{}{}
	}

	logger := zerolog.Ctx(ctx)
	for _, id := range containerIDs {
		if _, ok := knownSet[id]; ok {
			continue
		}
		if err := s.runtime.Remove(ctx, id, true); err != nil {
			logger.Error().Err(err).Str("container_id", id).Msg("Failed to remove orphan container")
			continue
		}
		logger.Info().Str("container_id", id).Msg("Orphan container removed")
	}
	return nil
}
