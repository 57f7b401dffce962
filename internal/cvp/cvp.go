// Package cvp 提供 CVP 服务器的主入口和初始化逻辑
package cvp

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jimmicro/grace"
	"github.com/jimyag/cvp/internal/cvp/api"
	"github.com/jimyag/cvp/internal/cvp/billing"
	"github.com/jimyag/cvp/internal/cvp/config"
	"github.com/jimyag/cvp/internal/cvp/repository"
	"github.com/jimyag/cvp/internal/cvp/service"
	"github.com/jimyag/cvp/pkg/dockerx"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg  *config.Config
	api  *api.API
	repo *repository.Repository
}

func New(cfg *config.Config) (*Server, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger

	// 1. 创建 Repository（SQLite 存放单元和备份的元数据）
	repo, err := repository.New(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("create repository: %w", err)
	}
	logger.Info().Str("db", cfg.DBPath()).Msg("Repository initialized")

	// 2. 创建容器运行时客户端
	runtime, err := dockerx.NewWithHost(cfg.DockerHost)
	if err != nil {
		return nil, err
	}

	// 探活失败不阻塞启动：控制面可能稍后恢复，状态机会把操作标记为 degraded
	if err := runtime.Ping(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("Container runtime is not reachable at startup")
	}

	// 3. 创建计费记录器
	recorder := billing.NewLogRecorder()

	// 4. 创建 Unit Service
	unitService := service.NewUnitService(runtime, repository.NewUnitRepository(repo.DB()), recorder)

	// 清理崩溃残留的孤儿容器，清不掉只告警，不阻塞启动
	if err := unitService.SweepOrphans(context.Background()); err != nil {
		logger.Warn().Err(err).Msg("Failed to sweep orphan containers")
	}

	// 5. 创建 Backup Service
	backupService := service.NewBackupService(
		runtime,
		repository.NewUnitRepository(repo.DB()),
		repository.NewBackupRepository(repo.DB()),
		unitService,
	)

	// 6. 创建 API
	apiInstance, err := api.New(unitService, backupService, runtime, cfg.Address)
	if err != nil {
		return nil, err
	}

	server := &Server{
		cfg:  cfg,
		api:  apiInstance,
		repo: repo,
	}
	return server, nil
}

func (s *Server) Run(ctx context.Context) error {
	// 使用 grace.Shepherd 管理服务生命周期
	services := []grace.Grace{
		s.api,
	}

	shepherd := grace.NewShepherd(
		services,
		grace.WithTimeout(30*time.Second),
		grace.WithLogger(&zerologLogger{}),
	)

	shepherd.Start(ctx)
	return s.repo.Close()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.api.Shutdown(ctx); err != nil {
		return err
	}
	return s.repo.Close()
}

// Name 实现 grace.Grace 接口
func (s *Server) Name() string {
	return "CVP Server"
}

// zerologLogger 实现 grace.Logger 接口
type zerologLogger struct{}

func (l *zerologLogger) Info(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Info()
	// 如果有参数，使用 Msgf 格式化消息
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}

func (l *zerologLogger) Error(msg string, args ...interface{}) {
	logger := zerolog.DefaultContextLogger.Error()
	// 如果有参数，使用 Msgf 格式化消息
	if len(args) > 0 {
		logger.Msgf(msg, args...)
	} else {
		logger.Msg(msg)
	}
}
