// Package api 提供 HTTP API 层
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/cvp/internal/cvp/service"
	"github.com/jimyag/cvp/pkg/apierror"
	"github.com/jimyag/cvp/pkg/dockerx"
	"github.com/jimyag/cvp/pkg/ginx"
)

type API struct {
	engine *gin.Engine
	server *http.Server

	runtime dockerx.Client
	unit    *Unit
	backup  *Backup
}

func New(unitService *service.UnitService, backupService *service.BackupService, runtime dockerx.Client, address string) (*API, error) {
	engine := gin.Default()
	api := &API{
		engine:  engine,
		runtime: runtime,
		unit:    NewUnit(unitService),
		backup:  NewBackup(backupService),
	}

	root := engine.Group("/api")
	root.GET("/ping", ginx.Adapt(api.Ping))
	api.unit.RegisterRoutes(root)
	api.backup.RegisterRoutes(root)

	api.server = &http.Server{
		Addr:    address,
		Handler: engine,
	}
	return api, nil
}

// Ping 探测服务和容器运行时控制面是否可达
func (a *API) Ping(ctx *gin.Context) (gin.H, error) {
	if err := a.runtime.Ping(ctx); err != nil {
		return nil, apierror.WrapError(apierror.ErrRuntimeUnreachable, apierror.ErrRuntimeUnreachable.Message, err)
	}
	return gin.H{"message": "pong"}, nil
}

func (a *API) Run(ctx context.Context) error {
	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *API) Shutdown(ctx context.Context) error {
	return a.server.Shutdown(ctx)
}

// Name 实现 grace.Grace 接口
func (a *API) Name() string {
	return "CVP API"
}
