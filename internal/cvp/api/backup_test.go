package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/cvp/internal/cvp/entity"
	"github.com/jimyag/cvp/pkg/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockBackupService 是 BackupService 的 mock 实现
type MockBackupService struct {
	mock.Mock
}

func (m *MockBackupService) CreateBackup(ctx context.Context, req *entity.CreateBackupRequest) (*entity.CreateBackupResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.CreateBackupResponse), args.Error(1)
}

func (m *MockBackupService) DescribeBackups(ctx context.Context, req *entity.DescribeBackupsRequest) (*entity.DescribeBackupsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DescribeBackupsResponse), args.Error(1)
}

func (m *MockBackupService) RestoreBackup(ctx context.Context, req *entity.RestoreBackupRequest) (*entity.RestoreBackupResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RestoreBackupResponse), args.Error(1)
}

func (m *MockBackupService) DeleteBackup(ctx context.Context, req *entity.DeleteBackupRequest) (*entity.DeleteBackupResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DeleteBackupResponse), args.Error(1)
}

func newBackupRouter(mockSvc *MockBackupService) *gin.Engine {
	router := gin.New()
	backup := &Backup{backupService: mockSvc}
	backup.RegisterRoutes(router.Group("/api"))
	return router
}

func TestBackup_CreateBackup(t *testing.T) {
	t.Parallel()

	mockSvc := &MockBackupService{}
	mockSvc.On("CreateBackup", mock.Anything, mock.AnythingOfType("*entity.CreateBackupRequest")).
		Return(&entity.CreateBackupResponse{
			Backup: &entity.Backup{ID: "bak-123", UnitID: "cu-123", ImageRef: "cvp/backup:bak-123"},
		}, nil)
	router := newBackupRouter(mockSvc)

	w := postJSON(t, router, "/api/backups/create", &entity.CreateBackupRequest{
		OwnerID: "tenant-1", UnitID: "cu-123", Name: "nightly",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bak-123")
	mockSvc.AssertExpectations(t)
}

func TestBackup_RestoreBackup(t *testing.T) {
	t.Parallel()

	t.Run("successful restore", func(t *testing.T) {
		t.Parallel()

		mockSvc := &MockBackupService{}
		mockSvc.On("RestoreBackup", mock.Anything, mock.AnythingOfType("*entity.RestoreBackupRequest")).
			Return(&entity.RestoreBackupResponse{
				Unit: &entity.Unit{ID: "cu-456", State: entity.UnitStateStopped},
			}, nil)
		router := newBackupRouter(mockSvc)

		w := postJSON(t, router, "/api/backups/restore", &entity.RestoreBackupRequest{
			OwnerID:     "tenant-1",
			BackupID:    "bak-123",
			Name:        "reborn",
			VCPUs:       2,
			MemoryMB:    2048,
			StorageGB:   20,
			BandwidthGB: 1024,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "cu-456")
	})

	t.Run("unknown backup maps to 404", func(t *testing.T) {
		t.Parallel()

		mockSvc := &MockBackupService{}
		mockSvc.On("RestoreBackup", mock.Anything, mock.AnythingOfType("*entity.RestoreBackupRequest")).
			Return(nil, apierror.ErrNotFound)
		router := newBackupRouter(mockSvc)

		w := postJSON(t, router, "/api/backups/restore", &entity.RestoreBackupRequest{
			OwnerID:     "tenant-1",
			BackupID:    "bak-nope",
			Name:        "reborn",
			VCPUs:       2,
			MemoryMB:    2048,
			StorageGB:   20,
			BandwidthGB: 1024,
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBackup_DescribeBackups(t *testing.T) {
	t.Parallel()

	mockSvc := &MockBackupService{}
	mockSvc.On("DescribeBackups", mock.Anything, mock.AnythingOfType("*entity.DescribeBackupsRequest")).
		Return(&entity.DescribeBackupsResponse{Backups: []entity.Backup{
			{ID: "bak-1"}, {ID: "bak-2"},
		}}, nil)
	router := newBackupRouter(mockSvc)

	w := postJSON(t, router, "/api/backups/describe", &entity.DescribeBackupsRequest{OwnerID: "tenant-1"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bak-1")
	assert.Contains(t, w.Body.String(), "bak-2")
}
