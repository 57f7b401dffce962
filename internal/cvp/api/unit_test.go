package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/jimyag/cvp/internal/cvp/entity"
	"github.com/jimyag/cvp/pkg/apierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockUnitService 是 UnitService 的 mock 实现
type MockUnitService struct {
	mock.Mock
}

func (m *MockUnitService) RunUnit(ctx context.Context, req *entity.RunUnitRequest) (*entity.RunUnitResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.RunUnitResponse), args.Error(1)
}

func (m *MockUnitService) DescribeUnits(ctx context.Context, req *entity.DescribeUnitsRequest) (*entity.DescribeUnitsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DescribeUnitsResponse), args.Error(1)
}

func (m *MockUnitService) StartUnit(ctx context.Context, req *entity.StartUnitRequest) (*entity.UnitStateChangeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UnitStateChangeResponse), args.Error(1)
}

func (m *MockUnitService) StopUnit(ctx context.Context, req *entity.StopUnitRequest) (*entity.UnitStateChangeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UnitStateChangeResponse), args.Error(1)
}

func (m *MockUnitService) RestartUnit(ctx context.Context, req *entity.RestartUnitRequest) (*entity.UnitStateChangeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UnitStateChangeResponse), args.Error(1)
}

func (m *MockUnitService) DeleteUnit(ctx context.Context, req *entity.DeleteUnitRequest) (*entity.DeleteUnitResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DeleteUnitResponse), args.Error(1)
}

func (m *MockUnitService) ResizeUnit(ctx context.Context, req *entity.ResizeUnitRequest) (*entity.ResizeUnitResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ResizeUnitResponse), args.Error(1)
}

func (m *MockUnitService) SuspendUnit(ctx context.Context, req *entity.SuspendUnitRequest) (*entity.UnitStateChangeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UnitStateChangeResponse), args.Error(1)
}

func (m *MockUnitService) ResumeUnit(ctx context.Context, req *entity.ResumeUnitRequest) (*entity.UnitStateChangeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UnitStateChangeResponse), args.Error(1)
}

func (m *MockUnitService) ResetUnit(ctx context.Context, req *entity.ResetUnitRequest) (*entity.UnitStateChangeResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UnitStateChangeResponse), args.Error(1)
}

func (m *MockUnitService) UnitStats(ctx context.Context, req *entity.UnitStatsRequest) (*entity.UnitStatsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UnitStatsResponse), args.Error(1)
}

func (m *MockUnitService) UnitLogs(ctx context.Context, req *entity.UnitLogsRequest) (*entity.UnitLogsResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UnitLogsResponse), args.Error(1)
}

func (m *MockUnitService) ExecUnit(ctx context.Context, req *entity.ExecUnitRequest) (*entity.ExecUnitResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.ExecUnitResponse), args.Error(1)
}

func newUnitRouter(mockSvc *MockUnitService) *gin.Engine {
	router := gin.New()
	unit := &Unit{unitService: mockSvc}
	unit.RegisterRoutes(router.Group("/api"))
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func TestUnit_RunUnit(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name         string
		req          *entity.RunUnitRequest
		mockSetup    func(*MockUnitService)
		expectStatus int
		expectBody   string
	}{
		{
			name: "successful run",
			req: &entity.RunUnitRequest{
				OwnerID:     "tenant-1",
				Name:        "web",
				Image:       "ubuntu:22.04",
				VCPUs:       2,
				MemoryMB:    2048,
				StorageGB:   20,
				BandwidthGB: 1024,
			},
			mockSetup: func(m *MockUnitService) {
				m.On("RunUnit", mock.Anything, mock.AnythingOfType("*entity.RunUnitRequest")).
					Return(&entity.RunUnitResponse{
						Unit: &entity.Unit{ID: "cu-123", State: entity.UnitStateStopped, HourlyRate: 0.0616},
					}, nil)
			},
			expectStatus: http.StatusOK,
			expectBody:   "cu-123",
		},
		{
			name: "validation failure returns 400 with all reasons",
			req: &entity.RunUnitRequest{
				OwnerID:     "tenant-1",
				Name:        "bad",
				Image:       "ubuntu:22.04",
				VCPUs:       64,
				MemoryMB:    256,
				StorageGB:   5,
				BandwidthGB: 1024,
			},
			mockSetup: func(m *MockUnitService) {
				m.On("RunUnit", mock.Anything, mock.AnythingOfType("*entity.RunUnitRequest")).
					Return(nil, apierror.ErrValidationFailed.WithReasons([]string{
						"vcpus: vCPU count must be between 1 and 32, got 64",
						"memory_mb: memory must be between 512MB and 131072MB, got 256MB",
					}))
			},
			expectStatus: http.StatusBadRequest,
			expectBody:   "ValidationFailed",
		},
		{
			name: "missing required fields rejected before service",
			req: &entity.RunUnitRequest{
				OwnerID: "tenant-1",
			},
			mockSetup:    func(m *MockUnitService) {},
			expectStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range testcases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mockSvc := &MockUnitService{}
			tt.mockSetup(mockSvc)
			router := newUnitRouter(mockSvc)

			w := postJSON(t, router, "/api/units/run", tt.req)

			assert.Equal(t, tt.expectStatus, w.Code)
			if tt.expectBody != "" {
				assert.Contains(t, w.Body.String(), tt.expectBody)
			}
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestUnit_StartUnit(t *testing.T) {
	t.Parallel()

	t.Run("transitional state is a normal response", func(t *testing.T) {
		t.Parallel()

		mockSvc := &MockUnitService{}
		mockSvc.On("StartUnit", mock.Anything, mock.AnythingOfType("*entity.StartUnitRequest")).
			Return(&entity.UnitStateChangeResponse{
				UnitID:        "cu-123",
				CurrentState:  entity.UnitStateStarting,
				PreviousState: entity.UnitStateStopped,
			}, nil)
		router := newUnitRouter(mockSvc)

		w := postJSON(t, router, "/api/units/start", &entity.StartUnitRequest{OwnerID: "tenant-1", UnitID: "cu-123"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), entity.UnitStateStarting)
	})

	t.Run("guard rejection maps to 409", func(t *testing.T) {
		t.Parallel()

		mockSvc := &MockUnitService{}
		mockSvc.On("StartUnit", mock.Anything, mock.AnythingOfType("*entity.StartUnitRequest")).
			Return(nil, apierror.ErrAlreadyRunning)
		router := newUnitRouter(mockSvc)

		w := postJSON(t, router, "/api/units/start", &entity.StartUnitRequest{OwnerID: "tenant-1", UnitID: "cu-123"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "StateConflict.AlreadyRunning")
	})

	t.Run("unknown unit maps to 404", func(t *testing.T) {
		t.Parallel()

		mockSvc := &MockUnitService{}
		mockSvc.On("StartUnit", mock.Anything, mock.AnythingOfType("*entity.StartUnitRequest")).
			Return(nil, apierror.ErrNotFound)
		router := newUnitRouter(mockSvc)

		w := postJSON(t, router, "/api/units/start", &entity.StartUnitRequest{OwnerID: "tenant-1", UnitID: "cu-nope"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestUnit_DeleteUnit(t *testing.T) {
	t.Parallel()

	t.Run("runtime unreachable maps to 503", func(t *testing.T) {
		t.Parallel()

		mockSvc := &MockUnitService{}
		mockSvc.On("DeleteUnit", mock.Anything, mock.AnythingOfType("*entity.DeleteUnitRequest")).
			Return(nil, apierror.ErrRuntimeUnreachable)
		router := newUnitRouter(mockSvc)

		w := postJSON(t, router, "/api/units/delete", &entity.DeleteUnitRequest{OwnerID: "tenant-1", UnitID: "cu-123"})

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("successful delete", func(t *testing.T) {
		t.Parallel()

		mockSvc := &MockUnitService{}
		mockSvc.On("DeleteUnit", mock.Anything, mock.AnythingOfType("*entity.DeleteUnitRequest")).
			Return(&entity.DeleteUnitResponse{UnitID: "cu-123", State: "destroyed"}, nil)
		router := newUnitRouter(mockSvc)

		w := postJSON(t, router, "/api/units/delete", &entity.DeleteUnitRequest{OwnerID: "tenant-1", UnitID: "cu-123"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "destroyed")
	})
}

func TestUnit_UnitStats(t *testing.T) {
	t.Parallel()

	mockSvc := &MockUnitService{}
	mockSvc.On("UnitStats", mock.Anything, mock.AnythingOfType("*entity.UnitStatsRequest")).
		Return(&entity.UnitStatsResponse{UnitID: "cu-123", State: entity.UnitStateRunning}, nil).Once()
	router := newUnitRouter(mockSvc)

	w := postJSON(t, router, "/api/units/stats", &entity.UnitStatsRequest{OwnerID: "tenant-1", UnitID: "cu-123"})
	assert.Equal(t, http.StatusOK, w.Code)

	// 无样本时 sample 字段省略，而不是伪造一个零值样本
	assert.NotContains(t, w.Body.String(), "cpu_percent")
}

func TestUnit_XMLResponse(t *testing.T) {
	t.Parallel()

	mockSvc := &MockUnitService{}
	mockSvc.On("DescribeUnits", mock.Anything, mock.AnythingOfType("*entity.DescribeUnitsRequest")).
		Return(&entity.DescribeUnitsResponse{Units: []entity.Unit{{ID: "cu-1"}}}, nil)
	router := newUnitRouter(mockSvc)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/units/describe",
		bytes.NewReader([]byte(`<DescribeUnitsRequest><OwnerID>tenant-1</OwnerID></DescribeUnitsRequest>`)))
	req.Header.Set("Content-Type", "application/xml")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "xml")
}
