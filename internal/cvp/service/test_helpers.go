package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jimyag/cvp/internal/cvp/billing"
	"github.com/jimyag/cvp/internal/cvp/repository"
	"github.com/jimyag/cvp/pkg/dockerx"
	"github.com/stretchr/testify/require"
)

// recordingBilling 捕获计费事件的 Recorder，用于测试断言
type recordingBilling struct {
	mu      sync.Mutex
	records []billing.Record
}

func (r *recordingBilling) RecordRate(_ context.Context, record billing.Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, record)
}

func (r *recordingBilling) all() []billing.Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]billing.Record, len(r.records))
	copy(out, r.records)
	return out
}

// testEnv 测试环境：mock 运行时 + 临时 sqlite 仓库 + 服务
type testEnv struct {
	runtime *dockerx.MockClient
	units   repository.UnitRepository
	backups repository.BackupRepository
	billing *recordingBilling

	unitSvc   *UnitService
	backupSvc *BackupService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	repo, err := repository.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	runtime := dockerx.NewMockClient()
	units := repository.NewUnitRepository(repo.DB())
	backups := repository.NewBackupRepository(repo.DB())
	recorder := &recordingBilling{}

	unitSvc := NewUnitService(runtime, units, recorder)
	backupSvc := NewBackupService(runtime, units, backups, unitSvc)

	return &testEnv{
		runtime:   runtime,
		units:     units,
		backups:   backups,
		billing:   recorder,
		unitSvc:   unitSvc,
		backupSvc: backupSvc,
	}
}
