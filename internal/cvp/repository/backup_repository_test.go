package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jimyag/cvp/internal/cvp/repository/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupRepository(t *testing.T) {
	t.Parallel()

	repo := setupTestDB(t)

	backupRepo := NewBackupRepository(repo.DB())
	ctx := context.Background()

	t.Run("Create and GetByID", func(t *testing.T) {
		backup := &model.Backup{
			ID:        "bak-123456",
			OwnerID:   "tenant-1",
			Name:      "nightly",
			UnitID:    "cu-123456",
			ImageRef:  "cvp-backup/bak-123456:latest",
			SizeBytes: 1 << 30,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		err := backupRepo.Create(ctx, backup)
		assert.NoError(t, err)

		got, err := backupRepo.GetByID(ctx, "bak-123456")
		assert.NoError(t, err)
		assert.Equal(t, backup.UnitID, got.UnitID)
		assert.Equal(t, backup.ImageRef, got.ImageRef)
		assert.Equal(t, backup.SizeBytes, got.SizeBytes)
	})

	t.Run("List with filters", func(t *testing.T) {
		backups := []*model.Backup{
			{ID: "bak-list-1", OwnerID: "tenant-2", Name: "b1", UnitID: "cu-a", ImageRef: "r1", CreatedAt: time.Now(), UpdatedAt: time.Now()},
			{ID: "bak-list-2", OwnerID: "tenant-2", Name: "b2", UnitID: "cu-b", ImageRef: "r2", CreatedAt: time.Now(), UpdatedAt: time.Now()},
			{ID: "bak-list-3", OwnerID: "tenant-3", Name: "b3", UnitID: "cu-a", ImageRef: "r3", CreatedAt: time.Now(), UpdatedAt: time.Now()},
		}
		for _, b := range backups {
			require.NoError(t, backupRepo.Create(ctx, b))
		}

		all, err := backupRepo.List(ctx, "tenant-2", nil, "")
		assert.NoError(t, err)
		assert.Len(t, all, 2)

		// 备份不随源单元删除而消失，按源单元过滤只是视图
		byUnit, err := backupRepo.List(ctx, "tenant-2", nil, "cu-a")
		assert.NoError(t, err)
		require.Len(t, byUnit, 1)
		assert.Equal(t, "bak-list-1", byUnit[0].ID)

		byID, err := backupRepo.List(ctx, "tenant-2", []string{"bak-list-2"}, "")
		assert.NoError(t, err)
		require.Len(t, byID, 1)
		assert.Equal(t, "bak-list-2", byID[0].ID)
	})

	t.Run("Delete", func(t *testing.T) {
		backup := &model.Backup{
			ID:        "bak-delete",
			OwnerID:   "tenant-4",
			Name:      "doomed",
			UnitID:    "cu-x",
			ImageRef:  "r",
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		require.NoError(t, backupRepo.Create(ctx, backup))

		assert.NoError(t, backupRepo.Delete(ctx, "bak-delete"))

		_, err := backupRepo.GetByID(ctx, "bak-delete")
		assert.Error(t, err)
	})
}
