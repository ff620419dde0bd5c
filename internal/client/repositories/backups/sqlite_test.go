package backups

import (
	"context"
	"database/sql"
	"testing"

	"github.com/clientpro-app/clientpro/internal/client/models"
	"github.com/clientpro-app/clientpro/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE backups (
  id TEXT PRIMARY KEY,
  filename TEXT NOT NULL,
  created_at INTEGER NOT NULL,
  size INTEGER NOT NULL,
  device_id TEXT NOT NULL,
  hash TEXT NOT NULL,
  encrypted TEXT NOT NULL,
  kind TEXT NOT NULL DEFAULT 'backup'
);
`)
	require.NoError(t, err)
	return db
}

func record(id string, createdAt int64, hash, kind string) *models.BackupRecord {
	return &models.BackupRecord{
		ID:        id,
		Filename:  models.BackupFilename("dev_1_abc", createdAt, hash),
		CreatedAt: createdAt,
		Size:      42,
		DeviceID:  "dev_1_abc",
		Hash:      hash,
		Encrypted: `{"magic":"CLIENTPRO_CPB"}`,
		Kind:      kind,
	}
}

func TestBackups_CreateGetDelete(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	b := record("b1", 1000, "hash-a", models.BackupKindFull)
	require.NoError(t, r.Create(ctx, b))

	got, err := r.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, b.Encrypted, got.Encrypted)
	assert.Equal(t, b.Filename, got.Filename)

	require.NoError(t, r.DeleteByID(ctx, "b1"))
	_, err = r.GetByID(ctx, "b1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.ErrorIs(t, r.DeleteByID(ctx, "b1"), common.ErrorNotFound)
}

func TestBackups_GetAllNewestFirstWithoutBodies(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Create(ctx, record("b1", 1000, "hash-a", models.BackupKindFull)))
	require.NoError(t, r.Create(ctx, record("b2", 2000, "hash-b", models.BackupKindFull)))

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b2", all[0].ID)
	assert.Empty(t, all[0].Encrypted)
}

func TestBackups_LatestHash(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	hash, err := r.LatestHash(ctx)
	require.NoError(t, err)
	assert.Empty(t, hash)

	require.NoError(t, r.Create(ctx, record("b1", 1000, "hash-a", models.BackupKindFull)))
	require.NoError(t, r.Create(ctx, record("b2", 2000, "hash-b", models.BackupKindFull)))
	// partial exports do not participate in the anti-spam check
	require.NoError(t, r.Create(ctx, record("b3", 3000, "hash-c", models.BackupKindPartial)))

	hash, err = r.LatestHash(ctx)
	require.NoError(t, err)
	assert.Equal(t, "hash-b", hash)
}
