package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDB_OpenModes(t *testing.T) {
	t.Run("in-memory", func(t *testing.T) {
		db, err := OpenMemory()
		require.NoError(t, err)
		assert.True(t, db.InMemory())
		recordRun(t, db, "run-1")
		assert.NoError(t, db.CheckpointWAL())
		assert.NoError(t, db.Close())
	})

	t.Run("in-memory through file name", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "unused")
		db, err := Open(dir, InMemorySQLiteDSN)
		require.NoError(t, err)
		assert.Equal(t, InMemorySQLiteDSN, db.Path())
		assert.NoDirExists(t, dir)
		assert.NoError(t, db.Close())
	})

	t.Run("file-based", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "data")
		db, err := Open(dir, "bot.db")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(dir, "bot.db"), db.Path())
		assert.FileExists(t, db.Path())
		recordRun(t, db, "run-1")
		require.NoError(t, db.CheckpointWAL())
		require.NoError(t, db.Close())

		// reopening migrates again and keeps the rows
		db, err = Open(dir, "bot.db")
		require.NoError(t, err)
		var count int64
		require.NoError(t, db.Gorm().Model(&SweepRun{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
		assert.NoError(t, db.Close())
	})

	t.Run("invalid dir", func(t *testing.T) {
		db, err := Open("/proc/invalid/dir", "bot.db")
		require.ErrorContains(t, err, "failed to prepare data dir")
		require.Nil(t, db)
	})
}

func recordRun(t *testing.T, db *DB, runID string) {
	t.Helper()
	require.NoError(t, db.Gorm().Create(&SweepRun{RunID: runID, Attempted: 4}).Error)

	var got SweepRun
	require.NoError(t, db.Gorm().First(&got).Error)
	assert.Equal(t, runID, got.RunID)
	assert.Equal(t, uint32(4), got.Attempted)
}
