package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/config"
	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackupService(t *testing.T) {
	tempDir := t.TempDir()
	storagePath := filepath.Join(tempDir, "backups")
	logger := zerolog.Nop()

	db, err := NewDB(filepath.Join(tempDir, "shareit.db"), &logger)
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.CreateUser(context.Background(), &models.User{Name: "ann", Email: "ann@example.com"}))

	s := NewBackupService(db, config.BackupConfig{
		Enabled:       true,
		StoragePath:   storagePath,
		RetentionDays: 1,
	}, &logger)

	var backupPath string
	t.Run("PerformBackup", func(t *testing.T) {
		backupPath, err = s.PerformBackup(context.Background())
		require.NoError(t, err)
		assert.FileExists(t, backupPath)

		restored, err := NewDB(backupPath, &logger)
		require.NoError(t, err)
		defer restored.Close()
		users, err := restored.ListUsers(context.Background(), nil)
		require.NoError(t, err)
		assert.Len(t, users, 1)
	})

	t.Run("CleanupOldBackups", func(t *testing.T) {
		oldFile := filepath.Join(storagePath, "shareit_old.db")
		require.NoError(t, os.WriteFile(oldFile, []byte("old"), 0o644))
		foreign := filepath.Join(storagePath, "notes.txt")
		require.NoError(t, os.WriteFile(foreign, []byte("keep"), 0o644))

		oldTime := time.Now().AddDate(0, 0, -2)
		require.NoError(t, os.Chtimes(oldFile, oldTime, oldTime))
		require.NoError(t, os.Chtimes(foreign, oldTime, oldTime))

		assert.Equal(t, 1, s.CleanupOldBackups())
		assert.NoFileExists(t, oldFile)
		assert.FileExists(t, foreign)
		assert.FileExists(t, backupPath)
	})
}

func TestBackupService_Interval(t *testing.T) {
	logger := zerolog.Nop()
	assert.Equal(t, 24*time.Hour, NewBackupService(nil, config.BackupConfig{}, &logger).Interval())
	assert.Equal(t, time.Hour, NewBackupService(nil, config.BackupConfig{Schedule: "1h"}, &logger).Interval())
	assert.Equal(t, 24*time.Hour, NewBackupService(nil, config.BackupConfig{Schedule: "daily"}, &logger).Interval())
}

func TestBackupService_Disabled(_ *testing.T) {
	logger := zerolog.Nop()
	s := NewBackupService(nil, config.BackupConfig{Enabled: false}, &logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.Start(ctx)
}
