package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"shareit/internal/config"

	"github.com/rs/zerolog"
)

const backupPrefix = "shareit_"

// BackupService periodically snapshots the entity store into StoragePath.
type BackupService struct {
	db     *DB
	config config.BackupConfig
	logger *zerolog.Logger
}

func NewBackupService(db *DB, cfg config.BackupConfig, logger *zerolog.Logger) *BackupService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &BackupService{db: db, config: cfg, logger: logger}
}

// Interval parses the schedule as a Go duration, defaulting to a day.
func (s *BackupService) Interval() time.Duration {
	if s.config.Schedule == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(s.config.Schedule)
	if err != nil || d <= 0 {
		s.logger.Warn().Err(err).Str("schedule", s.config.Schedule).Msg("invalid backup schedule, using 24h")
		return 24 * time.Hour
	}
	return d
}

func (s *BackupService) Start(ctx context.Context) {
	if !s.config.Enabled {
		s.logger.Info().Msg("backup service is disabled")
		return
	}

	interval := s.Interval()
	s.logger.Info().Dur("interval", interval).Str("storage", s.config.StoragePath).Msg("backup service started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if _, err := s.PerformBackup(ctx); err != nil {
		s.logger.Error().Err(err).Msg("initial backup failed")
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.PerformBackup(ctx); err != nil {
				s.logger.Error().Err(err).Msg("scheduled backup failed")
			}
			s.CleanupOldBackups()
		}
	}
}

// PerformBackup writes a consistent copy of the database and returns its path.
func (s *BackupService) PerformBackup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.config.StoragePath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	backupPath := filepath.Join(s.config.StoragePath,
		fmt.Sprintf("%s%s.db", backupPrefix, time.Now().UTC().Format("20060102_150405.000")))

	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, backupPath); err != nil {
		if s.db.Path() == memoryPath {
			return "", fmt.Errorf("failed to back up in-memory database: %w", err)
		}
		s.logger.Warn().Err(err).Msg("VACUUM INTO failed, falling back to file copy")
		if err := copyFile(s.db.Path(), backupPath); err != nil {
			return "", fmt.Errorf("failed to copy database file: %w", err)
		}
	}

	s.logger.Info().Str("path", backupPath).Msg("backup completed")
	return backupPath, nil
}

// copyFile is not atomic with respect to concurrent writers.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// CleanupOldBackups removes backups older than RetentionDays and returns how
// many were deleted. Files not written by this service are left alone.
func (s *BackupService) CleanupOldBackups() int {
	if s.config.RetentionDays <= 0 {
		return 0
	}

	entries, err := os.ReadDir(s.config.StoragePath)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to read backup directory")
		return 0
	}

	cutoff := time.Now().AddDate(0, 0, -s.config.RetentionDays)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), backupPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.config.StoragePath, entry.Name())); err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("failed to delete old backup")
			continue
		}
		s.logger.Info().Str("file", entry.Name()).Msg("deleted old backup")
		removed++
	}
	return removed
}
