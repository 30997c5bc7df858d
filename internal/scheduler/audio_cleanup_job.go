package scheduler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// расширения файлов, которые задача считает аудио
var audioExtensions = map[string]bool{
	".wav": true,
	".mp3": true,
}

// AudioCleanupJob удаляет из директории загрузок аудио файлы старше
// заданного возраста. Другие файлы не трогает.
type AudioCleanupJob struct {
	logger    *zap.Logger
	dir       string
	retention time.Duration
}

// NewAudioCleanupJob создает новую задачу очистки загрузок
func NewAudioCleanupJob(logger *zap.Logger, dir string, retention time.Duration) *AudioCleanupJob {
	return &AudioCleanupJob{
		logger:    logger,
		dir:       dir,
		retention: retention,
	}
}

// Name возвращает имя задачи
func (j *AudioCleanupJob) Name() string {
	return "audio_cleanup"
}

// Run удаляет устаревшие аудио файлы
func (j *AudioCleanupJob) Run(ctx context.Context) error {
	deleted, err := CleanupAudioFiles(j.dir, j.retention, false, j.logger)
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.logger.Info("очистка загрузок выполнена",
			zap.String("dir", j.dir),
			zap.Int("deleted", deleted))
	}

	return nil
}

// CleanupAudioFiles удаляет аудио файлы старше retention из директории dir.
// При dryRun только считает кандидатов. Возвращает количество удаленных
// (или подлежащих удалению) файлов.
func CleanupAudioFiles(dir string, retention time.Duration, dryRun bool, logger *zap.Logger) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("ошибка чтения директории загрузок: %w", err)
	}

	cutoff := time.Now().Add(-retention)
	deleted := 0

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !audioExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			logger.Warn("не удалось получить информацию о файле",
				zap.String("file", entry.Name()),
				zap.Error(err))
			continue
		}

		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if dryRun {
			logger.Info("DRY RUN: файл будет удален", zap.String("file", path))
			deleted++
			continue
		}

		if err := os.Remove(path); err != nil {
			logger.Warn("не удалось удалить файл", zap.String("file", path), zap.Error(err))
			continue
		}

		logger.Debug("удален старый файл", zap.String("file", path))
		deleted++
	}

	return deleted, nil
}
