package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// HistoryCleaner — часть репозитория истории, нужная задаче очистки
type HistoryCleaner interface {
	CleanupOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// HistoryCleanupJob удаляет записи истории синтеза старше заданного возраста
type HistoryCleanupJob struct {
	logger    *zap.Logger
	cleaner   HistoryCleaner
	retention time.Duration
}

// NewHistoryCleanupJob создает новую задачу очистки истории
func NewHistoryCleanupJob(logger *zap.Logger, cleaner HistoryCleaner, retention time.Duration) *HistoryCleanupJob {
	return &HistoryCleanupJob{
		logger:    logger,
		cleaner:   cleaner,
		retention: retention,
	}
}

// Name возвращает имя задачи
func (j *HistoryCleanupJob) Name() string {
	return "history_cleanup"
}

// Run удаляет устаревшие записи истории
func (j *HistoryCleanupJob) Run(ctx context.Context) error {
	deleted, err := j.cleaner.CleanupOlderThan(ctx, j.retention)
	if err != nil {
		return err
	}

	if deleted > 0 {
		j.logger.Info("очистка истории выполнена", zap.Int64("deleted", deleted))
	}

	return nil
}
