package main

import (
	"flag"
	"log"

	"ozvuchka/internal/config"
	"ozvuchka/internal/scheduler"

	"go.uber.org/zap"
)

func main() {
	var (
		dir       = flag.String("dir", "", "Директория загрузок (по умолчанию из конфигурации)")
		retention = flag.Duration("retention", 0, "Возраст файлов для удаления (по умолчанию из конфигурации)")
		dryRun    = flag.Bool("dry-run", false, "Показать что будет удалено без фактического удаления")
	)
	flag.Parse()

	// Инициализация логгера
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Ошибка инициализации логгера:", err)
	}
	defer logger.Sync()

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Ошибка загрузки конфигурации", zap.Error(err))
	}

	targetDir := cfg.Audio.DownloadDir
	if *dir != "" {
		targetDir = *dir
	}

	maxAge := cfg.Audio.RetentionTime
	if *retention > 0 {
		maxAge = *retention
	}

	deleted, err := scheduler.CleanupAudioFiles(targetDir, maxAge, *dryRun, logger)
	if err != nil {
		logger.Fatal("Ошибка очистки загрузок", zap.Error(err))
	}

	logger.Info("Очистка загрузок завершена успешно",
		zap.String("dir", targetDir),
		zap.Duration("retention", maxAge),
		zap.Bool("dry_run", *dryRun),
		zap.Int("deleted", deleted))
}
