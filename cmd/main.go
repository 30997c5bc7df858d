package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ozvuchka/internal/bot"
	"ozvuchka/internal/catalog"
	"ozvuchka/internal/config"
	"ozvuchka/internal/controller"
	"ozvuchka/internal/history"
	"ozvuchka/internal/metrics"
	"ozvuchka/internal/migrations"
	"ozvuchka/internal/notify"
	"ozvuchka/internal/presenter"
	"ozvuchka/internal/scheduler"
	"ozvuchka/internal/synthapi"
	"ozvuchka/internal/term"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

func main() {
	// Инициализация логгера
	logger, err := initLogger()
	if err != nil {
		fmt.Printf("Ошибка инициализации логгера: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("запуск приложения Ozvuchka")

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("ошибка загрузки конфигурации", zap.Error(err))
	}

	// Инициализация клиента TTS бэкенда
	apiClient := synthapi.NewClient(logger, cfg.Backend.BaseURL, cfg.Backend.Timeout)
	logger.Info("конфигурация бэкенда",
		zap.String("base_url", cfg.Backend.BaseURL),
		zap.Duration("timeout", cfg.Backend.Timeout))

	// Инициализация метрик
	metricsSystem := metrics.New(logger)
	metricsHandler := metrics.NewHandler(metricsSystem, logger)

	// Поверхность уведомлений
	surface := notify.NewSurface(logger, cfg.Notify.AutoDismiss)
	if cfg.Terminal.Enabled {
		surface.AddSink(notify.NewTerminalSink(os.Stdout))
	}

	// Презентер аудио результатов
	audioPresenter := presenter.New(logger, apiClient, surface, metricsSystem, presenter.Options{
		DownloadDir: cfg.Audio.DownloadDir,
		Format:      cfg.Audio.Format,
		PlayerCmd:   cfg.Audio.PlayerCmd,
		Autoplay:    cfg.Audio.Autoplay && cfg.Terminal.Enabled,
	})
	if cfg.Terminal.Enabled {
		audioPresenter.AddSink(term.NewResultPanel(os.Stdout))
	}

	// Каталог голосов
	voiceCatalog := catalog.New(logger, apiClient, surface)

	// Контроллер запросов синтеза
	ctrl := controller.New(logger, apiClient, surface, audioPresenter).WithMetrics(metricsSystem)

	// История синтеза (опционально)
	var historyRepo history.SynthesisRepository
	if cfg.History.Enabled {
		store, err := history.NewStore(cfg, logger)
		if err != nil {
			logger.Fatal("ошибка инициализации базы данных", zap.Error(err))
		}
		defer store.Close()

		if err := migrations.RunMigrations(cfg, logger); err != nil {
			logger.Fatal("ошибка применения миграций", zap.Error(err))
		}

		historyRepo = store.Synthesis()
		ctrl = ctrl.WithHistory(historyRepo)
		logger.Info("история синтеза включена")
	}

	// Создание контекста для graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Обработка сигналов для graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Загрузка каталога голосов, при недоступности остается голос по умолчанию
	voiceCatalog.Load(ctx)
	metricsSystem.SetVoicesAvailable(len(voiceCatalog.Entries()))

	// Запуск HTTP сервера для метрик
	go startMetricsServer(ctx, cfg.App.Port, metricsHandler, logger)

	// Инициализация планировщика задач
	taskScheduler := scheduler.NewScheduler(logger)
	taskScheduler.AddJob(scheduler.NewAudioCleanupJob(logger, cfg.Audio.DownloadDir, cfg.Audio.RetentionTime))
	if historyRepo != nil {
		taskScheduler.AddJob(scheduler.NewHistoryCleanupJob(logger, historyRepo, cfg.History.RetentionTime))
	}

	// Запуск планировщика задач (каждый час)
	go taskScheduler.Start(ctx, time.Hour)

	// Запуск Telegram фронтенда
	if cfg.Telegram.Enabled {
		botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
		if err != nil {
			logger.Fatal("ошибка инициализации Telegram бота", zap.Error(err))
		}

		botInfo, err := botAPI.GetMe()
		if err != nil {
			logger.Fatal("ошибка получения информации о боте", zap.Error(err))
		}

		logger.Info("Telegram бот инициализирован",
			zap.String("username", botInfo.UserName),
			zap.Int64("id", botInfo.ID))

		handler := bot.NewHandler(botAPI, ctrl, voiceCatalog, apiClient, logger)
		if historyRepo != nil {
			handler = handler.WithHistory(historyRepo)
		}
		go handleUpdates(ctx, botAPI, handler, logger)

		defer botAPI.StopReceivingUpdates()
	}

	logger.Info("приложение запущено и готово к работе",
		zap.String("address", fmt.Sprintf("http://localhost:%d", cfg.App.Port)),
	)

	if cfg.Terminal.Enabled {
		// Терминальный фронтенд работает в основной горутине,
		// выход из него завершает приложение
		frontend := term.New(ctrl, voiceCatalog, logger)
		if historyRepo != nil {
			frontend = frontend.WithHistory(historyRepo)
		}
		go func() {
			if err := frontend.Run(ctx); err != nil {
				logger.Error("ошибка терминального фронтенда", zap.Error(err))
			}
			cancel()
		}()

		select {
		case <-sigChan:
		case <-ctx.Done():
		}
	} else {
		// Ожидание сигнала завершения
		<-sigChan
	}

	logger.Info("получен сигнал завершения, начинаем graceful shutdown")
	cancel()

	// Даем фоновым горутинам время завершиться
	time.Sleep(500 * time.Millisecond)

	logger.Info("приложение завершено")
}

// initLogger инициализирует логгер
func initLogger() (*zap.Logger, error) {
	// В продакшене можно использовать JSON формат
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"logs/app.log"}
	config.ErrorOutputPaths = []string{"stderr", "logs/error.log"}

	// Создаем директорию для логов если её нет
	if err := os.MkdirAll("logs", 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории логов: %w", err)
	}

	return config.Build()
}

// handleUpdates обрабатывает обновления от Telegram
func handleUpdates(ctx context.Context, botAPI *tgbotapi.BotAPI, handler *bot.Handler, logger *zap.Logger) {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60

	updates := botAPI.GetUpdatesChan(updateConfig)

	for {
		select {
		case update := <-updates:
			// Пропускаем пустые обновления
			if update.Message == nil {
				continue
			}

			// Обрабатываем обновление в горутине
			go func(update tgbotapi.Update) {
				if err := handler.HandleUpdate(ctx, update); err != nil {
					logger.Error("ошибка обработки обновления",
						zap.Int64("chat_id", update.Message.Chat.ID),
						zap.Error(err))
				}
			}(update)

		case <-ctx.Done():
			logger.Info("остановка обработки обновлений")
			return
		}
	}
}

// startMetricsServer запускает HTTP сервер для метрик
func startMetricsServer(ctx context.Context, port int, handler *metrics.Handler, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler.MetricsHandler())
	mux.HandleFunc("/health", handler.HealthHandler)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}

	logger.Info("HTTP сервер метрик запущен", zap.String("address", server.Addr))

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("ошибка HTTP сервера метрик", zap.Error(err))
		}
	}()

	// Ожидание сигнала завершения
	<-ctx.Done()

	// Graceful shutdown HTTP сервера
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("ошибка при остановке HTTP сервера метрик", zap.Error(err))
	}

	logger.Info("HTTP сервер метрик остановлен")
}
