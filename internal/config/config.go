package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config содержит все конфигурационные параметры приложения
type Config struct {
	Backend  BackendConfig
	Telegram TelegramConfig
	Terminal TerminalConfig
	Audio    AudioConfig
	Notify   NotifyConfig
	History  HistoryConfig
	Database DatabaseConfig
	App      AppConfig
}

// BackendConfig содержит настройки TTS бэкенда
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// TelegramConfig содержит настройки Telegram фронтенда
type TelegramConfig struct {
	Enabled  bool
	BotToken string
}

// TerminalConfig содержит настройки терминального фронтенда
type TerminalConfig struct {
	Enabled bool
}

// AudioConfig содержит настройки работы с аудио ресурсами
type AudioConfig struct {
	DownloadDir   string
	Format        string
	PlayerCmd     string
	Autoplay      bool
	RetentionTime time.Duration // возраст, после которого скачанные файлы удаляются
}

// NotifyConfig содержит настройки уведомлений
type NotifyConfig struct {
	AutoDismiss time.Duration // автоскрытие не-ошибочных уведомлений
}

// HistoryConfig содержит настройки истории синтеза
type HistoryConfig struct {
	Enabled       bool
	RetentionTime time.Duration // возраст, после которого записи истории удаляются
}

// DatabaseConfig содержит настройки PostgreSQL для истории синтеза
type DatabaseConfig struct {
	Host          string
	Port          int
	User          string
	Password      string
	Name          string
	SSLMode       string
	MigrationPath string
}

// AppConfig содержит общие настройки приложения
type AppConfig struct {
	Env      string
	LogLevel string
	Port     int
}

// Load загружает конфигурацию из переменных окружения и .env
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	// Backend
	cfg.Backend.BaseURL = getEnvDefault("BACKEND_URL", "http://localhost:5000")
	cfg.Backend.Timeout = time.Duration(getEnvIntDefault("BACKEND_TIMEOUT_SECONDS", 120)) * time.Second

	// Фронтенды
	cfg.Telegram.Enabled = getEnvBoolDefault("TELEGRAM_ENABLED", false)
	cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	cfg.Terminal.Enabled = getEnvBoolDefault("TERMINAL_ENABLED", true)

	// Audio
	cfg.Audio.DownloadDir = getEnvDefault("AUDIO_DOWNLOAD_DIR", "./audio_downloads")
	cfg.Audio.Format = getEnvDefault("AUDIO_FORMAT", "wav")
	cfg.Audio.PlayerCmd = getEnvDefault("AUDIO_PLAYER_CMD", "paplay")
	cfg.Audio.Autoplay = getEnvBoolDefault("AUDIO_AUTOPLAY", true)
	cfg.Audio.RetentionTime = time.Duration(getEnvIntDefault("AUDIO_RETENTION_TIME_SECONDS", 86400)) * time.Second

	// Уведомления
	cfg.Notify.AutoDismiss = time.Duration(getEnvIntDefault("NOTIFY_AUTO_DISMISS_SECONDS", 5)) * time.Second

	// История
	cfg.History.Enabled = getEnvBoolDefault("HISTORY_ENABLED", false)
	cfg.History.RetentionTime = time.Duration(getEnvIntDefault("HISTORY_RETENTION_DAYS", 30)) * 24 * time.Hour

	// Database
	cfg.Database.Host = getEnvDefault("DB_HOST", "localhost")
	cfg.Database.Port = getEnvIntDefault("DB_PORT", 5432)
	cfg.Database.User = os.Getenv("DB_USER")
	cfg.Database.Password = os.Getenv("DB_PASSWORD")
	cfg.Database.Name = os.Getenv("DB_NAME")
	cfg.Database.SSLMode = getEnvDefault("DB_SSL_MODE", "disable")
	cfg.Database.MigrationPath = getEnvDefault("MIGRATION_PATH", "scripts/migrations")

	// App
	cfg.App.Env = getEnvDefault("APP_ENV", "development")
	cfg.App.LogLevel = getEnvDefault("LOG_LEVEL", "info")
	cfg.App.Port = getEnvIntDefault("APP_PORT", 8080)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return cfg, nil
}

func getEnvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBoolDefault(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// validateConfig проверяет корректность конфигурации
func validateConfig(config *Config) error {
	if config.Backend.BaseURL == "" {
		return fmt.Errorf("BACKEND_URL не установлен")
	}
	if config.Telegram.Enabled && config.Telegram.BotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN не установлен при включенном Telegram фронтенде")
	}
	if config.History.Enabled {
		if config.Database.User == "" {
			return fmt.Errorf("DB_USER не установлен при включенной истории")
		}
		if config.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD не установлен при включенной истории")
		}
		if config.Database.Name == "" {
			return fmt.Errorf("DB_NAME не установлен при включенной истории")
		}
	}

	return nil
}

// GetDSN возвращает строку подключения к базе данных
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// IsDevelopment проверяет, запущено ли приложение в режиме разработки
func (c *AppConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction проверяет, запущено ли приложение в продакшн режиме
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

// GetLogLevel возвращает уровень логирования в формате zap
func (c *AppConfig) GetLogLevel() zap.AtomicLevel {
	switch c.LogLevel {
	case "debug":
		return zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zap.InfoLevel)
	}
}
