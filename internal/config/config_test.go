package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig(t *testing.T) {
	// Устанавливаем переменные окружения для теста
	os.Setenv("BACKEND_URL", "http://tts.local:5000")
	os.Setenv("AUDIO_DOWNLOAD_DIR", "/tmp/tts_test")
	os.Setenv("TELEGRAM_ENABLED", "false")
	os.Setenv("HISTORY_ENABLED", "false")
	defer func() {
		os.Unsetenv("BACKEND_URL")
		os.Unsetenv("AUDIO_DOWNLOAD_DIR")
		os.Unsetenv("TELEGRAM_ENABLED")
		os.Unsetenv("HISTORY_ENABLED")
	}()

	// Загружаем конфигурацию
	cfg, err := Load()

	// Проверяем, что конфигурация загружена без ошибок
	assert.NoError(t, err)
	assert.NotNil(t, cfg)

	// Проверяем значения
	assert.Equal(t, "http://tts.local:5000", cfg.Backend.BaseURL)
	assert.Equal(t, "/tmp/tts_test", cfg.Audio.DownloadDir)
	assert.False(t, cfg.Telegram.Enabled)

	// Проверяем значения по умолчанию
	assert.Equal(t, 120*time.Second, cfg.Backend.Timeout)
	assert.True(t, cfg.Terminal.Enabled)
	assert.Equal(t, "wav", cfg.Audio.Format)
	assert.Equal(t, "paplay", cfg.Audio.PlayerCmd)
	assert.True(t, cfg.Audio.Autoplay)
	assert.Equal(t, 24*time.Hour, cfg.Audio.RetentionTime)
	assert.Equal(t, 5*time.Second, cfg.Notify.AutoDismiss)
	assert.Equal(t, 30*24*time.Hour, cfg.History.RetentionTime)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 8080, cfg.App.Port)
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		User:     "test_user",
		Password: "test_password",
		Name:     "test_db",
		SSLMode:  "disable",
	}

	dsn := cfg.GetDSN()
	expected := "host=localhost port=5432 user=test_user password=test_password dbname=test_db sslmode=disable"
	assert.Equal(t, expected, dsn)
}

func TestAppConfigMethods(t *testing.T) {
	cfg := &AppConfig{
		Env:      "development",
		LogLevel: "debug",
	}

	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.Env = "production"
	assert.False(t, cfg.IsDevelopment())
	assert.True(t, cfg.IsProduction())
}

func TestValidateConfig(t *testing.T) {
	// Тест с пустым URL бэкенда
	cfg := &Config{}
	err := validateConfig(cfg)
	assert.Error(t, err)

	// Тест с корректной минимальной конфигурацией
	cfg = &Config{
		Backend: BackendConfig{
			BaseURL: "http://localhost:5000",
		},
	}
	err = validateConfig(cfg)
	assert.NoError(t, err)

	// Telegram фронтенд требует токен
	cfg.Telegram.Enabled = true
	err = validateConfig(cfg)
	assert.Error(t, err)

	cfg.Telegram.BotToken = "test_token"
	err = validateConfig(cfg)
	assert.NoError(t, err)

	// История требует параметры базы данных
	cfg.History.Enabled = true
	err = validateConfig(cfg)
	assert.Error(t, err)

	cfg.Database.User = "test_user"
	cfg.Database.Password = "test_password"
	cfg.Database.Name = "test_db"
	err = validateConfig(cfg)
	assert.NoError(t, err)
}
