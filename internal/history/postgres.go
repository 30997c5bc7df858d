package history

import (
	"context"
	"fmt"
	"time"

	"ozvuchka/internal/config"
	"ozvuchka/pkg/models"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Store представляет интерфейс для работы с базой данных
type Store interface {
	Synthesis() SynthesisRepository
	DB() *pgxpool.Pool
	Close() error
}

// SynthesisRepository интерфейс для работы с историей синтеза
type SynthesisRepository interface {
	Create(ctx context.Context, record *models.SynthesisRecord) error
	GetRecent(ctx context.Context, limit int) ([]models.SynthesisRecord, error)
	CleanupOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// store реализует интерфейс Store
type store struct {
	db        *pgxpool.Pool
	logger    *zap.Logger
	synthesis SynthesisRepository
}

// NewStore создает новое подключение к базе данных
func NewStore(cfg *config.Config, logger *zap.Logger) (Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}

	// Настройка пула: клиент одного пользователя, большой пул не нужен
	poolConfig.MaxConns = 4
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	db, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к базе данных: %w", err)
	}

	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ошибка проверки подключения к базе данных: %w", err)
	}

	logger.Info("успешное подключение к базе данных PostgreSQL")

	return &store{
		db:        db,
		logger:    logger,
		synthesis: NewSynthesisRepository(db, logger),
	}, nil
}

// Synthesis возвращает репозиторий истории синтеза
func (s *store) Synthesis() SynthesisRepository {
	return s.synthesis
}

// DB возвращает подключение к базе данных
func (s *store) DB() *pgxpool.Pool {
	return s.db
}

// Close закрывает подключение к базе данных
func (s *store) Close() error {
	s.logger.Info("закрытие подключения к базе данных")
	s.db.Close()
	return nil
}

// synthesisRepository реализует SynthesisRepository
type synthesisRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

// NewSynthesisRepository создает новый репозиторий истории синтеза
func NewSynthesisRepository(db *pgxpool.Pool, logger *zap.Logger) SynthesisRepository {
	return &synthesisRepository{
		db:     db,
		logger: logger,
	}
}

// Create добавляет запись истории синтеза
func (r *synthesisRepository) Create(ctx context.Context, record *models.SynthesisRecord) error {
	query := `
		INSERT INTO synthesis_history (source_text, voice_preset, audio_id, audio_url, estimated_duration, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	record.CreatedAt = time.Now()

	err := r.db.QueryRow(ctx, query,
		record.SourceText, record.VoicePreset, record.AudioID, record.AudioURL,
		record.EstimatedDuration, record.Status, record.ErrorMessage, record.CreatedAt,
	).Scan(&record.ID)

	if err != nil {
		return fmt.Errorf("ошибка создания записи истории: %w", err)
	}

	r.logger.Debug("запись истории синтеза создана",
		zap.Int64("id", record.ID),
		zap.String("status", record.Status),
		zap.String("audio_id", record.AudioID))

	return nil
}

// GetRecent возвращает последние записи истории синтеза
func (r *synthesisRepository) GetRecent(ctx context.Context, limit int) ([]models.SynthesisRecord, error) {
	query := `
		SELECT id, source_text, voice_preset, audio_id, audio_url, estimated_duration, status, error_message, created_at
		FROM synthesis_history
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения истории синтеза: %w", err)
	}
	defer rows.Close()

	var records []models.SynthesisRecord
	for rows.Next() {
		var record models.SynthesisRecord
		err := rows.Scan(
			&record.ID, &record.SourceText, &record.VoicePreset, &record.AudioID, &record.AudioURL,
			&record.EstimatedDuration, &record.Status, &record.ErrorMessage, &record.CreatedAt,
		)
		if err != nil {
			r.logger.Error("ошибка сканирования записи истории", zap.Error(err))
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// CleanupOlderThan удаляет записи истории старше указанного возраста
func (r *synthesisRepository) CleanupOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)

	result, err := r.db.Exec(ctx, `DELETE FROM synthesis_history WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("ошибка очистки истории синтеза: %w", err)
	}

	deleted := result.RowsAffected()
	if deleted > 0 {
		r.logger.Info("очищены старые записи истории",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}

	return deleted, nil
}
