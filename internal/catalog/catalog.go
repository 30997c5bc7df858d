package catalog

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"ozvuchka/internal/notify"
	"ozvuchka/internal/synthapi"
	"ozvuchka/pkg/models"
)

// defaultDisplayName — подпись голоса по умолчанию, когда каталог недоступен
const defaultDisplayName = "Default"

// Catalog загружает список голосов один раз при старте и хранит текущий
// выбор пользователя. Недоступность каталога не фатальна: остается один
// голос по умолчанию (ID == nil).
type Catalog struct {
	logger  *zap.Logger
	api     synthapi.Service
	surface *notify.Surface

	mu       sync.RWMutex
	loaded   bool
	entries  []models.VoiceCatalogEntry
	selected *string
}

// New создает новый каталог голосов
func New(logger *zap.Logger, api synthapi.Service, surface *notify.Surface) *Catalog {
	return &Catalog{
		logger:  logger,
		api:     api,
		surface: surface,
		entries: []models.VoiceCatalogEntry{{ID: nil, DisplayName: defaultDisplayName}},
	}
}

// Load загружает каталог голосов с бэкенда. Выполняется один раз:
// повторные вызовы ничего не делают. Ошибка загрузки не поднимается
// наверх — приложение деградирует до голоса по умолчанию.
func (c *Catalog) Load(ctx context.Context) {
	c.mu.Lock()
	if c.loaded {
		c.mu.Unlock()
		return
	}
	c.loaded = true
	c.mu.Unlock()

	entries, err := c.api.ListVoices(ctx)
	if err != nil || len(entries) == 0 {
		c.logger.Warn("каталог голосов недоступен, используем голос по умолчанию", zap.Error(err))
		c.surface.Show(notify.SeverityWarning, "Voices unavailable, using default voice")
		return
	}

	// Гарантируем наличие записи "по умолчанию" в начале списка
	if entries[0].ID != nil {
		entries = append([]models.VoiceCatalogEntry{{ID: nil, DisplayName: defaultDisplayName}}, entries...)
	}

	c.mu.Lock()
	c.entries = entries
	c.mu.Unlock()

	c.logger.Info("каталог голосов загружен", zap.Int("count", len(entries)))
}

// Entries возвращает копию списка голосов
func (c *Catalog) Entries() []models.VoiceCatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.VoiceCatalogEntry(nil), c.entries...)
}

// Select выбирает голос по идентификатору. Пустая строка нормализуется
// в nil (голос по умолчанию). Неизвестный идентификатор — ошибка.
func (c *Catalog) Select(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == "" {
		c.selected = nil
		return nil
	}

	for _, entry := range c.entries {
		if entry.ID != nil && *entry.ID == id {
			c.selected = entry.ID
			return nil
		}
	}

	return fmt.Errorf("неизвестный голос: %s", id)
}

// Selected возвращает текущий выбранный голос, nil = голос по умолчанию
func (c *Catalog) Selected() *string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.selected
}
