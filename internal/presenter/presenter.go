package presenter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"ozvuchka/internal/metrics"
	"ozvuchka/internal/notify"
	"ozvuchka/internal/synthapi"
	"ozvuchka/pkg/models"
)

// maxDescribedTextLength — сколько символов исходного текста показываем
// в описании результата
const maxDescribedTextLength = 100

// ErrNoAudio возвращается при попытке скачать, когда результата нет
var ErrNoAudio = errors.New("нет текущего аудио результата")

// Sink отрисовывает представленный результат во фронтенде
type Sink interface {
	Present(result models.SynthesisResult, description string)
	Reset()
}

// Presenter владеет единственным живым результатом синтеза: привязывает
// аудио ресурс к воспроизведению, описанию и скачиванию. Новый результат
// или Reset вытесняет предыдущий ресурс.
type Presenter struct {
	logger  *zap.Logger
	fetcher synthapi.AudioFetcher
	surface *notify.Surface
	metrics *metrics.Metrics

	downloadDir string
	format      string
	playerCmd   string
	autoplay    bool

	// подменяются в тестах
	play func(ctx context.Context, path string) error
	now  func() time.Time

	mu         sync.Mutex
	current    *models.SynthesisResult
	sinks      []Sink
	cancelPlay context.CancelFunc
}

// Options настраивает презентер
type Options struct {
	DownloadDir string
	Format      string // расширение выходного формата бэкенда, например wav
	PlayerCmd   string // команда проигрывателя, пустая = воспроизведение отключено
	Autoplay    bool
}

// New создает новый презентер аудио
func New(logger *zap.Logger, fetcher synthapi.AudioFetcher, surface *notify.Surface, m *metrics.Metrics, opts Options) *Presenter {
	if opts.Format == "" {
		opts.Format = "wav"
	}
	p := &Presenter{
		logger:      logger,
		fetcher:     fetcher,
		surface:     surface,
		metrics:     m,
		downloadDir: opts.DownloadDir,
		format:      opts.Format,
		playerCmd:   opts.PlayerCmd,
		autoplay:    opts.Autoplay,
		now:         time.Now,
	}
	p.play = p.playFile
	return p
}

// AddSink регистрирует отрисовщик результатов
func (p *Presenter) AddSink(sink Sink) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sinks = append(p.sinks, sink)
}

// Describe возвращает описание результата: исходный текст (обрезанный до
// 100 символов с многоточием), оценка длительности и локальное время
func Describe(result models.SynthesisResult) string {
	text := result.SourceText
	if utf8.RuneCountInString(text) > maxDescribedTextLength {
		runes := []rune(text)
		text = string(runes[:maxDescribedTextLength]) + "…"
	}
	return fmt.Sprintf("%q · ~%.1fs · %s", text, result.EstimatedDuration,
		result.Timestamp.Local().Format("15:04:05"))
}

// Present заменяет текущий аудио ресурс новым результатом, отрисовывает
// описание и пытается начать воспроизведение. Воспроизведение живет на
// собственном контексте до вытеснения результата. Отказ воспроизведения —
// не ошибка приложения: он только логируется.
func (p *Presenter) Present(result models.SynthesisResult) {
	p.mu.Lock()
	if p.cancelPlay != nil {
		p.cancelPlay()
		p.cancelPlay = nil
	}
	copied := result
	p.current = &copied
	sinks := append([]Sink(nil), p.sinks...)

	var playCtx context.Context
	if p.autoplay && p.playerCmd != "" {
		playCtx, p.cancelPlay = context.WithCancel(context.Background())
	}
	p.mu.Unlock()

	description := Describe(result)
	p.logger.Info("результат синтеза представлен",
		zap.String("audio_id", result.AudioID),
		zap.String("audio_url", result.AudioURL))

	for _, sink := range sinks {
		sink.Present(result, description)
	}

	if playCtx != nil {
		go p.autoplayResult(playCtx, result)
	}
}

// Download сохраняет текущий аудио ресурс в файл с именем, производным
// от времени вызова. Возвращает путь к сохраненному файлу.
func (p *Presenter) Download(ctx context.Context) (string, error) {
	p.mu.Lock()
	current := p.current
	p.mu.Unlock()

	if current == nil {
		p.surface.Show(notify.SeverityError, "Nothing to download yet")
		return "", ErrNoAudio
	}

	data, err := p.fetcher.FetchAudio(ctx, current.AudioURL)
	if err != nil {
		p.surface.Show(notify.SeverityError, "Failed to download audio")
		return "", fmt.Errorf("ошибка скачивания аудио: %w", err)
	}

	if p.downloadDir != "" {
		if err := os.MkdirAll(p.downloadDir, 0755); err != nil {
			p.surface.Show(notify.SeverityError, "Failed to save audio")
			return "", fmt.Errorf("ошибка создания директории загрузок: %w", err)
		}
	}

	filename := fmt.Sprintf("tts_%d.%s", p.now().UnixMilli(), p.format)
	path := filepath.Join(p.downloadDir, filename)

	if err := os.WriteFile(path, data, 0644); err != nil {
		p.surface.Show(notify.SeverityError, "Failed to save audio")
		return "", fmt.Errorf("ошибка сохранения аудио: %w", err)
	}

	p.metrics.RecordDownload()
	p.logger.Info("аудио сохранено",
		zap.String("path", path),
		zap.Int("size", len(data)))
	p.surface.Show(notify.SeveritySuccess, "Saved to "+path)

	return path, nil
}

// Reset сбрасывает текущий ресурс, останавливает воспроизведение и
// очищает отрисованное представление. Вызывается в начале каждой новой
// отправки и по явной очистке пользователем.
func (p *Presenter) Reset() {
	p.mu.Lock()
	if p.cancelPlay != nil {
		p.cancelPlay()
		p.cancelPlay = nil
	}
	p.current = nil
	sinks := append([]Sink(nil), p.sinks...)
	p.mu.Unlock()

	for _, sink := range sinks {
		sink.Reset()
	}
}

// Current возвращает копию текущего результата, nil если его нет
func (p *Presenter) Current() *models.SynthesisResult {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	result := *p.current
	return &result
}

// autoplayResult скачивает аудио во временный файл и запускает проигрыватель.
// Любая ошибка здесь — аналог заблокированного автовоспроизведения в
// браузере: логируется и не показывается пользователю.
func (p *Presenter) autoplayResult(ctx context.Context, result models.SynthesisResult) {
	data, err := p.fetcher.FetchAudio(ctx, result.AudioURL)
	if err != nil {
		p.logger.Warn("не удалось скачать аудио для воспроизведения", zap.Error(err))
		return
	}

	tmp, err := os.CreateTemp("", fmt.Sprintf("ozvuchka_*.%s", p.format))
	if err != nil {
		p.logger.Warn("не удалось создать временный файл для воспроизведения", zap.Error(err))
		return
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		p.logger.Warn("не удалось записать временный файл", zap.Error(err))
		return
	}
	tmp.Close()

	if err := p.play(ctx, tmp.Name()); err != nil && ctx.Err() == nil {
		p.logger.Warn("воспроизведение не удалось",
			zap.String("player", p.playerCmd),
			zap.Error(err))
	}
}

// playFile запускает внешний проигрыватель для файла
func (p *Presenter) playFile(ctx context.Context, path string) error {
	cmd := exec.CommandContext(ctx, p.playerCmd, path)
	return cmd.Run()
}
