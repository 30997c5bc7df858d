package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"ozvuchka/internal/history"
	"ozvuchka/internal/metrics"
	"ozvuchka/internal/notify"
	"ozvuchka/internal/presenter"
	"ozvuchka/internal/synthapi"
	"ozvuchka/internal/textproc"
	"ozvuchka/pkg/models"
)

// RequestState — состояние жизненного цикла запроса синтеза.
// Succeeded и Failed транзиентны: управление сразу возвращается в Idle.
type RequestState int

const (
	StateIdle RequestState = iota
	StateSubmitting
	StateSucceeded
	StateFailed
)

// String возвращает текстовое представление состояния
func (s RequestState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// genericFailureMessage показывается, когда бэкенд не прислал свое сообщение
const genericFailureMessage = "Synthesis failed, please try again"

// ErrBusy возвращается, когда новый запрос отброшен из-за уже выполняющегося
var ErrBusy = errors.New("запрос синтеза уже выполняется")

// Controller — единственный владелец состояния запроса, живого результата
// и живого уведомления. Все остальные компоненты только читают или
// отрисовывают то, что он им передает.
type Controller struct {
	logger    *zap.Logger
	api       synthapi.Service
	surface   *notify.Surface
	presenter *presenter.Presenter
	metrics   *metrics.Metrics            // опционально
	history   history.SynthesisRepository // опционально

	mu        sync.Mutex
	inFlight  bool // true от входа в Submitting до возврата этого же запроса в Idle
	state     RequestState
	listeners []func(RequestState)
}

// New создает новый контроллер запросов синтеза
func New(logger *zap.Logger, api synthapi.Service, surface *notify.Surface, p *presenter.Presenter) *Controller {
	return &Controller{
		logger:    logger,
		api:       api,
		surface:   surface,
		presenter: p,
		state:     StateIdle,
	}
}

// WithMetrics подключает запись метрик к исходам запросов
func (c *Controller) WithMetrics(m *metrics.Metrics) *Controller {
	c.metrics = m
	return c
}

// WithHistory подключает запись истории синтеза. Ошибки записи истории
// логируются и не влияют на исход запроса.
func (c *Controller) WithHistory(repo history.SynthesisRepository) *Controller {
	c.history = repo
	return c
}

// AddStateListener регистрирует наблюдателя смены состояния.
// Фронтенды используют его для индикации занятости.
func (c *Controller) AddStateListener(fn func(RequestState)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// State возвращает текущее состояние запроса
func (c *Controller) State() RequestState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Presenter возвращает презентер, которым владеет контроллер
func (c *Controller) Presenter() *presenter.Presenter {
	return c.presenter
}

// Surface возвращает поверхность уведомлений, которой владеет контроллер
func (c *Controller) Surface() *notify.Surface {
	return c.surface
}

// Submit проводит один запрос синтеза через весь жизненный цикл:
//
//	Idle -> Submitting -> (Succeeded | Failed) -> Idle
//
// Повторный вызов возвращает ErrBusy, пока предыдущий запрос не вернулся
// в Idle: одновременно выполняется не более одного запроса, включая
// транзиентный хвост Succeeded/Failed. Отказ валидации не доходит до
// сети и оставляет состояние Idle. Сброс флага занятости гарантирован
// на всех путях, поэтому защита от повторного входа не может залипнуть.
func (c *Controller) Submit(ctx context.Context, rawText string, voicePreset *string) error {
	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		c.logger.Debug("запрос синтеза уже выполняется, новый отброшен")
		return ErrBusy
	}

	// Валидация до любого сетевого вызова, состояние остается Idle
	trimmed, err := textproc.Validate(rawText)
	if err != nil {
		c.mu.Unlock()
		c.metrics.RecordValidationFailure(textproc.ValidationReason(err))
		c.surface.Show(notify.SeverityError, textproc.ValidationMessage(err))
		return fmt.Errorf("ошибка валидации текста: %w", err)
	}

	c.inFlight = true
	c.state = StateSubmitting
	c.mu.Unlock()
	c.notifyListeners(StateSubmitting)

	// Возврат в Idle и сброс занятости обязаны выполниться на любом пути
	// из Submitting. Флаг снимает только defer этого же запроса, поэтому
	// промежуточные Succeeded/Failed не открывают защиту раньше времени.
	defer func() {
		c.mu.Lock()
		c.state = StateIdle
		c.inFlight = false
		c.mu.Unlock()
		c.notifyListeners(StateIdle)
	}()

	// Предыдущий результат и уведомление убираются на время запроса
	c.surface.Clear()
	c.presenter.Reset()

	request := models.SynthesisRequest{
		Text:        trimmed,
		VoicePreset: voicePreset,
	}

	start := time.Now()
	result, err := c.api.Synthesize(ctx, request)
	elapsed := time.Since(start)

	if err != nil {
		c.setState(StateFailed)

		message := genericFailureMessage
		var backendErr *synthapi.BackendError
		if errors.As(err, &backendErr) && backendErr.Message != "" {
			message = backendErr.Message
		}

		c.logger.Error("синтез не удался",
			zap.Duration("elapsed", elapsed),
			zap.Error(err))

		c.surface.Show(notify.SeverityError, message)
		c.metrics.RecordSynthesis(false, elapsed.Seconds())
		c.recordHistory(ctx, request, nil, err)

		return fmt.Errorf("ошибка синтеза: %w", err)
	}

	c.setState(StateSucceeded)

	c.presenter.Present(*result)
	c.surface.Show(notify.SeveritySuccess, "Audio generated")
	c.metrics.RecordSynthesis(true, elapsed.Seconds())
	c.recordHistory(ctx, request, result, nil)

	c.logger.Info("синтез выполнен",
		zap.String("audio_id", result.AudioID),
		zap.Duration("elapsed", elapsed))

	return nil
}

// setState переводит контроллер в новое состояние и оповещает наблюдателей
func (c *Controller) setState(state RequestState) {
	c.mu.Lock()
	c.state = state
	c.mu.Unlock()
	c.notifyListeners(state)
}

func (c *Controller) notifyListeners(state RequestState) {
	c.mu.Lock()
	listeners := append([]func(RequestState){}, c.listeners...)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(state)
	}
}

// recordHistory пишет исход запроса в историю, если она подключена
func (c *Controller) recordHistory(ctx context.Context, request models.SynthesisRequest, result *models.SynthesisResult, cause error) {
	if c.history == nil {
		return
	}

	record := &models.SynthesisRecord{
		SourceText:  request.Text,
		VoicePreset: request.VoicePreset,
		Status:      models.SynthesisStatusSucceeded,
	}
	if result != nil {
		record.AudioID = result.AudioID
		record.AudioURL = result.AudioURL
		record.EstimatedDuration = result.EstimatedDuration
	}
	if cause != nil {
		record.Status = models.SynthesisStatusFailed
		msg := cause.Error()
		record.ErrorMessage = &msg
	}

	if err := c.history.Create(ctx, record); err != nil {
		c.logger.Warn("не удалось записать историю синтеза", zap.Error(err))
	}
}
