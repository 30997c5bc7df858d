package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Metrics содержит все метрики приложения. Нулевой указатель безопасен:
// все Record-методы в этом случае ничего не делают (метрики опциональны
// для фронтендов и тестов).
type Metrics struct {
	logger *zap.Logger

	// Счетчики
	synthesisRequests  *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	audioDownloads     prometheus.Counter

	// Гистограммы
	synthesisResponseTime prometheus.Histogram

	// Gauge метрики
	voicesAvailable prometheus.Gauge
}

// New создает новый экземпляр метрик
func New(logger *zap.Logger) *Metrics {
	m := &Metrics{
		logger: logger,

		// Счетчики запросов синтеза
		synthesisRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "synthesis_requests_total",
				Help: "Общее количество запросов на синтез речи",
			},
			[]string{"status"}, // succeeded, failed
		),

		// Счетчики локальных отказов валидации
		validationFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "validation_failures_total",
				Help: "Общее количество отказов валидации текста",
			},
			[]string{"reason"}, // empty_input, too_short, too_long
		),

		// Счетчик сохранений аудио
		audioDownloads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "audio_downloads_total",
				Help: "Общее количество скачанных аудио файлов",
			},
		),

		// Гистограмма времени ответа бэкенда
		synthesisResponseTime: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "synthesis_response_time_seconds",
				Help:    "Время ответа бэкенда синтеза в секундах",
				Buckets: prometheus.DefBuckets,
			},
		),

		// Gauge количества доступных голосов
		voicesAvailable: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "voices_available",
				Help: "Количество голосов в загруженном каталоге",
			},
		),
	}

	// Регистрируем все метрики
	prometheus.MustRegister(
		m.synthesisRequests,
		m.validationFailures,
		m.audioDownloads,
		m.synthesisResponseTime,
		m.voicesAvailable,
	)

	return m
}

// RecordSynthesis записывает исход одного запроса синтеза
func (m *Metrics) RecordSynthesis(success bool, seconds float64) {
	if m == nil {
		return
	}

	status := "succeeded"
	if !success {
		status = "failed"
	}

	m.synthesisRequests.WithLabelValues(status).Inc()
	m.synthesisResponseTime.Observe(seconds)

	m.logger.Debug("метрика синтеза записана",
		zap.String("status", status),
		zap.Float64("seconds", seconds))
}

// RecordValidationFailure записывает локальный отказ валидации
func (m *Metrics) RecordValidationFailure(reason string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(reason).Inc()
}

// RecordDownload записывает сохранение аудио файла
func (m *Metrics) RecordDownload() {
	if m == nil {
		return
	}
	m.audioDownloads.Inc()
}

// SetVoicesAvailable записывает размер загруженного каталога голосов
func (m *Metrics) SetVoicesAvailable(count int) {
	if m == nil {
		return
	}
	m.voicesAvailable.Set(float64(count))
}
