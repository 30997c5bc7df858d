package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Severity обозначает уровень уведомления
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityError
	SeverityWarning
)

// String возвращает текстовое представление уровня
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Notification представляет одно транзиентное уведомление.
// Живое уведомление всегда не более одного; новое вытесняет предыдущее
// независимо от уровня.
type Notification struct {
	Message   string
	Severity  Severity
	ExpiresAt time.Time // нулевое время = без автоскрытия
}

// Sink отрисовывает уведомления во фронтенде
type Sink interface {
	Render(n Notification)
	Clear()
}

// Surface владеет единственным живым уведомлением и его автоскрытием.
// Не-ошибочные уведомления скрываются по таймеру, ошибки висят до замены.
type Surface struct {
	logger       *zap.Logger
	dismissAfter time.Duration
	now          func() time.Time

	mu      sync.Mutex
	current *Notification
	sinks   []Sink
	timer   *time.Timer
}

// NewSurface создает новую поверхность уведомлений.
// dismissAfter <= 0 отключает автоскрытие.
func NewSurface(logger *zap.Logger, dismissAfter time.Duration) *Surface {
	return &Surface{
		logger:       logger,
		dismissAfter: dismissAfter,
		now:          time.Now,
	}
}

// AddSink регистрирует отрисовщик уведомлений
func (s *Surface) AddSink(sink Sink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sinks = append(s.sinks, sink)
}

// Show заменяет текущее уведомление новым
func (s *Surface) Show(severity Severity, message string) {
	s.mu.Lock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}

	n := Notification{Message: message, Severity: severity}
	if severity != SeverityError && s.dismissAfter > 0 {
		n.ExpiresAt = s.now().Add(s.dismissAfter)
		s.timer = time.AfterFunc(s.dismissAfter, func() { s.dismiss(n) })
	}

	s.current = &n
	sinks := append([]Sink(nil), s.sinks...)
	s.mu.Unlock()

	s.logger.Debug("показано уведомление",
		zap.String("severity", severity.String()),
		zap.String("message", message))

	for _, sink := range sinks {
		sink.Render(n)
	}
}

// Clear убирает текущее уведомление
func (s *Surface) Clear() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.current = nil
	sinks := append([]Sink(nil), s.sinks...)
	s.mu.Unlock()

	for _, sink := range sinks {
		sink.Clear()
	}
}

// Current возвращает копию живого уведомления, nil если его нет
func (s *Surface) Current() *Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil
	}
	n := *s.current
	return &n
}

// dismiss скрывает уведомление по таймеру, если его еще не заменили
func (s *Surface) dismiss(n Notification) {
	s.mu.Lock()
	if s.current == nil || *s.current != n {
		s.mu.Unlock()
		return
	}
	s.current = nil
	sinks := append([]Sink(nil), s.sinks...)
	s.mu.Unlock()

	for _, sink := range sinks {
		sink.Clear()
	}
}
