package textproc

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// Границы длины текста для синтеза (в символах, после обрезки пробелов)
const (
	MinTextLength = 3
	MaxTextLength = 500

	// Косметические пороги подсветки счетчика символов
	WarnThreshold   = 400
	DangerThreshold = 450

	// Скорость речи для локальной оценки длительности
	defaultWordsPerMinute = 150
)

// Ошибки валидации текста. Обнаруживаются локально, до любого сетевого вызова.
var (
	ErrEmptyInput = errors.New("текст пустой")
	ErrTooShort   = errors.New("текст слишком короткий")
	ErrTooLong    = errors.New("текст слишком длинный")
)

// Tier обозначает уровень подсветки счетчика символов
type Tier int

const (
	TierNormal Tier = iota
	TierApproachingLimit
	TierOverLimit
)

// Validate проверяет текст перед отправкой на синтез.
// Возвращает текст с обрезанными пробелами либо одну из ошибок валидации.
// Валидация синхронная и обязана выполняться до сетевого вызова.
func Validate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)

	length := utf8.RuneCountInString(trimmed)
	switch {
	case length == 0:
		return "", ErrEmptyInput
	case length < MinTextLength:
		return "", ErrTooShort
	case length > MaxTextLength:
		return "", ErrTooLong
	}

	return trimmed, nil
}

// ValidationMessage возвращает сообщение для пользователя по ошибке валидации
func ValidationMessage(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return "Enter some text to synthesize"
	case errors.Is(err, ErrTooShort):
		return "Text is too short (minimum 3 characters)"
	case errors.Is(err, ErrTooLong):
		return "Text is too long (maximum 500 characters)"
	default:
		return "Invalid input"
	}
}

// ValidationReason возвращает метку причины для метрик
func ValidationReason(err error) string {
	switch {
	case errors.Is(err, ErrEmptyInput):
		return "empty_input"
	case errors.Is(err, ErrTooShort):
		return "too_short"
	case errors.Is(err, ErrTooLong):
		return "too_long"
	default:
		return "unknown"
	}
}

// CountTier возвращает уровень подсветки для текущей длины текста.
// Чисто косметическая функция, не блокирует отправку.
func CountTier(raw string) Tier {
	length := utf8.RuneCountInString(raw)
	switch {
	case length >= DangerThreshold:
		return TierOverLimit
	case length >= WarnThreshold:
		return TierApproachingLimit
	default:
		return TierNormal
	}
}

// CleanText схлопывает последовательности пробельных символов в один пробел
// и убирает пробелы по краям
func CleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// EstimateDuration оценивает длительность аудио по количеству слов.
// Используется как локальный fallback, когда бэкенд не вернул оценку.
func EstimateDuration(text string) float64 {
	cleaned := CleanText(text)
	if cleaned == "" {
		return 0
	}

	words := len(strings.Fields(cleaned))
	return float64(words) / defaultWordsPerMinute * 60
}
