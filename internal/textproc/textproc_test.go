package textproc

import (
	"errors"
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"пустая строка", "", "", ErrEmptyInput},
		{"только пробелы", "   \t\n  ", "", ErrEmptyInput},
		{"один символ", "a", "", ErrTooShort},
		{"два символа", "hi", "", ErrTooShort},
		{"минимальная длина", "abc", "abc", nil},
		{"обычный текст", "Hello world", "Hello world", nil},
		{"обрезка пробелов", "  Hello  ", "Hello", nil},
		{"ровно максимум", strings.Repeat("a", 500), strings.Repeat("a", 500), nil},
		{"на один больше максимума", strings.Repeat("a", 501), "", ErrTooLong},
		{"короткий после обрезки", "  hi  ", "", ErrTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.input)

			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ожидалась ошибка %v, получена %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Errorf("ожидался текст '%s', получен '%s'", tt.want, got)
			}
		})
	}
}

func TestValidateCountsRunes(t *testing.T) {
	// Кириллица: 3 символа, но 6 байт
	if _, err := Validate("даа"); err != nil {
		t.Errorf("3 кириллических символа должны проходить валидацию, получена ошибка %v", err)
	}

	// 500 кириллических символов проходят, 501 — нет
	if _, err := Validate(strings.Repeat("я", 500)); err != nil {
		t.Errorf("500 символов должны проходить валидацию, получена ошибка %v", err)
	}
	if _, err := Validate(strings.Repeat("я", 501)); !errors.Is(err, ErrTooLong) {
		t.Errorf("ожидалась ErrTooLong для 501 символа, получена %v", err)
	}
}

func TestValidationMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrEmptyInput, "Enter some text to synthesize"},
		{ErrTooShort, "Text is too short (minimum 3 characters)"},
		{ErrTooLong, "Text is too long (maximum 500 characters)"},
		{errors.New("другая"), "Invalid input"},
	}

	for _, tt := range tests {
		if got := ValidationMessage(tt.err); got != tt.want {
			t.Errorf("ожидалось сообщение '%s', получено '%s'", tt.want, got)
		}
	}
}

func TestValidationReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrEmptyInput, "empty_input"},
		{ErrTooShort, "too_short"},
		{ErrTooLong, "too_long"},
		{errors.New("другая"), "unknown"},
	}

	for _, tt := range tests {
		if got := ValidationReason(tt.err); got != tt.want {
			t.Errorf("ожидалась метка '%s', получена '%s'", tt.want, got)
		}
	}
}

func TestCountTier(t *testing.T) {
	tests := []struct {
		name   string
		length int
		want   Tier
	}{
		{"короткий текст", 10, TierNormal},
		{"до порога предупреждения", 399, TierNormal},
		{"порог предупреждения", 400, TierApproachingLimit},
		{"до порога опасности", 449, TierApproachingLimit},
		{"порог опасности", 450, TierOverLimit},
		{"за пределом", 600, TierOverLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountTier(strings.Repeat("a", tt.length)); got != tt.want {
				t.Errorf("для длины %d ожидался уровень %d, получен %d", tt.length, tt.want, got)
			}
		})
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello world", "Hello world"},
		{"  Hello   world  ", "Hello world"},
		{"a\t\nb", "a b"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := CleanText(tt.input); got != tt.want {
			t.Errorf("ожидался текст '%s', получен '%s'", tt.want, got)
		}
	}
}

func TestEstimateDuration(t *testing.T) {
	// 150 слов в минуту: 5 слов = 2 секунды
	got := EstimateDuration("one two three four five")
	if got != 2.0 {
		t.Errorf("ожидалась оценка 2.0, получена %f", got)
	}

	if got := EstimateDuration(""); got != 0 {
		t.Errorf("для пустого текста ожидалась оценка 0, получена %f", got)
	}

	// Лишние пробелы не меняют количество слов
	if EstimateDuration("  one   two  ") != EstimateDuration("one two") {
		t.Error("оценка не должна зависеть от лишних пробелов")
	}
}
