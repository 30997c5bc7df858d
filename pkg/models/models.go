package models

import (
	"time"
)

// SynthesisRequest представляет один запрос на синтез речи.
// Создается при отправке, неизменяем, отбрасывается после ответа бэкенда.
type SynthesisRequest struct {
	Text        string  `json:"text"`
	VoicePreset *string `json:"voice_preset"` // nil = голос по умолчанию на бэкенде
}

// SynthesisResult представляет успешный результат синтеза.
// Владелец — Audio Presenter; новый результат вытесняет предыдущий.
type SynthesisResult struct {
	AudioURL          string    `json:"audio_url"`
	AudioID           string    `json:"audio_id"`
	EstimatedDuration float64   `json:"estimated_duration"` // секунды
	Timestamp         time.Time `json:"timestamp"`
	SourceText        string    `json:"text"`
}

// VoiceCatalogEntry представляет один голос из каталога бэкенда.
// ID == nil означает "использовать голос бэкенда по умолчанию".
type VoiceCatalogEntry struct {
	ID          *string `json:"id"`
	DisplayName string  `json:"name"`
}

// Статусы записи истории синтеза
const (
	SynthesisStatusSucceeded = "succeeded"
	SynthesisStatusFailed    = "failed"
)

// SynthesisRecord представляет запись истории синтеза в базе данных
type SynthesisRecord struct {
	ID                int64     `json:"id" db:"id"`
	SourceText        string    `json:"source_text" db:"source_text"`
	VoicePreset       *string   `json:"voice_preset" db:"voice_preset"`
	AudioID           string    `json:"audio_id" db:"audio_id"`
	AudioURL          string    `json:"audio_url" db:"audio_url"`
	EstimatedDuration float64   `json:"estimated_duration" db:"estimated_duration"`
	Status            string    `json:"status" db:"status"` // succeeded, failed
	ErrorMessage      *string   `json:"error_message" db:"error_message"`
	CreatedAt         time.Time `json:"created_at" db:"created_at"`
}
