package synthapi

import (
	"context"

	"ozvuchka/pkg/models"
)

// Service представляет интерфейс клиента TTS бэкенда
type Service interface {
	// ListVoices возвращает каталог доступных голосов
	ListVoices(ctx context.Context) ([]models.VoiceCatalogEntry, error)
	// Synthesize выполняет один запрос на синтез речи
	Synthesize(ctx context.Context, req models.SynthesisRequest) (*models.SynthesisResult, error)
	// FetchAudio скачивает аудио ресурс по URL из результата синтеза
	FetchAudio(ctx context.Context, audioURL string) ([]byte, error)
}

// AudioFetcher — узкий интерфейс для компонентов, которым нужно только
// скачивание аудио ресурса
type AudioFetcher interface {
	FetchAudio(ctx context.Context, audioURL string) ([]byte, error)
}
