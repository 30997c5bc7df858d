package synthapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"ozvuchka/internal/textproc"
	"ozvuchka/pkg/models"
)

// BackendError представляет ошибку, о которой сообщил сам бэкенд
// (success=false с текстом ошибки). Транспортные ошибки и ошибки
// декодирования остаются обычными обернутыми ошибками.
type BackendError struct {
	Message string
}

func (e *BackendError) Error() string {
	return e.Message
}

// Client реализует Service поверх HTTP API бэкенда синтеза речи.
// Формы ответов декодируются здесь один раз; остальной код никогда
// не смотрит на сырой JSON.
type Client struct {
	logger     *zap.Logger
	baseURL    string
	httpClient *http.Client
}

// NewClient создает новый клиент TTS бэкенда
func NewClient(logger *zap.Logger, baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second // Синтез может быть долгим
	}
	return &Client{
		logger:  logger,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// voicesResponse — форма ответа GET /api/voices
type voicesResponse struct {
	Success bool `json:"success"`
	Voices  []struct {
		ID   *string `json:"id"`
		Name string  `json:"name"`
	} `json:"voices"`
	Error string `json:"error"`
}

// synthesizeResponse — форма ответа POST /api/synthesize
type synthesizeResponse struct {
	Success           bool    `json:"success"`
	AudioURL          string  `json:"audio_url"`
	AudioID           string  `json:"audio_id"`
	EstimatedDuration float64 `json:"estimated_duration"`
	Timestamp         int64   `json:"timestamp"` // миллисекунды unix
	Text              string  `json:"text"`
	Error             string  `json:"error"`
}

// ListVoices возвращает каталог голосов бэкенда
func (c *Client) ListVoices(ctx context.Context) ([]models.VoiceCatalogEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("неожиданный статус от бэкенда: %d, тело: %s", resp.StatusCode, body)
	}

	var decoded voicesResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	if !decoded.Success {
		return nil, &BackendError{Message: backendMessage(decoded.Error, "voice list unavailable")}
	}

	entries := make([]models.VoiceCatalogEntry, 0, len(decoded.Voices))
	for _, v := range decoded.Voices {
		entries = append(entries, models.VoiceCatalogEntry{ID: v.ID, DisplayName: v.Name})
	}

	c.logger.Info("каталог голосов получен", zap.Int("count", len(entries)))

	return entries, nil
}

// Synthesize выполняет запрос на синтез и декодирует ответ в результат.
// Ошибочными считаются: транспортная ошибка, не-2xx статус, success=false
// и успешный ответ без audio_url.
func (c *Client) Synthesize(ctx context.Context, request models.SynthesisRequest) (*models.SynthesisResult, error) {
	payload, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/synthesize", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("отправляем запрос на синтез",
		zap.Int("text_length", len(request.Text)),
		zap.Stringp("voice_preset", request.VoicePreset))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка выполнения запроса: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения ответа: %w", err)
	}

	var decoded synthesizeResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("неожиданный статус от бэкенда: %d, тело: %s", resp.StatusCode, body)
		}
		return nil, fmt.Errorf("ошибка парсинга ответа: %w", err)
	}

	// Бэкенд сообщает об ошибках телом {success:false, error:...}
	// как с 2xx, так и с ошибочными статусами
	if !decoded.Success {
		return nil, &BackendError{Message: backendMessage(decoded.Error, "synthesis failed")}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("неожиданный статус от бэкенда: %d", resp.StatusCode)
	}

	if decoded.AudioURL == "" {
		return nil, fmt.Errorf("бэкенд сообщил успех, но не вернул audio_url")
	}

	result := &models.SynthesisResult{
		AudioURL:          decoded.AudioURL,
		AudioID:           decoded.AudioID,
		EstimatedDuration: decoded.EstimatedDuration,
		Timestamp:         time.UnixMilli(decoded.Timestamp),
		SourceText:        decoded.Text,
	}

	if result.EstimatedDuration <= 0 {
		result.EstimatedDuration = textproc.EstimateDuration(result.SourceText)
	}
	if decoded.Timestamp == 0 {
		result.Timestamp = time.Now()
	}
	if result.SourceText == "" {
		result.SourceText = request.Text
	}

	c.logger.Info("синтез завершен",
		zap.String("audio_id", result.AudioID),
		zap.String("audio_url", result.AudioURL),
		zap.Float64("estimated_duration", result.EstimatedDuration))

	return result, nil
}

// FetchAudio скачивает аудио ресурс. Относительные URL (как отдает бэкенд,
// например /static/audio/abc.wav) разрешаются относительно базового URL.
func (c *Client) FetchAudio(ctx context.Context, audioURL string) ([]byte, error) {
	resolved, err := c.resolveURL(audioURL)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора URL аудио: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, resolved, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания запроса для скачивания: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ошибка скачивания аудио файла: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ошибка скачивания аудио: статус %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp.Body); err != nil {
		return nil, fmt.Errorf("ошибка чтения аудио данных: %w", err)
	}

	c.logger.Debug("аудио скачано",
		zap.String("url", resolved),
		zap.Int("size", buf.Len()))

	return buf.Bytes(), nil
}

func (c *Client) resolveURL(audioURL string) (string, error) {
	ref, err := url.Parse(audioURL)
	if err != nil {
		return "", err
	}
	if ref.IsAbs() {
		return audioURL, nil
	}
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

func backendMessage(msg, fallback string) string {
	if msg != "" {
		return msg
	}
	return fallback
}
