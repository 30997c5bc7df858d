package presenter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"ozvuchka/internal/notify"
	"ozvuchka/pkg/models"
)

// fakeFetcher отдает фиксированные байты вместо сети
type fakeFetcher struct {
	data []byte
	err  error
}

func (f *fakeFetcher) FetchAudio(ctx context.Context, audioURL string) ([]byte, error) {
	return f.data, f.err
}

// recordingSink запоминает представленные результаты
type recordingSink struct {
	presented []string
	resets    int
}

func (s *recordingSink) Present(result models.SynthesisResult, description string) {
	s.presented = append(s.presented, description)
}

func (s *recordingSink) Reset() {
	s.resets++
}

func testResult() models.SynthesisResult {
	return models.SynthesisResult{
		AudioURL:          "/static/audio/abc.wav",
		AudioID:           "abc",
		EstimatedDuration: 2.5,
		Timestamp:         time.Date(2024, 3, 1, 15, 4, 5, 0, time.Local),
		SourceText:        "Hello world",
	}
}

func TestDescribe(t *testing.T) {
	got := Describe(testResult())
	want := `"Hello world" · ~2.5s · 15:04:05`

	if got != want {
		t.Errorf("ожидалось описание %s, получено %s", want, got)
	}
}

func TestDescribeTruncatesLongText(t *testing.T) {
	result := testResult()
	result.SourceText = strings.Repeat("я", 150)

	got := Describe(result)

	if !strings.Contains(got, strings.Repeat("я", 100)+"…") {
		t.Error("длинный текст должен обрезаться до 100 символов с многоточием")
	}
	if strings.Contains(got, strings.Repeat("я", 101)) {
		t.Error("в описании не должно быть больше 100 символов исходного текста")
	}
}

func TestDescribeKeepsShortText(t *testing.T) {
	result := testResult()
	result.SourceText = strings.Repeat("a", 100)

	if strings.Contains(Describe(result), "…") {
		t.Error("текст ровно в 100 символов не должен обрезаться")
	}
}

func TestPresentReplacesCurrent(t *testing.T) {
	surface := notify.NewSurface(zap.NewNop(), 0)
	p := New(zap.NewNop(), &fakeFetcher{}, surface, nil, Options{})
	sink := &recordingSink{}
	p.AddSink(sink)

	first := testResult()
	second := testResult()
	second.AudioID = "def"
	second.AudioURL = "/static/audio/def.wav"

	p.Present(first)
	p.Present(second)

	current := p.Current()
	if current == nil {
		t.Fatal("ожидался текущий результат")
	}
	if current.AudioID != "def" {
		t.Errorf("ожидался audio_id 'def', получен '%s'", current.AudioID)
	}
	if len(sink.presented) != 2 {
		t.Errorf("ожидалось 2 отрисовки, получено %d", len(sink.presented))
	}
}

func TestDownload(t *testing.T) {
	dir := t.TempDir()
	surface := notify.NewSurface(zap.NewNop(), 0)
	p := New(zap.NewNop(), &fakeFetcher{data: []byte("RIFF fake wav")}, surface, nil, Options{
		DownloadDir: dir,
	})
	p.now = func() time.Time { return time.UnixMilli(1700000000000) }

	p.Present(testResult())

	path, err := p.Download(context.Background())
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}

	wantPath := filepath.Join(dir, "tts_1700000000000.wav")
	if path != wantPath {
		t.Errorf("ожидался путь '%s', получен '%s'", wantPath, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("файл не сохранен: %v", err)
	}
	if string(data) != "RIFF fake wav" {
		t.Error("сохранены не те данные")
	}

	n := surface.Current()
	if n == nil || n.Severity != notify.SeveritySuccess {
		t.Error("успешное сохранение должно показать success уведомление")
	}
	if n != nil && n.Message != "Saved to "+wantPath {
		t.Errorf("неожиданное сообщение '%s'", n.Message)
	}
}

func TestDownloadWithoutResult(t *testing.T) {
	surface := notify.NewSurface(zap.NewNop(), 0)
	p := New(zap.NewNop(), &fakeFetcher{}, surface, nil, Options{})

	_, err := p.Download(context.Background())

	if !errors.Is(err, ErrNoAudio) {
		t.Fatalf("ожидалась ErrNoAudio, получена %v", err)
	}

	n := surface.Current()
	if n == nil || n.Severity != notify.SeverityError {
		t.Error("попытка скачать без результата должна показать error уведомление")
	}
	if n != nil && n.Message != "Nothing to download yet" {
		t.Errorf("неожиданное сообщение '%s'", n.Message)
	}
}

func TestDownloadFetchFailure(t *testing.T) {
	surface := notify.NewSurface(zap.NewNop(), 0)
	p := New(zap.NewNop(), &fakeFetcher{err: fmt.Errorf("сеть недоступна")}, surface, nil, Options{
		DownloadDir: t.TempDir(),
	})

	p.Present(testResult())

	if _, err := p.Download(context.Background()); err == nil {
		t.Fatal("ожидалась ошибка скачивания")
	}

	n := surface.Current()
	if n == nil || n.Severity != notify.SeverityError {
		t.Error("ошибка скачивания должна показать error уведомление")
	}
}

func TestReset(t *testing.T) {
	p := New(zap.NewNop(), &fakeFetcher{}, notify.NewSurface(zap.NewNop(), 0), nil, Options{})
	sink := &recordingSink{}
	p.AddSink(sink)

	p.Present(testResult())
	p.Reset()

	if p.Current() != nil {
		t.Error("после Reset не должно быть текущего результата")
	}
	if sink.resets != 1 {
		t.Errorf("ожидался 1 сброс отрисовщика, получено %d", sink.resets)
	}

	if _, err := p.Download(context.Background()); !errors.Is(err, ErrNoAudio) {
		t.Error("после Reset скачивание должно возвращать ErrNoAudio")
	}
}

func TestAutoplayFailureIsSilent(t *testing.T) {
	surface := notify.NewSurface(zap.NewNop(), 0)
	p := New(zap.NewNop(), &fakeFetcher{data: []byte("RIFF fake wav")}, surface, nil, Options{
		PlayerCmd: "paplay",
		Autoplay:  true,
	})

	played := make(chan struct{})
	p.play = func(ctx context.Context, path string) error {
		close(played)
		return errors.New("проигрыватель не найден")
	}

	p.Present(testResult())

	select {
	case <-played:
	case <-time.After(time.Second):
		t.Fatal("воспроизведение не запустилось")
	}

	// Ошибка воспроизведения не трогает уведомления
	if surface.Current() != nil {
		t.Error("отказ воспроизведения не должен показывать уведомление")
	}
}
