package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func writeFileAged(t *testing.T, dir, name string, age time.Duration) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("data"), 0644); err != nil {
		t.Fatalf("не удалось создать файл: %v", err)
	}

	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatalf("не удалось установить время файла: %v", err)
	}

	return path
}

func TestCleanupAudioFiles(t *testing.T) {
	dir := t.TempDir()
	logger := zap.NewNop()

	oldWav := writeFileAged(t, dir, "tts_old.wav", 2*time.Hour)
	oldMp3 := writeFileAged(t, dir, "tts_old.mp3", 2*time.Hour)
	freshWav := writeFileAged(t, dir, "tts_fresh.wav", time.Minute)
	notAudio := writeFileAged(t, dir, "notes.txt", 2*time.Hour)

	deleted, err := CleanupAudioFiles(dir, time.Hour, false, logger)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if deleted != 2 {
		t.Errorf("ожидалось 2 удаленных файла, получено %d", deleted)
	}

	for _, path := range []string{oldWav, oldMp3} {
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("файл %s должен быть удален", path)
		}
	}
	for _, path := range []string{freshWav, notAudio} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("файл %s не должен быть удален", path)
		}
	}
}

func TestCleanupAudioFilesDryRun(t *testing.T) {
	dir := t.TempDir()
	logger := zap.NewNop()

	path := writeFileAged(t, dir, "tts_old.wav", 2*time.Hour)

	deleted, err := CleanupAudioFiles(dir, time.Hour, true, logger)
	if err != nil {
		t.Fatalf("неожиданная ошибка: %v", err)
	}
	if deleted != 1 {
		t.Errorf("ожидался 1 кандидат на удаление, получено %d", deleted)
	}

	if _, err := os.Stat(path); err != nil {
		t.Error("dry-run не должен удалять файлы")
	}
}

func TestCleanupAudioFilesMissingDir(t *testing.T) {
	deleted, err := CleanupAudioFiles("/nonexistent/dir", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Errorf("отсутствующая директория не ошибка, получена %v", err)
	}
	if deleted != 0 {
		t.Errorf("ожидалось 0 удалений, получено %d", deleted)
	}
}

func TestAudioCleanupJob(t *testing.T) {
	dir := t.TempDir()
	writeFileAged(t, dir, "tts_old.wav", 2*time.Hour)

	job := NewAudioCleanupJob(zap.NewNop(), dir, time.Hour)

	if job.Name() != "audio_cleanup" {
		t.Errorf("неожиданное имя задачи '%s'", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Errorf("неожиданная ошибка задачи: %v", err)
	}
}
