package term

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"go.uber.org/zap"

	"ozvuchka/internal/catalog"
	"ozvuchka/internal/controller"
	"ozvuchka/internal/history"
	"ozvuchka/internal/textproc"
	"ozvuchka/pkg/models"
)

const helpText = `Type text (3–500 characters) and press Enter to synthesize.

Commands:
  /voices          list available voices
  /voice <id>      select a voice (no id = backend default)
  /clear           drop the current audio result
  /download        save the current audio to the download directory
  /history         show recent synthesis requests
  /help            show this help
  /quit            exit`

// Frontend — интерактивный терминальный фронтенд. Как и Telegram
// обработчик, собственного состояния запроса не имеет.
type Frontend struct {
	controller *controller.Controller
	catalog    *catalog.Catalog
	history    history.SynthesisRepository // опционально
	logger     *zap.Logger
	out        io.Writer
}

// New создает новый терминальный фронтенд
func New(ctrl *controller.Controller, cat *catalog.Catalog, logger *zap.Logger) *Frontend {
	return &Frontend{
		controller: ctrl,
		catalog:    cat,
		logger:     logger,
		out:        os.Stdout,
	}
}

// WithHistory подключает просмотр истории синтеза командой /history
func (f *Frontend) WithHistory(repo history.SynthesisRepository) *Frontend {
	f.history = repo
	return f
}

// Run запускает цикл чтения строк. Возвращается по /quit, Ctrl-C или EOF.
func (f *Frontend) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tts> ",
		HistoryFile:     filepath.Join(os.TempDir(), ".ozvuchka_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("ошибка инициализации readline: %w", err)
	}
	defer rl.Close()

	fmt.Fprintln(f.out, helpText)
	fmt.Fprintln(f.out)

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				return nil
			}
			f.logger.Warn("ошибка чтения строки", zap.Error(err))
			continue
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if quit := f.handleCommand(ctx, input); quit {
				return nil
			}
			continue
		}

		f.submit(ctx, input)
	}
}

// handleCommand обрабатывает команды, возвращает true для выхода
func (f *Frontend) handleCommand(ctx context.Context, input string) bool {
	command, args, _ := strings.Cut(input, " ")
	args = strings.TrimSpace(args)

	switch command {
	case "/quit", "/exit":
		return true

	case "/help":
		fmt.Fprintln(f.out, helpText)

	case "/voices":
		f.printVoices()

	case "/voice":
		if err := f.catalog.Select(args); err != nil {
			color.New(color.FgRed).Fprintf(f.out, "unknown voice %q, see /voices\n", args)
			break
		}
		if args == "" {
			fmt.Fprintln(f.out, "using the default voice")
		} else {
			fmt.Fprintln(f.out, "voice selected:", args)
		}

	case "/clear":
		f.controller.Presenter().Reset()
		f.controller.Surface().Clear()
		fmt.Fprintln(f.out, "current audio cleared")

	case "/download":
		// Исход отрисует поверхность уведомлений
		_, _ = f.controller.Presenter().Download(ctx)

	case "/history":
		f.printHistory(ctx)

	default:
		fmt.Fprintln(f.out, "unknown command, see /help")
	}

	return false
}

// submit показывает счетчик символов и проводит текст через контроллер
func (f *Frontend) submit(ctx context.Context, input string) {
	f.printCharCount(input)

	fmt.Fprintln(f.out, "… synthesizing")
	// Исход (уведомление и описание результата) отрисовывают
	// зарегистрированные в surface/presenter терминальные sink'и
	if err := f.controller.Submit(ctx, input, f.catalog.Selected()); err != nil {
		if errors.Is(err, controller.ErrBusy) {
			fmt.Fprintln(f.out, "still working on the previous request")
			return
		}
		f.logger.Debug("запрос завершился ошибкой", zap.Error(err))
	}
}

// printCharCount печатает счетчик символов с подсветкой по уровню.
// Чисто косметика: отправку не блокирует.
func (f *Frontend) printCharCount(input string) {
	count := utf8.RuneCountInString(input)

	var c *color.Color
	switch textproc.CountTier(input) {
	case textproc.TierOverLimit:
		c = color.New(color.FgRed)
	case textproc.TierApproachingLimit:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgHiBlack)
	}

	c.Fprintf(f.out, "[%d/%d]\n", count, textproc.MaxTextLength)
}

// printVoices печатает каталог голосов
func (f *Frontend) printVoices() {
	selected := f.catalog.Selected()

	for _, entry := range f.catalog.Entries() {
		marker := " "
		if sameVoice(entry.ID, selected) {
			marker = "*"
		}
		if entry.ID == nil {
			fmt.Fprintf(f.out, "%s %s (default)\n", marker, entry.DisplayName)
			continue
		}
		fmt.Fprintf(f.out, "%s %s — /voice %s\n", marker, entry.DisplayName, *entry.ID)
	}
}

// printHistory печатает последние запросы синтеза
func (f *Frontend) printHistory(ctx context.Context) {
	if f.history == nil {
		fmt.Fprintln(f.out, "history is disabled")
		return
	}

	records, err := f.history.GetRecent(ctx, 10)
	if err != nil {
		f.logger.Warn("не удалось получить историю синтеза", zap.Error(err))
		color.New(color.FgRed).Fprintln(f.out, "failed to load history")
		return
	}
	if len(records) == 0 {
		fmt.Fprintln(f.out, "no synthesis history yet")
		return
	}

	for _, record := range records {
		mark := "✔"
		if record.Status == models.SynthesisStatusFailed {
			mark = "✖"
		}
		text := record.SourceText
		if utf8.RuneCountInString(text) > 60 {
			text = string([]rune(text)[:60]) + "…"
		}
		fmt.Fprintf(f.out, "%s %s  %q\n", mark,
			record.CreatedAt.Local().Format("02.01 15:04"), text)
	}
}

func sameVoice(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// ResultPanel — терминальный sink презентера: печатает описание результата
type ResultPanel struct {
	out io.Writer
}

// NewResultPanel создает новый терминальный отрисовщик результатов
func NewResultPanel(out io.Writer) *ResultPanel {
	if out == nil {
		out = os.Stdout
	}
	return &ResultPanel{out: out}
}

// Present печатает описание представленного результата
func (p *ResultPanel) Present(result models.SynthesisResult, description string) {
	color.New(color.FgGreen).Fprintf(p.out, "♪ %s\n", description)
	fmt.Fprintf(p.out, "  audio: %s\n", result.AudioURL)
}

// Reset ничего не делает: строки остаются в истории терминала
func (p *ResultPanel) Reset() {}
