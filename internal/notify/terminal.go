package notify

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// TerminalSink отрисовывает уведомления в терминал с цветом по уровню
type TerminalSink struct {
	out io.Writer
}

// NewTerminalSink создает новый терминальный отрисовщик
func NewTerminalSink(out io.Writer) *TerminalSink {
	if out == nil {
		out = os.Stdout
	}
	return &TerminalSink{out: out}
}

// Render печатает уведомление одной строкой
func (t *TerminalSink) Render(n Notification) {
	var c *color.Color
	var mark string

	switch n.Severity {
	case SeveritySuccess:
		c = color.New(color.FgGreen)
		mark = "✔"
	case SeverityError:
		c = color.New(color.FgRed, color.Bold)
		mark = "✖"
	case SeverityWarning:
		c = color.New(color.FgYellow)
		mark = "⚠"
	default:
		c = color.New(color.FgCyan)
		mark = "ℹ"
	}

	c.Fprintf(t.out, "%s %s\n", mark, n.Message)
}

// Clear ничего не делает: терминал не перерисовывается, строки остаются
// в истории
func (t *TerminalSink) Clear() {}

var _ Sink = (*TerminalSink)(nil)

// Printf печатает обычную строку рядом с уведомлениями
func (t *TerminalSink) Printf(format string, args ...interface{}) {
	fmt.Fprintf(t.out, format, args...)
}
