// Package progress предоставляет прогресс-бар пакетной обработки.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
)

// Bar - прогресс-бар с ETA и счётчиками по статусам.
type Bar struct {
	bar *progressbar.ProgressBar

	// mu защищает счётчики и вывод.
	mu sync.Mutex

	disabled bool

	total     int64
	succeeded int64
	skipped   int64
	failed    int64

	startTime time.Time
	writer    io.Writer
}

// Options содержит настройки прогресс-бара.
type Options struct {
	// Total - общее количество файлов.
	Total int64

	// Description - подпись слева от полосы.
	Description string

	// Disabled - только текстовый вывод.
	Disabled bool

	// Writer - куда выводить (по умолчанию os.Stderr).
	Writer io.Writer
}

// New создаёт новый прогресс-бар.
func New(opts Options) *Bar {
	writer := opts.Writer
	if writer == nil {
		writer = os.Stderr
	}

	b := &Bar{
		disabled:  opts.Disabled,
		total:     opts.Total,
		startTime: time.Now(),
		writer:    writer,
	}

	if !opts.Disabled && opts.Total > 0 {
		description := opts.Description
		if description == "" {
			description = "Обработка"
		}

		b.bar = progressbar.NewOptions64(
			opts.Total,
			progressbar.OptionSetWriter(writer),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionShowBytes(false),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("img"),
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "[cyan]█[reset]",
				SaucerHead:    "[cyan]▓[reset]",
				SaucerPadding: "░",
				BarStart:      "[",
				BarEnd:        "]",
			}),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(writer)
			}),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionFullWidth(),
		)
	}

	return b
}

// add сдвигает полосу на один файл. Вызывается под mu.
func (b *Bar) add() {
	if b.bar != nil {
		_ = b.bar.Add(1)
	}
}

// Increment отмечает успешно обработанный файл.
func (b *Bar) Increment() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.succeeded++
	b.add()
}

// IncrementSkipped отмечает пропущенный файл.
func (b *Bar) IncrementSkipped() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.skipped++
	b.add()
}

// IncrementFailed отмечает файл с ошибкой.
func (b *Bar) IncrementFailed() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failed++
	b.add()
}

// SetTotal меняет общее количество файлов (режим наблюдения).
func (b *Bar) SetTotal(total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.total = total
	if b.bar != nil {
		b.bar.ChangeMax64(total)
	}
}

// Finish завершает прогресс-бар.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Finish()
	}
}

// Stats возвращает счётчики.
func (b *Bar) Stats() (succeeded, skipped, failed int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.succeeded, b.skipped, b.failed
}

// Completed возвращает количество завершённых файлов и общее количество.
func (b *Bar) Completed() (completed, total int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.succeeded + b.skipped + b.failed, b.total
}

// Duration возвращает время с начала обработки.
func (b *Bar) Duration() time.Duration {
	return time.Since(b.startTime)
}

// IsDisabled возвращает true, если прогресс-бар отключён.
func (b *Bar) IsDisabled() bool {
	return b.disabled
}

// WriteMessage выводит сообщение, временно скрывая прогресс-бар.
func (b *Bar) WriteMessage(format string, args ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		_ = b.bar.Clear()
	}

	fmt.Fprintf(b.writer, format, args...)

	if b.bar != nil {
		_ = b.bar.RenderBlank()
	}
}
