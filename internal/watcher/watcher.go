// Package watcher следит за входной директорией и отдаёт новые изображения пачками.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/artemshloyda/aspectcrop/internal/scanner"
)

// DefaultDebounce - сколько файл должен «молчать», прежде чем попасть в пачку.
const DefaultDebounce = 500 * time.Millisecond

// tick - период проверки отложенных файлов.
const tick = 100 * time.Millisecond

// Watcher следит за одной директорией (без поддиректорий: туда пишутся результаты).
type Watcher struct {
	dir     string
	scanner *scanner.Scanner
	watcher *fsnotify.Watcher

	// debounceTime - время ожидания, чтобы файл успел полностью записаться.
	debounceTime time.Duration

	// pending - путь -> время последнего события.
	pending map[string]time.Time
}

// New создаёт Watcher для директории dir.
func New(dir string, sc *scanner.Scanner) (*Watcher, error) {
	if sc == nil {
		sc = scanner.New(nil)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("не удалось создать watcher: %w", err)
	}
	return &Watcher{
		dir:          dir,
		scanner:      sc,
		watcher:      w,
		debounceTime: DefaultDebounce,
		pending:      make(map[string]time.Time),
	}, nil
}

// SetDebounceTime устанавливает время debounce.
func (w *Watcher) SetDebounceTime(d time.Duration) {
	w.debounceTime = d
}

// Watch запускает слежение. Канал закрывается после отмены ctx.
// Каждая пачка отсортирована по имени файла.
func (w *Watcher) Watch(ctx context.Context) (<-chan []scanner.File, error) {
	if err := w.watcher.Add(w.dir); err != nil {
		_ = w.watcher.Close()
		return nil, fmt.Errorf("не удалось добавить директорию %s: %w", w.dir, err)
	}

	batches := make(chan []scanner.File)
	go w.loop(ctx, batches)
	return batches, nil
}

func (w *Watcher) loop(ctx context.Context, batches chan<- []scanner.File) {
	defer close(batches)
	defer w.watcher.Close()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.observe(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Warn("watcher error", "dir", w.dir, "error", err)

		case now := <-ticker.C:
			batch := w.ready(now)
			if len(batch) == 0 {
				continue
			}
			select {
			case batches <- batch:
			case <-ctx.Done():
				return
			}
		}
	}
}

// observe откладывает созданный или дописанный файл изображения.
func (w *Watcher) observe(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if filepath.Dir(event.Name) != filepath.Clean(w.dir) {
		return
	}
	if !w.scanner.Match(filepath.Base(event.Name)) {
		return
	}
	w.pending[event.Name] = time.Now()
}

// ready забирает файлы, по которым событий не было дольше debounceTime.
func (w *Watcher) ready(now time.Time) []scanner.File {
	var batch []scanner.File
	for path, last := range w.pending {
		if now.Sub(last) < w.debounceTime {
			continue
		}
		delete(w.pending, path)

		f, err := w.scanner.Stat(path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				slog.Debug("watcher stat failed", "path", path, "error", err)
			}
			continue
		}
		batch = append(batch, f)
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Name < batch[j].Name })
	return batch
}

// Close закрывает watcher, если Watch не был вызван.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
