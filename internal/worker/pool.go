package worker

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/artemshloyda/aspectcrop/internal/cache"
	"github.com/artemshloyda/aspectcrop/internal/codec"
	"github.com/artemshloyda/aspectcrop/internal/progress"
	"github.com/artemshloyda/aspectcrop/internal/recipe"
	"github.com/artemshloyda/aspectcrop/internal/scanner"
	"github.com/artemshloyda/aspectcrop/internal/storage"
	"github.com/artemshloyda/aspectcrop/internal/transform"
)

// DefaultWorkers - размер пула по умолчанию.
const DefaultWorkers = 4

// ErrStopped - файл не начат из-за остановки запуска.
var ErrStopped = errors.New("обработка остановлена")

// Journal - журнал обработанных файлов (см. storage.Storage).
type Journal interface {
	TryStartJob(info storage.FileInfo, key storage.JobKey) (*storage.StartJobResult, error)
	FinalizeJobOK(jobID int64, dstPath string) error
	FinalizeJobFailed(jobID int64, errMsg string) error
}

// ProgressFunc получает (завершено, всего) после каждого завершённого файла.
// Вызывается из одной горутины, completed строго возрастает.
type ProgressFunc func(completed, total int)

// Options - настройки пула.
type Options struct {
	// Workers - количество параллельных воркеров (0 = DefaultWorkers).
	Workers int

	// Journal - журнал для пропуска уже обработанных файлов (опционально).
	Journal Journal

	// Cache - кэш преобразованных буферов (опционально).
	Cache *cache.Cache

	// MaxMemoryMB - ограничение памяти (0 = без ограничения).
	MaxMemoryMB int

	// Verbose - выводить строку по каждому файлу.
	Verbose bool
}

// Job - одна пакетная операция.
type Job struct {
	Kind   Kind
	Recipe *recipe.Recipe

	// InputDir - директория исходных файлов, результат пишется в InputDir/<Kind.Subfolder()>.
	InputDir string
}

// OutputDir возвращает директорию результатов.
func (j Job) OutputDir() string {
	return filepath.Join(j.InputDir, j.Kind.Subfolder())
}

// Pool управляет пулом воркеров пакетной обработки.
type Pool struct {
	opts          Options
	memoryLimiter *MemoryLimiter
	progress      *progress.Bar
	onProgress    ProgressFunc

	stop atomic.Bool
}

// New создаёт новый пул воркеров.
func New(opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = DefaultWorkers
	}
	return &Pool{
		opts:          opts,
		memoryLimiter: NewMemoryLimiter(opts.MaxMemoryMB),
	}
}

// SetProgressBar устанавливает прогресс-бар.
func (p *Pool) SetProgressBar(bar *progress.Bar) {
	p.progress = bar
}

// OnProgress устанавливает callback прогресса.
func (p *Pool) OnProgress(fn ProgressFunc) {
	p.onProgress = fn
}

// Stop просит текущий запуск не начинать новые файлы.
// Уже начатые файлы дописываются до конца.
func (p *Pool) Stop() {
	p.stop.Store(true)
}

// Stopped возвращает true после Stop.
func (p *Pool) Stopped() bool {
	return p.stop.Load()
}

// halted проверяет флаг остановки и контекст.
func (p *Pool) halted(ctx context.Context) bool {
	return p.stop.Load() || ctx.Err() != nil
}

// Select возвращает файлы, которые обрабатывает операция kind.
func Select(kind Kind, files []scanner.File) []scanner.File {
	if kind == KindFlip {
		return scanner.EveryOther(files)
	}
	return files
}

// Run обрабатывает файлы и блокируется до завершения всех воркеров.
// Ошибки отдельных файлов попадают в отчёт и не прерывают запуск.
func (p *Pool) Run(ctx context.Context, job Job, files []scanner.File) (*Report, error) {
	if job.Recipe == nil {
		return nil, fmt.Errorf("не задан рецепт")
	}
	if err := job.Recipe.Validate(); err != nil {
		return nil, fmt.Errorf("некорректный рецепт: %w", err)
	}

	p.stop.Store(false)
	start := time.Now()

	files = Select(job.Kind, files)
	report := newReport(job.Kind, len(files))

	queue := make(chan scanner.File)
	results := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < p.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for f := range queue {
				results <- p.processFile(ctx, job, f)
			}
		}()
	}

	go func() {
		defer close(queue)
		for _, f := range files {
			if p.halted(ctx) {
				return
			}
			select {
			case queue <- f:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	// Результаты собираются в порядке завершения.
	for res := range results {
		report.add(res)
		p.observe(res, report)
	}

	// Файлы, которые не попали в очередь.
	for _, f := range files {
		if _, ok := report.Results[f.Name]; !ok {
			report.add(Result{Name: f.Name, Src: f.Path, Status: StatusCancelled, Err: ErrStopped})
		}
	}

	report.Duration = time.Since(start)
	slog.Debug("batch finished",
		"kind", job.Kind, "total", report.Total, "completed", report.Completed,
		"failed", report.Failed, "cancelled", report.Cancelled, "duration", report.Duration)

	return report, nil
}

// observe обновляет прогресс и выводит сообщения по завершённому файлу.
func (p *Pool) observe(res Result, report *Report) {
	if !res.resolved() {
		return
	}

	switch res.Status {
	case StatusOK:
		if p.opts.Verbose {
			p.logf("✅ %s -> %s (%.2fs)\n", res.Name, res.Dst, res.Duration.Seconds())
		}
		if p.progress != nil {
			p.progress.Increment()
		}
	case StatusSkipped:
		if p.opts.Verbose {
			p.logf("⏭️  Пропущен: %s (%s)\n", res.Name, res.Reason)
		}
		if p.progress != nil {
			p.progress.IncrementSkipped()
		}
	case StatusFailed:
		p.logf("❌ %s: %v\n", res.Name, res.Err)
		if p.progress != nil {
			p.progress.IncrementFailed()
		}
	}

	if p.onProgress != nil {
		p.onProgress(report.Completed, report.Total)
	}
}

// logf выводит сообщение через прогресс-бар или в stderr.
func (p *Pool) logf(format string, args ...interface{}) {
	if p.progress != nil && !p.progress.IsDisabled() {
		p.progress.WriteMessage(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

// processFile обрабатывает один файл. Буферы файла принадлежат только этому вызову.
func (p *Pool) processFile(ctx context.Context, job Job, f scanner.File) Result {
	start := time.Now()
	res := Result{
		Name: f.Name,
		Src:  f.Path,
		Dst:  codec.OutputPath(job.InputDir, job.Kind.Subfolder(), f.Name),
	}

	if p.halted(ctx) {
		res.Status = StatusCancelled
		res.Err = ErrStopped
		return res
	}

	var jobID int64
	if p.opts.Journal != nil {
		started, err := p.opts.Journal.TryStartJob(f.Info, storage.JobKey{
			Operation:  string(job.Kind),
			Recipe:     job.Recipe.Params(),
			RecipeHash: job.Recipe.Hash(),
		})
		if err != nil {
			return p.fail(res, 0, fmt.Errorf("ошибка БД: %w", err), start)
		}
		if !started.Started {
			res.Status = StatusSkipped
			res.Reason = started.SkipReason
			if started.ExistingDstPath != "" {
				res.Dst = started.ExistingDstPath
			}
			res.Duration = time.Since(start)
			return res
		}
		jobID = started.JobID
	}

	img, err := p.render(ctx, job.Recipe, f)
	if err != nil {
		return p.fail(res, jobID, err, start)
	}

	// Результат появляется в выходной директории только после полной записи.
	if err := codec.Encode(img, res.Dst); err != nil {
		return p.fail(res, jobID, err, start)
	}

	if p.opts.Journal != nil {
		if err := p.opts.Journal.FinalizeJobOK(jobID, res.Dst); err != nil {
			return p.fail(res, 0, fmt.Errorf("не удалось обновить БД: %w", err), start)
		}
	}

	res.Status = StatusOK
	res.Size = img.Bounds().Size()
	res.Duration = time.Since(start)
	return res
}

// fail оформляет ошибку файла и отмечает её в журнале.
func (p *Pool) fail(res Result, jobID int64, err error, start time.Time) Result {
	if p.opts.Journal != nil && jobID != 0 {
		if jerr := p.opts.Journal.FinalizeJobFailed(jobID, err.Error()); jerr != nil {
			slog.Warn("journal update failed", "file", res.Name, "error", jerr)
		}
	}
	res.Status = StatusFailed
	res.Err = err
	res.Duration = time.Since(start)
	return res
}

// render декодирует файл и применяет к нему рецепт.
func (p *Pool) render(ctx context.Context, rcp *recipe.Recipe, f scanner.File) (*image.NRGBA, error) {
	if p.memoryLimiter.IsEnabled() {
		size, err := codec.Probe(f.Path)
		if err != nil {
			return nil, err
		}
		release, err := p.memoryLimiter.Acquire(ctx, int64(size.X)*int64(size.Y))
		if err != nil {
			return nil, fmt.Errorf("memory limiter: %w", err)
		}
		defer release()
	}

	rendered, err := p.transformed(rcp, f)
	if err != nil {
		return nil, err
	}

	// AUTO подбирается заново по размеру каждого файла внутри Finish.
	rect := rcp.ScaleCrop(rendered.Bounds().Size())
	return transform.Finish(rendered, rect, rcp.Output())
}

// transformed возвращает преобразованный буфер из кэша или строит его заново.
func (p *Pool) transformed(rcp *recipe.Recipe, f scanner.File) (*image.NRGBA, error) {
	c := p.opts.Cache
	key := ""
	if c.IsEnabled() {
		key = c.Key(f.Info, fmt.Sprintf("%s-%s-%t",
			rcp.Transform.Key(), rcp.Background.Hex(), rcp.Background.Transparent))
		if img, ok := c.Get(key); ok {
			slog.Debug("cache hit", "file", f.Name)
			return img, nil
		}
	}

	decoded, err := codec.Decode(f.Path)
	if err != nil {
		return nil, err
	}
	src, err := transform.Normalize(decoded.Image, rcp.Background.Transparent)
	if err != nil {
		return nil, err
	}
	rendered := transform.Render(src, rcp.Transform, rcp.Background)

	if c.IsEnabled() {
		if err := c.Put(key, rendered); err != nil {
			slog.Warn("cache write failed", "file", f.Name, "error", err)
		}
	}
	return rendered, nil
}
