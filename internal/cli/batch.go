package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/artemshloyda/aspectcrop/internal/cache"
	"github.com/artemshloyda/aspectcrop/internal/config"
	"github.com/artemshloyda/aspectcrop/internal/progress"
	"github.com/artemshloyda/aspectcrop/internal/recipe"
	"github.com/artemshloyda/aspectcrop/internal/report"
	"github.com/artemshloyda/aspectcrop/internal/resolution"
	"github.com/artemshloyda/aspectcrop/internal/scanner"
	"github.com/artemshloyda/aspectcrop/internal/storage"
	"github.com/artemshloyda/aspectcrop/internal/watcher"
	"github.com/artemshloyda/aspectcrop/internal/worker"
)

// batchOptions - флаги пакетной команды.
type batchOptions struct {
	kind    worker.Kind
	verbose *bool

	// flags - значения флагов, поверх файла конфигурации берутся только заданные явно.
	flags      *config.Config
	configPath string
	recipeRef  string
}

// flagFields копирует значение флага из src в dst.
var flagFields = map[string]func(dst, src *config.Config){
	"in":          func(d, s *config.Config) { d.InputDir = s.InputDir },
	"in-ext":      func(d, s *config.Config) { d.InputExtensions = s.InputExtensions },
	"target":      func(d, s *config.Config) { d.Target = s.Target },
	"policy":      func(d, s *config.Config) { d.Policy = s.Policy },
	"align":       func(d, s *config.Config) { d.Align = s.Align },
	"background":  func(d, s *config.Config) { d.Background = s.Background },
	"transparent": func(d, s *config.Config) { d.Transparent = s.Transparent },
	"workers":     func(d, s *config.Config) { d.Workers = s.Workers },
	"mode":        func(d, s *config.Config) { d.Mode = s.Mode },
	"db":          func(d, s *config.Config) { d.DBPath = s.DBPath },
	"cache":       func(d, s *config.Config) { d.CacheEnabled = s.CacheEnabled },
	"cache-dir":   func(d, s *config.Config) { d.CacheDir = s.CacheDir },
	"max-memory":  func(d, s *config.Config) { d.MaxMemoryMB = s.MaxMemoryMB },
	"watch":       func(d, s *config.Config) { d.Watch = s.Watch },
	"report":      func(d, s *config.Config) { d.ReportPath = s.ReportPath },
	"no-progress": func(d, s *config.Config) { d.NoProgress = s.NoProgress },
}

// newBatchCmd создаёт пакетную команду resize, flip или crop.
func newBatchCmd(kind worker.Kind, verbose *bool) *cobra.Command {
	cmd := &cobra.Command{Use: string(kind)}
	switch kind {
	case worker.KindFlip:
		cmd.Short = "Отразить каждое второе изображение папки (результат в flipped/)"
	case worker.KindCrop:
		cmd.Short = "Применить рецепт ко всем изображениям папки (результат в cropped/)"
	default:
		cmd.Short = "Привести изображения папки к целевому разрешению (результат в resize/)"
	}
	bindBatch(cmd, kind, verbose)
	return cmd
}

// bindBatch регистрирует флаги пакетной обработки и RunE.
func bindBatch(cmd *cobra.Command, kind worker.Kind, verbose *bool) {
	opts := &batchOptions{kind: kind, verbose: verbose, flags: config.DefaultConfig()}
	c := opts.flags
	mode := string(c.Mode)

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Путь к файлу конфигурации (по умолчанию ./aspectcrop.yaml)")
	flags.StringVar(&c.InputDir, "in", "", "Директория с исходными изображениями (обязательно)")
	flags.StringSliceVar(&c.InputExtensions, "in-ext", c.InputExtensions, "Расширения входных файлов через запятую")

	flags.StringVar(&c.Target, "target", c.Target, "Целевое разрешение: AUTO или WxH")
	flags.StringVar(&c.Policy, "policy", c.Policy, "Политика: crop или fit")
	flags.StringVar(&c.Align, "align", c.Align, "Выравнивание при обрезке: top-left ... bottom-right")
	flags.StringVar(&c.Background, "background", c.Background, "Цвет фона #RRGGBB")
	flags.BoolVar(&c.Transparent, "transparent", c.Transparent, "Прозрачный фон (RGBA на выходе)")
	flags.StringVar(&c.Profile, "profile", "", "Профиль: "+strings.Join(config.ValidProfiles(), ", "))

	flags.IntVar(&c.Workers, "workers", c.Workers, "Количество параллельных воркеров")
	flags.StringVar(&mode, "mode", mode, "Режим: force (по умолчанию) или skip")
	flags.StringVar(&c.DBPath, "db", "", "Путь к SQLite базе данных (режим skip)")
	flags.BoolVar(&c.CacheEnabled, "cache", false, "Кэшировать преобразованные изображения")
	flags.StringVar(&c.CacheDir, "cache-dir", "", "Директория кэша")
	flags.IntVar(&c.MaxMemoryMB, "max-memory", 0, "Ограничение памяти в МБ (0 = без ограничения)")

	flags.BoolVar(&c.Watch, "watch", false, "Следить за папкой и обрабатывать новые файлы")
	flags.StringVar(&c.ReportPath, "report", "", "Сохранить отчёт (.yaml или .parquet)")
	flags.BoolVar(&c.NoProgress, "no-progress", false, "Отключить прогресс-бар")

	if kind == worker.KindCrop {
		flags.StringVar(&opts.recipeRef, "recipe", "", "Имя сохранённого рецепта или путь к YAML файлу (обязательно)")
		_ = cmd.MarkFlagRequired("recipe")
	}

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c.Mode = config.Mode(mode)
		cfg, err := opts.resolve(cmd)
		if err != nil {
			return fmt.Errorf("ошибка конфигурации: %w", err)
		}
		rcp, err := opts.recipe(cmd, cfg)
		if err != nil {
			return err
		}
		return runBatch(cmd.Context(), cfg, kind, rcp)
	}
}

// resolve собирает конфигурацию: значения по умолчанию, файл, окружение,
// профиль и явно заданные флаги (в порядке возрастания приоритета).
func (o *batchOptions) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	fc, path, err := config.FindAndLoadConfig(o.configPath)
	if err != nil {
		return nil, err
	}
	if fc != nil {
		fmt.Printf("📄 Конфигурация: %s\n", path)
		if err := fc.ApplyToConfig(cfg); err != nil {
			return nil, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("profile") && !cfg.ApplyProfile(o.flags.Profile) {
		return nil, fmt.Errorf("неизвестный профиль: %s (доступны: %s)",
			o.flags.Profile, strings.Join(config.ValidProfiles(), ", "))
	}
	for name, apply := range flagFields {
		if flags.Changed(name) {
			apply(cfg, o.flags)
		}
	}
	cfg.Verbose = cfg.Verbose || *o.verbose

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// recipe возвращает рецепт для операции.
func (o *batchOptions) recipe(cmd *cobra.Command, cfg *config.Config) (*recipe.Recipe, error) {
	switch o.kind {
	case worker.KindFlip:
		rcp, err := cfg.BuildRecipe()
		if err != nil {
			return nil, err
		}
		rcp.Transform.Flipped = true
		// Отражение сохраняет размер, если разрешение не задано явно.
		if !cmd.Flags().Changed("target") {
			rcp.Target = resolution.Target{}
		}
		return rcp, nil

	case worker.KindCrop:
		rcp, err := loadRecipe(o.recipeRef)
		if err != nil {
			return nil, err
		}
		if cmd.Flags().Changed("target") {
			out, err := cfg.Output()
			if err != nil {
				return nil, err
			}
			rcp.Target = out.Target
		}
		return rcp, nil

	default:
		return cfg.BuildRecipe()
	}
}

// loadRecipe загружает рецепт по пути к файлу или по имени из хранилища.
func loadRecipe(ref string) (*recipe.Recipe, error) {
	if _, err := os.Stat(ref); err == nil {
		return recipe.Load(ref)
	}
	store, err := recipe.DefaultStore()
	if err != nil {
		return nil, err
	}
	rcp, path, err := store.Load(ref)
	if err != nil {
		return nil, err
	}
	fmt.Printf("📦 Рецепт: %s\n", path)
	return rcp, nil
}

// runBatch выполняет пакетную операцию над папкой.
func runBatch(ctx context.Context, cfg *config.Config, kind worker.Kind, rcp *recipe.Recipe) error {
	startTime := time.Now()

	scan := scanner.New(cfg.InputExtensions)
	files, err := scan.List(cfg.InputDir)
	if err != nil && !(cfg.Watch && errors.Is(err, scanner.ErrEmptyInputSet)) {
		return err
	}

	opts := worker.Options{
		Workers:     cfg.Workers,
		MaxMemoryMB: cfg.MaxMemoryMB,
		Verbose:     cfg.Verbose,
	}

	if cfg.Mode == config.ModeSkip {
		store, err := storage.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("не удалось инициализировать БД: %w", err)
		}
		defer func() { _ = store.Close() }()

		cleaned, err := store.CleanupInProgress()
		if err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Не удалось очистить in_progress: %v\n", err)
		} else if cleaned > 0 {
			fmt.Printf("🧹 Очищено %d прерванных задач\n", cleaned)
		}
		opts.Journal = store
	}

	if cfg.CacheEnabled {
		c, err := cache.New(cfg.CacheDir, true)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()
		opts.Cache = c
	}

	pool := worker.New(opts)
	job := worker.Job{Kind: kind, Recipe: rcp, InputDir: cfg.InputDir}

	selected := worker.Select(kind, files)
	fmt.Printf("🚀 Запуск (%s):\n", kind)
	fmt.Printf("   Вход: %s\n", cfg.InputDir)
	fmt.Printf("   Выход: %s\n", job.OutputDir())
	fmt.Printf("   Файлов: %d из %d\n", len(selected), len(files))
	fmt.Printf("   Разрешение: %s, политика: %s, выравнивание: %s\n",
		targetLabel(rcp.Target), rcp.Policy, rcp.Align)
	fmt.Printf("   Режим: %s, воркеров: %d\n", cfg.Mode, cfg.Workers)
	fmt.Println()

	bar := progress.New(progress.Options{
		Total:       int64(len(selected)),
		Description: string(kind),
		Disabled:    cfg.NoProgress,
	})
	pool.SetProgressBar(bar)

	total, err := pool.Run(ctx, job, files)
	if err != nil {
		return err
	}

	if cfg.Watch {
		if err := watch(ctx, cfg, scan, pool, job, bar, total); err != nil {
			return err
		}
	}
	bar.Finish()

	printSummary(total, time.Since(startTime))

	if cfg.ReportPath != "" {
		if err := report.Write(cfg.ReportPath, total); err != nil {
			return err
		}
		fmt.Printf("📝 Отчёт: %s\n", cfg.ReportPath)
	}

	if total.Failed > 0 {
		return fmt.Errorf("завершено с %d ошибками", total.Failed)
	}
	return nil
}

// watch обрабатывает новые файлы папки до отмены ctx.
func watch(ctx context.Context, cfg *config.Config, scan *scanner.Scanner,
	pool *worker.Pool, job worker.Job, bar *progress.Bar, total *worker.Report) error {
	w, err := watcher.New(cfg.InputDir, scan)
	if err != nil {
		return err
	}
	batches, err := w.Watch(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("👀 Слежение за %s (Ctrl+C для выхода)\n", cfg.InputDir)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		pool.Stop()
		return nil
	})
	g.Go(func() error {
		for batch := range batches {
			n := len(worker.Select(job.Kind, batch))
			if n == 0 {
				continue
			}
			_, known := bar.Completed()
			bar.SetTotal(known + int64(n))

			rep, err := pool.Run(gctx, job, batch)
			if err != nil {
				return err
			}
			total.Merge(rep)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Println("\n⚠️  Слежение остановлено")
	return nil
}

// printSummary выводит итоги запуска.
func printSummary(rep *worker.Report, duration time.Duration) {
	fmt.Println()
	fmt.Printf("📊 Результаты:\n")
	fmt.Printf("   Обработано: %d\n", rep.Succeeded)
	fmt.Printf("   Пропущено: %d\n", rep.Skipped)
	fmt.Printf("   Ошибок: %d\n", rep.Failed)
	if rep.Cancelled > 0 {
		fmt.Printf("   Не начато: %d\n", rep.Cancelled)
	}
	fmt.Printf("   Время: %s\n", duration.Round(time.Millisecond))
}

// targetLabel описывает целевое разрешение рецепта.
func targetLabel(t resolution.Target) string {
	if t.IsZero() {
		return "исходное"
	}
	return t.String()
}
