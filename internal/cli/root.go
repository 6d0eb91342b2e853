// Package cli содержит CLI интерфейс приложения.
package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/artemshloyda/aspectcrop/internal/config"
	"github.com/artemshloyda/aspectcrop/internal/storage"
	"github.com/artemshloyda/aspectcrop/internal/worker"
)

var (
	// Version будет установлена при сборке.
	Version = "dev"

	// BuildTime будет установлена при сборке.
	BuildTime = "unknown"
)

// NewRootCmd создаёт корневую команду CLI.
// Без подкоманды выполняется приведение папки к целевому разрешению (resize).
func NewRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:   "aspectcrop",
		Short: "Кадрирование изображений под фиксированные соотношения сторон",
		Long: `aspectcrop - CLI утилита для кадрирования и приведения изображений
к фиксированному набору разрешений (1024x1024, 1216x832, 1344x768, 1152x896 и портретные варианты).

Одно изображение редактируется командой edit, после чего настройки можно
сохранить как рецепт и применить ко всей папке командой crop.

Примеры:
  # Привести все изображения папки к ближайшему разрешению (обрезка по центру)
  aspectcrop --in ./photos

  # Вписать в 1024x1024 с белыми полями
  aspectcrop resize --in ./photos --target 1024x1024 --profile letterbox

  # Отразить каждое второе изображение
  aspectcrop flip --in ./photos

  # Вырезать область, повернуть и сохранить рецепт
  aspectcrop edit ./photos/001.jpg --rotate 90 --select 100,100,900,700 --save-recipe portrait

  # Применить рецепт ко всей папке, пропуская уже обработанные файлы
  aspectcrop crop --in ./photos --recipe portrait --mode skip`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()

			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Подробный вывод")

	// Корневая команда работает как resize.
	bindBatch(rootCmd, worker.KindResize, &verbose)

	rootCmd.AddCommand(newBatchCmd(worker.KindResize, &verbose))
	rootCmd.AddCommand(newBatchCmd(worker.KindFlip, &verbose))
	rootCmd.AddCommand(newBatchCmd(worker.KindCrop, &verbose))
	rootCmd.AddCommand(newEditCmd())
	rootCmd.AddCommand(newRecipesCmd())
	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// newVersionCmd создаёт команду version.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Показать версию",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("aspectcrop %s (built %s)\n", Version, BuildTime)
		},
	}
}

// newConfigCmd создаёт команду config.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Работа с файлом конфигурации",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "example",
		Short: "Вывести пример aspectcrop.yaml",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), config.GenerateExampleConfig())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "paths",
		Short: "Показать пути поиска файла конфигурации",
		Run: func(cmd *cobra.Command, args []string) {
			for _, p := range config.DefaultConfigPaths() {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
		},
	})
	return cmd
}

// newStatsCmd создаёт команду stats.
func newStatsCmd() *cobra.Command {
	var failed bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Показать статистику журнала обработки",
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			if dbPath == "" {
				dbPath = os.Getenv(config.EnvDB)
			}
			if dbPath == "" {
				return fmt.Errorf("укажите путь к БД через --db")
			}

			store, err := storage.New(dbPath)
			if err != nil {
				return fmt.Errorf("не удалось открыть БД: %w", err)
			}
			defer func() { _ = store.Close() }()

			stats, err := store.GetStats()
			if err != nil {
				return fmt.Errorf("не удалось получить статистику: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "📊 Статистика журнала:\n")
			fmt.Fprintf(out, "   Всего записей: %d\n", stats.Total)
			fmt.Fprintf(out, "   Успешно: %d\n", stats.OK)
			fmt.Fprintf(out, "   Ошибок: %d\n", stats.Failed)
			fmt.Fprintf(out, "   В процессе: %d\n", stats.InProgress)

			if !failed {
				return nil
			}
			jobs, err := store.FailedJobs()
			if err != nil {
				return fmt.Errorf("не удалось получить ошибки: %w", err)
			}
			for _, j := range jobs {
				msg := ""
				if j.Error != nil {
					msg = *j.Error
				}
				fmt.Fprintf(out, "   ❌ [%s] %s: %s\n", j.Operation, j.SrcPath, msg)
			}
			return nil
		},
	}

	cmd.Flags().String("db", "", "Путь к SQLite базе данных (или "+config.EnvDB+")")
	cmd.Flags().BoolVar(&failed, "failed", false, "Показать файлы с ошибками")

	return cmd
}
