// Package config содержит конфигурацию приложения.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/artemshloyda/aspectcrop/internal/geometry"
	"github.com/artemshloyda/aspectcrop/internal/recipe"
	"github.com/artemshloyda/aspectcrop/internal/resolution"
	"github.com/artemshloyda/aspectcrop/internal/scanner"
	"github.com/artemshloyda/aspectcrop/internal/transform"
	"github.com/artemshloyda/aspectcrop/internal/worker"
)

// Mode определяет, учитывать ли журнал обработанных файлов.
type Mode string

const (
	// ModeSkip - пропускать файлы, уже обработанные с тем же рецептом (по path+size+mtime).
	ModeSkip Mode = "skip"
	// ModeForce - обрабатывать все файлы заново.
	ModeForce Mode = "force"
)

// Переменные окружения, читаемые ApplyEnv.
const (
	EnvWorkers  = "ASPECTCROP_WORKERS"
	EnvDB       = "ASPECTCROP_DB"
	EnvCacheDir = "ASPECTCROP_CACHE_DIR"
)

// stateDir - служебная директория внутри входной (скрытая, сканер её не видит).
const stateDir = ".aspectcrop"

// Config содержит все настройки пакетного запуска.
type Config struct {
	// InputDir - директория с исходными изображениями.
	InputDir string

	// InputExtensions - расширения входных файлов.
	InputExtensions []string

	// Target - "AUTO" или "<ширина>x<высота>".
	Target string

	// Policy - crop или fit.
	Policy string

	// Align - одно из девяти выравниваний (top-left ... bottom-right).
	Align string

	// Background - цвет фона "#RRGGBB".
	Background string

	// Transparent - прозрачный фон и RGBA на выходе.
	Transparent bool

	// Profile - встроенный профиль (fill, letterbox, transparent, portrait-top).
	Profile string

	// Workers - количество параллельных воркеров.
	Workers int

	// Mode - режим журнала (skip/force).
	Mode Mode

	// DBPath - путь к SQLite базе данных.
	DBPath string

	// CacheEnabled - включить кэш преобразованных буферов.
	CacheEnabled bool

	// CacheDir - директория кэша.
	CacheDir string

	// MaxMemoryMB - ограничение использования памяти в мегабайтах (0 = без ограничения).
	MaxMemoryMB int

	// Watch - режим слежения за директорией.
	Watch bool

	// ReportPath - путь к отчёту (.yaml или .parquet).
	ReportPath string

	// Verbose - подробный вывод.
	Verbose bool

	// NoProgress - отключить прогресс-бар.
	NoProgress bool
}

// DefaultConfig возвращает конфигурацию по умолчанию.
func DefaultConfig() *Config {
	return &Config{
		InputExtensions: append([]string(nil), scanner.DefaultExtensions...),
		Target:          resolution.AutoToken,
		Policy:          geometry.Crop.String(),
		Align:           geometry.Center.String(),
		Background:      transform.DefaultBackgroundHex,
		Workers:         worker.DefaultWorkers,
		Mode:            ModeForce,
	}
}

// Validate проверяет корректность конфигурации и заполняет пути по умолчанию.
// Ошибки разбора разрешения возвращаются до начала любой обработки.
func (c *Config) Validate() error {
	if c.InputDir == "" {
		return fmt.Errorf("входная директория не указана (--in)")
	}
	if len(c.InputExtensions) == 0 {
		return fmt.Errorf("не указаны расширения входных файлов (--in-ext)")
	}
	if c.Workers < 1 {
		return fmt.Errorf("количество воркеров должно быть >= 1, получено: %d", c.Workers)
	}
	if c.Mode != ModeSkip && c.Mode != ModeForce {
		return fmt.Errorf("неизвестный режим: %s (доступны: skip, force)", c.Mode)
	}
	if c.MaxMemoryMB < 0 {
		return fmt.Errorf("ограничение памяти не может быть отрицательным: %d", c.MaxMemoryMB)
	}
	if c.ReportPath != "" {
		switch strings.ToLower(filepath.Ext(c.ReportPath)) {
		case ".yaml", ".yml", ".parquet":
		default:
			return fmt.Errorf("отчёт поддерживает .yaml и .parquet: %s", c.ReportPath)
		}
	}
	if _, err := c.Output(); err != nil {
		return err
	}

	if c.Mode == ModeSkip && c.DBPath == "" {
		c.DBPath = filepath.Join(c.InputDir, stateDir, "state.sqlite")
	}
	if c.CacheEnabled && c.CacheDir == "" {
		c.CacheDir = DefaultCacheDir()
	}
	return nil
}

// DefaultCacheDir возвращает директорию кэша пользователя.
func DefaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "aspectcrop")
	}
	return filepath.Join(os.TempDir(), "aspectcrop-cache")
}

// Output разбирает параметры последнего шага конвейера.
func (c *Config) Output() (transform.Output, error) {
	var out transform.Output
	var err error

	if out.Target, err = resolution.Parse(c.Target); err != nil {
		return out, err
	}
	if out.Policy, err = geometry.ParsePolicy(c.Policy); err != nil {
		return out, err
	}
	if out.Align, err = geometry.ParseAlign(c.Align); err != nil {
		return out, err
	}
	if out.Background, err = transform.ParseBackground(c.Background, c.Transparent); err != nil {
		return out, err
	}
	return out, nil
}

// BuildRecipe возвращает рецепт без преобразований: только приведение к разрешению.
func (c *Config) BuildRecipe() (*recipe.Recipe, error) {
	out, err := c.Output()
	if err != nil {
		return nil, err
	}
	return &recipe.Recipe{
		Target:     out.Target,
		Policy:     out.Policy,
		Align:      out.Align,
		Background: out.Background,
	}, nil
}

// ApplyEnv применяет переменные окружения (после файла конфигурации, до флагов).
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvWorkers)); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("некорректное значение %s=%q: %w", EnvWorkers, v, err)
		}
		c.Workers = n
	}
	if v := os.Getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv(EnvCacheDir); v != "" {
		c.CacheDir = v
	}
	return nil
}
