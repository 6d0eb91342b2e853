package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig представляет структуру конфигурационного файла YAML.
// Все поля опциональны.
type FileConfig struct {
	Input      *InputConfig      `yaml:"input,omitempty"`
	Output     *OutputConfig     `yaml:"output,omitempty"`
	Processing *ProcessingConfig `yaml:"processing,omitempty"`
	Paths      *PathsConfig      `yaml:"paths,omitempty"`
}

// InputConfig содержит настройки входных данных.
type InputConfig struct {
	Dir        string   `yaml:"dir,omitempty"`
	Extensions []string `yaml:"extensions,omitempty"`
}

// OutputConfig содержит параметры приведения к разрешению.
type OutputConfig struct {
	// Target - AUTO или WxH.
	Target string `yaml:"target,omitempty"`

	// Policy - crop или fit.
	Policy string `yaml:"policy,omitempty"`

	Align       string `yaml:"align,omitempty"`
	Background  string `yaml:"background,omitempty"`
	Transparent *bool  `yaml:"transparent,omitempty"`

	// Profile применяется раньше остальных полей секции.
	Profile string `yaml:"profile,omitempty"`

	// Report - путь к отчёту (.yaml или .parquet).
	Report string `yaml:"report,omitempty"`
}

// ProcessingConfig содержит настройки обработки.
type ProcessingConfig struct {
	Workers     int    `yaml:"workers,omitempty"`
	Mode        string `yaml:"mode,omitempty"`
	Cache       bool   `yaml:"cache,omitempty"`
	MaxMemoryMB int    `yaml:"max_memory_mb,omitempty"`
	Verbose     bool   `yaml:"verbose,omitempty"`
	NoProgress  bool   `yaml:"no_progress,omitempty"`
}

// PathsConfig содержит настройки путей.
type PathsConfig struct {
	DB       string `yaml:"db,omitempty"`
	CacheDir string `yaml:"cache_dir,omitempty"`
}

// DefaultConfigPaths возвращает список путей для поиска конфигурационного файла:
// ./aspectcrop.yaml, ./aspectcrop.yml, затем ~/.config/aspectcrop/config.yaml(.yml).
func DefaultConfigPaths() []string {
	paths := []string{
		"aspectcrop.yaml",
		"aspectcrop.yml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "aspectcrop", "config.yaml"),
			filepath.Join(home, ".config", "aspectcrop", "config.yml"),
		)
	}

	return paths
}

// LoadFromFile загружает конфигурацию из указанного файла.
// Возвращает nil, nil если файл не существует.
func LoadFromFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("не удалось прочитать файл конфигурации %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML в %s: %w", path, err)
	}

	return &fc, nil
}

// FindAndLoadConfig ищет и загружает конфигурационный файл.
// Если configPath указан явно, использует только его.
// Возвращает nil, "", nil если файл не найден.
func FindAndLoadConfig(configPath string) (*FileConfig, string, error) {
	if configPath != "" {
		fc, err := LoadFromFile(configPath)
		if err != nil {
			return nil, "", err
		}
		if fc == nil {
			return nil, "", fmt.Errorf("файл конфигурации не найден: %s", configPath)
		}
		return fc, configPath, nil
	}

	for _, path := range DefaultConfigPaths() {
		fc, err := LoadFromFile(path)
		if err != nil {
			return nil, "", err
		}
		if fc != nil {
			return fc, path, nil
		}
	}

	return nil, "", nil
}

// ApplyToConfig применяет настройки из файла к конфигурации.
// Вызывается до разбора флагов: флаги имеют приоритет.
func (fc *FileConfig) ApplyToConfig(cfg *Config) error {
	if fc == nil {
		return nil
	}

	if fc.Input != nil {
		if fc.Input.Dir != "" {
			cfg.InputDir = fc.Input.Dir
		}
		if len(fc.Input.Extensions) > 0 {
			cfg.InputExtensions = fc.Input.Extensions
		}
	}

	if o := fc.Output; o != nil {
		if o.Profile != "" && !cfg.ApplyProfile(o.Profile) {
			return fmt.Errorf("неизвестный профиль в конфигурации: %s (доступны: %v)", o.Profile, ValidProfiles())
		}
		if o.Target != "" {
			cfg.Target = o.Target
		}
		if o.Policy != "" {
			cfg.Policy = o.Policy
		}
		if o.Align != "" {
			cfg.Align = o.Align
		}
		if o.Background != "" {
			cfg.Background = o.Background
		}
		if o.Transparent != nil {
			cfg.Transparent = *o.Transparent
		}
		if o.Report != "" {
			cfg.ReportPath = o.Report
		}
	}

	if p := fc.Processing; p != nil {
		if p.Workers > 0 {
			cfg.Workers = p.Workers
		}
		if p.Mode != "" {
			cfg.Mode = Mode(p.Mode)
		}
		if p.Cache {
			cfg.CacheEnabled = true
		}
		if p.MaxMemoryMB > 0 {
			cfg.MaxMemoryMB = p.MaxMemoryMB
		}
		if p.Verbose {
			cfg.Verbose = true
		}
		if p.NoProgress {
			cfg.NoProgress = true
		}
	}

	if fc.Paths != nil {
		if fc.Paths.DB != "" {
			cfg.DBPath = fc.Paths.DB
		}
		if fc.Paths.CacheDir != "" {
			cfg.CacheDir = fc.Paths.CacheDir
		}
	}
	return nil
}

// GenerateExampleConfig генерирует пример конфигурационного файла.
func GenerateExampleConfig() string {
	return `# aspectcrop configuration
# Все параметры опциональны. Флаги командной строки имеют приоритет над этим файлом.

input:
  # Директория с исходными изображениями
  dir: "./photos"
  # Расширения входных файлов
  extensions: [jpg, jpeg, png, webp, bmp, gif, tiff]

output:
  # Профиль: fill, letterbox, transparent, portrait-top
  profile: ""
  # Целевое разрешение: AUTO или WxH (например 1216x832)
  target: AUTO
  # Политика: crop (заполнить и обрезать) или fit (вписать с полями)
  policy: crop
  # Выравнивание при обрезке: top-left ... bottom-right
  align: center
  # Цвет фона для полей и поворота
  background: "#FFFFFF"
  # Прозрачный фон (RGBA на выходе)
  transparent: false
  # Отчёт о запуске: report.yaml или report.parquet
  report: ""

processing:
  # Количество параллельных воркеров
  workers: 4
  # Режим: force (обрабатывать всё) или skip (пропускать обработанные)
  mode: force
  # Кэш преобразованных изображений
  cache: false
  # Ограничение памяти в МБ (0 = без ограничения)
  max_memory_mb: 0
  verbose: false
  no_progress: false

paths:
  # Путь к SQLite базе данных (по умолчанию <in>/.aspectcrop/state.sqlite)
  db: ""
  # Директория кэша
  cache_dir: ""
`
}
