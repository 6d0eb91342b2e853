// Package report сохраняет итоги пакетного запуска в YAML или Parquet.
package report

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/artemshloyda/aspectcrop/internal/worker"
)

// ErrUnsupportedFormat - расширение файла отчёта не поддерживается.
var ErrUnsupportedFormat = errors.New("неподдерживаемый формат отчёта")

// Row - строка отчёта по одному файлу.
type Row struct {
	Name       string `parquet:"name" yaml:"name"`
	Source     string `parquet:"source" yaml:"source"`
	Output     string `parquet:"output" yaml:"output,omitempty"`
	Operation  string `parquet:"operation" yaml:"operation"`
	Status     string `parquet:"status" yaml:"status"`
	Reason     string `parquet:"reason" yaml:"reason,omitempty"`
	Error      string `parquet:"error" yaml:"error,omitempty"`
	Width      int32  `parquet:"width" yaml:"width,omitempty"`
	Height     int32  `parquet:"height" yaml:"height,omitempty"`
	DurationMS int64  `parquet:"duration_ms" yaml:"duration_ms"`
}

// Summary - YAML-представление отчёта.
type Summary struct {
	Operation  string    `yaml:"operation"`
	Generated  time.Time `yaml:"generated"`
	Total      int       `yaml:"total"`
	Completed  int       `yaml:"completed"`
	Succeeded  int       `yaml:"succeeded"`
	Skipped    int       `yaml:"skipped"`
	Failed     int       `yaml:"failed"`
	Cancelled  int       `yaml:"cancelled"`
	DurationMS int64     `yaml:"duration_ms"`
	Files      []Row     `yaml:"files"`
}

// Rows переводит отчёт в строки, упорядоченные по имени файла.
func Rows(rep *worker.Report) []Row {
	results := rep.Ordered()
	rows := make([]Row, len(results))
	for i, res := range results {
		row := Row{
			Name:       res.Name,
			Source:     res.Src,
			Operation:  string(rep.Kind),
			Status:     string(res.Status),
			Reason:     res.Reason,
			Width:      int32(res.Size.X),
			Height:     int32(res.Size.Y),
			DurationMS: res.Duration.Milliseconds(),
		}
		if res.Status == worker.StatusOK || res.Status == worker.StatusSkipped {
			row.Output = res.Dst
		}
		if res.Err != nil {
			row.Error = res.Err.Error()
		}
		rows[i] = row
	}
	return rows
}

// Write сохраняет отчёт, формат выбирается по расширению (.yaml, .yml, .parquet).
func Write(path string, rep *worker.Report) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("не удалось создать директорию отчёта: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("не удалось создать файл отчёта: %w", err)
	}
	defer f.Close()

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = WriteYAML(f, rep)
	case ".parquet":
		err = WriteParquet(f, rep)
	default:
		err = fmt.Errorf("%w: %s (поддерживаются .yaml, .parquet)", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}

	slog.Debug("report written", "path", path, "files", len(rep.Results))
	return f.Close()
}

// WriteYAML пишет сводку и строки в YAML.
func WriteYAML(w io.Writer, rep *worker.Report) error {
	summary := Summary{
		Operation:  string(rep.Kind),
		Generated:  time.Now().UTC().Truncate(time.Second),
		Total:      rep.Total,
		Completed:  rep.Completed,
		Succeeded:  rep.Succeeded,
		Skipped:    rep.Skipped,
		Failed:     rep.Failed,
		Cancelled:  rep.Cancelled,
		DurationMS: rep.Duration.Milliseconds(),
		Files:      Rows(rep),
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("ошибка сериализации отчёта: %w", err)
	}
	return enc.Close()
}

// WriteParquet пишет строки отчёта в Parquet.
func WriteParquet(w io.Writer, rep *worker.Report) error {
	pw := parquet.NewGenericWriter[Row](w)
	if _, err := pw.Write(Rows(rep)); err != nil {
		return fmt.Errorf("ошибка записи parquet: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("ошибка записи parquet: %w", err)
	}
	return nil
}

// ReadParquet читает строки отчёта из Parquet-файла.
func ReadParquet(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть отчёт: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить info отчёта: %w", err)
	}

	pf, err := parquet.OpenFile(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения parquet: %w", err)
	}

	reader := parquet.NewGenericReader[Row](pf)
	defer reader.Close()

	rows := make([]Row, pf.NumRows())
	n, err := reader.Read(rows)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("ошибка чтения parquet: %w", err)
	}
	return rows[:n], nil
}

// ReadYAML читает YAML-отчёт.
func ReadYAML(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать отчёт: %w", err)
	}
	var s Summary
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("ошибка парсинга отчёта: %w", err)
	}
	return &s, nil
}
