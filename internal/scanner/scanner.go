// Package scanner отвечает за получение списка изображений в директории.
package scanner

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/artemshloyda/aspectcrop/internal/storage"
)

// ErrEmptyInputSet возвращается, если в директории нет подходящих файлов.
var ErrEmptyInputSet = errors.New("нет изображений для обработки")

// DefaultExtensions - поддерживаемые расширения входных файлов.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp", ".gif", ".tiff"}

// File представляет файл для обработки.
type File struct {
	// Name - имя файла без директории.
	Name string

	// Path - абсолютный путь к файлу.
	Path string

	// Info - информация о файле для журнала.
	Info storage.FileInfo
}

// Scanner перечисляет изображения в директории (без рекурсии).
type Scanner struct {
	exts map[string]struct{}
}

// New создаёт Scanner для указанных расширений (с точкой или без).
// Пустой список означает DefaultExtensions.
func New(exts []string) *Scanner {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	s := &Scanner{exts: make(map[string]struct{}, len(exts))}
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		s.exts[e] = struct{}{}
	}
	return s
}

// Match проверяет, подходит ли имя файла.
// Скрытые файлы и macOS metadata (._*) пропускаются.
func (s *Scanner) Match(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") {
		return false
	}
	_, ok := s.exts[strings.ToLower(filepath.Ext(base))]
	return ok
}

// List возвращает файлы директории, отсортированные по имени.
// Поддиректории (в том числе выходные) не просматриваются.
func (s *Scanner) List(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать директорию %s: %w", dir, err)
	}

	var files []File
	for _, e := range entries {
		if e.IsDir() || !s.Match(e.Name()) {
			continue
		}

		f, err := s.Stat(filepath.Join(dir, e.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Предупреждение: %v\n", err)
			continue
		}
		files = append(files, f)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyInputSet, dir)
	}

	return files, nil
}

// Stat собирает File для одного пути.
func (s *Scanner) Stat(path string) (File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return File{}, fmt.Errorf("не удалось получить info %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s - директория", path)
	}

	return File{
		Name: info.Name(),
		Path: absPath,
		Info: storage.FileInfo{
			Path:  absPath,
			Size:  info.Size(),
			Mtime: info.ModTime().Unix(),
		},
	}, nil
}

// ListImages возвращает упорядоченные имена изображений в директории.
func ListImages(dir string) ([]string, error) {
	files, err := New(nil).List(dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return names, nil
}

// EveryOther возвращает 1-й, 3-й, 5-й ... файлы списка.
func EveryOther(files []File) []File {
	out := make([]File, 0, (len(files)+1)/2)
	for i := 0; i < len(files); i += 2 {
		out = append(out, files[i])
	}
	return out
}
