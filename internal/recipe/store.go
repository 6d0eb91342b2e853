package recipe

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Named - сохранённый именованный рецепт.
type Named struct {
	// Name - имя рецепта.
	Name string
	// Path - путь к файлу.
	Path string
	// Recipe - содержимое (nil, если файл повреждён).
	Recipe *Recipe
}

// Store хранит именованные рецепты в директории.
type Store struct {
	dir string
}

// NewStore создаёт Store в директории dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultStore возвращает Store в ~/.config/aspectcrop/recipes.
func DefaultStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить домашнюю директорию: %w", err)
	}
	return NewStore(filepath.Join(homeDir, ".config", "aspectcrop", "recipes")), nil
}

// Dir возвращает директорию хранилища.
func (s *Store) Dir() string {
	return s.dir
}

// PathFor возвращает путь к файлу рецепта по имени.
func (s *Store) PathFor(name string) (string, error) {
	safeName := sanitizeName(name)
	if safeName == "" {
		return "", fmt.Errorf("некорректное имя рецепта: %s", name)
	}
	return filepath.Join(s.dir, safeName+".yaml"), nil
}

// sanitizeName оставляет только буквы, цифры, дефисы и подчёркивания.
func sanitizeName(name string) string {
	var result strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') || r == '-' || r == '_' {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// Save сохраняет рецепт под именем.
func (s *Store) Save(name string, r *Recipe) (string, error) {
	path, err := s.PathFor(name)
	if err != nil {
		return "", err
	}
	if err := r.Save(path); err != nil {
		return "", fmt.Errorf("не удалось сохранить рецепт: %w", err)
	}
	return path, nil
}

// Load загружает рецепт по имени.
func (s *Store) Load(name string) (*Recipe, string, error) {
	path, err := s.PathFor(name)
	if err != nil {
		return nil, "", err
	}
	if !s.Exists(name) {
		return nil, "", fmt.Errorf("рецепт '%s' не найден", name)
	}
	r, err := Load(path)
	if err != nil {
		return nil, "", fmt.Errorf("не удалось загрузить рецепт '%s': %w", name, err)
	}
	return r, path, nil
}

// List возвращает все рецепты, отсортированные по имени.
func (s *Store) List() ([]Named, error) {
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return []Named{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать директорию рецептов: %w", err)
	}

	var out []Named
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		path := filepath.Join(s.dir, name)
		r, _ := Load(path)
		out = append(out, Named{
			Name:   strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml"),
			Path:   path,
			Recipe: r,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Delete удаляет рецепт по имени.
func (s *Store) Delete(name string) error {
	path, err := s.PathFor(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return fmt.Errorf("рецепт '%s' не найден", name)
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("не удалось удалить рецепт: %w", err)
	}
	return nil
}

// Exists проверяет существование рецепта.
func (s *Store) Exists(name string) bool {
	path, err := s.PathFor(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
