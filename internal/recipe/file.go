package recipe

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/artemshloyda/aspectcrop/internal/geometry"
	"github.com/artemshloyda/aspectcrop/internal/resolution"
	"github.com/artemshloyda/aspectcrop/internal/transform"
)

// fileVersion - версия формата файла рецепта.
const fileVersion = 1

// File - YAML представление рецепта.
type File struct {
	Version     int             `yaml:"version"`
	Crop        *RectFile       `yaml:"crop,omitempty"`
	Reference   *SizeFile       `yaml:"reference,omitempty"`
	Transform   transform.State `yaml:"transform"`
	Target      string          `yaml:"target,omitempty"`
	Policy      string          `yaml:"policy"`
	Align       string          `yaml:"align"`
	Background  string          `yaml:"background"`
	Transparent bool            `yaml:"transparent,omitempty"`
}

// RectFile - прямоугольник x1,y1,x2,y2.
type RectFile struct {
	X1 int `yaml:"x1"`
	Y1 int `yaml:"y1"`
	X2 int `yaml:"x2"`
	Y2 int `yaml:"y2"`
}

// SizeFile - размер width x height.
type SizeFile struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// ToFile преобразует рецепт в YAML представление.
func (r *Recipe) ToFile() *File {
	f := &File{
		Version:     fileVersion,
		Transform:   r.Transform,
		Target:      r.Target.String(),
		Policy:      r.Policy.String(),
		Align:       r.Align.String(),
		Background:  r.Background.Hex(),
		Transparent: r.Background.Transparent,
	}
	if r.Crop != nil {
		f.Crop = &RectFile{X1: r.Crop.Min.X, Y1: r.Crop.Min.Y, X2: r.Crop.Max.X, Y2: r.Crop.Max.Y}
		f.Reference = &SizeFile{Width: r.Reference.X, Height: r.Reference.Y}
	}
	return f
}

// ToRecipe разбирает и проверяет YAML представление.
func (f *File) ToRecipe() (*Recipe, error) {
	r := &Recipe{Transform: f.Transform}

	if f.Target != "" {
		t, err := resolution.Parse(f.Target)
		if err != nil {
			return nil, err
		}
		r.Target = t
	}

	var err error
	if f.Policy != "" {
		if r.Policy, err = geometry.ParsePolicy(f.Policy); err != nil {
			return nil, err
		}
	}
	r.Align = geometry.Center
	if f.Align != "" {
		if r.Align, err = geometry.ParseAlign(f.Align); err != nil {
			return nil, err
		}
	}
	if r.Background, err = transform.ParseBackground(f.Background, f.Transparent); err != nil {
		return nil, err
	}

	if f.Crop != nil {
		rect := image.Rect(f.Crop.X1, f.Crop.Y1, f.Crop.X2, f.Crop.Y2)
		r.Crop = &rect
		if f.Reference != nil {
			r.Reference = image.Pt(f.Reference.Width, f.Reference.Height)
		}
	}

	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Save сохраняет рецепт в YAML файл.
func (r *Recipe) Save(path string) error {
	data, err := yaml.Marshal(r.ToFile())
	if err != nil {
		return fmt.Errorf("не удалось сериализовать рецепт: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("не удалось создать директорию: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("не удалось записать рецепт %s: %w", path, err)
	}
	return nil
}

// Load загружает рецепт из YAML файла.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать рецепт %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML в %s: %w", path, err)
	}
	if f.Version > fileVersion {
		return nil, fmt.Errorf("неподдерживаемая версия рецепта %d в %s", f.Version, path)
	}

	r, err := f.ToRecipe()
	if err != nil {
		return nil, fmt.Errorf("некорректный рецепт %s: %w", path, err)
	}
	return r, nil
}
