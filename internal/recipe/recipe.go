// Package recipe описывает неизменяемый снимок кадрирования и преобразования,
// который применяется ко всем файлам пакетного запуска.
package recipe

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"image"
	"math"

	"github.com/artemshloyda/aspectcrop/internal/geometry"
	"github.com/artemshloyda/aspectcrop/internal/resolution"
	"github.com/artemshloyda/aspectcrop/internal/transform"
)

// Recipe - снимок настроек одного кадрирования.
// После создания не изменяется и читается воркерами параллельно.
type Recipe struct {
	// Crop - область в пикселях преобразованного эталонного изображения (nil = всё изображение).
	Crop *image.Rectangle

	// Reference - размер эталонного изображения после преобразования.
	Reference image.Point

	// Transform - отражение и поворот.
	Transform transform.State

	// Target - целевое разрешение (AUTO, WxH или не задано).
	Target resolution.Target

	// Policy - кадрирование или вписывание.
	Policy geometry.ResizePolicy

	// Align - выравнивание при кадрировании.
	Align geometry.AlignMode

	// Background - заливка и прозрачность.
	Background transform.Background
}

// Validate проверяет согласованность рецепта.
func (r *Recipe) Validate() error {
	if err := r.Transform.Validate(); err != nil {
		return err
	}
	if !r.Align.Valid() {
		return fmt.Errorf("некорректное выравнивание: %v", r.Align)
	}
	if r.Crop != nil {
		if r.Crop.Empty() {
			return fmt.Errorf("%w: пустая область кадрирования %v", resolution.ErrInvalidDimension, *r.Crop)
		}
		if r.Reference.X <= 0 || r.Reference.Y <= 0 {
			return fmt.Errorf("%w: не задан эталонный размер", resolution.ErrInvalidDimension)
		}
	}
	return nil
}

// Output возвращает параметры последнего шага конвейера.
func (r *Recipe) Output() transform.Output {
	return transform.Output{
		Target:     r.Target,
		Policy:     r.Policy,
		Align:      r.Align,
		Background: r.Background,
	}
}

// ScaleCrop переносит область кадрирования на изображение размера size
// (размер после преобразования). Координаты масштабируются по осям
// отношением size к эталонному размеру. Без области возвращает пустой прямоугольник.
func (r *Recipe) ScaleCrop(size image.Point) image.Rectangle {
	if r.Crop == nil || r.Reference.X <= 0 || r.Reference.Y <= 0 {
		return image.Rectangle{}
	}

	sx := float64(size.X) / float64(r.Reference.X)
	sy := float64(size.Y) / float64(r.Reference.Y)

	scaled := image.Rect(
		int(math.Round(float64(r.Crop.Min.X)*sx)),
		int(math.Round(float64(r.Crop.Min.Y)*sy)),
		int(math.Round(float64(r.Crop.Max.X)*sx)),
		int(math.Round(float64(r.Crop.Max.Y)*sy)),
	)
	return scaled.Intersect(image.Rectangle{Max: size})
}

// Params возвращает параметры рецепта в виде JSON.
func (r *Recipe) Params() string {
	params := map[string]interface{}{
		"rotation":    r.Transform.Coarse,
		"angle":       r.Transform.Fine,
		"flip":        r.Transform.Flipped,
		"target":      r.Target.String(),
		"policy":      r.Policy.String(),
		"align":       r.Align.String(),
		"background":  r.Background.Hex(),
		"transparent": r.Background.Transparent,
	}
	if r.Crop != nil {
		params["crop"] = []int{r.Crop.Min.X, r.Crop.Min.Y, r.Crop.Max.X, r.Crop.Max.Y}
		params["reference"] = []int{r.Reference.X, r.Reference.Y}
	}
	b, _ := json.Marshal(params)
	return string(b)
}

// Hash возвращает sha256 хэш параметров.
func (r *Recipe) Hash() string {
	h := sha256.Sum256([]byte(r.Params()))
	return hex.EncodeToString(h[:])
}
