package geometry

import (
	"image"
	"math"
)

// CropGeometry - результат расчёта кадрирования.
type CropGeometry struct {
	// Rect - область в пространстве увеличенного изображения, размер равен целевому.
	Rect image.Rectangle

	// Scaled - размер, до которого изображение масштабируется перед кадрированием.
	Scaled image.Point
}

// CropBox вычисляет равномерное увеличение источника до покрытия target
// и положение окна target внутри него согласно align.
// Размеры src и target должны быть положительными.
func CropBox(src, target image.Point, align AlignMode) CropGeometry {
	ratio := math.Max(
		float64(target.X)/float64(src.X),
		float64(target.Y)/float64(src.Y),
	)

	// Округление может дать на пиксель меньше цели.
	scaled := image.Pt(
		max(int(math.Round(float64(src.X)*ratio)), target.X),
		max(int(math.Round(float64(src.Y)*ratio)), target.Y),
	)

	x := align.horizontal().offset(scaled.X, target.X)
	y := align.vertical().offset(scaled.Y, target.Y)

	return CropGeometry{
		Rect:   image.Rect(x, y, x+target.X, y+target.Y),
		Scaled: scaled,
	}
}

// FitGeometry - результат расчёта вписывания.
type FitGeometry struct {
	// Scaled - размер вписанного изображения.
	Scaled image.Point

	// Offset - позиция вставки на холсте целевого размера.
	Offset image.Point
}

// Rect возвращает область вписанного изображения на холсте.
func (g FitGeometry) Rect() image.Rectangle {
	return image.Rectangle{Min: g.Offset, Max: g.Offset.Add(g.Scaled)}
}

// FitBox вычисляет равномерное уменьшение (или увеличение) источника
// до вписывания в target и центрирующее смещение.
func FitBox(src, target image.Point) FitGeometry {
	ratio := math.Min(
		float64(target.X)/float64(src.X),
		float64(target.Y)/float64(src.Y),
	)

	scaled := image.Pt(
		clamp(int(math.Round(float64(src.X)*ratio)), 1, target.X),
		clamp(int(math.Round(float64(src.Y)*ratio)), 1, target.Y),
	)

	return FitGeometry{
		Scaled: scaled,
		Offset: image.Pt((target.X-scaled.X)/2, (target.Y-scaled.Y)/2),
	}
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
