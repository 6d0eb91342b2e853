package viewport

import (
	"image"
	"math"
)

// Mapper преобразует координаты между холстом и пикселями отображаемого изображения.
type Mapper struct {
	State State

	// Image - размер отображаемого изображения в пикселях.
	Image image.Point
}

// Origin возвращает положение левого верхнего угла изображения на холсте.
func (m Mapper) Origin() Point {
	return Point{
		X: m.State.Center.X - float64(m.Image.X)*m.State.Scale/2,
		Y: m.State.Center.Y - float64(m.Image.Y)*m.State.Scale/2,
	}
}

// DisplayToSource переводит точку холста в пиксели изображения.
func (m Mapper) DisplayToSource(p Point) Point {
	return p.Sub(m.Origin()).Mul(1 / m.State.Scale)
}

// SourceToDisplay переводит пиксели изображения в точку холста.
func (m Mapper) SourceToDisplay(p Point) Point {
	return p.Mul(m.State.Scale).Add(m.Origin())
}

// CanvasRectToSource переводит выделение на холсте в пиксельный прямоугольник изображения.
// Левый верхний угол округляется вниз, правый нижний - к ближайшему,
// результат обрезается границами изображения.
func (m Mapper) CanvasRectToSource(r Rect) image.Rectangle {
	r = r.Canon()
	a := m.DisplayToSource(r.Min)
	b := m.DisplayToSource(r.Max)

	out := image.Rect(
		int(math.Floor(a.X)), int(math.Floor(a.Y)),
		int(math.Floor(b.X+0.5)), int(math.Floor(b.Y+0.5)),
	)
	return out.Intersect(image.Rectangle{Max: m.Image})
}

// SourceRectToCanvas переводит пиксельный прямоугольник изображения в прямоугольник холста.
func (m Mapper) SourceRectToCanvas(r image.Rectangle) Rect {
	return Rect{
		Min: m.SourceToDisplay(Point{float64(r.Min.X), float64(r.Min.Y)}),
		Max: m.SourceToDisplay(Point{float64(r.Max.X), float64(r.Max.Y)}),
	}
}
