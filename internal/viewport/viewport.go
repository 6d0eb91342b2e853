// Package viewport отображает координаты холста в пиксели изображения и обратно.
//
// Изображение рисуется с масштабом Scale по центру области просмотра,
// центр изображения совпадает с Center.
package viewport

import (
	"fmt"
	"image"
	"math"
)

const (
	// MinScale и MaxScale ограничивают масштаб просмотра.
	MinScale = 0.05
	MaxScale = 20.0

	// ZoomInFactor и ZoomOutFactor - шаг масштабирования колесом.
	ZoomInFactor  = 1.1
	ZoomOutFactor = 0.9

	// FitMargin - отступ от краёв при начальном вписывании.
	FitMargin = 50.0
)

// Point - точка на холсте.
type Point struct {
	X, Y float64
}

// Add возвращает сумму точек.
func (p Point) Add(q Point) Point {
	return Point{p.X + q.X, p.Y + q.Y}
}

// Sub возвращает разность точек.
func (p Point) Sub(q Point) Point {
	return Point{p.X - q.X, p.Y - q.Y}
}

// Mul умножает точку на скаляр.
func (p Point) Mul(k float64) Point {
	return Point{p.X * k, p.Y * k}
}

// Rect - прямоугольник на холсте.
type Rect struct {
	Min, Max Point
}

// Canon возвращает прямоугольник с упорядоченными углами.
func (r Rect) Canon() Rect {
	return Rect{
		Min: Point{math.Min(r.Min.X, r.Max.X), math.Min(r.Min.Y, r.Max.Y)},
		Max: Point{math.Max(r.Min.X, r.Max.X), math.Max(r.Min.Y, r.Max.Y)},
	}
}

// State - масштаб и центр области просмотра.
type State struct {
	Scale  float64
	Center Point
}

// Validate проверяет, что масштаб положителен и конечен.
func (s State) Validate() error {
	if !(s.Scale > 0) || math.IsInf(s.Scale, 0) {
		return fmt.Errorf("некорректный масштаб: %v", s.Scale)
	}
	return nil
}

// Zoom возвращает состояние с масштабом, умноженным на factor и ограниченным [MinScale, MaxScale].
func (s State) Zoom(factor float64) State {
	s.Scale = math.Max(MinScale, math.Min(MaxScale, s.Scale*factor))
	return s
}

// FitScale вычисляет масштаб, при котором изображение помещается в область с отступом margin.
func FitScale(img image.Point, view Point, margin float64) float64 {
	if img.X <= 0 || img.Y <= 0 {
		return 1
	}
	s := math.Min((view.X-margin)/float64(img.X), (view.Y-margin)/float64(img.Y))
	return math.Max(MinScale, math.Min(MaxScale, s))
}

// Fit возвращает состояние, вписывающее изображение в область просмотра размера view.
func Fit(img image.Point, view Point) State {
	return State{
		Scale:  FitScale(img, view, FitMargin),
		Center: view.Mul(0.5),
	}
}
