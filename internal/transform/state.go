// Package transform применяет к изображению отражение, поворот и кадрирование.
//
// Результат всегда строится заново из исходного буфера функцией Render,
// поэтому повторные изменения не накапливают ошибку передискретизации.
package transform

import (
	"fmt"
	"math"
)

// DragSensitivity - градусов поворота на пиксель перетаскивания.
const DragSensitivity = 0.3

// State - текущее преобразование изображения.
type State struct {
	// Coarse - поворот по часовой стрелке кратно 90: 0, 90, 180 или 270.
	Coarse int `yaml:"rotation"`

	// Fine - произвольный поворот против часовой стрелки в [0, 360).
	Fine float64 `yaml:"angle"`

	// Flipped - зеркальное отражение по горизонтали.
	Flipped bool `yaml:"flip"`
}

// RotateCW поворачивает на 90 по часовой стрелке.
func (s *State) RotateCW() {
	s.Coarse = (s.Coarse + 90) % 360
}

// Flip переключает отражение.
func (s *State) Flip() {
	s.Flipped = !s.Flipped
}

// SetFine устанавливает произвольный угол, приводя его к [0, 360).
func (s *State) SetFine(angle float64) {
	s.Fine = NormalizeAngle(angle)
}

// Reset сбрасывает состояние в тождественное.
func (s *State) Reset() {
	*s = State{}
}

// IsIdentity возвращает true, если преобразование ничего не меняет.
func (s State) IsIdentity() bool {
	return s.Coarse == 0 && s.Fine == 0 && !s.Flipped
}

// Validate проверяет допустимость значений.
func (s State) Validate() error {
	switch s.Coarse {
	case 0, 90, 180, 270:
	default:
		return fmt.Errorf("поворот должен быть кратен 90: %d", s.Coarse)
	}
	if math.IsNaN(s.Fine) || math.IsInf(s.Fine, 0) {
		return fmt.Errorf("некорректный угол: %v", s.Fine)
	}
	return nil
}

// Key возвращает стабильное строковое представление для ключей кэша.
func (s State) Key() string {
	return fmt.Sprintf("r%d-a%.4f-f%t", s.Coarse, s.Fine, s.Flipped)
}

// NormalizeAngle приводит угол к [0, 360), поддерживая отрицательные и большие значения.
func NormalizeAngle(angle float64) float64 {
	a := math.Mod(angle, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// NormalizeCoarse приводит поворот в градусах к 0, 90, 180 или 270.
func NormalizeCoarse(deg int) (int, error) {
	d := ((deg % 360) + 360) % 360
	if d%90 != 0 {
		return 0, fmt.Errorf("поворот должен быть кратен 90: %d", deg)
	}
	return d, nil
}

// AngleFromDrag возвращает угол после перетаскивания на dx пикселей от угла start.
func AngleFromDrag(start, dx float64) float64 {
	return NormalizeAngle(start + dx*DragSensitivity)
}
