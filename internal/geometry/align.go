// Package geometry вычисляет области кадрирования и вписывания для целевого разрешения.
package geometry

import (
	"fmt"
	"strings"
)

// AlignMode определяет, какая часть увеличенного изображения остаётся после кадрирования.
// Значения образуют сетку 3x3: {верх, центр, низ} x {лево, центр, право}.
type AlignMode int

const (
	TopLeft AlignMode = iota
	TopCenter
	TopRight
	CenterLeft
	Center
	CenterRight
	BottomLeft
	BottomCenter
	BottomRight
)

var alignNames = [...]string{
	TopLeft:      "top-left",
	TopCenter:    "top-center",
	TopRight:     "top-right",
	CenterLeft:   "center-left",
	Center:       "center",
	CenterRight:  "center-right",
	BottomLeft:   "bottom-left",
	BottomCenter: "bottom-center",
	BottomRight:  "bottom-right",
}

// AlignModes возвращает все режимы выравнивания по порядку.
func AlignModes() []AlignMode {
	out := make([]AlignMode, len(alignNames))
	for i := range alignNames {
		out[i] = AlignMode(i)
	}
	return out
}

// Valid возвращает true для одного из девяти режимов.
func (a AlignMode) Valid() bool {
	return a >= TopLeft && a <= BottomRight
}

// String возвращает имя режима ("top-left", "center", ...).
func (a AlignMode) String() string {
	if !a.Valid() {
		return fmt.Sprintf("AlignMode(%d)", int(a))
	}
	return alignNames[a]
}

// ParseAlign разбирает имя режима выравнивания.
// Принимает "top-left", "TOP_LEFT", "top left", а также "center-center".
func ParseAlign(s string) (AlignMode, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", "-", " ", "-").Replace(norm)
	if norm == "center-center" || norm == "middle" {
		return Center, nil
	}
	for i, name := range alignNames {
		if name == norm {
			return AlignMode(i), nil
		}
	}
	return Center, fmt.Errorf("неизвестный режим выравнивания: %q (доступны: %s)", s, strings.Join(alignNames[:], ", "))
}

// anchor - положение по одной оси.
type anchor int

const (
	anchorStart anchor = iota
	anchorMiddle
	anchorEnd
)

// vertical возвращает якорь по оси Y (строка сетки).
func (a AlignMode) vertical() anchor {
	return anchor(int(a) / 3)
}

// horizontal возвращает якорь по оси X (столбец сетки).
func (a AlignMode) horizontal() anchor {
	return anchor(int(a) % 3)
}

// offset возвращает смещение отрезка target внутри отрезка scaled.
func (an anchor) offset(scaled, target int) int {
	switch an {
	case anchorStart:
		return 0
	case anchorEnd:
		return scaled - target
	default:
		return (scaled - target) / 2
	}
}
