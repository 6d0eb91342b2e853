package geometry

import (
	"fmt"
	"strings"
)

// ResizePolicy определяет способ приведения к целевому разрешению.
type ResizePolicy int

const (
	// Crop - заполнить целевой размер, лишнее обрезать по AlignMode.
	Crop ResizePolicy = iota
	// Fit - вписать целиком, остаток залить фоном или прозрачностью.
	Fit
)

// String возвращает "crop" или "fit".
func (p ResizePolicy) String() string {
	switch p {
	case Crop:
		return "crop"
	case Fit:
		return "fit"
	default:
		return fmt.Sprintf("ResizePolicy(%d)", int(p))
	}
}

// ParsePolicy разбирает имя политики без учёта регистра.
func ParsePolicy(s string) (ResizePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "crop", "fill":
		return Crop, nil
	case "fit", "contain", "letterbox":
		return Fit, nil
	default:
		return Crop, fmt.Errorf("неизвестная политика: %q (доступны: crop, fit)", s)
	}
}
