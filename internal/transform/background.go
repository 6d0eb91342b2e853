package transform

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultBackgroundHex - цвет фона по умолчанию.
const DefaultBackgroundHex = "#FFFFFF"

// Background - заливка открывшихся областей при повороте и вписывании.
type Background struct {
	Color       color.NRGBA
	Transparent bool
}

// DefaultBackground возвращает белый непрозрачный фон.
func DefaultBackground() Background {
	return Background{Color: color.NRGBA{R: 255, G: 255, B: 255, A: 255}}
}

// Fill возвращает фактический цвет заливки.
func (b Background) Fill() color.NRGBA {
	if b.Transparent {
		return color.NRGBA{}
	}
	c := b.Color
	c.A = 255
	return c
}

// Hex возвращает цвет фона в формате "#rrggbb".
func (b Background) Hex() string {
	c := colorful.Color{
		R: float64(b.Color.R) / 255,
		G: float64(b.Color.G) / 255,
		B: float64(b.Color.B) / 255,
	}
	return c.Hex()
}

// ParseBackground разбирает цвет "#RRGGBB" или "#RGB" (символ # необязателен).
func ParseBackground(hex string, transparent bool) (Background, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		hex = DefaultBackgroundHex
	}
	if !strings.HasPrefix(hex, "#") {
		hex = "#" + hex
	}

	c, err := colorful.Hex(hex)
	if err != nil {
		return Background{}, fmt.Errorf("некорректный цвет фона %q: %w", hex, err)
	}

	r, g, b := c.RGB255()
	return Background{
		Color:       color.NRGBA{R: r, G: g, B: b, A: 255},
		Transparent: transparent,
	}, nil
}
