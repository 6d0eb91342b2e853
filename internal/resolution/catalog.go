// Package resolution содержит каталог целевых разрешений и подбор ближайшего из них.
package resolution

import "fmt"

// Resolution - целевое разрешение в пикселях.
type Resolution struct {
	Width  int
	Height int
}

// Valid возвращает true, если обе стороны положительны.
func (r Resolution) Valid() bool {
	return r.Width > 0 && r.Height > 0
}

// Ratio возвращает соотношение сторон width/height.
func (r Resolution) Ratio() float64 {
	return float64(r.Width) / float64(r.Height)
}

// String возвращает разрешение в формате "WxH".
func (r Resolution) String() string {
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Bucket - именованная группа разрешений с одинаковым соотношением сторон.
// Содержит одно квадратное разрешение или пару landscape/portrait.
type Bucket struct {
	// Name - имя группы (например "832/1216").
	Name string

	// Variants - разрешения группы, landscape первым.
	Variants []Resolution
}

// catalog общий для интерактивного и пакетного режимов.
// Порядок важен: при равных отклонениях побеждает первое разрешение.
var catalog = []Bucket{
	{Name: "1024:1024", Variants: []Resolution{{1024, 1024}}},
	{Name: "832/1216", Variants: []Resolution{{1216, 832}, {832, 1216}}},
	{Name: "768/1344", Variants: []Resolution{{1344, 768}, {768, 1344}}},
	{Name: "896/1152", Variants: []Resolution{{1152, 896}, {896, 1152}}},
}

// Catalog возвращает копию каталога разрешений.
func Catalog() []Bucket {
	out := make([]Bucket, len(catalog))
	for i, b := range catalog {
		out[i] = Bucket{Name: b.Name, Variants: append([]Resolution(nil), b.Variants...)}
	}
	return out
}

// All возвращает все разрешения каталога в порядке обхода.
func All() []Resolution {
	var out []Resolution
	for _, b := range catalog {
		out = append(out, b.Variants...)
	}
	return out
}

// ForOrientation возвращает разрешение по умолчанию для ориентации изображения:
// квадрат 1024x1024, landscape 1216x832, portrait 832x1216.
func ForOrientation(width, height int) Resolution {
	switch {
	case width == height:
		return catalog[0].Variants[0]
	case width > height:
		return catalog[1].Variants[0]
	default:
		return catalog[1].Variants[1]
	}
}
