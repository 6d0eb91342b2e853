package config

import (
	"sort"

	"github.com/artemshloyda/aspectcrop/internal/geometry"
	"github.com/artemshloyda/aspectcrop/internal/transform"
)

// Profile - встроенный набор параметров приведения к разрешению.
type Profile struct {
	Policy      geometry.ResizePolicy
	Align       geometry.AlignMode
	Background  string
	Transparent bool
}

// Profiles содержит все встроенные профили.
var Profiles = map[string]Profile{
	// fill - заполнить кадр, обрезая по центру.
	"fill": {Policy: geometry.Crop, Align: geometry.Center, Background: transform.DefaultBackgroundHex},
	// letterbox - вписать целиком на белом фоне.
	"letterbox": {Policy: geometry.Fit, Align: geometry.Center, Background: transform.DefaultBackgroundHex},
	// transparent - вписать целиком на прозрачном фоне.
	"transparent": {Policy: geometry.Fit, Align: geometry.Center, Background: transform.DefaultBackgroundHex, Transparent: true},
	// portrait-top - заполнить кадр, сохраняя верх (лица на портретах).
	"portrait-top": {Policy: geometry.Crop, Align: geometry.TopCenter, Background: transform.DefaultBackgroundHex},
}

// ApplyProfile применяет профиль к конфигурации.
// Возвращает true, если профиль был применён.
func (c *Config) ApplyProfile(name string) bool {
	p, ok := Profiles[name]
	if !ok {
		return false
	}

	c.Profile = name
	c.Policy = p.Policy.String()
	c.Align = p.Align.String()
	c.Background = p.Background
	c.Transparent = p.Transparent
	return true
}

// ValidProfiles возвращает имена профилей по алфавиту.
func ValidProfiles() []string {
	names := make([]string, 0, len(Profiles))
	for name := range Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
