package resolution

import (
	"fmt"
	"strconv"
	"strings"
)

// AutoToken - строка выбора автоматического разрешения.
const AutoToken = "AUTO"

// Target описывает выбор целевого разрешения: AUTO, фиксированное WxH
// или нулевое значение (итоговый resize не выполняется).
type Target struct {
	auto bool
	size Resolution
}

// Auto - автоматический подбор разрешения по каталогу.
var Auto = Target{auto: true}

// Fixed возвращает фиксированный Target.
func Fixed(r Resolution) Target {
	return Target{size: r}
}

// Parse разбирает строку "AUTO" или "<width>x<height>".
// Ошибки содержат ErrInvalidDimension и возникают до любой работы с пикселями.
func Parse(s string) (Target, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, AutoToken) {
		return Auto, nil
	}

	w, h, ok := strings.Cut(strings.ToLower(s), "x")
	if !ok {
		return Target{}, fmt.Errorf("%w: ожидается AUTO или WxH, получено %q", ErrInvalidDimension, s)
	}

	width, err := strconv.Atoi(strings.TrimSpace(w))
	if err != nil {
		return Target{}, fmt.Errorf("%w: ширина %q", ErrInvalidDimension, w)
	}
	height, err := strconv.Atoi(strings.TrimSpace(h))
	if err != nil {
		return Target{}, fmt.Errorf("%w: высота %q", ErrInvalidDimension, h)
	}

	r := Resolution{Width: width, Height: height}
	if !r.Valid() {
		return Target{}, fmt.Errorf("%w: %s", ErrInvalidDimension, r)
	}

	return Fixed(r), nil
}

// IsAuto возвращает true для AUTO.
func (t Target) IsAuto() bool {
	return t.auto
}

// IsZero возвращает true, если разрешение не задано.
func (t Target) IsZero() bool {
	return !t.auto && !t.size.Valid()
}

// Size возвращает фиксированное разрешение (нулевое для AUTO).
func (t Target) Size() Resolution {
	return t.size
}

// Resolve возвращает разрешение для изображения заданного размера.
// Для AUTO подбор выполняется заново для каждого размера.
func (t Target) Resolve(width, height int) (Resolution, error) {
	switch {
	case t.auto:
		return Best(width, height)
	case t.size.Valid():
		return t.size, nil
	default:
		return Resolution{}, fmt.Errorf("%w: разрешение не задано", ErrInvalidDimension)
	}
}

// String возвращает строковое представление ("AUTO", "WxH" или "").
func (t Target) String() string {
	switch {
	case t.auto:
		return AutoToken
	case t.size.Valid():
		return t.size.String()
	default:
		return ""
	}
}
