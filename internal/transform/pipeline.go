package transform

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/artemshloyda/aspectcrop/internal/geometry"
	"github.com/artemshloyda/aspectcrop/internal/resolution"
)

// ErrUnsupportedPixelFormat возвращается, если изображение нельзя привести к RGB/RGBA.
var ErrUnsupportedPixelFormat = errors.New("неподдерживаемый формат пикселей")

// Normalize приводит изображение к рабочему NRGBA буферу.
// Без прозрачности альфа-канал отбрасывается (все пиксели непрозрачны).
func Normalize(img image.Image, transparent bool) (*image.NRGBA, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: пустое изображение", ErrUnsupportedPixelFormat)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: нулевой размер %v", ErrUnsupportedPixelFormat, img.Bounds())
	}

	dst := imaging.Clone(img)
	if !transparent {
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 0xff
		}
	}
	return dst, nil
}

// FlipHorizontal отражает столбцы изображения.
func FlipHorizontal(img image.Image) *image.NRGBA {
	return imaging.FlipH(img)
}

// Rotate90CW поворачивает изображение на 90 по часовой стрелке.
func Rotate90CW(img image.Image) *image.NRGBA {
	return imaging.Rotate270(img)
}

// RotateCoarse поворачивает по часовой стрелке на deg (0, 90, 180, 270).
func RotateCoarse(img image.Image, deg int) *image.NRGBA {
	switch deg {
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		return imaging.Clone(img)
	}
}

// RotateFine поворачивает против часовой стрелки на произвольный угол вокруг центра.
// Холст расширяется до охвата результата, открывшиеся области заливаются фоном.
func RotateFine(img image.Image, angle float64, bg Background) *image.NRGBA {
	a := NormalizeAngle(angle)
	if a == 0 {
		return imaging.Clone(img)
	}
	return imaging.Rotate(img, a, bg.Fill())
}

// Crop масштабирует изображение до g.Scaled и вырезает g.Rect.
func Crop(img image.Image, g geometry.CropGeometry) *image.NRGBA {
	scaled := resize(img, g.Scaled)
	return imaging.Crop(scaled, g.Rect)
}

// Fit вписывает изображение в холст target, залитый фоном.
func Fit(img image.Image, target image.Point, bg Background) *image.NRGBA {
	g := geometry.FitBox(img.Bounds().Size(), target)
	scaled := resize(img, g.Scaled)
	canvas := imaging.New(target.X, target.Y, bg.Fill())
	return imaging.Paste(canvas, scaled, g.Offset)
}

// resize масштабирует фильтром Lanczos, пропуская совпадающий размер.
func resize(img image.Image, size image.Point) *image.NRGBA {
	if img.Bounds().Size() == size {
		return imaging.Clone(img)
	}
	return imaging.Resize(img, size.X, size.Y, imaging.Lanczos)
}

// Render строит изображение из исходного буфера в фиксированном порядке:
// отражение, поворот кратно 90, произвольный поворот.
// Исходный буфер не изменяется.
func Render(original image.Image, st State, bg Background) *image.NRGBA {
	var img image.Image = original
	if st.Flipped {
		img = FlipHorizontal(img)
	}
	if st.Coarse != 0 {
		img = RotateCoarse(img, st.Coarse)
	}
	if NormalizeAngle(st.Fine) != 0 {
		img = RotateFine(img, st.Fine, bg)
	}
	if out, ok := img.(*image.NRGBA); ok && img != original {
		return out
	}
	return imaging.Clone(img)
}

// Output описывает последний шаг: приведение к целевому разрешению.
type Output struct {
	Target     resolution.Target
	Policy     geometry.ResizePolicy
	Align      geometry.AlignMode
	Background Background
}

// Finish вырезает область rect из уже преобразованного изображения и
// приводит результат к целевому разрешению. Пустой rect означает всё изображение.
// Для AUTO разрешение подбирается по размеру вырезанной области.
func Finish(rendered *image.NRGBA, rect image.Rectangle, out Output) (*image.NRGBA, error) {
	bounds := rendered.Bounds()
	img := rendered
	if !rect.Empty() {
		r := rect.Add(bounds.Min).Intersect(bounds)
		if r.Empty() {
			return nil, fmt.Errorf("%w: область %v вне изображения %v",
				resolution.ErrInvalidDimension, rect, bounds.Size())
		}
		if r != bounds {
			img = imaging.Crop(rendered, r)
		}
	}

	if out.Target.IsZero() {
		return img, nil
	}

	size := img.Bounds().Size()
	target, err := out.Target.Resolve(size.X, size.Y)
	if err != nil {
		return nil, err
	}
	tp := image.Pt(target.Width, target.Height)

	switch out.Policy {
	case geometry.Fit:
		return Fit(img, tp, out.Background), nil
	default:
		return Crop(img, geometry.CropBox(size, tp, out.Align)), nil
	}
}

// Apply выполняет весь конвейер над исходным изображением.
func Apply(original image.Image, st State, rect image.Rectangle, out Output) (*image.NRGBA, error) {
	src, err := Normalize(original, out.Background.Transparent)
	if err != nil {
		return nil, err
	}
	return Finish(Render(src, st, out.Background), rect, out)
}
