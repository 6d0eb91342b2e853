// Package codec читает изображения и атомарно записывает результат в PNG.
package codec

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrDecode - файл не удалось прочитать или декодировать.
	ErrDecode = errors.New("ошибка декодирования")

	// ErrEncode - результат не удалось закодировать или записать.
	ErrEncode = errors.New("ошибка кодирования")
)

// OutputExt - расширение всех выходных файлов.
const OutputExt = ".png"

// tempMarker вставляется в имя временного файла до переименования.
const tempMarker = ".converting"

// Decoded - декодированное изображение.
type Decoded struct {
	Image    image.Image
	Width    int
	Height   int
	HasAlpha bool
}

// Size возвращает размер изображения.
func (d *Decoded) Size() image.Point {
	return image.Pt(d.Width, d.Height)
}

// Decode читает изображение с диска.
func Decode(path string) (*Decoded, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}

	b := img.Bounds()
	return &Decoded{
		Image:    img,
		Width:    b.Dx(),
		Height:   b.Dy(),
		HasAlpha: hasAlpha(img),
	}, nil
}

// Probe возвращает размер изображения, читая только заголовок.
func Probe(path string) (image.Point, error) {
	f, err := os.Open(path)
	if err != nil {
		return image.Point{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	defer func() { _ = f.Close() }()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return image.Point{}, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return image.Pt(cfg.Width, cfg.Height), nil
}

// hasAlpha проверяет наличие непрозрачных пикселей.
func hasAlpha(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return !o.Opaque()
	}

	switch m := img.ColorModel().(type) {
	case color.Palette:
		for _, c := range m {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	}

	switch img.ColorModel() {
	case color.NRGBAModel, color.RGBAModel, color.NRGBA64Model, color.RGBA64Model,
		color.AlphaModel, color.Alpha16Model:
		return true
	}
	return false
}

// Encode записывает изображение в PNG.
// Запись атомарная: сначала во временный файл рядом с dstPath, затем переименование.
// При ошибке временный файл удаляется и dstPath не создаётся.
func Encode(img image.Image, dstPath string) error {
	dstDir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("%w: не удалось создать директорию %s: %w", ErrEncode, dstDir, err)
	}

	tmpPath := TempPath(dstPath)
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}

	err = imaging.Encode(f, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: %s: %w", ErrEncode, dstPath, err)
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("%w: не удалось переименовать %s -> %s: %w", ErrEncode, tmpPath, dstPath, err)
	}

	return nil
}

// TempPath возвращает путь временного файла для dstPath.
func TempPath(dstPath string) string {
	ext := filepath.Ext(dstPath)
	return strings.TrimSuffix(dstPath, ext) + tempMarker + ext
}

// IsTemp возвращает true для незавершённых временных файлов.
func IsTemp(path string) bool {
	return strings.Contains(filepath.Base(path), tempMarker)
}

// OutputName возвращает имя выходного файла: исходное имя с расширением .png.
func OutputName(name string) string {
	base := filepath.Base(name)
	return strings.TrimSuffix(base, filepath.Ext(base)) + OutputExt
}

// OutputPath возвращает путь <dir>/<subfolder>/<name>.png.
func OutputPath(dir, subfolder, name string) string {
	return filepath.Join(dir, subfolder, OutputName(name))
}
