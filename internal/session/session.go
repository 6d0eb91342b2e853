// Package session содержит интерактивный сеанс редактирования одного изображения.
//
// Сеанс владеет исходным буфером, его уменьшенной копией для просмотра,
// текущим преобразованием и состоянием области просмотра. Отображаемое
// изображение всегда строится заново из копии для просмотра.
package session

import (
	"fmt"
	"image"
	"log/slog"
	"math"

	"golang.org/x/image/draw"

	"github.com/artemshloyda/aspectcrop/internal/codec"
	"github.com/artemshloyda/aspectcrop/internal/recipe"
	"github.com/artemshloyda/aspectcrop/internal/transform"
	"github.com/artemshloyda/aspectcrop/internal/viewport"
)

// MaxDisplaySize - максимальная сторона копии для просмотра.
const MaxDisplaySize = 2000

// defaultView - размер области просмотра до первого SetViewport.
var defaultView = viewport.Point{X: 1200, Y: 900}

// Session - сеанс редактирования одного изображения.
type Session struct {
	path string

	// source - декодированное изображение до приведения к цветовой модели.
	source image.Image

	original *image.NRGBA
	preview  *image.NRGBA
	display  *image.NRGBA

	// full - преобразованный исходный буфер, строится по требованию.
	full *image.NRGBA

	state      transform.State
	background transform.Background

	view     viewport.State
	viewSize viewport.Point

	selection *viewport.Selection

	// exact - выделение, заданное в пикселях полного изображения.
	exact *image.Rectangle
}

// Open декодирует файл и создаёт для него сеанс.
func Open(path string, bg transform.Background) (*Session, error) {
	decoded, err := codec.Decode(path)
	if err != nil {
		return nil, err
	}
	s, err := New(decoded.Image, bg)
	if err != nil {
		return nil, err
	}
	s.path = path
	return s, nil
}

// New создаёт сеанс для уже декодированного изображения.
func New(img image.Image, bg transform.Background) (*Session, error) {
	s := &Session{background: bg, viewSize: defaultView}
	if err := s.load(img); err != nil {
		return nil, err
	}
	return s, nil
}

// Load заменяет изображение сеанса. Преобразование и выделение сбрасываются.
func (s *Session) Load(path string) error {
	decoded, err := codec.Decode(path)
	if err != nil {
		return err
	}
	if err := s.load(decoded.Image); err != nil {
		return err
	}
	s.path = path
	return nil
}

func (s *Session) load(img image.Image) error {
	s.source = img
	if err := s.normalize(); err != nil {
		return err
	}
	s.state.Reset()
	s.rerender()

	slog.Debug("session loaded",
		"size", s.original.Bounds().Size(), "preview", s.preview.Bounds().Size())
	return nil
}

// normalize приводит исходное изображение к рабочей цветовой модели.
func (s *Session) normalize() error {
	original, err := transform.Normalize(s.source, s.background.Transparent)
	if err != nil {
		return err
	}
	s.original = original
	s.preview = downscale(original, MaxDisplaySize)
	return nil
}

// downscale уменьшает изображение так, чтобы большая сторона не превышала limit.
func downscale(img *image.NRGBA, limit int) *image.NRGBA {
	size := img.Bounds().Size()
	longest := max(size.X, size.Y)
	if longest <= limit {
		return img
	}

	k := float64(limit) / float64(longest)
	w := max(1, int(math.Round(float64(size.X)*k)))
	h := max(1, int(math.Round(float64(size.Y)*k)))

	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}

// rerender строит отображаемое изображение из копии для просмотра,
// вписывает его в область просмотра и сбрасывает выделение.
func (s *Session) rerender() {
	s.display = transform.Render(s.preview, s.state, s.background)
	s.full = nil
	s.selection = nil
	s.exact = nil
	s.view = viewport.Fit(s.display.Bounds().Size(), s.viewSize)
}

// Path возвращает путь к файлу сеанса (пустой для New).
func (s *Session) Path() string { return s.path }

// Original возвращает исходный буфер полного разрешения.
func (s *Session) Original() *image.NRGBA { return s.original }

// Preview возвращает уменьшенную копию исходного изображения.
func (s *Session) Preview() *image.NRGBA { return s.preview }

// Display возвращает преобразованную копию для просмотра.
func (s *Session) Display() *image.NRGBA { return s.display }

// State возвращает текущее преобразование.
func (s *Session) State() transform.State { return s.state }

// View возвращает текущее состояние области просмотра.
func (s *Session) View() viewport.State { return s.view }

// Background возвращает цвет фона.
func (s *Session) Background() transform.Background { return s.background }

// SetBackground меняет фон и перерисовывает изображение.
func (s *Session) SetBackground(bg transform.Background) error {
	changed := bg.Transparent != s.background.Transparent
	s.background = bg
	if changed {
		if err := s.normalize(); err != nil {
			return err
		}
	}
	s.rerender()
	return nil
}

// RotateCW поворачивает изображение на 90 по часовой стрелке.
func (s *Session) RotateCW() {
	s.state.RotateCW()
	s.rerender()
}

// Flip переключает зеркальное отражение.
func (s *Session) Flip() {
	s.state.Flip()
	s.rerender()
}

// SetFineAngle устанавливает произвольный угол поворота.
func (s *Session) SetFineAngle(angle float64) {
	s.state.SetFine(angle)
	s.rerender()
}

// DragAngle устанавливает угол по перетаскиванию на dx пикселей от угла start.
func (s *Session) DragAngle(start, dx float64) {
	s.SetFineAngle(transform.AngleFromDrag(start, dx))
}

// Reset сбрасывает все преобразования.
func (s *Session) Reset() {
	s.state.Reset()
	s.rerender()
}

// Mapper возвращает отображение координат для текущего состояния.
func (s *Session) Mapper() viewport.Mapper {
	return viewport.Mapper{State: s.view, Image: s.display.Bounds().Size()}
}

// SetViewport задаёт размер области просмотра. Масштаб сохраняется,
// изображение и выделение остаются по центру.
func (s *Session) SetViewport(width, height float64) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("некорректный размер области просмотра: %vx%v", width, height)
	}
	s.viewSize = viewport.Point{X: width, Y: height}
	s.view.Center = s.viewSize.Mul(0.5)
	return nil
}

// FitToViewport вписывает изображение в область просмотра.
func (s *Session) FitToViewport() {
	s.view = viewport.Fit(s.display.Bounds().Size(), s.viewSize)
}

// ZoomIn увеличивает масштаб на шаг.
func (s *Session) ZoomIn() { s.view = s.view.Zoom(viewport.ZoomInFactor) }

// ZoomOut уменьшает масштаб на шаг.
func (s *Session) ZoomOut() { s.view = s.view.Zoom(viewport.ZoomOutFactor) }

// SetSelection запоминает выделение, заданное на холсте.
func (s *Session) SetSelection(r viewport.Rect) {
	sel := viewport.Capture(r, s.view)
	s.selection = &sel
	s.exact = nil
}

// SetSourceSelection задаёт выделение в пикселях преобразованного
// изображения полного разрешения.
func (s *Session) SetSourceSelection(r image.Rectangle) error {
	full := s.rendered()
	r = r.Canon().Intersect(full.Bounds())
	if r.Empty() {
		return fmt.Errorf("выделение %v вне изображения %v", r, full.Bounds().Size())
	}

	sx, sy := s.previewRatio()
	display := image.Rect(
		int(math.Round(float64(r.Min.X)/sx)), int(math.Round(float64(r.Min.Y)/sy)),
		int(math.Round(float64(r.Max.X)/sx)), int(math.Round(float64(r.Max.Y)/sy)),
	)
	sel := viewport.Capture(s.Mapper().SourceRectToCanvas(display), s.view)
	s.selection = &sel
	s.exact = &r
	return nil
}

// ClearSelection снимает выделение.
func (s *Session) ClearSelection() {
	s.selection = nil
	s.exact = nil
}

// CanvasSelection возвращает выделение на холсте для текущего состояния.
func (s *Session) CanvasSelection() (viewport.Rect, bool) {
	if s.selection == nil {
		return viewport.Rect{}, false
	}
	return s.selection.Restore(s.view), true
}

// Selection возвращает выделение в пикселях отображаемого изображения.
func (s *Session) Selection() (image.Rectangle, bool) {
	r, ok := s.CanvasSelection()
	if !ok {
		return image.Rectangle{}, false
	}
	return s.Mapper().CanvasRectToSource(r), true
}

// SourceSelection возвращает выделение в пикселях полного изображения.
// Без выделения возвращает пустой прямоугольник.
func (s *Session) SourceSelection() image.Rectangle {
	if s.exact != nil {
		return *s.exact
	}
	r, ok := s.Selection()
	if !ok || r.Empty() {
		return image.Rectangle{}
	}

	sx, sy := s.previewRatio()
	full := image.Rect(
		int(math.Round(float64(r.Min.X)*sx)), int(math.Round(float64(r.Min.Y)*sy)),
		int(math.Round(float64(r.Max.X)*sx)), int(math.Round(float64(r.Max.Y)*sy)),
	)
	return full.Intersect(s.rendered().Bounds())
}

// rendered возвращает преобразованный буфер полного разрешения.
func (s *Session) rendered() *image.NRGBA {
	if s.full == nil {
		s.full = transform.Render(s.original, s.state, s.background)
	}
	return s.full
}

// previewRatio - отношение размеров полного рендера к отображаемому по осям.
func (s *Session) previewRatio() (float64, float64) {
	full := s.rendered().Bounds().Size()
	disp := s.display.Bounds().Size()
	return float64(full.X) / float64(disp.X), float64(full.Y) / float64(disp.Y)
}

// Export строит результат полного разрешения: выделенная область,
// при ненулевом out.Target приведённая к целевому разрешению.
func (s *Session) Export(out transform.Output) (*image.NRGBA, error) {
	out.Background = s.background
	return transform.Finish(s.rendered(), s.SourceSelection(), out)
}

// Recipe возвращает снимок текущих настроек для пакетной обработки.
func (s *Session) Recipe(out transform.Output) *recipe.Recipe {
	r := &recipe.Recipe{
		Transform:  s.state,
		Target:     out.Target,
		Policy:     out.Policy,
		Align:      out.Align,
		Background: s.background,
	}
	if crop := s.SourceSelection(); !crop.Empty() {
		r.Crop = &crop
		r.Reference = s.rendered().Bounds().Size()
	}
	return r
}
