package session

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/artemshloyda/aspectcrop/internal/codec"
	"github.com/artemshloyda/aspectcrop/internal/geometry"
	"github.com/artemshloyda/aspectcrop/internal/resolution"
	"github.com/artemshloyda/aspectcrop/internal/transform"
	"github.com/artemshloyda/aspectcrop/internal/viewport"
)

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x), uint8(y), uint8(x + y), 255})
		}
	}
	return img
}

func newSession(t *testing.T, w, h int) *Session {
	t.Helper()
	s, err := New(gradient(w, h), transform.DefaultBackground())
	require.NoError(t, err)
	return s
}

func TestNew_PreviewDownscaled(t *testing.T) {
	s := newSession(t, 4000, 1000)
	require.Equal(t, image.Pt(4000, 1000), s.Original().Bounds().Size())
	require.Equal(t, image.Pt(2000, 500), s.Preview().Bounds().Size())
	require.Equal(t, image.Pt(2000, 500), s.Display().Bounds().Size())

	small := newSession(t, 30, 20)
	require.Equal(t, image.Pt(30, 20), small.Preview().Bounds().Size())
	require.True(t, small.State().IsIdentity())
}

func TestSession_RenderFromOriginal(t *testing.T) {
	s := newSession(t, 30, 20)
	before := append([]uint8(nil), s.Display().Pix...)

	s.RotateCW()
	require.Equal(t, 90, s.State().Coarse)
	require.Equal(t, image.Pt(20, 30), s.Display().Bounds().Size())

	s.Flip()
	s.SetFineAngle(-30)
	require.InDelta(t, 330, s.State().Fine, 1e-9)

	s.Reset()
	require.True(t, s.State().IsIdentity())
	require.Equal(t, before, s.Display().Pix)
	require.Equal(t, gradient(30, 20).Pix, s.Original().Pix)
}

func TestSession_FlipTwice(t *testing.T) {
	s := newSession(t, 17, 9)
	before := append([]uint8(nil), s.Display().Pix...)
	s.Flip()
	require.NotEqual(t, before, s.Display().Pix)
	s.Flip()
	require.Equal(t, before, s.Display().Pix)
}

func TestSession_DragAngle(t *testing.T) {
	s := newSession(t, 10, 10)
	s.DragAngle(350, 100)
	require.InDelta(t, 20, s.State().Fine, 1e-9)
}

func TestSession_FitAndZoom(t *testing.T) {
	s := newSession(t, 100, 50)
	require.NoError(t, s.SetViewport(250, 150))
	s.FitToViewport()
	require.Equal(t, 2.0, s.View().Scale)
	require.Equal(t, viewport.Point{X: 125, Y: 75}, s.View().Center)

	s.ZoomIn()
	require.InDelta(t, 2.2, s.View().Scale, 1e-9)
	for i := 0; i < 100; i++ {
		s.ZoomIn()
	}
	require.Equal(t, viewport.MaxScale, s.View().Scale)
	for i := 0; i < 200; i++ {
		s.ZoomOut()
	}
	require.Equal(t, viewport.MinScale, s.View().Scale)

	require.Error(t, s.SetViewport(0, 10))
}

func TestSession_SelectionSurvivesViewportResize(t *testing.T) {
	s := newSession(t, 100, 50)
	require.NoError(t, s.SetViewport(250, 150))
	s.FitToViewport()

	s.SetSelection(viewport.Rect{Min: viewport.Point{X: 125, Y: 75}, Max: viewport.Point{X: 45, Y: 35}})
	r, ok := s.Selection()
	require.True(t, ok)
	require.Equal(t, image.Rect(10, 5, 50, 25), r)

	require.NoError(t, s.SetViewport(400, 300))
	r, ok = s.Selection()
	require.True(t, ok)
	require.Equal(t, image.Rect(10, 5, 50, 25), r)

	// преобразование сбрасывает выделение
	s.RotateCW()
	_, ok = s.Selection()
	require.False(t, ok)
}

func TestSession_ExportMapsPreviewToFullResolution(t *testing.T) {
	s := newSession(t, 2400, 1200)
	require.NoError(t, s.SetViewport(2050, 1050))
	s.FitToViewport()
	require.Equal(t, 1.0, s.View().Scale)

	s.SetSelection(viewport.Rect{Min: viewport.Point{X: 125, Y: 75}, Max: viewport.Point{X: 1125, Y: 575}})
	require.Equal(t, image.Rect(120, 60, 1320, 660), s.SourceSelection())

	img, err := s.Export(transform.Output{})
	require.NoError(t, err)
	require.Equal(t, image.Pt(1200, 600), img.Bounds().Size())
	require.Equal(t, s.Original().NRGBAAt(120, 60), img.NRGBAAt(0, 0))

	forced, err := s.Export(transform.Output{
		Target: resolution.Fixed(resolution.Resolution{Width: 600, Height: 600}),
		Policy: geometry.Fit,
	})
	require.NoError(t, err)
	require.Equal(t, image.Pt(600, 600), forced.Bounds().Size())
}

func TestSession_SourceSelectionAndRecipe(t *testing.T) {
	s := newSession(t, 2400, 1200)
	require.Error(t, s.SetSourceSelection(image.Rect(3000, 0, 3100, 10)))

	require.NoError(t, s.SetSourceSelection(image.Rect(1320, 660, 120, 60)))
	require.Equal(t, image.Rect(120, 60, 1320, 660), s.SourceSelection())
	_, ok := s.Selection()
	require.True(t, ok)

	out := transform.Output{Target: resolution.Auto, Policy: geometry.Crop, Align: geometry.Center}
	img, err := s.Export(out)
	require.NoError(t, err)
	// 1200x600 (2.0) ближе всего к 1344x768
	require.Equal(t, image.Pt(1344, 768), img.Bounds().Size())

	r := s.Recipe(out)
	require.NoError(t, r.Validate())
	require.NotNil(t, r.Crop)
	require.Equal(t, image.Rect(120, 60, 1320, 660), *r.Crop)
	require.Equal(t, image.Pt(2400, 1200), r.Reference)
	require.True(t, r.Target.IsAuto())

	s.ClearSelection()
	require.Nil(t, s.Recipe(out).Crop)
}

func TestSession_TransparentBackground(t *testing.T) {
	img := gradient(8, 8)
	img.SetNRGBA(0, 0, color.NRGBA{10, 20, 30, 0})

	s, err := New(img, transform.DefaultBackground())
	require.NoError(t, err)
	require.Equal(t, uint8(255), s.Display().NRGBAAt(0, 0).A)

	require.NoError(t, s.SetBackground(transform.Background{Transparent: true}))
	require.Equal(t, uint8(0), s.Display().NRGBAAt(0, 0).A)
}

func TestUniqueSavePath(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "photo.jpg")

	p, err := UniqueSavePath(src)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "photo_cropped.png"), p)

	require.NoError(t, os.WriteFile(p, nil, 0644))
	p, err = UniqueSavePath(src)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "photo_cropped_001.png"), p)

	require.NoError(t, os.WriteFile(p, nil, 0644))
	p, err = UniqueSavePath(src)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "photo_cropped_002.png"), p)
}

func TestOpenAndSave(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	require.NoError(t, codec.Encode(gradient(40, 30), src))

	s, err := Open(src, transform.DefaultBackground())
	require.NoError(t, err)
	require.Equal(t, src, s.Path())
	require.NoError(t, s.SetSourceSelection(image.Rect(0, 0, 20, 10)))

	first, err := s.Save(transform.Output{})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "in_cropped.png"), first)

	size, err := codec.Probe(first)
	require.NoError(t, err)
	require.Equal(t, image.Pt(20, 10), size)

	second, err := s.Save(transform.Output{})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "in_cropped_001.png"), second)

	_, err = Open(filepath.Join(dir, "missing.png"), transform.DefaultBackground())
	require.ErrorIs(t, err, codec.ErrDecode)

	unsaved := newSession(t, 5, 5)
	_, err = unsaved.Save(transform.Output{})
	require.Error(t, err)
}

func TestSession_Load(t *testing.T) {
	dir := t.TempDir()
	next := filepath.Join(dir, "next.png")
	require.NoError(t, codec.Encode(gradient(12, 6), next))

	s := newSession(t, 30, 20)
	s.RotateCW()
	require.NoError(t, s.Load(next))
	require.True(t, s.State().IsIdentity())
	require.Equal(t, image.Pt(12, 6), s.Display().Bounds().Size())
	require.Equal(t, next, s.Path())
}
