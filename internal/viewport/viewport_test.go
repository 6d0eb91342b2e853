package viewport

import (
	"image"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapper_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for i := 0; i < 5000; i++ {
		m := Mapper{
			State: State{
				Scale:  MinScale + rng.Float64()*(MaxScale-MinScale),
				Center: Point{rng.Float64()*4000 - 1000, rng.Float64()*4000 - 1000},
			},
			Image: image.Pt(rng.IntN(6000)+1, rng.IntN(6000)+1),
		}
		p := Point{rng.Float64()*10000 - 5000, rng.Float64()*10000 - 5000}

		got := m.SourceToDisplay(m.DisplayToSource(p))
		require.InDelta(t, p.X, got.X, 1, "state=%+v", m.State)
		require.InDelta(t, p.Y, got.Y, 1, "state=%+v", m.State)

		back := m.DisplayToSource(m.SourceToDisplay(p))
		require.InDelta(t, p.X, back.X, 1)
		require.InDelta(t, p.Y, back.Y, 1)
	}
}

func TestMapper_Origin(t *testing.T) {
	m := Mapper{State: State{Scale: 0.5, Center: Point{500, 400}}, Image: image.Pt(1000, 600)}
	require.Equal(t, Point{250, 250}, m.Origin())
	require.Equal(t, Point{0, 0}, m.DisplayToSource(Point{250, 250}))
	require.Equal(t, Point{1000, 600}, m.DisplayToSource(Point{750, 550}))
}

func TestMapper_CanvasRectToSource(t *testing.T) {
	m := Mapper{State: State{Scale: 2, Center: Point{100, 100}}, Image: image.Pt(100, 100)}
	// origin = (0,0)

	got := m.CanvasRectToSource(Rect{Min: Point{21, 41}, Max: Point{60.6, 80.4}})
	require.Equal(t, image.Rect(10, 20, 30, 40), got)

	// перевёрнутые углы
	got = m.CanvasRectToSource(Rect{Min: Point{60, 80}, Max: Point{20, 40}})
	require.Equal(t, image.Rect(10, 20, 30, 40), got)

	// выход за границы обрезается
	got = m.CanvasRectToSource(Rect{Min: Point{-50, -50}, Max: Point{500, 500}})
	require.Equal(t, image.Rect(0, 0, 100, 100), got)
}

func TestMapper_SourceRectRoundTrip(t *testing.T) {
	m := Mapper{State: State{Scale: 0.5, Center: Point{640, 360}}, Image: image.Pt(1800, 1200)}
	r := image.Rect(100, 200, 900, 1000)
	require.Equal(t, r, m.CanvasRectToSource(m.SourceRectToCanvas(r)))
}

func TestSelection_SurvivesRecentering(t *testing.T) {
	s1 := State{Scale: 0.5, Center: Point{400, 300}}
	img := image.Pt(800, 600)
	canvas := Rect{Min: Point{300, 250}, Max: Point{500, 350}}

	src1 := Mapper{State: s1, Image: img}.CanvasRectToSource(canvas)
	sel := Capture(canvas, s1)

	s2 := State{Scale: 0.5, Center: Point{900, 700}}
	restored := sel.Restore(s2)
	src2 := Mapper{State: s2, Image: img}.CanvasRectToSource(restored)
	require.Equal(t, src1, src2)

	s3 := s2.Zoom(2)
	src3 := Mapper{State: s3, Image: img}.CanvasRectToSource(sel.Restore(s3))
	require.Equal(t, src1, src3)
}

func TestState_Zoom(t *testing.T) {
	s := State{Scale: 1}
	require.InDelta(t, 1.1, s.Zoom(ZoomInFactor).Scale, 1e-9)
	require.InDelta(t, 0.9, s.Zoom(ZoomOutFactor).Scale, 1e-9)
	require.Equal(t, MaxScale, State{Scale: 19}.Zoom(2).Scale)
	require.Equal(t, MinScale, State{Scale: 0.06}.Zoom(0.1).Scale)
	require.Error(t, State{}.Validate())
	require.Error(t, State{Scale: math.Inf(1)}.Validate())
	require.NoError(t, s.Validate())
}

func TestFit(t *testing.T) {
	s := Fit(image.Pt(2000, 1000), Point{1050, 850})
	require.InDelta(t, 0.5, s.Scale, 1e-9)
	require.Equal(t, Point{525, 425}, s.Center)
	require.Equal(t, 1.0, FitScale(image.Pt(0, 10), Point{100, 100}, FitMargin))
}
