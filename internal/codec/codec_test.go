package codec

import (
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeJPEG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, jpeg.Encode(f, img, nil))
	require.NoError(t, f.Close())
}

func TestEncodeDecode(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 6, 4))
	img.SetNRGBA(1, 1, color.NRGBA{255, 0, 0, 128})

	dst := filepath.Join(dir, "out", "a.png")
	require.NoError(t, Encode(img, dst))

	entries, err := os.ReadDir(filepath.Dir(dst))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.False(t, IsTemp(entries[0].Name()))

	d, err := Decode(dst)
	require.NoError(t, err)
	require.Equal(t, 6, d.Width)
	require.Equal(t, 4, d.Height)
	require.True(t, d.HasAlpha)
	require.Equal(t, image.Pt(6, 4), d.Size())

	size, err := Probe(dst)
	require.NoError(t, err)
	require.Equal(t, image.Pt(6, 4), size)
}

func TestDecode_OpaqueJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.jpg")
	writeJPEG(t, path, 10, 5)

	d, err := Decode(path)
	require.NoError(t, err)
	require.False(t, d.HasAlpha)
	require.Equal(t, image.Pt(10, 5), d.Size())
}

func TestDecode_PalettedAlpha(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.gif")
	pal := color.Palette{color.NRGBA{0, 0, 0, 0}, color.NRGBA{255, 255, 255, 255}}
	img := image.NewPaletted(image.Rect(0, 0, 4, 4), pal)
	img.SetColorIndex(1, 1, 1)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, gif.Encode(f, img, nil))
	require.NoError(t, f.Close())

	d, err := Decode(path)
	require.NoError(t, err)
	require.True(t, d.HasAlpha)
}

func TestDecode_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Decode(filepath.Join(dir, "missing.png"))
	require.ErrorIs(t, err, ErrDecode)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0644))
	_, err = Decode(bad)
	require.ErrorIs(t, err, ErrDecode)

	_, err = Probe(bad)
	require.ErrorIs(t, err, ErrDecode)
}

func TestEncode_FailureLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	// на месте директории назначения лежит файл
	blocker := filepath.Join(dir, "out")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	err := Encode(image.NewNRGBA(image.Rect(0, 0, 1, 1)), filepath.Join(blocker, "a.png"))
	require.ErrorIs(t, err, ErrEncode)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestPaths(t *testing.T) {
	require.Equal(t, "photo.png", OutputName("photo.JPG"))
	require.Equal(t, "archive.tar.png", OutputName("/x/archive.tar.gz"))
	require.Equal(t, filepath.Join("in", "resize", "a.png"), OutputPath("in", "resize", "a.webp"))
	require.Equal(t, filepath.Join("d", "a.converting.png"), TempPath(filepath.Join("d", "a.png")))
	require.True(t, IsTemp("a.converting.png"))
	require.False(t, IsTemp("a.png"))
}
