package cache

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/artemshloyda/aspectcrop/internal/storage"
)

func TestCache_PutGet(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "cache"), true)
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	img := image.NewNRGBA(image.Rect(0, 0, 5, 3))
	img.SetNRGBA(4, 2, color.NRGBA{1, 2, 3, 4})

	key := c.Key(storage.FileInfo{Path: "/a.png", Size: 1, Mtime: 2}, "r90")
	_, ok := c.Get(key)
	require.False(t, ok)

	require.NoError(t, c.Put(key, img))
	got, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, img.Bounds(), got.Bounds())
	require.Equal(t, img.Pix, got.Pix)

	size, err := c.Size()
	require.NoError(t, err)
	require.Greater(t, size, int64(0))

	require.NoError(t, c.Clear())
	_, ok = c.Get(key)
	require.False(t, ok)
}

func TestCache_SubImage(t *testing.T) {
	c, err := New(t.TempDir(), true)
	require.NoError(t, err)

	full := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	full.SetNRGBA(3, 3, color.NRGBA{9, 9, 9, 9})
	sub := full.SubImage(image.Rect(3, 3, 6, 5)).(*image.NRGBA)

	require.NoError(t, c.Put("k", sub))
	got, ok := c.Get("k")
	require.True(t, ok)
	require.Equal(t, image.Rect(0, 0, 3, 2), got.Bounds())
	require.Equal(t, color.NRGBA{9, 9, 9, 9}, got.NRGBAAt(0, 0))
}

func TestCache_KeyDependsOnVersion(t *testing.T) {
	c := &Cache{}
	a := c.Key(storage.FileInfo{Path: "/a", Size: 1, Mtime: 1}, "t")
	require.NotEqual(t, a, c.Key(storage.FileInfo{Path: "/a", Size: 1, Mtime: 2}, "t"))
	require.NotEqual(t, a, c.Key(storage.FileInfo{Path: "/a", Size: 1, Mtime: 1}, "u"))
	require.Len(t, a, 32)
}

func TestCache_CorruptEntry(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, true)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad"+entryExt), []byte("garbage"), 0644))
	_, ok := c.Get("bad")
	require.False(t, ok)
}

func TestCache_Disabled(t *testing.T) {
	c, err := New("", false)
	require.NoError(t, err)
	require.False(t, c.IsEnabled())
	require.NoError(t, c.Put("k", image.NewNRGBA(image.Rect(0, 0, 1, 1))))
	_, ok := c.Get("k")
	require.False(t, ok)
	require.NoError(t, c.Close())

	var nilCache *Cache
	require.False(t, nilCache.IsEnabled())
}
