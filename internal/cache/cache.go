// Package cache хранит преобразованные (до кадрирования) буферы изображений,
// сжатые zstd, чтобы повторные запуски не декодировали и не поворачивали файлы заново.
package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strconv"

	"github.com/klauspost/compress/zstd"

	"github.com/artemshloyda/aspectcrop/internal/storage"
)

// entryExt - расширение файлов кэша.
const entryExt = ".nrgba.zst"

// headerSize - ширина и высота (uint32 big-endian).
const headerSize = 8

// Cache управляет кэшем буферов на диске.
type Cache struct {
	dir     string
	enabled bool
	enc     *zstd.Encoder
	dec     *zstd.Decoder
}

// New создаёт Cache в директории dir. При enabled=false все операции пустые.
func New(dir string, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию кэша: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("не удалось создать zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("не удалось создать zstd decoder: %w", err)
	}

	return &Cache{dir: dir, enabled: true, enc: enc, dec: dec}, nil
}

// IsEnabled возвращает true если кэш включён.
func (c *Cache) IsEnabled() bool {
	return c != nil && c.enabled
}

// Key строит ключ по версии файла и описанию преобразования.
func (c *Cache) Key(info storage.FileInfo, transformKey string) string {
	h := sha256.New()
	h.Write([]byte(info.Path))
	h.Write([]byte(strconv.FormatInt(info.Size, 10)))
	h.Write([]byte(strconv.FormatInt(info.Mtime, 10)))
	h.Write([]byte(transformKey))
	return hex.EncodeToString(h.Sum(nil))[:32]
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, key+entryExt)
}

// Get возвращает буфер из кэша.
func (c *Cache) Get(key string) (*image.NRGBA, bool) {
	if !c.IsEnabled() {
		return nil, false
	}

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		return nil, false
	}

	raw, err := c.dec.DecodeAll(data, nil)
	if err != nil || len(raw) < headerSize {
		return nil, false
	}

	w := int(binary.BigEndian.Uint32(raw[0:4]))
	h := int(binary.BigEndian.Uint32(raw[4:8]))
	pix := raw[headerSize:]
	if w <= 0 || h <= 0 || len(pix) != w*h*4 {
		return nil, false
	}

	return &image.NRGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}, true
}

// Put сохраняет буфер в кэш. Запись атомарная.
func (c *Cache) Put(key string, img *image.NRGBA) error {
	if !c.IsEnabled() {
		return nil
	}

	raw := make([]byte, headerSize, headerSize+len(img.Pix))
	b := img.Bounds()
	binary.BigEndian.PutUint32(raw[0:4], uint32(b.Dx()))
	binary.BigEndian.PutUint32(raw[4:8], uint32(b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		raw = append(raw, img.Pix[off:off+b.Dx()*4]...)
	}

	data := c.enc.EncodeAll(raw, nil)

	dst := c.path(key)
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("не удалось записать кэш: %w", err)
	}
	if err := os.Rename(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("не удалось записать кэш: %w", err)
	}
	return nil
}

// Clear очищает весь кэш.
func (c *Cache) Clear() error {
	if !c.IsEnabled() {
		return nil
	}
	if err := os.RemoveAll(c.dir); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0755)
}

// Size возвращает общий размер кэша в байтах.
func (c *Cache) Size() (int64, error) {
	if !c.IsEnabled() {
		return 0, nil
	}

	var size int64
	err := filepath.WalkDir(c.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			size += info.Size()
		}
		return nil
	})
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	return size, err
}

// Close освобождает ресурсы zstd.
func (c *Cache) Close() error {
	if !c.IsEnabled() {
		return nil
	}
	c.dec.Close()
	return c.enc.Close()
}
