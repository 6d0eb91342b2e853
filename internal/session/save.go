package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/artemshloyda/aspectcrop/internal/codec"
	"github.com/artemshloyda/aspectcrop/internal/transform"
)

// savedSuffix добавляется к имени сохранённого результата.
const savedSuffix = "_cropped"

// maxSaveAttempts ограничивает перебор номеров _001 ... _999.
const maxSaveAttempts = 999

// UniqueSavePath возвращает свободный путь рядом с src:
// <base>_cropped.png, затем <base>_cropped_001.png и т.д.
func UniqueSavePath(src string) (string, error) {
	dir := filepath.Dir(src)
	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))

	candidate := filepath.Join(dir, base+savedSuffix+codec.OutputExt)
	for i := 1; ; i++ {
		_, err := os.Stat(candidate)
		if errors.Is(err, fs.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("не удалось проверить %s: %w", candidate, err)
		}
		if i > maxSaveAttempts {
			return "", fmt.Errorf("нет свободного имени для %s", src)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s%s_%03d%s", base, savedSuffix, i, codec.OutputExt))
	}
}

// Save экспортирует результат и записывает его рядом с исходным файлом.
func (s *Session) Save(out transform.Output) (string, error) {
	if s.path == "" {
		return "", fmt.Errorf("у сеанса нет исходного файла")
	}
	img, err := s.Export(out)
	if err != nil {
		return "", err
	}
	dst, err := UniqueSavePath(s.path)
	if err != nil {
		return "", err
	}
	if err := codec.Encode(img, dst); err != nil {
		return "", err
	}
	return dst, nil
}
