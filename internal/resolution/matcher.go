package resolution

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidDimension возвращается для неположительных размеров.
var ErrInvalidDimension = errors.New("некорректный размер")

// Best подбирает разрешение каталога с ближайшим соотношением сторон.
// Сравнивается |w/h - cw/ch|, при равенстве побеждает первое по порядку каталога.
func Best(width, height int) (Resolution, error) {
	if width <= 0 || height <= 0 {
		return Resolution{}, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, width, height)
	}

	ratio := float64(width) / float64(height)

	var best Resolution
	bestScore := math.Inf(1)
	for _, b := range catalog {
		for _, r := range b.Variants {
			score := math.Abs(ratio - r.Ratio())
			if score < bestScore {
				best, bestScore = r, score
			}
		}
	}

	return best, nil
}
