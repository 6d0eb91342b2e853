// Package worker содержит пул воркеров пакетной обработки.
package worker

import (
	"context"
	"runtime"
	"sync"
	"time"
)

// bytesPerPixel - размер пикселя NRGBA.
const bytesPerPixel = 4

// workingCopies - сколько буферов одного изображения живёт одновременно
// (исходный, преобразованный, результат).
const workingCopies = 3

// MemoryLimiter ограничивает суммарный объём одновременно обрабатываемых пикселей.
type MemoryLimiter struct {
	maxMemoryBytes uint64

	mu           sync.Mutex
	currentUsage uint64

	enabled bool
}

// NewMemoryLimiter создаёт MemoryLimiter.
// maxMemoryMB - ограничение в мегабайтах (0 = без ограничения).
func NewMemoryLimiter(maxMemoryMB int) *MemoryLimiter {
	if maxMemoryMB <= 0 {
		return &MemoryLimiter{enabled: false}
	}

	return &MemoryLimiter{
		maxMemoryBytes: uint64(maxMemoryMB) * 1024 * 1024,
		enabled:        true,
	}
}

// Estimate оценивает потребление памяти для изображения из pixels пикселей.
func Estimate(pixels int64) uint64 {
	if pixels <= 0 {
		return 0
	}
	return uint64(pixels) * bytesPerPixel * workingCopies
}

// Acquire резервирует память для изображения из pixels пикселей.
// Блокирует выполнение, пока не освободится место или не отменится ctx.
// Изображение больше лимита целиком пропускается, когда других резервов нет.
func (ml *MemoryLimiter) Acquire(ctx context.Context, pixels int64) (release func(), err error) {
	if !ml.enabled {
		return func() {}, nil
	}

	estimated := Estimate(pixels)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ml.mu.Lock()
		if ml.currentUsage == 0 || ml.currentUsage+estimated <= ml.maxMemoryBytes {
			ml.currentUsage += estimated
			ml.mu.Unlock()

			var once sync.Once
			return func() {
				once.Do(func() {
					ml.mu.Lock()
					ml.currentUsage -= estimated
					ml.mu.Unlock()
				})
			}, nil
		}
		ml.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(50 * time.Millisecond):
			runtime.GC()
		}
	}
}

// IsEnabled возвращает true если ограничение включено.
func (ml *MemoryLimiter) IsEnabled() bool {
	return ml.enabled
}

// CurrentUsage возвращает текущее зарезервированное использование памяти.
func (ml *MemoryLimiter) CurrentUsage() uint64 {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return ml.currentUsage
}

// MaxMemory возвращает ограничение памяти.
func (ml *MemoryLimiter) MaxMemory() uint64 {
	return ml.maxMemoryBytes
}
