// Package storage содержит модели и логику работы с SQLite базой данных.
package storage

import "time"

// JobStatus определяет статус обработки файла.
type JobStatus string

const (
	// StatusInProgress - файл обрабатывается.
	StatusInProgress JobStatus = "in_progress"
	// StatusOK - файл успешно обработан.
	StatusOK JobStatus = "ok"
	// StatusFailed - обработка завершилась с ошибкой.
	StatusFailed JobStatus = "failed"
)

// Job - запись журнала об обработке одного файла одной операцией.
type Job struct {
	ID         int64
	SrcPath    string
	SrcSize    int64
	SrcMtime   int64
	Operation  string
	Recipe     string
	RecipeHash string
	DstPath    *string
	Status     JobStatus
	Error      *string
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// FileInfo идентифицирует версию исходного файла.
type FileInfo struct {
	// Path - абсолютный путь к файлу.
	Path string

	// Size - размер файла в байтах.
	Size int64

	// Mtime - время модификации (unix timestamp).
	Mtime int64
}

// JobKey - операция и рецепт, с которыми обрабатывается файл.
type JobKey struct {
	Operation  string
	Recipe     string
	RecipeHash string
}

// StartJobResult содержит результат попытки начать обработку.
type StartJobResult struct {
	// Started - обработка начата.
	Started bool

	// JobID - ID записи (если начата).
	JobID int64

	// SkipReason - причина пропуска.
	SkipReason string

	// ExistingDstPath - ранее записанный результат.
	ExistingDstPath string
}

// Stats - количество записей журнала по статусам.
type Stats struct {
	Total      int64
	OK         int64
	Failed     int64
	InProgress int64
}
