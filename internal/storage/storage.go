// Package storage содержит журнал обработки файлов в SQLite.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"
)

// Storage предоставляет методы для работы с журналом jobs.
type Storage struct {
	db *sql.DB
}

// New создаёт новое подключение к SQLite и выполняет миграции.
func New(dbPath string) (*Storage, error) {
	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("не удалось создать директорию для БД: %w", err)
	}

	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("не удалось открыть БД: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("не удалось подключиться к БД: %w", err)
	}

	// SQLite не поддерживает concurrent writes
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Storage{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("не удалось выполнить миграции: %w", err)
	}

	return s, nil
}

// migrate выполняет все SQL-миграции.
func (s *Storage) migrate() error {
	for i, m := range GetMigrations() {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("миграция %d: %w", i+1, err)
		}
	}
	return nil
}

// Close закрывает подключение к БД.
func (s *Storage) Close() error {
	return s.db.Close()
}

// TryStartJob пытается начать обработку файла.
// Если файл уже обработан с тем же ключом, возвращает Started=false с причиной.
// Запись со статусом failed удаляется и обработка начинается заново.
func (s *Storage) TryStartJob(info FileInfo, key JobKey) (*StartJobResult, error) {
	result, err := s.db.Exec(`
		INSERT INTO jobs (src_path, src_size, src_mtime, operation, recipe, recipe_hash, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		info.Path, info.Size, info.Mtime, key.Operation, key.Recipe, key.RecipeHash,
		StatusInProgress, time.Now().Unix(),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return s.checkExistingJob(info, key)
		}
		return nil, fmt.Errorf("не удалось создать задачу: %w", err)
	}

	jobID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить ID задачи: %w", err)
	}

	return &StartJobResult{Started: true, JobID: jobID}, nil
}

// checkExistingJob проверяет существующую запись и возвращает причину пропуска.
func (s *Storage) checkExistingJob(info FileInfo, key JobKey) (*StartJobResult, error) {
	var job Job
	err := s.db.QueryRow(`
		SELECT id, status, dst_path FROM jobs
		WHERE src_path = ? AND src_size = ? AND src_mtime = ?
		  AND operation = ? AND recipe_hash = ?
		LIMIT 1`,
		info.Path, info.Size, info.Mtime, key.Operation, key.RecipeHash,
	).Scan(&job.ID, &job.Status, &job.DstPath)
	if err != nil {
		return nil, fmt.Errorf("не удалось прочитать задачу: %w", err)
	}

	switch job.Status {
	case StatusOK:
		dstPath := ""
		if job.DstPath != nil {
			dstPath = *job.DstPath
		}
		return &StartJobResult{
			SkipReason:      "уже успешно обработан",
			ExistingDstPath: dstPath,
		}, nil
	case StatusInProgress:
		return &StartJobResult{SkipReason: "уже обрабатывается"}, nil
	default:
		if _, err := s.db.Exec("DELETE FROM jobs WHERE id = ?", job.ID); err != nil {
			return nil, fmt.Errorf("не удалось удалить failed задачу: %w", err)
		}
		return s.TryStartJob(info, key)
	}
}

// FinalizeJobOK помечает задачу как успешно завершённую.
func (s *Storage) FinalizeJobOK(jobID int64, dstPath string) error {
	_, err := s.db.Exec(
		"UPDATE jobs SET status = ?, dst_path = ?, error = NULL, finished_at = ? WHERE id = ?",
		StatusOK, dstPath, time.Now().Unix(), jobID,
	)
	if err != nil {
		return fmt.Errorf("не удалось обновить статус задачи: %w", err)
	}
	return nil
}

// FinalizeJobFailed помечает задачу как завершённую с ошибкой.
func (s *Storage) FinalizeJobFailed(jobID int64, errMsg string) error {
	_, err := s.db.Exec(
		"UPDATE jobs SET status = ?, error = ?, finished_at = ? WHERE id = ?",
		StatusFailed, errMsg, time.Now().Unix(), jobID,
	)
	if err != nil {
		return fmt.Errorf("не удалось обновить статус задачи: %w", err)
	}
	return nil
}

// GetStats возвращает количество записей по статусам.
func (s *Storage) GetStats() (Stats, error) {
	var st Stats
	err := s.db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(status = ?), 0),
		       COALESCE(SUM(status = ?), 0),
		       COALESCE(SUM(status = ?), 0)
		FROM jobs`,
		StatusOK, StatusFailed, StatusInProgress,
	).Scan(&st.Total, &st.OK, &st.Failed, &st.InProgress)
	if err != nil {
		return Stats{}, fmt.Errorf("не удалось получить статистику: %w", err)
	}
	return st, nil
}

// FailedJobs возвращает записи со статусом failed.
func (s *Storage) FailedJobs() ([]Job, error) {
	rows, err := s.db.Query(`
		SELECT id, src_path, operation, error FROM jobs
		WHERE status = ? ORDER BY src_path`, StatusFailed)
	if err != nil {
		return nil, fmt.Errorf("не удалось получить ошибки: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var jobs []Job
	for rows.Next() {
		j := Job{Status: StatusFailed}
		if err := rows.Scan(&j.ID, &j.SrcPath, &j.Operation, &j.Error); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// CleanupInProgress сбрасывает задачи in_progress в failed.
// Вызывается при старте для очистки после аварийного завершения.
func (s *Storage) CleanupInProgress() (int64, error) {
	result, err := s.db.Exec(
		"UPDATE jobs SET status = ?, error = ? WHERE status = ?",
		StatusFailed, "прервано при предыдущем запуске", StatusInProgress,
	)
	if err != nil {
		return 0, fmt.Errorf("не удалось очистить in_progress: %w", err)
	}
	return result.RowsAffected()
}

// isUniqueConstraintError проверяет, является ли ошибка нарушением уникальности.
func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
