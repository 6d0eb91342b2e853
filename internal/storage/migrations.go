// Package storage содержит миграции SQLite базы данных.
package storage

// migrations содержит SQL-миграции в порядке выполнения.
var migrations = []string{
	// Миграция 1: журнал обработки файлов
	`CREATE TABLE IF NOT EXISTS jobs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		src_path TEXT NOT NULL,
		src_size INTEGER NOT NULL,
		src_mtime INTEGER NOT NULL,
		operation TEXT NOT NULL,
		recipe TEXT NOT NULL,
		recipe_hash TEXT NOT NULL,
		dst_path TEXT,
		status TEXT NOT NULL,
		error TEXT,
		started_at INTEGER,
		finished_at INTEGER
	);`,

	// Миграция 2: один и тот же файл (path+size+mtime) с тем же рецептом
	// обрабатывается операцией не более одного раза.
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_jobs_src
	ON jobs (src_path, src_size, src_mtime, operation, recipe_hash);`,

	// Миграция 3: индекс по статусу
	`CREATE INDEX IF NOT EXISTS ix_jobs_status ON jobs (status);`,

	// Миграция 4: версия схемы
	`CREATE TABLE IF NOT EXISTS schema_info (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);`,

	`INSERT OR REPLACE INTO schema_info (key, value) VALUES ('version', '1');`,
}

// GetMigrations возвращает список SQL-миграций.
func GetMigrations() []string {
	return migrations
}
