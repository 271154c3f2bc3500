package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"costdb/internal/domain/models"
)

// ErrRunNotFound запуск с таким run_id не записан
var ErrRunNotFound = errors.New("pipeline run not found")

// DBConfig настройки пула соединений
type DBConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RegistryDB реестр канонических позиций и история запусков конвейера.
// Коды позиций привязаны к нормализованному ключу и не меняются между запусками.
type RegistryDB struct {
	conn *sql.DB
	// SQLite сериализует запись; мьютекс убирает SQLITE_BUSY при выдаче кодов
	mu sync.Mutex
}

var registryMigrations = []migration{
	{
		name: "001_canonical_items",
		up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS canonical_items (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					normalized_key TEXT NOT NULL UNIQUE,
					item_code TEXT UNIQUE,
					canonical_item_name TEXT,
					category TEXT,
					member_count INTEGER NOT NULL DEFAULT 0,
					first_seen TIMESTAMP NOT NULL,
					last_seen TIMESTAMP NOT NULL
				)
			`)
			return err
		},
	},
	{
		name: "002_pipeline_runs",
		up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS pipeline_runs (
					run_id TEXT PRIMARY KEY,
					started_at TIMESTAMP NOT NULL,
					finished_at TIMESTAMP,
					status TEXT NOT NULL,
					failed_stage TEXT,
					error TEXT,
					orders INTEGER NOT NULL DEFAULT 0,
					clusters INTEGER NOT NULL DEFAULT 0,
					anomalies INTEGER NOT NULL DEFAULT 0
				);
				CREATE INDEX IF NOT EXISTS idx_pipeline_runs_started ON pipeline_runs(started_at);
			`)
			return err
		},
	},
}

// NewRegistryDB открывает реестр с настройками пула по умолчанию
func NewRegistryDB(dbPath string) (*RegistryDB, error) {
	config := DBConfig{}
	if isInMemory(dbPath) {
		config.MaxOpenConns = 1
		config.MaxIdleConns = 1
	}
	return NewRegistryDBWithConfig(dbPath, config)
}

// isInMemory для in-memory SQLite нужно ровно одно соединение, иначе каждое получит пустую БД
func isInMemory(dbPath string) bool {
	if dbPath == ":memory:" {
		return true
	}
	return strings.HasPrefix(dbPath, "file:") && strings.Contains(dbPath, "mode=memory")
}

// NewRegistryDBWithConfig открывает реестр и применяет миграции
func NewRegistryDBWithConfig(dbPath string, config DBConfig) (*RegistryDB, error) {
	conn, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open registry database: %w", err)
	}

	if config.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(config.MaxOpenConns)
	} else {
		conn.SetMaxOpenConns(10)
	}
	if config.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(config.MaxIdleConns)
	} else {
		conn.SetMaxIdleConns(3)
	}
	if config.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping registry database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := applyMigrations(conn, registryMigrations); err != nil {
		conn.Close()
		return nil, err
	}

	return &RegistryDB{conn: conn}, nil
}

// Close закрывает соединение
func (db *RegistryDB) Close() error {
	return db.conn.Close()
}

// AssignCode возвращает код позиции для нормализованного ключа, создавая его при первом обращении
func (db *RegistryDB) AssignCode(normalizedKey string) (string, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var code sql.NullString
	err = tx.QueryRow(`SELECT item_code FROM canonical_items WHERE normalized_key = ?`, normalizedKey).Scan(&code)
	switch {
	case err == nil && code.Valid:
		return code.String, nil
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return "", fmt.Errorf("failed to look up item code: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.Exec(`
		INSERT INTO canonical_items(normalized_key, first_seen, last_seen) VALUES(?, ?, ?)
		ON CONFLICT(normalized_key) DO UPDATE SET last_seen = excluded.last_seen
	`, normalizedKey, now, now)
	if err != nil {
		return "", fmt.Errorf("failed to register item: %w", err)
	}

	var id int64
	if err := tx.QueryRow(`SELECT id FROM canonical_items WHERE normalized_key = ?`, normalizedKey).Scan(&id); err != nil {
		return "", fmt.Errorf("failed to read item id: %w", err)
	}

	newCode := fmt.Sprintf(models.ItemCodeFormat, id)
	if _, err := tx.Exec(`UPDATE canonical_items SET item_code = ? WHERE id = ?`, newCode, id); err != nil {
		return "", fmt.Errorf("failed to store item code: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit item code: %w", err)
	}
	return newCode, nil
}

// SaveCanonicalItems обновляет имя, категорию и размер кластеров, найденных в запуске
func (db *RegistryDB) SaveCanonicalItems(ctx context.Context, items []models.CanonicalItem) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		UPDATE canonical_items
		SET canonical_item_name = ?, category = ?, member_count = ?, last_seen = ?
		WHERE item_code = ?
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, item := range items {
		var category sql.NullString
		if item.Category != nil {
			category = sql.NullString{String: *item.Category, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, item.CanonicalItemName, category, item.MemberCount, now, item.ItemCode); err != nil {
			return fmt.Errorf("failed to update item %s: %w", item.ItemCode, err)
		}
	}

	return tx.Commit()
}

// CountItems количество зарегистрированных позиций
func (db *RegistryDB) CountItems(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM canonical_items WHERE item_code IS NOT NULL`).Scan(&n)
	return n, err
}

// StartRun записывает начало запуска
func (db *RegistryDB) StartRun(ctx context.Context, runID string, startedAt time.Time) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO pipeline_runs(run_id, started_at, status) VALUES(?, ?, ?)`,
		runID, startedAt.UTC(), models.RunStatusRunning)
	if err != nil {
		return fmt.Errorf("failed to record run start: %w", err)
	}
	return nil
}

// FinishRun сохраняет итог запуска
func (db *RegistryDB) FinishRun(ctx context.Context, run models.PipelineRun) error {
	finished := time.Now().UTC()
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC()
	}

	res, err := db.conn.ExecContext(ctx, `
		UPDATE pipeline_runs
		SET finished_at = ?, status = ?, failed_stage = ?, error = ?, orders = ?, clusters = ?, anomalies = ?
		WHERE run_id = ?
	`, finished, run.Status, toNullString(run.FailedStage), toNullString(run.Error),
		run.Orders, run.Clusters, run.Anomalies, run.RunID)
	if err != nil {
		return fmt.Errorf("failed to record run result: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.RunID)
	}
	return nil
}

// ListRuns последние запуски, новые первыми
func (db *RegistryDB) ListRuns(ctx context.Context, limit int) ([]models.PipelineRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := db.conn.QueryContext(ctx, `
		SELECT run_id, started_at, finished_at, status, failed_stage, error, orders, clusters, anomalies
		FROM pipeline_runs
		ORDER BY started_at DESC, run_id
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]models.PipelineRun, 0)
	for rows.Next() {
		var (
			run         models.PipelineRun
			finishedAt  sql.NullTime
			failedStage sql.NullString
			errText     sql.NullString
		)
		if err := rows.Scan(&run.RunID, &run.StartedAt, &finishedAt, &run.Status, &failedStage, &errText,
			&run.Orders, &run.Clusters, &run.Anomalies); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if finishedAt.Valid {
			t := finishedAt.Time
			run.FinishedAt = &t
		}
		run.FailedStage = fromNullString(failedStage)
		run.Error = fromNullString(errText)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
