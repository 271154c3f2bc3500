package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"
)

const migrationsTableName = "schema_migrations"

// migration именованный шаг схемы, применяется один раз
type migration struct {
	name string
	up   func(*sql.Tx) error
}

// ensureMigrationTable создает таблицу schema_migrations при необходимости.
func ensureMigrationTable(db *sql.DB) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMP NOT NULL
		)
	`, migrationsTableName)

	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to ensure %s table: %w", migrationsTableName, err)
	}
	return nil
}

// isMigrationApplied проверяет, была ли уже применена миграция.
func isMigrationApplied(tx *sql.Tx, name string) (bool, error) {
	var appliedAt time.Time
	query := fmt.Sprintf(`SELECT applied_at FROM %s WHERE name = ?`, migrationsTableName)
	err := tx.QueryRow(query, name).Scan(&appliedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check migration %s: %w", name, err)
	}
	return true, nil
}

// applyMigrations применяет недостающие миграции по порядку.
// Каждая миграция выполняется в своей транзакции вместе с отметкой о применении.
func applyMigrations(db *sql.DB, migrations []migration) error {
	if err := ensureMigrationTable(db); err != nil {
		return err
	}

	for _, m := range migrations {
		if err := applyMigration(db, m); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin migration %s: %w", m.name, err)
	}
	defer tx.Rollback()

	applied, err := isMigrationApplied(tx, m.name)
	if err != nil {
		return err
	}
	if applied {
		return nil
	}

	if err := m.up(tx); err != nil {
		return fmt.Errorf("migration %s failed: %w", m.name, err)
	}

	query := fmt.Sprintf(`INSERT INTO %s(name, applied_at) VALUES(?, ?)`, migrationsTableName)
	if _, err := tx.Exec(query, m.name, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to mark migration %s as applied: %w", m.name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %s: %w", m.name, err)
	}

	log.Printf("[Migrations] %s applied successfully", m.name)
	return nil
}
