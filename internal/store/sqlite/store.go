// internal/store/sqlite/store.go
package sqlite

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/models"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/store"
)

type SQLiteStore struct {
	store.BaseStore
}

func NewSQLiteStore(dsn, migrationsDir string) (*SQLiteStore, error) {
	db, err := sqlx.Connect("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &SQLiteStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			return query
		},
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, translateToSQLite)
}

// sqliteReplacements rewrites the Postgres schema for SQLite. Ordered so that
// longer tokens win, a plain map would let SERIAL clobber BIGSERIAL.
var sqliteReplacements = []struct {
	from string
	to   string
}{
	{"BIGSERIAL PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT"},
	{"SERIAL PRIMARY KEY", "INTEGER PRIMARY KEY AUTOINCREMENT"},
	{"BIGINT", "INTEGER"},
	{"now()", "CURRENT_TIMESTAMP"},
	{"TRUE", "1"},
	{"FALSE", "0"},
}

// translateToSQLite converts Postgres SQL to SQLite dialect
func translateToSQLite(sql string) string {
	result := sql
	for _, r := range sqliteReplacements {
		result = strings.ReplaceAll(result, r.from, r.to)
	}
	return result
}

// SearchModules matches code or name by substring. SQLite LIKE is already
// case-insensitive for ASCII, which covers module codes and names.
func (s *SQLiteStore) SearchModules(term string) ([]models.Module, error) {
	var modules []models.Module
	err := s.DB.Select(&modules, `
		SELECT id, code, name, description, credit_value, department
		FROM modules
		WHERE code LIKE '%' || ? || '%'
		OR name LIKE '%' || ? || '%'
		ORDER BY code
	`, term, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search modules: %w", err)
	}

	return modules, nil
}
