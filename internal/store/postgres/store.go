package postgres

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/models"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/store"
)

type PostgresStore struct {
	store.BaseStore
}

func NewPostgresStore(dsn, migrationsDir string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &PostgresStore{BaseStore: store.BaseStore{
		DB: db,
		Converter: func(query string) string {
			out := query
			for i := 1; strings.Contains(out, "?"); i++ {
				out = strings.Replace(out, "?", fmt.Sprintf("$%d", i), 1)
			}
			return out
		},
	}}

	if err := s.ApplyMigrations(migrationsDir); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return s, nil
}

func (s *PostgresStore) ApplyMigrations(dir string) error {
	return s.BaseStore.ApplyMigrations(dir, nil)
}

// SearchModules matches code or name by case-insensitive substring. An empty
// term matches everything, the handler maps the '*' wildcard to that.
func (s *PostgresStore) SearchModules(term string) ([]models.Module, error) {
	var modules []models.Module
	err := s.DB.Select(&modules, `
		SELECT id, code, name, description, credit_value, department
		FROM modules
		WHERE code ILIKE '%' || $1 || '%'
		OR name ILIKE '%' || $1 || '%'
		ORDER BY code
	`, term)
	if err != nil {
		return nil, fmt.Errorf("failed to search modules: %w", err)
	}

	return modules, nil
}
