package store

import (
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/models"
)

type DatabaseType string

const (
	DBTypePostgres DatabaseType = "postgres"
	DBTypeSQLite   DatabaseType = "sqlite"
)

// ReviewWithModule is a review joined with enough module context for the
// admin moderation queues.
type ReviewWithModule struct {
	models.Review
	ModuleCode   string `db:"module_code" json:"module_code"`
	ModuleName   string `db:"module_name" json:"module_name"`
	AcademicYear int    `db:"academic_year_start_year" json:"academic_year_start_year"`
}
