package models

import (
	"github.com/go-playground/validator/v10"
)

type Module struct {
	ID          int64  `db:"id" json:"id"`
	Code        string `db:"code" json:"code" validate:"required,max=20"`
	Name        string `db:"name" json:"name" validate:"required"`
	Description string `db:"description" json:"description"`
	CreditValue int    `db:"credit_value" json:"credit_value"`
	Department  string `db:"department" json:"department"`
}

// ModuleIteration is one academic-year offering of a module. Reviews attach
// here, never to the module itself, so lecturer changes between years stay
// comparable.
type ModuleIteration struct {
	ID           int64 `db:"id" json:"id"`
	ModuleID     int64 `db:"module_id" json:"module_id"`
	AcademicYear int   `db:"academic_year_start_year" json:"academic_year_start_year"`
}

type Lecturer struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type Course struct {
	ID    int64  `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
}

func (m *Module) Validate() error {
	validate := validator.New()
	return validate.Struct(m)
}
