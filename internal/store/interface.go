package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/models"
)

type ReviewStore interface {
	Close() error
	Ping() error
	ApplyMigrations(dir string) error

	CreateReview(review *models.Review) error
	GetReview(id int64) (*models.Review, error)
	IncrementLike(id int64, like bool) (*models.Review, error)
	IncrementReport(id int64) (*models.Review, error)
	TransitionStatus(id int64, from []models.ReviewStatus, to models.ReviewStatus, toleranceBump int) (*models.Review, error)
	ListPublishedReviews(iterationID int64) ([]models.Review, error)
	ListPendingReviews() ([]ReviewWithModule, error)
	ListRejectedReviews() ([]ReviewWithModule, error)

	GetModule(id int64) (*models.Module, error)
	SearchModulesByCode(code string) ([]models.Module, error)
	SearchModules(term string) ([]models.Module, error)
	ListCourses() ([]models.Course, error)
	GetIteration(id int64) (*models.ModuleIteration, error)
	ListIterations(moduleID int64) ([]models.ModuleIteration, error)
	ListIterationLecturers(iterationID int64) ([]models.Lecturer, error)
	ListIterationCourses(iterationID int64) ([]models.Course, error)
	LatestAcademicYear() (int, error)
}

// BaseStore provides common functionality for different DB implementations
type BaseStore struct {
	DB        *sqlx.DB
	Converter func(string) string
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

func (s *BaseStore) Ping() error {
	return s.DB.Ping()
}

// ApplyMigrations applies SQL migrations from a directory, translating dialect if needed
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) CreateReview(review *models.Review) error {
	query := s.Converter(`
		INSERT INTO reviews (
			module_iteration_id, overall_rating, comment, moderation_status,
			like_count, dislike_count, report_count, report_tolerance, created_at
		)
		VALUES (?, ?, ?, ?, 0, 0, 0, ?, ?)
		RETURNING id
	`)

	err := s.DB.Get(&review.ID, query,
		review.ModuleIterationID,
		review.Rating,
		review.Comment,
		review.Status,
		review.ReportTolerance,
		review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (s *BaseStore) GetReview(id int64) (*models.Review, error) {
	var review models.Review
	query := s.Converter(`
		SELECT id, module_iteration_id, overall_rating, comment, moderation_status,
		       like_count, dislike_count, report_count, report_tolerance, created_at
		FROM reviews
		WHERE id = ?
	`)

	err := s.DB.Get(&review, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

// IncrementLike bumps one of the two feedback counters. Counters only ever
// grow, there is no un-like. Returns nil when the review does not exist.
func (s *BaseStore) IncrementLike(id int64, like bool) (*models.Review, error) {
	column := "dislike_count"
	if like {
		column = "like_count"
	}

	var review models.Review
	query := s.Converter(fmt.Sprintf(`
		UPDATE reviews
		SET %s = %s + 1
		WHERE id = ?
		RETURNING id, module_iteration_id, overall_rating, comment, moderation_status,
		          like_count, dislike_count, report_count, report_tolerance, created_at
	`, column, column))

	err := s.DB.Get(&review, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment %s: %w", column, err)
	}
	return &review, nil
}

// IncrementReport bumps report_count and returns the fresh row in one
// statement, so the caller's threshold check never sees a torn read.
func (s *BaseStore) IncrementReport(id int64) (*models.Review, error) {
	var review models.Review
	query := s.Converter(`
		UPDATE reviews
		SET report_count = report_count + 1
		WHERE id = ?
		RETURNING id, module_iteration_id, overall_rating, comment, moderation_status,
		          like_count, dislike_count, report_count, report_tolerance, created_at
	`)

	err := s.DB.Get(&review, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to increment report count: %w", err)
	}
	return &review, nil
}

// TransitionStatus moves a review to a new moderation status, guarded by the
// set of states the transition is legal from. The guard and the write are one
// statement. Returns nil when no row matched, either because the id is
// unknown or because the review was not in an allowed state.
func (s *BaseStore) TransitionStatus(id int64, from []models.ReviewStatus, to models.ReviewStatus, toleranceBump int) (*models.Review, error) {
	query, args, err := sqlx.In(`
		UPDATE reviews
		SET moderation_status = ?, report_tolerance = report_tolerance + ?
		WHERE id = ? AND moderation_status IN (?)
		RETURNING id, module_iteration_id, overall_rating, comment, moderation_status,
		          like_count, dislike_count, report_count, report_tolerance, created_at
	`, to, toleranceBump, id, from)
	if err != nil {
		return nil, fmt.Errorf("failed to build transition query: %w", err)
	}

	var review models.Review
	err = s.DB.Get(&review, s.Converter(query), args...)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to transition review status: %w", err)
	}
	return &review, nil
}

func (s *BaseStore) ListPublishedReviews(iterationID int64) ([]models.Review, error) {
	var reviews []models.Review
	query := s.Converter(`
		SELECT id, module_iteration_id, overall_rating, comment, moderation_status,
		       like_count, dislike_count, report_count, report_tolerance, created_at
		FROM reviews
		WHERE module_iteration_id = ?
		AND moderation_status = 'published'
		ORDER BY created_at DESC
	`)

	err := s.DB.Select(&reviews, query, iterationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list published reviews: %w", err)
	}
	return reviews, nil
}

func (s *BaseStore) ListPendingReviews() ([]ReviewWithModule, error) {
	var reviews []ReviewWithModule
	err := s.DB.Select(&reviews, `
		SELECT r.id, r.module_iteration_id, r.overall_rating, r.comment, r.moderation_status,
		       r.like_count, r.dislike_count, r.report_count, r.report_tolerance, r.created_at,
		       m.code AS module_code, m.name AS module_name, mi.academic_year_start_year
		FROM reviews r
		JOIN module_iterations mi ON mi.id = r.module_iteration_id
		JOIN modules m ON m.id = mi.module_id
		WHERE r.moderation_status NOT IN ('published', 'rejected')
		ORDER BY r.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending reviews: %w", err)
	}
	return reviews, nil
}

func (s *BaseStore) ListRejectedReviews() ([]ReviewWithModule, error) {
	var reviews []ReviewWithModule
	err := s.DB.Select(&reviews, `
		SELECT r.id, r.module_iteration_id, r.overall_rating, r.comment, r.moderation_status,
		       r.like_count, r.dislike_count, r.report_count, r.report_tolerance, r.created_at,
		       m.code AS module_code, m.name AS module_name, mi.academic_year_start_year
		FROM reviews r
		JOIN module_iterations mi ON mi.id = r.module_iteration_id
		JOIN modules m ON m.id = mi.module_id
		WHERE r.moderation_status = 'rejected'
		ORDER BY r.created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list rejected reviews: %w", err)
	}
	return reviews, nil
}

func (s *BaseStore) GetModule(id int64) (*models.Module, error) {
	var module models.Module
	query := s.Converter(`
		SELECT id, code, name, description, credit_value, department
		FROM modules
		WHERE id = ?
	`)

	err := s.DB.Get(&module, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get module: %w", err)
	}
	return &module, nil
}

func (s *BaseStore) SearchModulesByCode(code string) ([]models.Module, error) {
	var modules []models.Module
	query := s.Converter(`
		SELECT id, code, name, description, credit_value, department
		FROM modules
		WHERE code = ?
		ORDER BY code
	`)

	err := s.DB.Select(&modules, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to search modules by code: %w", err)
	}
	return modules, nil
}

func (s *BaseStore) ListCourses() ([]models.Course, error) {
	var courses []models.Course
	err := s.DB.Select(&courses, `
		SELECT id, title
		FROM courses
		ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	return courses, nil
}

func (s *BaseStore) GetIteration(id int64) (*models.ModuleIteration, error) {
	var iteration models.ModuleIteration
	query := s.Converter(`
		SELECT id, module_id, academic_year_start_year
		FROM module_iterations
		WHERE id = ?
	`)

	err := s.DB.Get(&iteration, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get module iteration: %w", err)
	}
	return &iteration, nil
}

func (s *BaseStore) ListIterations(moduleID int64) ([]models.ModuleIteration, error) {
	var iterations []models.ModuleIteration
	query := s.Converter(`
		SELECT id, module_id, academic_year_start_year
		FROM module_iterations
		WHERE module_id = ?
		ORDER BY academic_year_start_year DESC
	`)

	err := s.DB.Select(&iterations, query, moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to list module iterations: %w", err)
	}
	return iterations, nil
}

func (s *BaseStore) ListIterationLecturers(iterationID int64) ([]models.Lecturer, error) {
	var lecturers []models.Lecturer
	query := s.Converter(`
		SELECT l.id, l.name
		FROM lecturers l
		JOIN module_iterations_lecturers_links link ON link.lecturer_id = l.id
		WHERE link.module_iteration_id = ?
		ORDER BY l.name
	`)

	err := s.DB.Select(&lecturers, query, iterationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list iteration lecturers: %w", err)
	}
	return lecturers, nil
}

func (s *BaseStore) ListIterationCourses(iterationID int64) ([]models.Course, error) {
	var courses []models.Course
	query := s.Converter(`
		SELECT c.id, c.title
		FROM courses c
		JOIN module_iterations_courses_links link ON link.course_id = c.id
		WHERE link.module_iteration_id = ?
		ORDER BY c.title
	`)

	err := s.DB.Select(&courses, query, iterationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list iteration courses: %w", err)
	}
	return courses, nil
}

func (s *BaseStore) LatestAcademicYear() (int, error) {
	var year int
	err := s.DB.Get(&year, `
		SELECT COALESCE(MAX(academic_year_start_year), 0)
		FROM module_iterations
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to get latest academic year: %w", err)
	}
	return year, nil
}
