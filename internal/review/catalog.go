package review

import (
	"fmt"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/models"
)

// YearInfo is one academic year's slice of a module: who taught it, which
// courses it belonged to, and the published reviews it collected.
type YearInfo struct {
	IterationID int64             `json:"iteration_id"`
	Lecturers   []models.Lecturer `json:"lecturers"`
	Courses     []models.Course   `json:"courses"`
	Reviews     []models.Review   `json:"reviews"`
}

// ModuleInfo is the full read-side view of a module, keyed by academic year,
// with the time-decayed overall rating. OverallRating is nil when no
// published reviews exist in any year.
type ModuleInfo struct {
	YearsInfo     map[int]YearInfo `json:"yearsInfo"`
	OverallRating *float64         `json:"overall_rating,omitempty"`
}

// ModuleSummary is a search hit enriched with the current academic year's
// lecturers and courses, when the module runs this year.
type ModuleSummary struct {
	models.Module
	CurrentLecturers []models.Lecturer `json:"current_lecturers"`
	CurrentCourses   []models.Course   `json:"current_courses"`
}

// ModuleInfo assembles the per-year breakdown for one module and computes
// its overall rating from published reviews only. The rating is recomputed
// on every read, nothing is cached.
func (e *Engine) ModuleInfo(moduleID int64) (*ModuleInfo, error) {
	module, err := e.store.GetModule(moduleID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up module: %w", err)
	}
	if module == nil {
		return nil, ErrModuleNotFound
	}

	iterations, err := e.store.ListIterations(moduleID)
	if err != nil {
		return nil, err
	}

	info := &ModuleInfo{YearsInfo: make(map[int]YearInfo, len(iterations))}
	ratingsByYear := make(map[int][]int)

	for _, iteration := range iterations {
		lecturers, err := e.store.ListIterationLecturers(iteration.ID)
		if err != nil {
			return nil, err
		}
		courses, err := e.store.ListIterationCourses(iteration.ID)
		if err != nil {
			return nil, err
		}
		reviews, err := e.store.ListPublishedReviews(iteration.ID)
		if err != nil {
			return nil, err
		}

		for _, r := range reviews {
			ratingsByYear[iteration.AcademicYear] = append(ratingsByYear[iteration.AcademicYear], r.Rating)
		}

		info.YearsInfo[iteration.AcademicYear] = YearInfo{
			IterationID: iteration.ID,
			Lecturers:   emptyIfNilLecturers(lecturers),
			Courses:     emptyIfNilCourses(courses),
			Reviews:     emptyIfNilReviews(reviews),
		}
	}

	if score, ok := e.rating.ModuleScore(ratingsByYear); ok {
		info.OverallRating = &score
	}

	return info, nil
}

// SearchModulesByCode looks up modules by their exact, normalized code.
func (e *Engine) SearchModulesByCode(raw string) ([]models.Module, error) {
	code, err := NormalizeModuleCode(raw)
	if err != nil {
		return nil, err
	}
	return e.store.SearchModulesByCode(code)
}

// SearchModules matches modules by substring and enriches each hit with the
// latest academic year's lecturers and courses.
func (e *Engine) SearchModules(raw string) ([]ModuleSummary, error) {
	term, err := e.normalizeSearchTerm(raw)
	if err != nil {
		return nil, err
	}

	modules, err := e.store.SearchModules(term)
	if err != nil {
		return nil, err
	}

	latestYear, err := e.store.LatestAcademicYear()
	if err != nil {
		return nil, err
	}

	summaries := make([]ModuleSummary, 0, len(modules))
	for _, m := range modules {
		summary := ModuleSummary{
			Module:           m,
			CurrentLecturers: []models.Lecturer{},
			CurrentCourses:   []models.Course{},
		}

		iterations, err := e.store.ListIterations(m.ID)
		if err != nil {
			return nil, err
		}
		for _, iteration := range iterations {
			if iteration.AcademicYear != latestYear {
				continue
			}
			lecturers, err := e.store.ListIterationLecturers(iteration.ID)
			if err != nil {
				return nil, err
			}
			courses, err := e.store.ListIterationCourses(iteration.ID)
			if err != nil {
				return nil, err
			}
			summary.CurrentLecturers = emptyIfNilLecturers(lecturers)
			summary.CurrentCourses = emptyIfNilCourses(courses)
			break
		}

		summaries = append(summaries, summary)
	}

	return summaries, nil
}

func emptyIfNilLecturers(in []models.Lecturer) []models.Lecturer {
	if in == nil {
		return []models.Lecturer{}
	}
	return in
}

func emptyIfNilCourses(in []models.Course) []models.Course {
	if in == nil {
		return []models.Course{}
	}
	return in
}

func emptyIfNilReviews(in []models.Review) []models.Review {
	if in == nil {
		return []models.Review{}
	}
	return in
}
