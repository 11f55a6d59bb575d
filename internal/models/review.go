package models

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// ErrBadStatus marks a status value outside the known moderation states.
var ErrBadStatus = errors.New("unknown moderation status")

// ReviewStatus is the closed set of moderation states a review moves through.
type ReviewStatus string

const (
	StatusPublished       ReviewStatus = "published"
	StatusAutomaticReview ReviewStatus = "automatic_review"
	StatusReported        ReviewStatus = "reported"
	StatusRejected        ReviewStatus = "rejected"
)

func (s ReviewStatus) Valid() bool {
	switch s {
	case StatusPublished, StatusAutomaticReview, StatusReported, StatusRejected:
		return true
	}
	return false
}

// PendingModeration reports whether the review sits in an admin queue.
func (s ReviewStatus) PendingModeration() bool {
	return s == StatusAutomaticReview || s == StatusReported
}

func (s ReviewStatus) Terminal() bool {
	return s == StatusRejected
}

type Review struct {
	ID                int64        `db:"id" json:"id"`
	ModuleIterationID int64        `db:"module_iteration_id" json:"module_iteration_id"`
	Rating            int          `db:"overall_rating" json:"overall_rating" validate:"required,min=1,max=5"`
	Comment           string       `db:"comment" json:"comment" validate:"required"`
	Status            ReviewStatus `db:"moderation_status" json:"moderation_status"`
	LikeCount         int          `db:"like_count" json:"like_count"`
	DislikeCount      int          `db:"dislike_count" json:"dislike_count"`
	ReportCount       int          `db:"report_count" json:"report_count"`
	ReportTolerance   int          `db:"report_tolerance" json:"report_tolerance"`
	CreatedAt         int64        `db:"created_at" json:"created_at"`
}

func (r *Review) Validate() error {
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		return err
	}
	if !r.Status.Valid() {
		return ErrBadStatus
	}
	return nil
}
