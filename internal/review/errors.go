package review

import (
	"errors"
	"fmt"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/models"
)

var (
	ErrReviewNotFound = errors.New("review not found")
	ErrModuleNotFound = errors.New("module not found")
)

// ValidationError rejects bad submission input. The message names the
// violated constraint and is safe to show to the caller.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ConflictError rejects an administrator decision on a review that is not in
// a state the decision is legal from, so the caller can detect stale state.
type ConflictError struct {
	ReviewID int64
	Status   models.ReviewStatus
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("review %d has status %s and is not awaiting moderation", e.ReviewID, e.Status)
}

// ExternalServiceError wraps a moderation gateway failure that could not be
// resolved into a verdict.
type ExternalServiceError struct {
	Err error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("moderation service failed: %v", e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}
