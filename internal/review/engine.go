package review

import (
	"context"
	"fmt"
	"time"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/metrics"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/models"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/moderation"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/rating"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/store"
)

const (
	DefaultReportTolerance  = 5
	DefaultToleranceBump    = 2
	DefaultMinCommentLength = 20
	DefaultMaxCommentLength = 5000
)

// Policy carries the moderation constants. They are configuration, not
// derived values, and load straight from the [policy] section of the config
// file.
type Policy struct {
	ReportTolerance     int     `toml:"report_tolerance"`
	AcceptToleranceBump int     `toml:"accept_tolerance_bump"`
	MinCommentLength    int     `toml:"min_comment_length"`
	MaxCommentLength    int     `toml:"max_comment_length"`
	RatingDecay         float64 `toml:"rating_decay"`
}

// Engine owns the review lifecycle: validation, moderation, the status state
// machine, abuse report tracking, and the read-side module info assembly.
// All collaborators are injected so tests can substitute them.
type Engine struct {
	store     store.ReviewStore
	gateway   moderation.Gateway
	notifier  Notifier
	sanitizer *Sanitizer
	rating    *rating.Aggregator
	policy    Policy
}

func NewEngine(st store.ReviewStore, gateway moderation.Gateway, notifier Notifier, policy Policy) *Engine {
	if policy.ReportTolerance <= 0 {
		policy.ReportTolerance = DefaultReportTolerance
	}
	if policy.AcceptToleranceBump <= 0 {
		policy.AcceptToleranceBump = DefaultToleranceBump
	}
	if policy.MinCommentLength <= 0 {
		policy.MinCommentLength = DefaultMinCommentLength
	}
	if policy.MaxCommentLength <= 0 {
		policy.MaxCommentLength = DefaultMaxCommentLength
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}

	return &Engine{
		store:     st,
		gateway:   gateway,
		notifier:  notifier,
		sanitizer: NewSanitizer(),
		rating:    &rating.Aggregator{Decay: policy.RatingDecay},
		policy:    policy,
	}
}

// Submit validates a candidate review, asks the moderation gateway for a
// verdict, and persists the review with its initial status. Nothing is
// persisted when validation fails.
func (e *Engine) Submit(ctx context.Context, iterationID int64, ratingValue int, comment string) (*models.Review, error) {
	if ratingValue < 1 || ratingValue > 5 {
		return nil, newValidationError("Rating must be between 1 and 5")
	}

	cleaned, err := e.validateComment(comment)
	if err != nil {
		return nil, err
	}

	iteration, err := e.store.GetIteration(iterationID)
	if err != nil {
		return nil, fmt.Errorf("failed to look up module iteration: %w", err)
	}
	if iteration == nil {
		return nil, newValidationError("Module iteration %d not found, cannot review a module that has not been offered", iterationID)
	}

	// moderation finishes and persists even if the caller disconnects.
	// The gateway resolves its own retries and timeouts to Inconclusive,
	// an error here means it could not produce a verdict at all.
	verdict, err := e.gateway.Classify(context.WithoutCancel(ctx), cleaned)
	if err != nil {
		return nil, &ExternalServiceError{Err: err}
	}
	metrics.ModerationVerdictsTotal.WithLabelValues(string(verdict)).Inc()

	review := &models.Review{
		ModuleIterationID: iterationID,
		Rating:            ratingValue,
		Comment:           cleaned,
		Status:            initialStatus(verdict),
		ReportTolerance:   e.policy.ReportTolerance,
		CreatedAt:         time.Now().Unix(),
	}
	if err := review.Validate(); err != nil {
		return nil, newValidationError("Review is not valid: %v", err)
	}

	if err := e.store.CreateReview(review); err != nil {
		return nil, fmt.Errorf("failed to persist review: %w", err)
	}

	metrics.ReviewEventsTotal.WithLabelValues("submitted").Inc()
	metrics.RatingHistogram.WithLabelValues(string(review.Status)).Observe(float64(ratingValue))
	logger.Info.Printf("Review %d submitted for iteration %d with status %s", review.ID, iterationID, review.Status)

	return review, nil
}

// Like bumps one of the feedback counters. Counters are not deduplicated per
// client, the same caller may vote repeatedly.
func (e *Engine) Like(reviewID int64, like bool) (*models.Review, error) {
	review, err := e.store.IncrementLike(reviewID, like)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}

	event := "disliked"
	if like {
		event = "liked"
	}
	metrics.ReviewEventsTotal.WithLabelValues(event).Inc()

	return review, nil
}

// Report increments the abuse counter unconditionally and then evaluates the
// published-to-reported flip against the review's tolerance. The increment
// and the snapshot it is checked against come from a single statement.
func (e *Engine) Report(reviewID int64) (*models.Review, error) {
	review, err := e.store.IncrementReport(reviewID)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, ErrReviewNotFound
	}
	metrics.ReviewEventsTotal.WithLabelValues("reported").Inc()

	if !shouldAutoReport(review) {
		return review, nil
	}

	flipped, err := e.store.TransitionStatus(reviewID, []models.ReviewStatus{models.StatusPublished}, models.StatusReported, 0)
	if err != nil {
		return nil, err
	}
	if flipped == nil {
		// a concurrent report or admin decision moved it first
		current, err := e.store.GetReview(reviewID)
		if err != nil {
			return nil, err
		}
		if current == nil {
			return review, nil
		}
		return current, nil
	}

	metrics.ReviewEventsTotal.WithLabelValues("auto_reported").Inc()
	logger.Info.Printf("Review %d pulled from public view after %d reports (tolerance %d)", flipped.ID, flipped.ReportCount, flipped.ReportTolerance)

	if err := e.notifier.ReviewReported(flipped); err != nil {
		logger.Error.Printf("Failed to notify admins about review %d: %v", flipped.ID, err)
	}

	return flipped, nil
}

// Accept publishes a review an administrator has vindicated and raises its
// report tolerance, so re-flagging it automatically takes proportionally
// more reports.
func (e *Engine) Accept(reviewID int64) (*models.Review, error) {
	review, err := e.store.TransitionStatus(reviewID, adminActionable, models.StatusPublished, e.policy.AcceptToleranceBump)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, e.moderationConflict(reviewID)
	}

	metrics.ReviewEventsTotal.WithLabelValues("accepted").Inc()
	logger.Info.Printf("Review %d accepted, tolerance now %d", review.ID, review.ReportTolerance)

	return review, nil
}

// Reject is terminal. The row stays for audit, nothing transitions out.
func (e *Engine) Reject(reviewID int64) (*models.Review, error) {
	review, err := e.store.TransitionStatus(reviewID, adminActionable, models.StatusRejected, 0)
	if err != nil {
		return nil, err
	}
	if review == nil {
		return nil, e.moderationConflict(reviewID)
	}

	metrics.ReviewEventsTotal.WithLabelValues("rejected").Inc()
	logger.Info.Printf("Review %d rejected", review.ID)

	return review, nil
}

// moderationConflict explains a failed admin transition: either the review
// does not exist, or it sits in a state the decision is not legal from.
func (e *Engine) moderationConflict(reviewID int64) error {
	current, err := e.store.GetReview(reviewID)
	if err != nil {
		return err
	}
	if current == nil {
		return ErrReviewNotFound
	}
	return &ConflictError{ReviewID: reviewID, Status: current.Status}
}
