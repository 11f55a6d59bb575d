package review

import (
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/models"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/moderation"
)

// adminActionable lists the only states an administrator decision acts on.
// Store-level transitions are guarded by this set, so a decision racing a
// concurrent state change matches zero rows instead of clobbering it.
var adminActionable = []models.ReviewStatus{
	models.StatusAutomaticReview,
	models.StatusReported,
}

// initialStatus decides a fresh review's state from the gateway verdict.
// Only an explicit approval publishes. Flagged and inconclusive both queue
// for manual review, an unavailable moderation service must never publish.
func initialStatus(v moderation.Verdict) models.ReviewStatus {
	if v == moderation.VerdictApproved {
		return models.StatusPublished
	}
	return models.StatusAutomaticReview
}

// shouldAutoReport reports whether a review has accumulated enough abuse
// reports to be pulled from public view. Only published reviews auto-flip,
// reviews already under moderation or rejected stay where they are.
func shouldAutoReport(r *models.Review) bool {
	return r.Status == models.StatusPublished && r.ReportCount >= r.ReportTolerance
}
