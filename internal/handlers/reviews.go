package handlers

import (
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/app"
)

type ReviewHandler struct {
	service *app.Service
}

func NewReviewHandler(service *app.Service) *ReviewHandler {
	return &ReviewHandler{
		service: service,
	}
}

func (h *ReviewHandler) HandleSubmitReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeValidation, "Method not allowed")
		return
	}

	iterationID, err := strconv.ParseInt(r.PathValue("iteration_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Module iteration id must be an integer")
		return
	}

	rating, err := strconv.Atoi(r.URL.Query().Get("overall_rating"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Overall rating must be an integer between 1 and 5")
		return
	}

	reviewText := r.FormValue("reviewText")

	review, err := h.service.Engine.Submit(r.Context(), iterationID, rating, reviewText)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	logger.Debug.Printf("Review %d submitted for iteration %d with status %s", review.ID, iterationID, review.Status)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"result": map[string]interface{}{
			"review_id": review.ID,
			"status":    review.Status,
		},
	})
}

func (h *ReviewHandler) HandleLikeReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(r.PathValue("review_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Review id must be an integer")
		return
	}

	isLike, ok := parseLikeFlag(r.PathValue("is_like"))
	if !ok {
		writeError(w, http.StatusBadRequest, codeValidation, "is_like must be one of true/false, 1/0, yes/no")
		return
	}

	review, err := h.service.Engine.Like(reviewID, isLike)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"result": map[string]interface{}{
			"like_count":    review.LikeCount,
			"dislike_count": review.DislikeCount,
		},
	})
}

func (h *ReviewHandler) HandleReportReview(w http.ResponseWriter, r *http.Request) {
	reviewID, err := strconv.ParseInt(r.PathValue("review_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Review id must be an integer")
		return
	}

	review, err := h.service.Engine.Report(reviewID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"result": map[string]interface{}{
			"report_count": review.ReportCount,
			"status":       review.Status,
		},
	})
}

// HandleUser is kept so the frontend's probe has a stable answer
func (h *ReviewHandler) HandleUser(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotImplemented, codeNotImplemented, "User accounts are not implemented")
}

func parseLikeFlag(raw string) (bool, bool) {
	switch raw {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}
