package handlers

import (
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/app"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/store"
)

type AdminHandler struct {
	service *app.Service
}

func NewAdminHandler(service *app.Service) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

func (h *AdminHandler) HandlePendingReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.Store.ListPendingReviews()
	if err != nil {
		logger.Error.Printf("Failed to list pending reviews: %v", err)
		writeError(w, http.StatusInternalServerError, codeDatabase, "Failed to fetch pending reviews")
		return
	}
	if reviews == nil {
		reviews = []store.ReviewWithModule{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": reviews,
	})
}

func (h *AdminHandler) HandleRejectedReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.service.Store.ListRejectedReviews()
	if err != nil {
		logger.Error.Printf("Failed to list rejected reviews: %v", err)
		writeError(w, http.StatusInternalServerError, codeDatabase, "Failed to fetch rejected reviews")
		return
	}
	if reviews == nil {
		reviews = []store.ReviewWithModule{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reviews": reviews,
	})
}

func (h *AdminHandler) HandleAcceptReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeValidation, "Method not allowed")
		return
	}

	reviewID, err := strconv.ParseInt(r.PathValue("review_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Review id must be an integer")
		return
	}

	review, err := h.service.Engine.Accept(reviewID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"review": review,
	})
}

func (h *AdminHandler) HandleRejectReview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, codeValidation, "Method not allowed")
		return
	}

	reviewID, err := strconv.ParseInt(r.PathValue("review_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Review id must be an integer")
		return
	}

	review, err := h.service.Engine.Reject(reviewID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"review": review,
	})
}
