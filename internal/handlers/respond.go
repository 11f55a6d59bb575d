package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/review"
)

// error codes the frontend matches on
const (
	codeValidation      = "VALIDATION_ERROR"
	codeNotFound        = "NOT_FOUND"
	codeConflict        = "CONFLICT"
	codeUnauthorized    = "UNAUTHORIZED"
	codeRateLimit       = "RATE_LIMIT_EXCEEDED"
	codeExternalService = "EXTERNAL_SERVICE_ERROR"
	codeDatabase        = "DATABASE_ERROR"
	codeInternal        = "INTERNAL_ERROR"
	codeNotImplemented  = "NOT_IMPLEMENTED"
)

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error.Printf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":  apiError{Message: message, Code: code},
		"status": "error",
	})
}

// writeEngineError maps review engine failures onto the error envelope
func writeEngineError(w http.ResponseWriter, err error) {
	var validationErr *review.ValidationError
	var conflictErr *review.ConflictError
	var externalErr *review.ExternalServiceError

	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, codeValidation, validationErr.Message)
	case errors.Is(err, review.ErrReviewNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "Review not found")
	case errors.Is(err, review.ErrModuleNotFound):
		writeError(w, http.StatusNotFound, codeNotFound, "Module not found")
	case errors.As(err, &conflictErr):
		writeError(w, http.StatusConflict, codeConflict, conflictErr.Error())
	case errors.As(err, &externalErr):
		logger.Error.Printf("Moderation gateway failure: %v", err)
		writeError(w, http.StatusInternalServerError, codeExternalService, "Moderation service unavailable")
	default:
		logger.Error.Printf("Unhandled engine error: %v", err)
		writeError(w, http.StatusInternalServerError, codeInternal, "Internal server error")
	}
}
