package handlers

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/app"
)

// NewRouter wires every API route with its middleware chain.
func NewRouter(service *app.Service) http.Handler {
	mux := http.NewServeMux()

	moduleHandler := NewModuleHandler(service)
	reviewHandler := NewReviewHandler(service)
	adminHandler := NewAdminHandler(service)

	limiter := service.Limiter
	adminToken := service.Config.Server.AdminToken

	admin := func(next http.HandlerFunc) http.HandlerFunc {
		return withMetrics(withRateLimit(limiter, "admin", withAdminToken(adminToken, next)))
	}

	mux.HandleFunc("GET /api/health", withMetrics(moduleHandler.HandleHealth))
	mux.HandleFunc("GET /api/searchModulesByCode/{module_code}", withMetrics(moduleHandler.HandleSearchByCode))
	mux.HandleFunc("GET /api/searchModules", withMetrics(moduleHandler.HandleSearch))
	mux.HandleFunc("GET /api/courses", withMetrics(moduleHandler.HandleCourses))
	mux.HandleFunc("GET /api/getModuleInfo/{module_id}", withMetrics(moduleHandler.HandleModuleInfo))

	mux.HandleFunc("POST /api/submitReview/{iteration_id}",
		withMetrics(withRateLimit(limiter, "submission", reviewHandler.HandleSubmitReview)))
	mux.HandleFunc("GET /api/likeReview/{review_id}/{is_like}",
		withMetrics(withRateLimit(limiter, "like", reviewHandler.HandleLikeReview)))
	mux.HandleFunc("GET /api/reportReview/{review_id}",
		withMetrics(withRateLimit(limiter, "report", reviewHandler.HandleReportReview)))
	mux.HandleFunc("GET /api/user", withMetrics(reviewHandler.HandleUser))

	mux.HandleFunc("GET /api/admin/pendingReviews", admin(adminHandler.HandlePendingReviews))
	mux.HandleFunc("GET /api/admin/rejectedReviews", admin(adminHandler.HandleRejectedReviews))
	mux.HandleFunc("POST /api/admin/acceptReview/{review_id}", admin(adminHandler.HandleAcceptReview))
	mux.HandleFunc("POST /api/admin/rejectReview/{review_id}", admin(adminHandler.HandleRejectReview))

	mux.Handle("/metrics", promhttp.Handler())

	return withCORS(service.Config.Server.CORSOrigins, mux)
}
