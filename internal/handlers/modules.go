package handlers

import (
	"net/http"
	"strconv"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/app"
	"github.com/Aidan-M-Dev/Meet-Your-Modules/internal/models"
)

type ModuleHandler struct {
	service *app.Service
}

func NewModuleHandler(service *app.Service) *ModuleHandler {
	return &ModuleHandler{
		service: service,
	}
}

func (h *ModuleHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Store.Ping(); err != nil {
		logger.Error.Printf("Health check failed to reach the database: %v", err)
		writeError(w, http.StatusInternalServerError, codeDatabase, "Database connection failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "healthy",
		"database": "connected",
	})
}

func (h *ModuleHandler) HandleSearchByCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("module_code")

	modules, err := h.service.Engine.SearchModulesByCode(code)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if modules == nil {
		modules = []models.Module{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"modules": modules,
	})
}

func (h *ModuleHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")

	summaries, err := h.service.Engine.SearchModules(term)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"modules": summaries,
	})
}

func (h *ModuleHandler) HandleCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.Store.ListCourses()
	if err != nil {
		logger.Error.Printf("Failed to list courses: %v", err)
		writeError(w, http.StatusInternalServerError, codeDatabase, "Failed to fetch courses")
		return
	}
	if courses == nil {
		courses = []models.Course{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"courses": courses,
	})
}

func (h *ModuleHandler) HandleModuleInfo(w http.ResponseWriter, r *http.Request) {
	moduleID, err := strconv.ParseInt(r.PathValue("module_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeValidation, "Module id must be an integer")
		return
	}

	info, err := h.service.Engine.ModuleInfo(moduleID)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, info)
}
