package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"tutorhub/internal/availability/service"
	httputil "tutorhub/pkg/http"
	"tutorhub/pkg/logger"
	"tutorhub/pkg/model"
)

type AvailabilityHandler struct {
	service service.AvailabilityService
	log     *logger.Logger
}

func NewAvailabilityHandler(service service.AvailabilityService, log *logger.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{
		service: service,
		log:     log,
	}
}

func (h *AvailabilityHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teacherID := ps.ByName("teacher_id")
	if teacherID == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "teacher_id parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "Get", "operation", "WriteJSON", "error", err)
		}
		return
	}

	av, err := h.service.GetForTeacher(r.Context(), teacherID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Get", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, av); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teacherID := ps.ByName("teacher_id")
	if teacherID == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "teacher_id parameter is required",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "Update", "operation", "WriteJSON", "error", err)
		}
		return
	}

	var av model.TeacherAvailability
	if err := json.NewDecoder(r.Body).Decode(&av); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Update", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	updated, err := h.service.Update(r.Context(), teacherID, &av)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Update", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, updated); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Slots(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	teacherID := ps.ByName("teacher_id")
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "'date' query parameter is required (YYYY-MM-DD)",
		}); err != nil {
			h.log.Error("failed to write bad request response", "handler", "Slots", "operation", "WriteJSON", "error", err)
		}
		return
	}

	slots, err := h.service.DaySlots(r.Context(), teacherID, date)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Slots", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "Slots", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability/teacher/:teacher_id", h.Get)
	router.PUT("/api/v1/availability/teacher/:teacher_id", h.Update)
	router.GET("/api/v1/availability/teacher/:teacher_id/slots", h.Slots)
}
