package handler

import (
	"encoding/json"
	"net/http"

	"pitchside/internal/availability/service"
	httputil "pitchside/pkg/http"
	"pitchside/pkg/logger"

	"github.com/julienschmidt/httprouter"
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

// DayStatus renders the slot calendar for one facility day. The session id is
// optional; when present the caller's own holds show up as available.
func (h *AvailabilityHandler) DayStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	facilityID := ps.ByName("id")

	date, err := httputil.RequireQuery(r, "date")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DayStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	sessionID := r.URL.Query().Get("session_id")

	view, err := h.service.DayStatus(r.Context(), facilityID, date, sessionID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "DayStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, view); err != nil {
		h.log.Error("failed to write success response", "handler", "DayStatus", "operation", "WriteSuccess", "error", err)
	}
}

// EndTimes lists the end times reachable from a given start without crossing
// anything blocked.
func (h *AvailabilityHandler) EndTimes(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	facilityID := ps.ByName("id")

	date, err := httputil.RequireQuery(r, "date")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "EndTimes", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	start, err := httputil.RequireQuery(r, "start")
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "EndTimes", "operation", "WriteError", "error", writeErr)
		}
		return
	}
	sessionID := r.URL.Query().Get("session_id")

	ends, err := h.service.EndTimes(r.Context(), facilityID, date, start, sessionID)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "EndTimes", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"end_times": ends}); err != nil {
		h.log.Error("failed to write success response", "handler", "EndTimes", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Check", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	decision, err := h.service.CheckRange(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Check", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, decision); err != nil {
		h.log.Error("failed to write success response", "handler", "Check", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AvailabilityHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/facilities/id/:id/availability", h.DayStatus)
	router.GET("/api/v1/facilities/id/:id/availability/end-times", h.EndTimes)
	router.POST("/api/v1/availability/check", h.Check)
}
