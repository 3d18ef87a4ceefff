package handler

import (
	"encoding/json"
	"net/http"

	"pitchside/internal/holds/service"
	httputil "pitchside/pkg/http"
	"pitchside/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type HoldHandler struct {
	service service.HoldService
	log     *logger.Logger
}

func NewHoldHandler(service service.HoldService, log *logger.Logger) *HoldHandler {
	return &HoldHandler{
		service: service,
		log:     log,
	}
}

func (h *HoldHandler) Place(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req service.PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Place", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	hold, err := h.service.Place(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Place", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, hold); err != nil {
		h.log.Error("failed to write created response", "handler", "Place", "operation", "WriteCreated", "error", err)
	}
}

func (h *HoldHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	hold, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetByID", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, hold); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

// Release is idempotent. Releasing a hold that already expired or never
// existed still returns 204.
func (h *HoldHandler) Release(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	if err := h.service.Release(r.Context(), id); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Release", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *HoldHandler) Convert(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req service.ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Convert", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}
	req.HoldID = ps.ByName("id")

	booking, err := h.service.Convert(r.Context(), &req)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Convert", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Convert", "operation", "WriteCreated", "error", err)
	}
}

// ReleaseExpired is the maintenance entry point an external scheduler calls.
func (h *HoldHandler) ReleaseExpired(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	removed, err := h.service.ReleaseExpired(r.Context())
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ReleaseExpired", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, map[string]any{"released": removed}); err != nil {
		h.log.Error("failed to write success response", "handler", "ReleaseExpired", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HoldHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/holds", h.Place)
	router.GET("/api/v1/holds/id/:id", h.GetByID)
	router.DELETE("/api/v1/holds/id/:id", h.Release)
	router.POST("/api/v1/holds/id/:id/convert", h.Convert)
	router.POST("/api/v1/holds/release-expired", h.ReleaseExpired)
}
