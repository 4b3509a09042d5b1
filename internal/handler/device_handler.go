package handler

import (
	"encoding/json"
	"net/http"

	"franchiseos-backend/internal/domain"
	"franchiseos-backend/internal/middleware"
	"franchiseos-backend/internal/service"
	"franchiseos-backend/pkg/response"

	"github.com/go-playground/validator/v10"
)

// DeviceHandler serves the device-facing API. Every route runs behind the
// device middleware, so the franchise is always in the request context.
type DeviceHandler struct {
	franchiseService *service.FranchiseService
	playlistService  *service.PlaylistService
	analyticsService *service.AnalyticsService
	validate         *validator.Validate
}

func NewDeviceHandler(franchiseService *service.FranchiseService, playlistService *service.PlaylistService, analyticsService *service.AnalyticsService) *DeviceHandler {
	return &DeviceHandler{
		franchiseService: franchiseService,
		playlistService:  playlistService,
		analyticsService: analyticsService,
		validate:         validator.New(),
	}
}

func (h *DeviceHandler) Heartbeat(w http.ResponseWriter, r *http.Request) {
	franchise := middleware.GetFranchise(r)
	if franchise == nil {
		response.Unauthorized(w, "Device not authenticated")
		return
	}

	lastSync, err := h.franchiseService.Heartbeat(franchise.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, map[string]any{
		"status":   "online",
		"lastSync": lastSync,
	})
}

// Playlist resolves the device's assignments into the playable list,
// rewritten onto this request's host.
func (h *DeviceHandler) Playlist(w http.ResponseWriter, r *http.Request) {
	franchise := middleware.GetFranchise(r)
	if franchise == nil {
		response.Unauthorized(w, "Device not authenticated")
		return
	}

	playlist, err := h.playlistService.Resolve(franchise.DeviceID, requestBaseURL(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, playlist)
}

func (h *DeviceHandler) Info(w http.ResponseWriter, r *http.Request) {
	franchise := middleware.GetFranchise(r)
	if franchise == nil {
		response.Unauthorized(w, "Device not authenticated")
		return
	}

	response.Success(w, franchise.Masked())
}

func (h *DeviceHandler) Report(w http.ResponseWriter, r *http.Request) {
	franchise := middleware.GetFranchise(r)
	if franchise == nil {
		response.Unauthorized(w, "Device not authenticated")
		return
	}

	var req domain.PlaybackReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.analyticsService.Report(franchise, &req); err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, map[string]string{"message": "Report recorded"})
}
