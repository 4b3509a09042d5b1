package handler

import (
	"net/http"
	"time"

	"franchiseos-backend/internal/service"
	"franchiseos-backend/pkg/response"
)

type StatsHandler struct {
	service   *service.AnalyticsService
	startedAt time.Time
}

func NewStatsHandler(service *service.AnalyticsService) *StatsHandler {
	return &StatsHandler{
		service:   service,
		startedAt: time.Now(),
	}
}

func (h *StatsHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.Success(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
		"time":   time.Now().UTC(),
	})
}

func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.Success(w, stats)
}
