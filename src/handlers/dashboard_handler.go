package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/username/clinicboard/backend/src/logger"
	"github.com/username/clinicboard/backend/src/models"
	"github.com/username/clinicboard/backend/src/services"
	"github.com/username/clinicboard/backend/src/utils"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(dashboardService services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// HandleGetDashboard serves the current snapshot with an ETag so clients
// polling between feed refreshes get 304s instead of the full payload.
func (h *DashboardHandler) HandleGetDashboard(w http.ResponseWriter, r *http.Request) {
	data, fetchedAt := h.dashboardService.Snapshot()

	payload := struct {
		Data      models.DashboardData `json:"data"`
		FetchedAt time.Time            `json:"fetchedAt"`
	}{Data: data, FetchedAt: fetchedAt}

	etag, err := utils.GenerateETag(payload)
	if err != nil {
		logger.L.Error("Failed to generate dashboard ETag", "error", err)
	} else {
		if r.Header.Get("If-None-Match") == etag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.Header().Set("ETag", etag)
	}

	utils.SendJSON(w, payload, http.StatusOK)
}

// HandleRefreshDashboard forces a feed re-fetch outside the regular interval.
func (h *DashboardHandler) HandleRefreshDashboard(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboardService.Refresh(r.Context()); err != nil {
		if errors.Is(err, services.ErrFeedUnavailable) {
			utils.SendJSONError(w, "Summary feed is unavailable", http.StatusBadGateway)
			return
		}
		logger.L.Error("Manual dashboard refresh failed", "error", err)
		utils.SendJSONError(w, "Failed to refresh dashboard", http.StatusInternalServerError)
		return
	}

	data, fetchedAt := h.dashboardService.Snapshot()
	utils.SendJSON(w, map[string]interface{}{
		"message":   "Dashboard refreshed",
		"fetchedAt": fetchedAt,
		"months":    len(data.Monthly),
	}, http.StatusOK)
}

// HandleGetTrend serves the daily revenue of one month with the fitted trend
// line. The month query parameter is either a bare month name or
// "year-month" for feeds carrying two years.
func (h *DashboardHandler) HandleGetTrend(w http.ResponseWriter, r *http.Request) {
	monthParam := r.URL.Query().Get("month")
	if monthParam == "" {
		utils.SendJSONError(w, "month query parameter is required", http.StatusBadRequest)
		return
	}

	var key models.MonthKey
	if err := key.UnmarshalText([]byte(monthParam)); err != nil {
		utils.SendJSONError(w, "Unknown month: "+monthParam, http.StatusBadRequest)
		return
	}

	points, ok := h.dashboardService.MonthTrend(key)
	if !ok {
		utils.SendJSONError(w, "No daily data for month: "+monthParam, http.StatusNotFound)
		return
	}

	utils.SendJSON(w, map[string]interface{}{
		"month":  key,
		"points": points,
	}, http.StatusOK)
}
