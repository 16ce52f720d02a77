package handlers

import (
	"net/http"
	"time"

	"pennywise/backend/middleware"
	"pennywise/backend/models"
	"pennywise/backend/services"
)

type overviewResponse struct {
	TotalSpent       float64               `json:"totalSpent"`
	DailySeries      []services.DailyPoint `json:"dailySeries"`
	FilteredExpenses []models.Expense      `json:"filteredExpenses"`
	Loading          bool                  `json:"loading"`
	Error            string                `json:"error,omitempty"`
	LastSync         *time.Time            `json:"lastSync,omitempty"`
}

// GetOverview returns the dashboard summary: total spend and the per-day bar
// chart series for the selected date range.
func (h *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		writeError(w, models.NewUnauthenticated("Must be logged in to view the dashboard"))
		return
	}

	rng, err := parseRange(r)
	if err != nil {
		writeError(w, err)
		return
	}

	st := h.Feeds.Feed(userID).Status()
	ov := services.BuildOverview(st.Expenses, rng)
	writeJSON(w, http.StatusOK, overviewResponse{
		TotalSpent:       ov.TotalSpent,
		DailySeries:      ov.Daily,
		FilteredExpenses: ov.Filtered,
		Loading:          st.Loading,
		Error:            st.Error,
		LastSync:         st.LastSync,
	})
}
