package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"pennywise/backend/middleware"
	"pennywise/backend/models"
	"pennywise/backend/services"
)

type expensesResponse struct {
	Expenses []models.Expense `json:"expenses"`
	Loading  bool             `json:"loading"`
	Error    string           `json:"error,omitempty"`
	LastSync *time.Time       `json:"lastSync,omitempty"`
}

// GetExpenses returns the user's live expense list, optionally filtered by a
// from/to date range, together with the feed status the UI renders.
func (h *Handler) GetExpenses(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		writeError(w, models.NewUnauthenticated("Must be logged in to view expenses"))
		return
	}

	rng, err := parseRange(r)
	if err != nil {
		writeError(w, err)
		return
	}

	st := h.Feeds.Feed(userID).Status()
	writeJSON(w, http.StatusOK, expensesResponse{
		Expenses: services.FilterByRange(st.Expenses, rng),
		Loading:  st.Loading,
		Error:    st.Error,
		LastSync: st.LastSync,
	})
}

// AddExpense creates an expense from the submitted form input.
func (h *Handler) AddExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)

	var in models.ExpenseInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, models.NewInvalidInput("Invalid request body"))
		return
	}

	id, err := h.Store.CreateExpense(r.Context(), userID, in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// DeleteExpense removes one expense by id. Deleting an id that is already
// gone still succeeds.
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	id := mux.Vars(r)["id"]

	if err := h.Store.DeleteExpense(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SignOut tears down the user's live feed. The list empties and no further
// snapshots are observed until the next sign-in.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDFromContext(r)
	if userID == "" {
		writeError(w, models.NewUnauthenticated("No active session"))
		return
	}

	h.Feeds.Drop(userID)
	w.WriteHeader(http.StatusNoContent)
}
