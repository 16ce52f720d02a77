package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"pennywise/backend/backend"
	"pennywise/backend/feed"
	"pennywise/backend/middleware"
	"pennywise/backend/services"
)

// TestUserID is the uid handler tests run as.
const TestUserID = "test-user-id"

// SetupTestAuth adds authentication context to the request.
func SetupTestAuth(req *http.Request) *http.Request {
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, TestUserID)
	return req.WithContext(ctx)
}

// newTestHandler wires a handler onto a fresh in-memory collection.
func newTestHandler() (*Handler, *feed.Manager) {
	coll := backend.NewMemoryStore()
	feeds := feed.NewManager(coll)
	return New(services.NewStore(coll), feeds), feeds
}

// waitForFeed blocks until the user's feed has synced n expenses.
func waitForFeed(t *testing.T, feeds *feed.Manager, userID string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		st := feeds.Feed(userID).Status()
		if !st.Loading && len(st.Expenses) == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("feed never reached %d expenses", n)
}
