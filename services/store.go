package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"pennywise/backend/backend"
	"pennywise/backend/models"
)

// Store is the write side of the expense collection. It validates input
// before anything reaches the backend and never mutates local state; the live
// feed picks changes up through the backend's own notifications.
type Store struct {
	coll backend.Collection

	mu      sync.Mutex
	lastErr string
}

func NewStore(coll backend.Collection) *Store {
	return &Store{coll: coll}
}

// CreateExpense appends a new record under the user's collection and returns
// the generated id. A zero input date defaults to now.
func (s *Store) CreateExpense(ctx context.Context, userID string, in models.ExpenseInput) (string, error) {
	if userID == "" {
		return "", s.fail(models.NewUnauthenticated("Must be logged in to add expenses"))
	}

	amount, description, err := in.Validate()
	if err != nil {
		return "", s.fail(err)
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	record := map[string]interface{}{
		"description": description,
		"amount":      amount,
		"date":        date.UnixMilli(),
		"note":        strings.TrimSpace(in.Note),
		"userId":      userID,
		"createdAt":   time.Now().UnixMilli(),
	}

	id, err := s.coll.Append(ctx, backend.ExpensesPath(userID), record)
	if err != nil {
		return "", s.fail(models.Classify(err))
	}

	s.clear()
	return id, nil
}

// DeleteExpense removes the record at id. Deleting an absent id is not an
// error for the caller.
func (s *Store) DeleteExpense(ctx context.Context, userID, id string) error {
	if userID == "" {
		return s.fail(models.NewUnauthenticated("Must be logged in to delete expenses"))
	}

	if err := s.coll.Remove(ctx, backend.ExpensePath(userID, id)); err != nil {
		return s.fail(models.Classify(err))
	}

	s.clear()
	return nil
}

// Err reports the most recent failure message for passive display. Empty when
// the last operation succeeded.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) fail(err error) error {
	s.mu.Lock()
	s.lastErr = models.Classify(err).Message
	s.mu.Unlock()
	return err
}

func (s *Store) clear() {
	s.mu.Lock()
	s.lastErr = ""
	s.mu.Unlock()
}
