package backend

import (
	"context"
	"database/sql"
	"log"

	"github.com/google/uuid"

	"pennywise/backend/database"
)

// SQLStore keeps collections in a relational table and fans a fresh snapshot
// out to subscribers after every write. It backs development and self-hosted
// deployments where no hosted database is configured.
type SQLStore struct {
	db  *sql.DB
	hub *hub
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db, hub: newHub()}
}

func (s *SQLStore) Append(ctx context.Context, path string, record map[string]interface{}) (string, error) {
	id := uuid.NewString()

	query := database.Rebind(`
		INSERT INTO expenses (id, path, description, amount, date, created_at, note, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	_, err := s.db.ExecContext(ctx, query,
		id,
		path,
		stringValue(record["description"]),
		floatValue(record["amount"]),
		intValue(record["date"]),
		intValue(record["createdAt"]),
		stringValue(record["note"]),
		stringValue(record["userId"]),
	)
	if err != nil {
		return "", err
	}

	s.broadcast(ctx, path)
	return id, nil
}

// Remove deletes the record addressed by path. Removing an absent record is
// not an error; subscribers still receive a snapshot.
func (s *SQLStore) Remove(ctx context.Context, path string) error {
	parent := parentPath(path)
	id := path[len(parent)+1:]

	query := database.Rebind(`DELETE FROM expenses WHERE path = ? AND id = ?`)
	if _, err := s.db.ExecContext(ctx, query, parent, id); err != nil {
		return err
	}

	s.broadcast(ctx, parent)
	return nil
}

func (s *SQLStore) Subscribe(path string) (*Subscription, error) {
	sub := s.hub.subscribe(path)

	snap, err := s.snapshot(context.Background(), path)
	if err != nil {
		sub.deliverErr(err)
		return sub, nil
	}
	sub.deliver(snap)
	return sub, nil
}

func (s *SQLStore) broadcast(ctx context.Context, path string) {
	snap, err := s.snapshot(ctx, path)
	if err != nil {
		log.Printf("Failed to load snapshot for %s: %v", path, err)
		s.hub.publishErr(path, err)
		return
	}
	s.hub.publish(path, snap)
}

func (s *SQLStore) snapshot(ctx context.Context, path string) (Snapshot, error) {
	query := database.Rebind(`
		SELECT id, description, amount, date, created_at, note, user_id
		FROM expenses
		WHERE path = ?
	`)
	rows, err := s.db.QueryContext(ctx, query, path)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var id, description, note, userID string
		var amount float64
		var date, createdAt int64
		if err := rows.Scan(&id, &description, &amount, &date, &createdAt, &note, &userID); err != nil {
			return nil, err
		}
		snap[id] = map[string]interface{}{
			"description": description,
			"amount":      amount,
			"date":        date,
			"createdAt":   createdAt,
			"note":        note,
			"userId":      userID,
		}
	}
	return snap, rows.Err()
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}

func floatValue(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func intValue(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case float64:
		return int64(n)
	}
	return 0
}
