package backend

import (
	"context"
	"fmt"
	"os"
	"time"

	"pennywise/backend/database"
)

// Type selects a Collection implementation.
type Type string

const (
	FirebaseBackend Type = "firebase"
	SQLBackend      Type = "sql"
	MemoryBackend   Type = "memory"
)

func (t Type) IsValid() bool {
	switch t {
	case FirebaseBackend, SQLBackend, MemoryBackend:
		return true
	}
	return false
}

// Config holds everything a Collection implementation might need. Only the
// fields for the selected type are consulted.
type Config struct {
	Type Type

	// Firebase
	DatabaseURL        string
	ProjectID          string
	ServiceAccountJSON []byte
	PollInterval       time.Duration
}

// TypeFromEnv picks the collection backend: COLLECTION_BACKEND wins, then the
// presence of a Firebase database URL, then the local SQL store.
func TypeFromEnv() Type {
	if t := Type(os.Getenv("COLLECTION_BACKEND")); t != "" {
		return t
	}
	if os.Getenv("FIREBASE_DATABASE_URL") != "" {
		return FirebaseBackend
	}
	return SQLBackend
}

// ConfigFromEnv builds a Config for TypeFromEnv from the environment.
func ConfigFromEnv() Config {
	return Config{
		Type:               TypeFromEnv(),
		DatabaseURL:        os.Getenv("FIREBASE_DATABASE_URL"),
		ProjectID:          os.Getenv("FIREBASE_PROJECT_ID"),
		ServiceAccountJSON: ServiceAccountJSON(),
	}
}

// New creates the configured Collection. The SQL store reuses the connection
// opened by database.InitDB.
func New(ctx context.Context, cfg Config) (Collection, error) {
	switch cfg.Type {
	case FirebaseBackend:
		return NewFirebaseStore(ctx, FirebaseConfig{
			DatabaseURL:        cfg.DatabaseURL,
			ProjectID:          cfg.ProjectID,
			ServiceAccountJSON: cfg.ServiceAccountJSON,
			PollInterval:       cfg.PollInterval,
		})
	case SQLBackend:
		if database.DB == nil {
			return nil, fmt.Errorf("database is not initialized")
		}
		return NewSQLStore(database.DB), nil
	case MemoryBackend:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported collection backend: %s", cfg.Type)
	}
}
