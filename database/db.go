package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB
var Driver string

// InitDB opens the local collection store. Postgres is used when DATABASE_URL
// is set, sqlite otherwise (in-memory under tests, the mounted volume on
// Fly.io, a local file everywhere else).
func InitDB() error {
	var err error

	if url := os.Getenv("DATABASE_URL"); url != "" {
		Driver = "postgres"
		DB, err = sql.Open("postgres", url)
		if err != nil {
			return err
		}
	} else {
		var dsn string
		if os.Getenv("FLY_APP_NAME") != "" {
			dsn = filepath.Join("/data", "expenses.db") + "?_journal=WAL&_busy_timeout=10000"
		} else if os.Getenv("TEST_DB") == "1" {
			// shared cache so every pooled connection sees the same
			// in-memory database
			dsn = "file::memory:?cache=shared&_busy_timeout=10000"
		} else {
			dsn = "./expenses.db?_journal=WAL&_busy_timeout=10000"
		}

		Driver = "sqlite3"
		DB, err = sql.Open("sqlite3", dsn)
		if err != nil {
			return err
		}
	}

	DB.SetMaxOpenConns(5)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(time.Minute * 5)

	if err = DB.Ping(); err != nil {
		return err
	}

	return CreateSchema(DB)
}

// ResetDB drops and recreates the expenses table.
func ResetDB() error {
	if _, err := DB.Exec("DROP TABLE IF EXISTS expenses"); err != nil {
		return err
	}
	return CreateSchema(DB)
}

// Rebind rewrites ?-style placeholders into the $n form postgres expects.
// Queries are written sqlite-style throughout.
func Rebind(query string) string {
	if Driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
