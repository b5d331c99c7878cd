package testutil

import (
	"database/sql"
	"os"
	"testing"

	"github.com/xxxsen/ainote/internal/config"
	"github.com/xxxsen/ainote/internal/db"
)

func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "ainote",
		Password: "ainote_pass",
		DBName:   "ainote_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	truncate(t, conn)
	return conn, func() {
		_ = conn.Close()
	}
}

func truncate(t *testing.T, conn *sql.DB) {
	t.Helper()
	tables := []string{
		"ai_messages", "ai_conversations", "note_embeddings",
		"user_ai_settings", "workspace_members", "notes",
	}
	for _, table := range tables {
		if _, err := conn.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
}
