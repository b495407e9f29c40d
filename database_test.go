package main

import (
	"database/sql"
	"path/filepath"
	"testing"
)

// openTestDB returns a migrated database stored in a temporary directory.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := openDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := initDB(db); err != nil {
		t.Fatalf("initializing test database: %v", err)
	}
	return db
}

func TestOpenDB(t *testing.T) {
	db, err := openDB(filepath.Join(t.TempDir(), "open.db"))
	if err != nil {
		t.Fatalf("openDB() error: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Errorf("db.Ping() error: %v", err)
	}
}

func TestInitDB(t *testing.T) {
	db := openTestDB(t)

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('users') WHERE name IN ('id', 'username', 'password_hash')`).Scan(&count)
	if err != nil {
		t.Fatalf("querying users schema: %v", err)
	}
	if count != 3 {
		t.Errorf("users table: expected 3 columns, got %d", count)
	}

	err = db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('posts') WHERE name IN ('id', 'title', 'content', 'image', 'section', 'created')`).Scan(&count)
	if err != nil {
		t.Fatalf("querying posts schema: %v", err)
	}
	if count != 6 {
		t.Errorf("posts table: expected 6 columns, got %d", count)
	}

	err = db.QueryRow(`SELECT COUNT(*) FROM pragma_table_info('sessions')`).Scan(&count)
	if err != nil {
		t.Fatalf("querying sessions schema: %v", err)
	}
	if count != 4 {
		t.Errorf("sessions table: expected 4 columns, got %d", count)
	}
}

func TestInitDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := initDB(db); err != nil {
		t.Fatalf("second initDB() error: %v", err)
	}
}

func TestInitDB_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")

	db, err := openDB(path)
	if err != nil {
		t.Fatalf("openDB() error: %v", err)
	}
	if err := initDB(db); err != nil {
		t.Fatalf("initDB() error: %v", err)
	}
	if _, err := createPost(db, "Kept", "Body", "", "The Dumps"); err != nil {
		t.Fatalf("createPost() error: %v", err)
	}
	db.Close()

	db, err = openDB(path)
	if err != nil {
		t.Fatalf("reopening: %v", err)
	}
	defer db.Close()
	if err := initDB(db); err != nil {
		t.Fatalf("initDB() after reopen error: %v", err)
	}

	posts, err := listPostsBySection(db, "The Dumps")
	if err != nil {
		t.Fatalf("listPostsBySection() error: %v", err)
	}
	if len(posts) != 1 || posts[0].Title != "Kept" {
		t.Errorf("expected the post to survive a restart, got %+v", posts)
	}
}

func TestSeedDB_Twice(t *testing.T) {
	db := openTestDB(t)

	if err := seedDB(db, "password"); err != nil {
		t.Fatalf("first seedDB() error: %v", err)
	}
	if err := seedDB(db, "password"); err != nil {
		t.Fatalf("second seedDB() error: %v", err)
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users WHERE username = 'admin'").Scan(&count); err != nil {
		t.Fatalf("counting admins: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exactly 1 admin account, got %d", count)
	}
}

func TestUsernameIsUnique(t *testing.T) {
	db := openTestDB(t)

	if err := seedDB(db, "password"); err != nil {
		t.Fatalf("seedDB() error: %v", err)
	}

	_, err := db.Exec("INSERT INTO users (username, password_hash) VALUES ('admin', 'x')")
	if err == nil {
		t.Error("expected a second admin insert to fail")
	}
}
