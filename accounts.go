package main

import (
	"database/sql"
	"errors"
	"fmt"
)

const adminUsername = "admin"

var errAccountNotFound = errors.New("account not found")

// ensureAdminAccount inserts the admin account when it is missing and
// reports whether it did.
func ensureAdminAccount(db *sql.DB, password string) (bool, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM users WHERE username = ?", adminUsername).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking admin account: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	hash, err := hashPassword(password)
	if err != nil {
		return false, err
	}

	_, err = db.Exec("INSERT INTO users (username, password_hash) VALUES (?, ?)", adminUsername, hash)
	if err != nil {
		return false, fmt.Errorf("inserting admin account: %w", err)
	}
	return true, nil
}

// authenticate returns the account matching username and password, or nil
// when either is wrong.
func authenticate(db *sql.DB, username, password string) (*Account, error) {
	row := db.QueryRow(`
		SELECT id, username, password_hash
		FROM users
		WHERE username = ?`, username)

	var (
		account Account
		hash    string
	)
	err := row.Scan(&account.ID, &account.Username, &hash)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up account: %w", err)
	}

	if !checkPassword(hash, password) {
		return nil, nil
	}
	return &account, nil
}

func setAccountPassword(db *sql.DB, username, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}

	result, err := db.Exec("UPDATE users SET password_hash = ? WHERE username = ?", hash, username)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", errAccountNotFound, username)
	}
	return nil
}
