package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const accountContextKey contextKey = "account"

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

func generateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// currentAccount returns the account snapshot stored in the request's
// session, or nil for anonymous requests.
func (s *Site) currentAccount(r *http.Request) (*Account, error) {
	session, err := s.sessions.Get(r, sessionCookieName)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}

	id, ok := session.Values[accountIDKey].(int64)
	if !ok || id == 0 {
		return nil, nil
	}
	username, _ := session.Values[usernameKey].(string)
	return &Account{ID: id, Username: username}, nil
}

// login binds account to a new session and sets the cookie. Any session the
// client already had is discarded.
func (s *Site) login(w http.ResponseWriter, r *http.Request, account *Account) error {
	session, err := s.sessions.Get(r, sessionCookieName)
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}

	if session.ID != "" {
		if err := deleteSession(s.db, session.ID); err != nil {
			return err
		}
		session.ID = ""
	}

	session.Values[accountIDKey] = account.ID
	session.Values[usernameKey] = account.Username
	return session.Save(r, w)
}

// requireAuth redirects anonymous requests to the login page.
func (s *Site) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		account, err := s.currentAccount(r)
		if err != nil {
			s.serverError(w, "checking session", err)
			return
		}
		if account == nil {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if info := requestInfoFromContext(r.Context()); info != nil {
			info.Username = account.Username
		}

		ctx := context.WithValue(r.Context(), accountContextKey, account)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func accountFromContext(ctx context.Context) *Account {
	account, _ := ctx.Value(accountContextKey).(*Account)
	return account
}
