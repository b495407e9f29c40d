package main

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
)

const (
	sessionCookieName = "trashcrew"
	sessionDuration   = 24 * time.Hour

	accountIDKey = "account_id"
	usernameKey  = "username"
)

// sessionStore is a sessions.Store that keeps session rows in SQLite. The
// cookie only carries the signed token; the row holds a copy of the
// account taken at login.
type sessionStore struct {
	db      *sql.DB
	codecs  []securecookie.Codec
	options *sessions.Options
}

func newSessionStore(db *sql.DB, secret string, maxAge time.Duration, secure bool) *sessionStore {
	if maxAge <= 0 {
		maxAge = sessionDuration
	}

	codecs := securecookie.CodecsFromPairs([]byte(secret))
	for _, c := range codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxAge(int(maxAge.Seconds()))
		}
	}

	return &sessionStore{
		db:     db,
		codecs: codecs,
		options: &sessions.Options{
			Path:     "/",
			MaxAge:   int(maxAge.Seconds()),
			HttpOnly: true,
			Secure:   secure,
			SameSite: http.SameSiteLaxMode,
		},
	}
}

func (s *sessionStore) Get(r *http.Request, name string) (*sessions.Session, error) {
	return sessions.GetRegistry(r).Get(s, name)
}

// New loads the session named by the request cookie. An absent, forged or
// expired cookie gives a fresh anonymous session without an error.
func (s *sessionStore) New(r *http.Request, name string) (*sessions.Session, error) {
	session := sessions.NewSession(s, name)
	opts := *s.options
	session.Options = &opts
	session.IsNew = true

	cookie, err := r.Cookie(name)
	if err != nil {
		return session, nil
	}

	var token string
	if err := securecookie.DecodeMulti(name, cookie.Value, &token, s.codecs...); err != nil {
		return session, nil
	}

	stored, err := getSession(s.db, token)
	if err != nil {
		return session, err
	}
	if stored == nil {
		return session, nil
	}

	session.ID = stored.Token
	session.Values[accountIDKey] = stored.AccountID
	session.Values[usernameKey] = stored.Username
	session.IsNew = false
	return session, nil
}

// Save writes the session row and refreshes the cookie. A negative MaxAge
// deletes both.
func (s *sessionStore) Save(r *http.Request, w http.ResponseWriter, session *sessions.Session) error {
	if session.Options.MaxAge < 0 {
		if session.ID != "" {
			if err := deleteSession(s.db, session.ID); err != nil {
				return err
			}
		}
		http.SetCookie(w, sessions.NewCookie(session.Name(), "", session.Options))
		return nil
	}

	if session.ID == "" {
		token, err := generateToken()
		if err != nil {
			return fmt.Errorf("generating session token: %w", err)
		}
		session.ID = token
	}

	accountID, _ := session.Values[accountIDKey].(int64)
	username, _ := session.Values[usernameKey].(string)
	row := Session{
		Token:     session.ID,
		AccountID: accountID,
		Username:  username,
		ExpiresAt: time.Now().Add(time.Duration(session.Options.MaxAge) * time.Second),
	}
	if err := saveSession(s.db, row); err != nil {
		return err
	}

	encoded, err := securecookie.EncodeMulti(session.Name(), session.ID, s.codecs...)
	if err != nil {
		return fmt.Errorf("encoding session cookie: %w", err)
	}
	http.SetCookie(w, sessions.NewCookie(session.Name(), encoded, session.Options))
	return nil
}

func saveSession(db *sql.DB, session Session) error {
	_, err := db.Exec(`
		INSERT INTO sessions (token, account_id, username, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET
			account_id = excluded.account_id,
			username = excluded.username,
			expires_at = excluded.expires_at`,
		session.Token, session.AccountID, session.Username, session.ExpiresAt)
	if err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}

func getSession(db *sql.DB, token string) (*Session, error) {
	row := db.QueryRow(`
		SELECT token, account_id, username, expires_at
		FROM sessions
		WHERE token = ? AND expires_at > ?`, token, time.Now())

	var session Session
	err := row.Scan(&session.Token, &session.AccountID, &session.Username, &session.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning session: %w", err)
	}

	return &session, nil
}

func deleteSession(db *sql.DB, token string) error {
	_, err := db.Exec("DELETE FROM sessions WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func cleanupExpiredSessions(db *sql.DB) error {
	_, err := db.Exec("DELETE FROM sessions WHERE expires_at < ?", time.Now())
	if err != nil {
		return fmt.Errorf("cleaning up expired sessions: %w", err)
	}
	return nil
}
