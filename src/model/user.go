package model

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found, expired, or blocked")
)

type User struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	Name            string    `json:"name"`
	AuthProvider    string    `json:"auth_provider"`
	ProviderSubject string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Session struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Token         string    `json:"token"`
	ProviderToken string    `json:"-"` // identity provider access token, revoked on sign-out
	UserAgent     string    `json:"user_agent"`
	ClientIP      string    `json:"client_ip"`
	IsBlocked     bool      `json:"is_blocked"`
	ExpiresAt     time.Time `json:"expires_at"`
	CreatedAt     time.Time `json:"created_at"`
}

// UpsertUser creates the user on first sign-in and refreshes name and provider
// subject on later ones. Users are keyed by email.
func UpsertUser(ctx context.Context, db *sql.DB, u *User) error {
	now := time.Now().UTC()
	query := `
	INSERT INTO users (email, name, auth_provider, provider_subject, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(email) DO UPDATE SET
		name = excluded.name,
		provider_subject = excluded.provider_subject,
		updated_at = excluded.updated_at`

	if _, err := db.ExecContext(ctx, query, u.Email, u.Name, u.AuthProvider, u.ProviderSubject, now, now); err != nil {
		return err
	}

	stored, err := GetUserByEmail(ctx, db, u.Email)
	if err != nil {
		return err
	}
	*u = *stored
	return nil
}

// GetUserByEmail retrieves a user from the database by their email.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*User, error) {
	return scanUser(db.QueryRowContext(ctx, `
	SELECT id, email, name, auth_provider, provider_subject, created_at, updated_at
	FROM users
	WHERE email = ?`, email))
}

// GetUserByID retrieves a user from the database by id.
func GetUserByID(ctx context.Context, db *sql.DB, id int64) (*User, error) {
	return scanUser(db.QueryRowContext(ctx, `
	SELECT id, email, name, auth_provider, provider_subject, created_at, updated_at
	FROM users
	WHERE id = ?`, id))
}

func scanUser(row *sql.Row) (*User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.AuthProvider, &user.ProviderSubject, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateSession inserts a new session into the database.
func CreateSession(ctx context.Context, db *sql.DB, session *Session) error {
	query := `
	INSERT INTO sessions (user_id, token, provider_token, user_agent, client_ip, is_blocked, expires_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	session.CreatedAt = time.Now().UTC()
	session.ExpiresAt = session.ExpiresAt.UTC()
	res, err := db.ExecContext(ctx, query,
		session.UserID,
		session.Token,
		session.ProviderToken,
		session.UserAgent,
		session.ClientIP,
		session.IsBlocked,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	session.ID = id
	return nil
}

// GetSessionByToken retrieves an active, non-blocked session by its access token.
func GetSessionByToken(ctx context.Context, db *sql.DB, token string) (*Session, error) {
	query := `
	SELECT id, user_id, token, provider_token, user_agent, client_ip, is_blocked, expires_at, created_at
	FROM sessions
	WHERE token = ? AND is_blocked = FALSE AND expires_at > ?`

	row := db.QueryRowContext(ctx, query, token, time.Now().UTC())
	var session Session
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.ProviderToken,
		&session.UserAgent,
		&session.ClientIP,
		&session.IsBlocked,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// DeleteSessionByToken removes a session. Deleting a session that is already
// gone is not an error.
func DeleteSessionByToken(ctx context.Context, db *sql.DB, token string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	return err
}
