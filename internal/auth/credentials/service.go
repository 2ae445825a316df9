package credentials

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/MarcoTuMD/Template-Admin/internal/db"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailInUse         = errors.New("email already in use")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalidEmail       = errors.New("invalid email")
)

type Service struct {
	db *db.DB
}

func NewService(db *db.DB) *Service {
	return &Service{db: db}
}

// Register creates a user with password credentials and returns its ID.
// Any existing user with the same email yields ErrEmailInUse, federated-only
// users included.
func (s *Service) Register(
	ctx context.Context,
	email string,
	password string,
) (string, error) {

	email = NormalizeEmail(email)
	if !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}

	// Hash before touching the database so weak passwords fail fast.
	hash, version, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	var userID uuid.UUID

	// 1. Email must be unclaimed
	err = tx.QueryRowContext(ctx, `
		SELECT id FROM users
		WHERE LOWER(email) = $1
	`, email).Scan(&userID)

	switch {
	case err == nil:
		return "", ErrEmailInUse
	case !errors.Is(err, sql.ErrNoRows):
		return "", err
	}

	// 2. Create user
	err = tx.QueryRowContext(ctx, `
		INSERT INTO users (email, email_verified)
		VALUES ($1, false)
		RETURNING id
	`, email).Scan(&userID)

	if err != nil {
		return "", err
	}

	// 3. Insert credentials
	_, err = tx.ExecContext(ctx, `
		INSERT INTO credentials (user_id, password_hash, hash_version)
		VALUES ($1, $2, $3)
	`, userID, hash, version)

	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	return userID.String(), nil
}

// NormalizeEmail is the stored form of an email address: trimmed and
// lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) Authenticate(
	ctx context.Context,
	email string,
	password string,
) (string, error) {

	var (
		userID uuid.UUID
		cred   Credential
	)

	// 1. Find user + credentials
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, c.password_hash, c.hash_version
		FROM users u
		JOIN credentials c ON c.user_id = u.id
		WHERE LOWER(u.email) = $1
	`, NormalizeEmail(email)).Scan(&userID, &cred.PasswordHash, &cred.HashVersion)

	if errors.Is(err, sql.ErrNoRows) {
		// hide whether user exists or not
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if cred.HashVersion != HashVersionBcrypt {
		return "", ErrInvalidCredentials
	}

	// 2. Verify password
	if err := VerifyPassword(cred.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	return userID.String(), nil
}
