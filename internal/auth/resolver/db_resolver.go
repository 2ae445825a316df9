package resolver

import (
	"context"
	"database/sql"
	"errors"

	"github.com/MarcoTuMD/Template-Admin/internal/auth"
	"github.com/MarcoTuMD/Template-Admin/internal/auth/credentials"
	"github.com/MarcoTuMD/Template-Admin/internal/db"

	"github.com/google/uuid"
)

// ErrUnverifiedEmail is returned when a new identity claims the email of an
// existing user but its provider has not verified that email.
var ErrUnverifiedEmail = errors.New("email not verified by provider")

// DBResolver resolves identities using the database.
// This is the canonical Keystone resolver.
type DBResolver struct {
	db *db.DB
}

func NewDBResolver(db *db.DB) *DBResolver {
	return &DBResolver{db: db}
}

// Resolve links in this order: known identity, existing user with the
// same provider-verified email, new user. Profile fields are filled only
// where empty.
func (r *DBResolver) Resolve(
	ctx context.Context,
	identity *auth.Identity,
) (string, error) {

	if identity == nil {
		return "", errors.New("identity is nil")
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	// 1. Try identity lookup (provider + provider_user_id)
	var userID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		SELECT user_id
		FROM identities
		WHERE provider = $1
		  AND provider_user_id = $2
	`,
		identity.Provider,
		identity.ProviderUserID,
	).Scan(&userID)

	switch {
	case err == nil:
		// already linked
	case !errors.Is(err, sql.ErrNoRows):
		return "", err
	default:
		userID, err = r.linkOrCreate(ctx, tx, identity)
		if err != nil {
			return "", err
		}
	}

	// Fill profile gaps from the provider without overwriting local edits.
	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET display_name = CASE WHEN display_name = '' THEN $2 ELSE display_name END,
		    photo_url = CASE WHEN photo_url = '' THEN $3 ELSE photo_url END,
		    email_verified = email_verified OR $4,
		    updated_at = NOW()
		WHERE id = $1
	`,
		userID,
		identity.DisplayName,
		identity.PictureURL,
		identity.EmailVerified,
	)
	if err != nil {
		return "", err
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}

	return userID.String(), nil
}

func (r *DBResolver) linkOrCreate(ctx context.Context, tx *sql.Tx, identity *auth.Identity) (uuid.UUID, error) {
	var (
		userID        uuid.UUID
		emailVerified bool
	)
	email := credentials.NormalizeEmail(identity.Email)

	// 2. Try email-based linking (existing user, new provider)
	err := tx.QueryRowContext(ctx, `
		SELECT id, email_verified
		FROM users
		WHERE LOWER(email) = $1
	`,
		email,
	).Scan(&userID, &emailVerified)

	switch {
	case err == nil:
		if !identity.EmailVerified {
			return uuid.Nil, ErrUnverifiedEmail
		}
		// A password nobody proved to own the mailbox must not survive
		// the link.
		if !emailVerified {
			if _, err := tx.ExecContext(ctx, `
				DELETE FROM credentials WHERE user_id = $1
			`, userID); err != nil {
				return uuid.Nil, err
			}
		}
	case errors.Is(err, sql.ErrNoRows):
		// 3. Create new user
		err = tx.QueryRowContext(ctx, `
			INSERT INTO users (email, email_verified)
			VALUES ($1, $2)
			RETURNING id
		`,
			email,
			identity.EmailVerified,
		).Scan(&userID)
		if err != nil {
			return uuid.Nil, err
		}
	default:
		return uuid.Nil, err
	}

	// 4. Create identity mapping
	_, err = tx.ExecContext(ctx, `
		INSERT INTO identities (user_id, provider, provider_user_id)
		VALUES ($1, $2, $3)
	`,
		userID,
		identity.Provider,
		identity.ProviderUserID,
	)
	if err != nil {
		return uuid.Nil, err
	}

	return userID, nil
}
